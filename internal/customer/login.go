// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package customer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/storefront/internal/graphql"
	xglog "github.com/ManuGH/storefront/internal/log"
)

// LoginInput is a submitted sign in form.
type LoginInput struct {
	Email    string `label:"Email" validate:"required,email"`
	Password string `label:"Password" validate:"required"`
}

// Customer is the signed-in shopper.
type Customer struct {
	EntityID  int    `json:"entityId"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// LoginResult is the outcome of a sign in. Token and ExpiresAt are set on success.
type LoginResult struct {
	Result
	Customer  Customer
	Token     string
	ExpiresAt time.Time
}

type loginResponse struct {
	Login *struct {
		CustomerAccessToken *struct {
			Value     string    `json:"value"`
			ExpiresAt time.Time `json:"expiresAt"`
		} `json:"customerAccessToken"`
		Customer *Customer `json:"customer"`
	} `json:"login"`
}

// Login exchanges credentials for a customer access token. The returned
// error classifies a failure, the embedded Result is what to show.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	ctx, span := s.startAction(ctx, ActionLogin)

	in := LoginInput{Email: email, Password: password}
	if err := s.validate.StructCtx(ctx, in); err != nil {
		res := s.finish(ctx, span, ActionLogin, Failure(validationMessage(err)))
		return LoginResult{Result: res}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var out loginResponse
	err := s.client.Do(ctx, graphql.Request{
		OperationName: "Login",
		Query:         loginMutation,
		Variables:     map[string]any{"email": in.Email, "password": in.Password},
	}, &out)

	var respErr *graphql.ResponseError
	switch {
	case errors.As(err, &respErr):
		res := s.finish(ctx, span, ActionLogin, Failure(MsgBadLogin))
		return LoginResult{Result: res}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	case err != nil:
		span.RecordError(err)
		res := s.finish(ctx, span, ActionLogin, s.apiFailure(ctx, ActionLogin, err))
		return LoginResult{Result: res}, err
	}

	if out.Login == nil || out.Login.CustomerAccessToken == nil || out.Login.Customer == nil {
		res := s.finish(ctx, span, ActionLogin, Failure(MsgBadLogin))
		return LoginResult{Result: res}, ErrInvalidCredentials
	}

	c := *out.Login.Customer
	c.Email = in.Email
	return LoginResult{
		Result:    s.finish(ctx, span, ActionLogin, Success(c)),
		Customer:  c,
		Token:     out.Login.CustomerAccessToken.Value,
		ExpiresAt: out.Login.CustomerAccessToken.ExpiresAt,
	}, nil
}

// Logout revokes a customer access token. Failures are logged only since
// the local session is gone either way.
func (s *Service) Logout(ctx context.Context, token string) {
	ctx, span := s.startAction(ctx, ActionLogout)

	err := s.client.Do(ctx, graphql.Request{
		OperationName:       "Logout",
		Query:               logoutMutation,
		CustomerAccessToken: token,
	}, nil)
	if err != nil {
		span.RecordError(err)
		logger := xglog.WithComponentFromContext(ctx, "customer")
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "customer.logout_failed").
			Msg("token revocation failed")
		s.finish(ctx, span, ActionLogout, Failure(failureMessage(err)))
		return
	}
	s.finish(ctx, span, ActionLogout, Success(nil))
}
