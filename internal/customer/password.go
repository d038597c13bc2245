// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package customer

import (
	"context"

	"github.com/ManuGH/storefront/internal/graphql"
)

// ChangePasswordInput is a submitted change password form.
type ChangePasswordInput struct {
	CurrentPassword string `label:"Current password" validate:"required"`
	NewPassword     string `label:"New password" validate:"required,min=7"`
	ConfirmPassword string `label:"Confirm password" validate:"required,eqfield=NewPassword"`
}

type changePasswordResponse struct {
	Customer struct {
		ChangePassword struct {
			Errors []mutationError `json:"errors"`
		} `json:"changePassword"`
	} `json:"customer"`
}

// ChangePassword validates the form locally and changes the customer's password.
func (s *Service) ChangePassword(ctx context.Context, token string, in ChangePasswordInput) Result {
	ctx, span := s.startAction(ctx, ActionChangePassword)

	if err := s.validate.StructCtx(ctx, in); err != nil {
		return s.finish(ctx, span, ActionChangePassword, Failure(validationMessage(err)))
	}

	var out changePasswordResponse
	err := s.client.Do(ctx, graphql.Request{
		OperationName: "ChangePassword",
		Query:         changePasswordMutation,
		Variables: map[string]any{"input": map[string]any{
			"currentPassword": in.CurrentPassword,
			"newPassword":     in.NewPassword,
		}},
		CustomerAccessToken: token,
	}, &out)
	if err != nil {
		span.RecordError(err)
		return s.finish(ctx, span, ActionChangePassword, s.apiFailure(ctx, ActionChangePassword, err))
	}
	if errs := out.Customer.ChangePassword.Errors; len(errs) > 0 {
		domainErr := &DomainError{Operation: "ChangePassword", Messages: messages(errs)}
		return s.finish(ctx, span, ActionChangePassword, Failure(domainErr.Message()))
	}
	return s.finish(ctx, span, ActionChangePassword, Success(nil))
}
