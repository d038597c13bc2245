// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package customer

import (
	"context"

	"github.com/ManuGH/storefront/internal/graphql"
)

// RegisterForm is a submitted registration form.
type RegisterForm struct {
	Entries        []FormEntry
	ReCaptchaToken string
}

type registerResponse struct {
	Customer struct {
		RegisterCustomer struct {
			Customer *struct {
				FirstName string `json:"firstName"`
				LastName  string `json:"lastName"`
			} `json:"customer"`
			Errors []mutationError `json:"errors"`
		} `json:"registerCustomer"`
	} `json:"customer"`
}

// RegisterCustomer folds the form into a RegisterCustomerInput and creates
// the account. On success the folded input is returned as data.
func (s *Service) RegisterCustomer(ctx context.Context, form RegisterForm) Result {
	ctx, span := s.startAction(ctx, ActionRegister)

	input := FoldForm(WithoutField(form.Entries, ConfirmPasswordField))
	if !input.HasEmail() {
		return s.finish(ctx, span, ActionRegister, Failure(MsgInvalidInput))
	}

	vars := map[string]any{"input": input}
	if form.ReCaptchaToken != "" {
		vars["reCaptchaV2"] = map[string]any{"token": form.ReCaptchaToken}
	}

	var out registerResponse
	err := s.client.Do(ctx, graphql.Request{
		OperationName: "RegisterCustomer",
		Query:         registerCustomerMutation,
		Variables:     vars,
	}, &out)
	if err != nil {
		span.RecordError(err)
		return s.finish(ctx, span, ActionRegister, s.apiFailure(ctx, ActionRegister, err))
	}

	if errs := out.Customer.RegisterCustomer.Errors; len(errs) > 0 {
		domainErr := &DomainError{Operation: "RegisterCustomer", Messages: messages(errs)}
		return s.finish(ctx, span, ActionRegister, Failure(domainErr.Message()))
	}
	return s.finish(ctx, span, ActionRegister, Success(input))
}
