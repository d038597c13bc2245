// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package customer

import (
	"context"
	"fmt"

	"github.com/ManuGH/storefront/internal/graphql"
)

// Settings is what the account settings page renders.
type Settings struct {
	Customer       Customer
	CustomerFields []FormField
	AddressFields  []FormField
}

// Value returns the stored customer value for a built-in field key.
func (st *Settings) Value(key string) string {
	switch key {
	case "email":
		return st.Customer.Email
	case "firstName":
		return st.Customer.FirstName
	case "lastName":
		return st.Customer.LastName
	case "company":
		return st.Customer.Company
	case "phone":
		return st.Customer.Phone
	default:
		return ""
	}
}

type formFieldsResponse struct {
	Site struct {
		Settings *struct {
			FormFields struct {
				Customer        []FormField `json:"customer"`
				ShippingAddress []FormField `json:"shippingAddress"`
			} `json:"formFields"`
		} `json:"settings"`
	} `json:"site"`
}

// FormFields returns the site's form field definitions matching filters.
// Definitions are site wide and served from cache.
func (s *Service) FormFields(ctx context.Context, filters FieldFilters) (FormFields, error) {
	return s.fields.Load(ctx, filters.cacheKey(), s.fieldsTTL, func(ctx context.Context) (FormFields, error) {
		var out formFieldsResponse
		err := s.client.Do(ctx, graphql.Request{
			OperationName: "FormFieldsQuery",
			Query:         formFieldsQuery,
			Variables:     filters.variables(),
		}, &out)
		if err != nil {
			return FormFields{}, fmt.Errorf("load form fields: %w", err)
		}
		if out.Site.Settings == nil {
			return FormFields{}, nil
		}
		return FormFields{
			Customer: out.Site.Settings.FormFields.Customer,
			Address:  out.Site.Settings.FormFields.ShippingAddress,
		}, nil
	})
}

// RegistrationForm returns the renderable customer and address fields of
// the registration page.
func (s *Service) RegistrationForm(ctx context.Context) (*FormFields, error) {
	fields, err := s.FormFields(ctx, FieldFilters{})
	if err != nil {
		return nil, err
	}
	return &FormFields{
		Customer: Renderable(fields.Customer),
		Address:  Renderable(fields.Address),
	}, nil
}

// SettingsFilters returns the filters used by the settings page.
func (s *Service) SettingsFilters() FieldFilters {
	return FieldFilters{AddressEntityIDs: s.AddressFieldIDs()}
}

type customerSettingsResponse struct {
	Customer *Customer `json:"customer"`
}

// CustomerSettings loads the signed-in customer and the settings form
// fields. It returns nil, nil when either is absent.
func (s *Service) CustomerSettings(ctx context.Context, token string, filters FieldFilters) (*Settings, error) {
	var out customerSettingsResponse
	err := s.client.Do(ctx, graphql.Request{
		OperationName:       "CustomerSettingsQuery",
		Query:               customerSettingsQuery,
		CustomerAccessToken: token,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("load customer settings: %w", err)
	}
	if out.Customer == nil {
		return nil, nil
	}

	fields, err := s.FormFields(ctx, filters)
	if err != nil {
		return nil, err
	}
	if fields.Customer == nil && fields.Address == nil {
		return nil, nil
	}

	return &Settings{
		Customer:       *out.Customer,
		CustomerFields: Renderable(fields.Customer),
		AddressFields:  Renderable(fields.Address),
	}, nil
}

type updateCustomerResponse struct {
	Customer struct {
		UpdateCustomer struct {
			Customer *Customer      `json:"customer"`
			Errors   []mutationError `json:"errors"`
		} `json:"updateCustomer"`
	} `json:"customer"`
}

// UpdateSettings applies the customer section of a settings form.
func (s *Service) UpdateSettings(ctx context.Context, token string, entries []FormEntry) Result {
	ctx, span := s.startAction(ctx, ActionUpdateSettings)

	folded := FoldForm(entries)
	if len(folded.Fields) == 0 {
		return s.finish(ctx, span, ActionUpdateSettings, Failure(MsgInvalidInput))
	}

	var out updateCustomerResponse
	err := s.client.Do(ctx, graphql.Request{
		OperationName:       "UpdateCustomer",
		Query:               updateCustomerMutation,
		Variables:           map[string]any{"input": folded.Fields},
		CustomerAccessToken: token,
	}, &out)
	if err != nil {
		span.RecordError(err)
		return s.finish(ctx, span, ActionUpdateSettings, s.apiFailure(ctx, ActionUpdateSettings, err))
	}
	if errs := out.Customer.UpdateCustomer.Errors; len(errs) > 0 {
		domainErr := &DomainError{Operation: "UpdateCustomer", Messages: messages(errs)}
		return s.finish(ctx, span, ActionUpdateSettings, Failure(domainErr.Message()))
	}
	return s.finish(ctx, span, ActionUpdateSettings, Success(folded.Fields))
}
