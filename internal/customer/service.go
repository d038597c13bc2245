// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package customer implements the customer account actions of the
// storefront: registration, sign in and out, settings and password changes.
// Every action talks to the platform GraphQL API and reports a Result that
// can be shown to the shopper as is.
package customer

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/ManuGH/storefront/internal/cache"
	"github.com/ManuGH/storefront/internal/graphql"
	"github.com/ManuGH/storefront/internal/i18n"
	xglog "github.com/ManuGH/storefront/internal/log"
	"github.com/ManuGH/storefront/internal/metrics"
	"github.com/ManuGH/storefront/internal/telemetry"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Action names used for metrics and spans.
const (
	ActionRegister       = "register"
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionUpdateSettings = "update_settings"
	ActionChangePassword = "change_password"
)

// DefaultAddressFieldIDs filters the address fields shown on the settings page.
var DefaultAddressFieldIDs = []int{4, 5, 6, 7}

const defaultFieldsTTL = 10 * time.Minute

// GraphQLClient is the subset of graphql.Client the service needs.
type GraphQLClient interface {
	Do(ctx context.Context, req graphql.Request, out any) error
}

// Options configures a Service.
type Options struct {
	// FieldsCache stores site form field definitions. Nil disables caching.
	FieldsCache     cache.Cache
	FieldsTTL       time.Duration
	AddressFieldIDs []int
}

// Service runs customer actions against the platform API.
type Service struct {
	client     GraphQLClient
	fields     *cache.Loader[FormFields]
	fieldsTTL  time.Duration
	addressIDs []int
	validate   *validator.Validate
}

// NewService creates a customer service.
func NewService(client GraphQLClient, opts Options) *Service {
	if opts.FieldsTTL <= 0 {
		opts.FieldsTTL = defaultFieldsTTL
	}
	if len(opts.AddressFieldIDs) == 0 {
		opts.AddressFieldIDs = DefaultAddressFieldIDs
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})

	return &Service{
		client:     client,
		fields:     cache.NewLoader[FormFields]("form_fields", opts.FieldsCache),
		fieldsTTL:  opts.FieldsTTL,
		addressIDs: append([]int(nil), opts.AddressFieldIDs...),
		validate:   v,
	}
}

// AddressFieldIDs returns the address field filter used by the settings page.
func (s *Service) AddressFieldIDs() []int {
	return append([]int(nil), s.addressIDs...)
}

func (s *Service) startAction(ctx context.Context, action string) (context.Context, trace.Span) {
	return telemetry.Tracer("storefront.customer").Start(ctx, "customer."+action)
}

// finish records the outcome of an action on its span and in metrics.
func (s *Service) finish(ctx context.Context, span trace.Span, action string, res Result) Result {
	defer span.End()
	metrics.RecordAction(action, res.Status)
	locale, _ := i18n.FromContext(ctx)
	span.SetAttributes(telemetry.ActionAttributes(action, string(locale), res.Status)...)
	if !res.OK() {
		span.SetStatus(codes.Error, res.Error)
	}
	return res
}

// apiFailure logs a failed API call and turns it into a displayable result.
func (s *Service) apiFailure(ctx context.Context, action string, err error) Result {
	logger := xglog.WithComponentFromContext(ctx, "customer")
	logger.Error().
		Err(err).
		Str(xglog.FieldEvent, "customer.action_failed").
		Str(xglog.FieldAction, action).
		Str("kind", Kind(err)).
		Msg("platform call failed")
	return Failure(failureMessage(err))
}

// validationMessage renders validator errors one per line.
func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return MsgInvalidInput
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "min":
			msgs = append(msgs, fe.Field()+" must be at least "+fe.Param()+" characters")
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email address")
		case "eqfield":
			msgs = append(msgs, "Passwords do not match")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "\n")
}
