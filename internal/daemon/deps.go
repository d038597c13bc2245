// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

var (
	ErrMissingLogger     = errors.New("daemon: logger is required")
	ErrMissingHandler    = errors.New("daemon: storefront handler is required")
	ErrMissingManager    = errors.New("daemon: manager is required")
	ErrManagerNotStarted = errors.New("daemon: manager not started")
)

// Deps is what a Manager serves. The metrics listener only starts when both
// MetricsAddr and MetricsHandler are set.
type Deps struct {
	Logger  zerolog.Logger
	Handler http.Handler

	MetricsHandler http.Handler
	MetricsAddr    string
}

// Validate reports the first missing dependency.
func (d *Deps) Validate() error {
	switch {
	case d.Logger.GetLevel() == zerolog.Disabled:
		return ErrMissingLogger
	case d.Handler == nil:
		return ErrMissingHandler
	}
	return nil
}
