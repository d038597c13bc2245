// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads, validates and hot-reloads storefront settings.
//
// Sources are layered: built-in defaults, then the YAML file (decoded
// strictly, unknown keys fail), then an optional dotenv file, then the
// process environment. Every key has a STOREFRONT_* variable, for example
// STOREFRONT_API_ENDPOINT or STOREFRONT_SESSION_BACKEND.
//
// A Holder keeps the active AppConfig and swaps it atomically when the
// watched file changes. Only the log level is applied live; other changes
// are logged and wait for a restart.
package config
