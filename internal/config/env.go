// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/storefront/internal/log"
	"github.com/rs/zerolog"
)

// LookupFunc resolves an environment key. os.LookupEnv is the default source.
type LookupFunc func(key string) (string, bool)

var sensitiveMarkers = []string{"token", "password", "secret"}

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	for _, m := range sensitiveMarkers {
		if strings.Contains(k, m) {
			return true
		}
	}
	return false
}

// envValue resolves key through lookup and parse. Unset or blank values keep
// def; values that fail to parse keep def and log a warning.
func envValue[T any](lookup LookupFunc, logger zerolog.Logger, key string, def T, parse func(string) (T, error)) T {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return def
	}
	v, err := parse(strings.TrimSpace(raw))
	if err != nil {
		ev := logger.Warn().Str("key", key)
		if isSensitive(key) {
			ev = ev.Bool("sensitive", true)
		} else {
			ev = ev.Str("value", raw).Err(err)
		}
		ev.Msgf("ignoring invalid environment value, keeping %v", def)
		return def
	}
	return v
}

func configLogger() zerolog.Logger { return log.WithComponent("config") }

// ParseString returns the value of key, or defaultValue when unset or empty.
func ParseString(key, defaultValue string) string {
	return parseString(os.LookupEnv, configLogger(), key, defaultValue)
}

func parseString(lookup LookupFunc, logger zerolog.Logger, key, defaultValue string) string {
	raw, ok := lookup(key)
	if !ok || raw == "" {
		return defaultValue
	}
	ev := logger.Debug().Str("key", key)
	if isSensitive(key) {
		ev = ev.Bool("sensitive", true)
	} else {
		ev = ev.Str("value", raw)
	}
	ev.Msg("setting taken from environment")
	return raw
}

func ParseInt(key string, defaultValue int) int {
	return parseInt(os.LookupEnv, configLogger(), key, defaultValue)
}

func parseInt(lookup LookupFunc, logger zerolog.Logger, key string, defaultValue int) int {
	return envValue(lookup, logger, key, defaultValue, strconv.Atoi)
}

func ParseFloat(key string, defaultValue float64) float64 {
	return parseFloat(os.LookupEnv, configLogger(), key, defaultValue)
}

func parseFloat(lookup LookupFunc, logger zerolog.Logger, key string, defaultValue float64) float64 {
	return envValue(lookup, logger, key, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ParseDuration accepts Go duration strings such as "5s" or "1h30m".
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseDuration(os.LookupEnv, configLogger(), key, defaultValue)
}

func parseDuration(lookup LookupFunc, logger zerolog.Logger, key string, defaultValue time.Duration) time.Duration {
	return envValue(lookup, logger, key, defaultValue, time.ParseDuration)
}

// ParseBool accepts true/false, 1/0 and yes/no in any case.
func ParseBool(key string, defaultValue bool) bool {
	return parseBool(os.LookupEnv, configLogger(), key, defaultValue)
}

var errNotBool = errors.New("not a boolean")

func parseBool(lookup LookupFunc, logger zerolog.Logger, key string, defaultValue bool) bool {
	return envValue(lookup, logger, key, defaultValue, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return false, errNotBool
	})
}

// ParseList splits a comma separated value. Blank entries are dropped.
func ParseList(key string, defaultValue []string) []string {
	return parseList(os.LookupEnv, key, defaultValue)
}

func parseList(lookup LookupFunc, key string, defaultValue []string) []string {
	return envValue(lookup, zerolog.Nop(), key, defaultValue, func(s string) ([]string, error) {
		return splitList(s), nil
	})
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseIntList reads comma separated integers. One bad entry discards the
// whole value.
func parseIntList(lookup LookupFunc, logger zerolog.Logger, key string, defaultValue []int) []int {
	return envValue(lookup, logger, key, defaultValue, func(s string) ([]int, error) {
		items := splitList(s)
		out := make([]int, 0, len(items))
		for _, item := range items {
			n, err := strconv.Atoi(item)
			if err != nil {
				return nil, fmt.Errorf("entry %q: %w", item, err)
			}
			out = append(out, n)
		}
		return out, nil
	})
}
