// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/animcover/internal/log"
)

// ParseString reads a string from the environment or returns defaultValue.
// An empty variable counts as unset.
func ParseString(key, defaultValue string) string {
	return parseEnv(key, defaultValue, func(v string) (string, bool) { return v, true }, (*zerolog.Event).Str)
}

// ParseInt reads an integer from the environment, falling back on parse errors.
func ParseInt(key string, defaultValue int) int {
	return parseEnv(key, defaultValue, func(v string) (int, bool) {
		i, err := strconv.Atoi(v)
		return i, err == nil
	}, (*zerolog.Event).Int)
}

// ParseDuration reads a Go duration (e.g. "5s") from the environment.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(key, defaultValue, func(v string) (time.Duration, bool) {
		d, err := time.ParseDuration(v)
		return d, err == nil
	}, (*zerolog.Event).Dur)
}

// ParseBool accepts true/false, 1/0 and yes/no, case-insensitively.
func ParseBool(key string, defaultValue bool) bool {
	return parseEnv(key, defaultValue, func(v string) (bool, bool) {
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
		return false, false
	}, (*zerolog.Event).Bool)
}

// ParseFloat reads a float64 from the environment.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseEnv(key, defaultValue, func(v string) (float64, bool) {
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}, (*zerolog.Event).Float64)
}

// parseEnv resolves key and logs where the value came from.
func parseEnv[T any](key string, defaultValue T, parse func(string) (T, bool), field func(*zerolog.Event, string, T) *zerolog.Event) T {
	logger := log.WithComponent("config")

	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		field(logger.Debug().Str("key", key).Str("source", "default"), "default", defaultValue).
			Msg("using default value")
		return defaultValue
	}

	parsed, ok := parse(v)
	if !ok {
		field(logger.Warn().Str("key", key).Str("value", v), "default", defaultValue).
			Msg("invalid value in environment variable, using default")
		return defaultValue
	}
	field(logger.Debug().Str("key", key).Str("source", "environment"), "value", parsed).
		Msg("using environment variable")
	return parsed
}
