// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Validate checks the effective configuration. All problems are reported at once.
func Validate(cfg AppConfig) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(cfg.ScratchDir) == "" {
		fail("scratchDir must not be empty")
	}
	if strings.TrimSpace(cfg.Library.DBPath) == "" {
		fail("library.dbPath must not be empty")
	}
	if strings.TrimSpace(cfg.FFmpeg.Bin) == "" {
		fail("ffmpeg.bin must not be empty")
	}
	if strings.TrimSpace(cfg.API.ListenAddr) == "" {
		fail("api.listenAddr must not be empty")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil {
		fail("logLevel %q is not a valid level", cfg.LogLevel)
	}

	if rl := cfg.API.RateLimit; rl.Enabled {
		if rl.Requests <= 0 {
			fail("api.rateLimit.requests must be positive, got %d", rl.Requests)
		}
		if rl.Window <= 0 {
			fail("api.rateLimit.window must be positive, got %s", rl.Window)
		}
	}

	if t := cfg.Telemetry; t.Enabled {
		if t.Exporter != "grpc" && t.Exporter != "http" {
			fail("telemetry.exporter must be grpc or http, got %q", t.Exporter)
		}
		if strings.TrimSpace(t.Endpoint) == "" {
			fail("telemetry.endpoint must not be empty when telemetry is enabled")
		}
	}
	if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
		fail("telemetry.samplingRate must be within [0,1], got %v", cfg.Telemetry.SamplingRate)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
