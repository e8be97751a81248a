// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load builds the effective configuration from defaults, the optional YAML
// file at path and ANIMCOVER_* environment variables, then validates it.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()

	if path != "" {
		if err := mergeFile(&cfg, path); err != nil {
			return AppConfig{}, fmt.Errorf("load config file: %w", err)
		}
	}
	mergeEnv(&cfg)
	cfg.applyDerived()

	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func mergeFile(cfg *AppConfig, path string) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	return decodeStrict(data, cfg)
}

// decodeStrict decodes a single YAML document onto cfg, rejecting unknown keys.
// Keys absent from the document keep their current values.
func decodeStrict(data []byte, cfg *AppConfig) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("%w: %w", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func mergeEnv(cfg *AppConfig) {
	cfg.DataDir = ParseString("ANIMCOVER_DATA_DIR", cfg.DataDir)
	cfg.ScratchDir = ParseString("ANIMCOVER_SCRATCH_DIR", cfg.ScratchDir)
	cfg.LogLevel = ParseString("ANIMCOVER_LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = ParseString("ANIMCOVER_LOG_SERVICE", cfg.LogService)

	cfg.FFmpeg.Bin = ParseString("ANIMCOVER_FFMPEG_BIN", cfg.FFmpeg.Bin)
	cfg.FFmpeg.FFprobeBin = ParseString("ANIMCOVER_FFPROBE_BIN", cfg.FFmpeg.FFprobeBin)

	cfg.API.ListenAddr = ParseString("ANIMCOVER_LISTEN", cfg.API.ListenAddr)
	cfg.API.RateLimit.Enabled = ParseBool("ANIMCOVER_RATELIMIT_ENABLED", cfg.API.RateLimit.Enabled)
	cfg.API.RateLimit.Requests = ParseInt("ANIMCOVER_RATELIMIT_REQUESTS", cfg.API.RateLimit.Requests)
	cfg.API.RateLimit.Window = ParseDuration("ANIMCOVER_RATELIMIT_WINDOW", cfg.API.RateLimit.Window)

	cfg.Library.DBPath = ParseString("ANIMCOVER_LIBRARY_DB", cfg.Library.DBPath)

	cfg.Telemetry.Enabled = ParseBool("ANIMCOVER_TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = ParseString("ANIMCOVER_TELEMETRY_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = ParseString("ANIMCOVER_TELEMETRY_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = ParseFloat("ANIMCOVER_TELEMETRY_SAMPLING", cfg.Telemetry.SamplingRate)
	cfg.Telemetry.Environment = ParseString("ANIMCOVER_TELEMETRY_ENVIRONMENT", cfg.Telemetry.Environment)
}
