// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads the service configuration.
// Precedence: environment > YAML file > defaults.
package config

import (
	"path/filepath"
	"time"
)

// AppConfig is the effective service configuration.
type AppConfig struct {
	DataDir    string `yaml:"dataDir"`
	ScratchDir string `yaml:"scratchDir"`
	LogLevel   string `yaml:"logLevel"`
	LogService string `yaml:"logService"`

	FFmpeg    FFmpegConfig    `yaml:"ffmpeg"`
	API       APIConfig       `yaml:"api"`
	Library   LibraryConfig   `yaml:"library"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// FFmpegConfig locates the encoder and prober binaries.
type FFmpegConfig struct {
	Bin        string `yaml:"bin"`
	FFprobeBin string `yaml:"ffprobeBin"`
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	ListenAddr string          `yaml:"listenAddr"`
	RateLimit  RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig limits image extraction requests per client IP.
type RateLimitConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// LibraryConfig configures the item catalog.
type LibraryConfig struct {
	DBPath string `yaml:"dbPath"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		DataDir:    "data",
		LogLevel:   "info",
		LogService: "animcover",
		FFmpeg: FFmpegConfig{
			Bin: "ffmpeg",
		},
		API: APIConfig{
			ListenAddr: ":8088",
			RateLimit: RateLimitConfig{
				Enabled:  true,
				Requests: 30,
				Window:   time.Minute,
			},
		},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "production",
		},
	}
}

// applyDerived fills paths that default relative to DataDir.
func (c *AppConfig) applyDerived() {
	if c.ScratchDir == "" && c.DataDir != "" {
		c.ScratchDir = filepath.Join(c.DataDir, "scratch")
	}
	if c.Library.DBPath == "" && c.DataDir != "" {
		c.Library.DBPath = filepath.Join(c.DataDir, "library.db")
	}
	if c.FFmpeg.FFprobeBin == "" {
		c.FFmpeg.FFprobeBin = ResolveFFprobeBin("", c.FFmpeg.Bin)
	}
}
