// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ManuGH/animcover/internal/api"
	"github.com/ManuGH/animcover/internal/config"
	"github.com/ManuGH/animcover/internal/fsutil"
	"github.com/ManuGH/animcover/internal/health"
	xglog "github.com/ManuGH/animcover/internal/log"
	"github.com/ManuGH/animcover/internal/persistence/sqlite"
	"github.com/ManuGH/animcover/internal/telemetry"
	"github.com/ManuGH/animcover/internal/version"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// runServe runs the HTTP daemon until ctx ends. HTTP shuts down gracefully
// first; encoder teardown follows.
func runServe(ctx context.Context, cfg config.AppConfig, build version.Info) error {
	logger := xglog.WithComponent("daemon")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: build.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	if err := verifyLibrary(ctx, cfg.Library.DBPath); err != nil {
		return err
	}
	sweepScratch(cfg.ScratchDir)

	comps, err := buildComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := comps.Close(); err != nil {
			logger.Error().Err(err).Msg("component teardown failed")
		}
	}()

	if err := comps.encoder.Warmup(); err != nil {
		// Tone mapping stays off until the next restart; extraction still works.
		logger.Warn().Err(err).Str("bin", comps.encoder.EncoderPath()).Msg("encoder filter probe failed")
	}

	hm := health.NewManager(build.Version)
	hm.RegisterChecker(health.NewFuncChecker("library", comps.store.Ping))
	hm.RegisterChecker(health.NewDirChecker("scratch", cfg.ScratchDir))
	hm.RegisterChecker(health.NewOptionalChecker("encoder", func(context.Context) error {
		return comps.encoder.Warmup()
	}))

	tracingService := ""
	if cfg.Telemetry.Enabled {
		tracingService = cfg.LogService
	}
	server := api.New(api.Config{
		ServiceName: tracingService,
		Health:      hm,
		ScratchRoot: cfg.ScratchDir,
		RateLimit: api.RateLimit{
			Enabled:  cfg.API.RateLimit.Enabled,
			Requests: cfg.API.RateLimit.Requests,
			Window:   cfg.API.RateLimit.Window,
		},
	}, comps.library, comps.provider)

	httpSrv := &http.Server{
		Addr:              cfg.API.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("event", "http.listen").Str("addr", httpSrv.Addr).Msg("API listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Str("event", "shutdown").Msg("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP shutdown incomplete")
	}
	return nil
}

// verifyLibrary refuses to start on a corrupt catalog. A missing file is fine;
// the store creates it.
func verifyLibrary(ctx context.Context, dbPath string) error {
	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	issues, err := sqlite.VerifyIntegrity(ctx, dbPath, false)
	if err != nil {
		return fmt.Errorf("verify library %s: %w", dbPath, err)
	}
	if len(issues) > 0 {
		return fmt.Errorf("library %s failed integrity check: %v", dbPath, issues)
	}
	return nil
}

// sweepScratch removes per-extraction directories left behind by a crash.
func sweepScratch(root string) {
	logger := xglog.WithComponent("daemon")
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(root, e.Name())
		if err := fsutil.RemoveUnder(root, path); err != nil {
			logger.Warn().Err(err).Str(xglog.FieldScratchDir, path).Msg("stale scratch cleanup failed")
			continue
		}
		logger.Debug().Str(xglog.FieldScratchDir, path).Msg("removed stale scratch dir")
	}
}
