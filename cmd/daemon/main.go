// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/animcover/internal/config"
	xglog "github.com/ManuGH/animcover/internal/log"
	"github.com/ManuGH/animcover/internal/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "extract":
			os.Exit(runExtractCLI(os.Args[2:]))
		case "storage":
			os.Exit(runStorageCLI(os.Args[2:]))
		}
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	build := version.Get()
	if *showVersion {
		fmt.Println(build.String())
		os.Exit(0)
	}

	// Safe defaults until config is loaded
	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: "animcover",
		Version: build.Version,
	})
	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", *configPath).
			Msg("failed to load configuration")
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: build.Version,
	})
	logger = xglog.WithComponent("daemon")

	source := "env+defaults"
	if *configPath != "" {
		source = "file"
	}
	logger.Info().
		Str("event", "config.loaded").
		Str("source", source).
		Str("path", *configPath).
		Msg("configuration loaded")

	logger.Info().
		Str("event", "startup").
		Str("version", build.Version).
		Str("commit", build.Commit).
		Str("build_date", build.Date).
		Str("addr", cfg.API.ListenAddr).
		Msg("starting animcover")

	if err := runServe(ctx, cfg, build); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "daemon.failed").
			Msg("daemon failed")
	}

	logger.Info().Msg("server exiting")
}
