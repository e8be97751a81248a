// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ManuGH/animcover/internal/config"
	"github.com/ManuGH/animcover/internal/persistence/sqlite"
)

func runStorageCLI(args []string) int {
	return storageCLI(context.Background(), args, os.Stdout, os.Stderr)
}

func storageCLI(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printStorageUsage(stdout)
		return 0
	}

	switch args[0] {
	case "verify":
		return runStorageVerify(ctx, args[1:], stdout, stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown subcommand: %s\n\n", args[0])
		printStorageUsage(stderr)
		return 2
	}
}

func printStorageUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  animcover storage verify [--path PATH | --config FILE] [--mode quick|full]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Flags:")
	_, _ = fmt.Fprintln(w, "  --path string    Path to the library database (defaults to the configured one)")
	_, _ = fmt.Fprintln(w, "  --config string  Config file used to locate the library database")
	_, _ = fmt.Fprintln(w, "  --mode string    Verification mode: quick (default) or full")
}

func runStorageVerify(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("animcover storage verify", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var path, mode, configPath string
	fs.StringVar(&path, "path", "", "Path to the SQLite database file")
	fs.StringVar(&configPath, "config", "", "Config file used to locate the library database")
	fs.StringVar(&mode, "mode", "quick", "Verification mode: quick or full")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode != "quick" && mode != "full" {
		_, _ = fmt.Fprintf(stderr, "Error: invalid mode %q. Use 'quick' or 'full'.\n", mode)
		return 2
	}

	if path == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: load config: %v\n", err)
			return 2
		}
		path = cfg.Library.DBPath
	}
	if _, err := os.Stat(path); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	_, _ = fmt.Fprintf(stderr, "Verifying integrity of %s (mode: %s)...\n", path, mode)

	issues, err := sqlite.VerifyIntegrity(ctx, path, mode == "full")
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Verification interrupted by system error: %v\n", err)
		return 1
	}
	if issues != nil {
		_, _ = fmt.Fprintln(stderr, "CORRUPTION DETECTED:")
		for _, issue := range issues {
			_, _ = fmt.Fprintf(stderr, "  - %s\n", issue)
		}
		return 1
	}

	_, _ = fmt.Fprintln(stdout, "Integrity verified: ok")
	return 0
}
