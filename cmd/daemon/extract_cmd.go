// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/animcover/internal/config"
	"github.com/ManuGH/animcover/internal/domain/media"
	"github.com/ManuGH/animcover/internal/fsutil"
	xglog "github.com/ManuGH/animcover/internal/log"
	"github.com/ManuGH/animcover/internal/version"
)

// Exit codes of the extract subcommand.
const (
	exitOK        = 0
	exitFailed    = 1
	exitUsage     = 2
	exitNoImage   = 3
	exitCancelled = 130
)

type extractOptions struct {
	configPath string
	in         string
	out        string
	imageType  media.ImageType
}

func parseExtractArgs(args []string, stderr io.Writer) (extractOptions, error) {
	fs := flag.NewFlagSet("animcover extract", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts extractOptions
	var imageType string
	fs.StringVar(&opts.configPath, "config", "", "path to config file (YAML)")
	fs.StringVar(&opts.in, "in", "", "video file to sample")
	fs.StringVar(&opts.out, "out", "", "destination of the animated WebP")
	fs.StringVar(&imageType, "type", string(media.ImageTypePrimary), "image type: primary or thumb")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.in == "" || opts.out == "" {
		return opts, errors.New("-in and -out are required")
	}
	t, ok := media.ParseImageType(imageType)
	if !ok {
		return opts, fmt.Errorf("invalid image type %q", imageType)
	}
	opts.imageType = t
	return opts, nil
}

func runExtractCLI(args []string) int {
	opts, err := parseExtractArgs(args, os.Stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return exitUsage
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		return exitFailed
	}
	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Output:  os.Stderr,
		Service: cfg.LogService,
		Version: version.Get().Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return extract(ctx, cfg, opts, os.Stdout, os.Stderr)
}

func extract(ctx context.Context, cfg config.AppConfig, opts extractOptions, stdout, stderr io.Writer) int {
	logger := xglog.WithComponent("extract")

	comps, err := buildComponents(ctx, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailed
	}
	defer func() {
		if err := comps.Close(); err != nil {
			logger.Warn().Err(err).Msg("teardown failed")
		}
	}()

	entry, err := comps.library.Register(ctx, opts.in)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: register %s: %v\n", opts.in, err)
		return exitFailed
	}

	resp, err := comps.provider.GetImage(ctx, &entry.Item, opts.imageType)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailed
	}
	if !resp.HasImage {
		if ctx.Err() != nil {
			_, _ = fmt.Fprintln(stderr, "cancelled")
			return exitCancelled
		}
		_, _ = fmt.Fprintf(stderr, "no animated cover for %s\n", opts.in)
		return exitNoImage
	}
	defer func() {
		if err := fsutil.RemoveUnder(cfg.ScratchDir, resp.ScratchDir()); err != nil {
			logger.Warn().Err(err).Str(xglog.FieldScratchDir, resp.ScratchDir()).Msg("scratch cleanup failed")
		}
	}()

	if err := publish(resp.Path, opts.out); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailed
	}
	_, _ = fmt.Fprintln(stdout, opts.out)
	return exitOK
}
