// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ManuGH/animcover/internal/config"
	"github.com/ManuGH/animcover/internal/cover"
	"github.com/ManuGH/animcover/internal/infra/ffmpeg"
	"github.com/ManuGH/animcover/internal/library"
	"github.com/ManuGH/animcover/internal/supervisor"
)

// components is everything an extraction needs, wired from one config.
type components struct {
	store    *library.Store
	library  *library.Service
	encoder  *ffmpeg.Encoder
	sup      *supervisor.Supervisor
	provider *cover.Provider
}

func buildComponents(ctx context.Context, cfg config.AppConfig) (*components, error) {
	if err := os.MkdirAll(cfg.ScratchDir, 0o750); err != nil {
		return nil, fmt.Errorf("create scratch root: %w", err)
	}

	store, err := library.NewStore(ctx, cfg.Library.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}

	encoder := ffmpeg.NewEncoder(cfg.FFmpeg.Bin)
	svc := library.NewService(store, ffmpeg.NewProber(cfg.FFmpeg.FFprobeBin))
	sup := supervisor.New(supervisor.Options{})

	return &components{
		store:    store,
		library:  svc,
		encoder:  encoder,
		sup:      sup,
		provider: cover.NewProvider(svc, encoder, sup, cfg.ScratchDir),
	}, nil
}

// Close stops live encoders first so no run outlives the catalog.
func (c *components) Close() error {
	return errors.Join(c.sup.Close(), c.store.Close())
}
