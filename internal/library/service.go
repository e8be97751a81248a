// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package library

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ManuGH/animcover/internal/domain/media"
	"github.com/ManuGH/animcover/internal/infra/ffmpeg"
	"github.com/ManuGH/animcover/internal/log"
	"github.com/ManuGH/animcover/internal/metrics"
)

// Prober inspects a local video file.
type Prober interface {
	Probe(ctx context.Context, path string) (*ffmpeg.ProbeResult, error)
}

// Service registers items and serves catalog lookups.
type Service struct {
	store  *Store
	prober Prober
	sfg    singleflight.Group
	logger zerolog.Logger
}

// NewService creates a library service. It panics on missing dependencies.
func NewService(store *Store, prober Prober) *Service {
	if store == nil || prober == nil {
		panic("library: NewService requires store and prober")
	}
	return &Service{
		store:  store,
		prober: prober,
		logger: log.WithComponent("library"),
	}
}

// Entry is an item together with its streams.
type Entry struct {
	Item    media.Item          `json:"item"`
	Streams []media.MediaStream `json:"streams"`
}

// Register classifies path, probes it when it is a plain video file and
// stores the result. Concurrent registrations of one path share a single probe.
func (s *Service) Register(ctx context.Context, path string) (*Entry, error) {
	path = normalizePath(path)
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	v, err, shared := s.sfg.Do(path, func() (any, error) {
		return s.register(ctx, path)
	})
	if err != nil {
		result := "error"
		if errors.Is(err, ErrInvalidPath) {
			result = "invalid"
		}
		metrics.LibraryRegisterTotal.WithLabelValues(result).Inc()
		return nil, err
	}
	metrics.LibraryRegisterTotal.WithLabelValues("ok").Inc()

	entry := v.(*Entry)
	if shared {
		// Callers must not share the streams slice.
		cp := *entry
		cp.Streams = append([]media.MediaStream(nil), entry.Streams...)
		return &cp, nil
	}
	return entry, nil
}

func (s *Service) register(ctx context.Context, path string) (*Entry, error) {
	k, err := classify(path)
	if err != nil {
		return nil, err
	}
	item := baseItem(path, k)
	logger := s.logger.With().Str(log.FieldItemID, item.ID).Str(log.FieldPath, path).Logger()

	streams := []media.MediaStream{}
	if k == kindVideoFile {
		res, err := s.prober.Probe(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", path, err)
		}
		streams = applyProbe(&item, res)
	}

	if err := s.store.UpsertItem(ctx, item, streams); err != nil {
		return nil, err
	}
	logger.Info().
		Str("video_type", string(item.VideoType)).
		Str(log.FieldContainer, item.Container).
		Int("streams", len(streams)).
		Msg("item registered")
	return &Entry{Item: item, Streams: streams}, nil
}

// applyProbe copies probe results onto item and returns its streams.
func applyProbe(item *media.Item, res *ffmpeg.ProbeResult) []media.MediaStream {
	if res.Container != "" {
		item.Container = res.Container
	}
	item.RunTime = res.Duration
	item.Video3DFormat = res.Video3DFormat

	streams := make([]media.MediaStream, 0, len(res.Streams))
	for _, ps := range res.Streams {
		streams = append(streams, media.MediaStream{
			ItemID:        item.ID,
			Index:         ps.Index,
			Type:          ps.Type,
			Codec:         ps.Codec,
			Width:         ps.Width,
			Height:        ps.Height,
			IsInterlaced:  ps.Interlaced,
			ColorTransfer: ps.ColorTransfer,
		})
		if ps.Type == media.StreamTypeVideo && item.DefaultVideoStreamIndex == nil {
			item.DefaultVideoStreamIndex = media.IntPtr(ps.Index)
		}
	}
	return streams
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Get returns an item with its streams.
func (s *Service) Get(ctx context.Context, id string) (*Entry, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	streams, err := s.store.GetMediaStreams(ctx, media.StreamQuery{ItemID: id})
	if err != nil {
		return nil, err
	}
	return &Entry{Item: *item, Streams: streams}, nil
}

// List returns all catalogued items.
func (s *Service) List(ctx context.Context) ([]media.Item, error) {
	return s.store.ListItems(ctx)
}

// Delete removes an item from the catalog.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteItem(ctx, id)
}

// GetMediaStreams satisfies the cover stream source.
func (s *Service) GetMediaStreams(ctx context.Context, q media.StreamQuery) ([]media.MediaStream, error) {
	return s.store.GetMediaStreams(ctx, q)
}
