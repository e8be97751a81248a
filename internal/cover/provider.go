// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package cover extracts animated cover previews from library videos.
package cover

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/animcover/internal/cover/plan"
	"github.com/ManuGH/animcover/internal/domain/media"
	"github.com/ManuGH/animcover/internal/fsutil"
	"github.com/ManuGH/animcover/internal/log"
	"github.com/ManuGH/animcover/internal/metrics"
	"github.com/ManuGH/animcover/internal/supervisor"
	"github.com/ManuGH/animcover/internal/telemetry"
)

const (
	ProviderName  = "Animated Cover"
	ProviderOrder = 80
	// FormatWebP is the format tag of every produced image.
	FormatWebP = "webp"

	scratchDirPerm = 0o750
)

// Outcome labels for metrics and spans.
const (
	resultSuccess       = "success"
	resultFailure       = "failure"
	resultCancelled     = "cancelled"
	resultNotApplicable = "not_applicable"
	resultSetupFailed   = "setup_failed"
)

// StreamSource looks up an item's elementary streams.
type StreamSource interface {
	GetMediaStreams(ctx context.Context, q media.StreamQuery) ([]media.MediaStream, error)
}

// Encoder is the encoder binary plus the capabilities plans depend on.
type Encoder interface {
	plan.Encoder
	EncoderPath() string
}

// Runner executes an encoder command under supervision.
type Runner interface {
	Run(ctx context.Context, cmd supervisor.Command) (supervisor.Result, error)
}

// ImageProvider is the capability a host uses to obtain dynamic item images.
type ImageProvider interface {
	Name() string
	Order() int
	SupportedImages(item *media.Item) []media.ImageType
	Supports(item *media.Item) bool
	GetImage(ctx context.Context, item *media.Item, imageType media.ImageType) (Response, error)
}

// Response is the result of GetImage. HasImage is false when no image exists.
type Response struct {
	HasImage bool
	Path     string
	Format   string
	Protocol media.Protocol
}

// ScratchDir returns the directory holding the image. The caller owns it.
func (r Response) ScratchDir() string {
	if !r.HasImage {
		return ""
	}
	return filepath.Dir(r.Path)
}

// Provider renders animated covers by sampling ten short segments of a video.
type Provider struct {
	streams     StreamSource
	encoder     Encoder
	runner      Runner
	scratchRoot string
	logger      zerolog.Logger
	tracer      trace.Tracer
}

var _ ImageProvider = (*Provider)(nil)

// NewProvider wires the collaborators. It panics on missing dependencies.
func NewProvider(streams StreamSource, encoder Encoder, runner Runner, scratchRoot string) *Provider {
	if streams == nil || encoder == nil || runner == nil {
		panic("cover: NewProvider requires streams, encoder and runner")
	}
	if scratchRoot == "" {
		panic("cover: NewProvider requires a scratch root")
	}
	return &Provider{
		streams:     streams,
		encoder:     encoder,
		runner:      runner,
		scratchRoot: scratchRoot,
		logger:      log.WithComponent("cover"),
		tracer:      telemetry.Tracer("animcover/cover"),
	}
}

func (p *Provider) Name() string { return ProviderName }

func (p *Provider) Order() int { return ProviderOrder }

// SupportedImages lists the image slots an animated cover can fill.
func (p *Provider) SupportedImages(*media.Item) []media.ImageType {
	return []media.ImageType{media.ImageTypePrimary, media.ImageTypeThumb}
}

// Supports reports whether item is a complete, local, real video.
func (p *Provider) Supports(item *media.Item) bool {
	if item == nil {
		return false
	}
	return !item.IsShortcut &&
		item.IsFileProtocol() &&
		!item.IsPlaceholder &&
		item.IsCompleteMedia
}

// GetImage renders the animated cover for item.
//
// It returns a Response without image (and nil error) when the item cannot
// carry an animated cover or the caller cancelled ctx. A *SetupError means the
// extraction could not be attempted; an *ExtractionError means the encoder ran
// without producing a usable image. On success the caller owns ScratchDir.
func (p *Provider) GetImage(ctx context.Context, item *media.Item, imageType media.ImageType) (Response, error) {
	if item == nil {
		return Response{}, nil
	}
	ctx = log.ContextWithItemID(ctx, item.ID)
	logger := log.WithContext(ctx, p.logger)

	ctx, span := p.tracer.Start(ctx, "cover.GetImage")
	defer span.End()

	if reason := notApplicable(item, imageType); reason != "" {
		logger.Debug().Str("reason", reason).Msg("animated cover not applicable")
		return p.noImage(span, resultNotApplicable), nil
	}

	stream, ok, err := p.resolveVideoStream(ctx, item)
	if err != nil {
		return p.setupFailed(span, logger, &SetupError{Op: "resolve video stream", Err: err})
	}
	if !ok {
		logger.Debug().Msg("no video stream found")
		return p.noImage(span, resultNotApplicable), nil
	}

	req := plan.Request{
		InputPath:           item.Path,
		Container:           item.Container,
		Stream:              stream,
		TotalDurationMillis: media.TotalMilliseconds(item.RunTime),
	}
	pl := plan.Build(req, p.encoder, plan.NewOutputPath(p.scratchRoot))
	span.SetAttributes(telemetry.ExtractionAttributes(item.ID, string(imageType), pl.SegmentCount, pl.Filters)...)
	span.SetAttributes(telemetry.MediaAttributes(item.Container, stream.Index, req.TotalDurationMillis)...)

	scratchDir := filepath.Dir(pl.OutputPath)
	if err := os.MkdirAll(scratchDir, scratchDirPerm); err != nil {
		return p.setupFailed(span, logger, &SetupError{Op: "create scratch dir", Err: err})
	}

	logger.Info().
		Str(log.FieldInputPath, item.Path).
		Str(log.FieldImageType, string(imageType)).
		Str(log.FieldScratchDir, scratchDir).
		Strs("filters", pl.Filters).
		Msg("extracting animated cover")

	start := time.Now()
	res, runErr := p.runner.Run(ctx, supervisor.Command{Path: p.encoder.EncoderPath(), Args: pl.Args})

	img, err := Validate(res, pl)
	if runErr != nil && !errors.Is(err, ErrCancelled) {
		err = &ExtractionError{InputPath: item.Path, ExitCode: res.ExitCode, Reason: runFailureReason(runErr), Err: runErr}
	}
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, ErrCancelled):
		p.removeScratch(logger, scratchDir)
		metrics.ObserveExtract(resultCancelled, elapsed.Seconds())
		logger.Info().Int64(log.FieldDuration, elapsed.Milliseconds()).Msg("animated cover extraction cancelled")
		return p.noImage(span, resultCancelled), nil

	case err != nil:
		p.removeScratch(logger, scratchDir)
		metrics.IncExtract(resultFailure)
		metrics.ObserveExtract(resultFailure, elapsed.Seconds())
		span.SetAttributes(telemetry.ResultAttributes(resultFailure, res.ExitCode)...)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn().Err(err).
			Int(log.FieldExitCode, res.ExitCode).
			Int64(log.FieldDuration, elapsed.Milliseconds()).
			Msg("animated cover extraction failed")
		return Response{}, err
	}

	metrics.IncExtract(resultSuccess)
	metrics.ObserveExtract(resultSuccess, elapsed.Seconds())
	span.SetAttributes(telemetry.ResultAttributes(resultSuccess, res.ExitCode)...)
	logger.Info().
		Str(log.FieldOutputPath, img.Path).
		Int64("size", img.Size).
		Int64(log.FieldDuration, elapsed.Milliseconds()).
		Msg("animated cover extracted")

	return Response{
		HasImage: true,
		Path:     img.Path,
		Format:   FormatWebP,
		Protocol: media.ProtocolFile,
	}, nil
}

// notApplicable returns a non-empty reason when item cannot carry an animated cover.
func notApplicable(item *media.Item, imageType media.ImageType) string {
	switch {
	case imageType != media.ImageTypePrimary && imageType != media.ImageTypeThumb:
		return "unsupported image type"
	case item.IsShortcut:
		return "shortcut"
	case !item.IsFileProtocol():
		return "not a local file"
	case item.IsPlaceholder:
		return "placeholder"
	case item.VideoType == media.VideoTypeDvd:
		return "dvd"
	case item.VideoType == media.VideoTypeBluRay:
		return "bluray"
	case item.VideoType == media.VideoTypeIso:
		return "iso"
	case item.Is3D():
		return "3d"
	case item.DefaultVideoStreamIndex == nil:
		return "no default video stream"
	}
	return ""
}

func runFailureReason(err error) string {
	switch {
	case errors.Is(err, supervisor.ErrKillFailed):
		return ReasonTeardown
	case errors.Is(err, supervisor.ErrStart):
		return ReasonStart
	default:
		return ReasonNotCompleted
	}
}

// resolveVideoStream looks up the default video stream by index and falls back
// to the first video stream when the index does not name a video stream.
func (p *Provider) resolveVideoStream(ctx context.Context, item *media.Item) (media.MediaStream, bool, error) {
	streams, err := p.streams.GetMediaStreams(ctx, media.StreamQuery{
		ItemID: item.ID,
		Index:  item.DefaultVideoStreamIndex,
		Type:   media.StreamTypeVideo,
	})
	if err != nil {
		return media.MediaStream{}, false, fmt.Errorf("by index: %w", err)
	}
	if len(streams) > 0 {
		return streams[0], true, nil
	}

	streams, err = p.streams.GetMediaStreams(ctx, media.StreamQuery{
		ItemID: item.ID,
		Type:   media.StreamTypeVideo,
	})
	if err != nil {
		return media.MediaStream{}, false, fmt.Errorf("by type: %w", err)
	}
	if len(streams) > 0 {
		return streams[0], true, nil
	}
	return media.MediaStream{}, false, nil
}

func (p *Provider) noImage(span trace.Span, result string) Response {
	metrics.IncExtract(result)
	span.SetAttributes(telemetry.ResultAttributes(result, supervisor.ExitUnknown)...)
	return Response{}
}

func (p *Provider) setupFailed(span trace.Span, logger zerolog.Logger, err *SetupError) (Response, error) {
	metrics.IncExtract(resultSetupFailed)
	span.SetAttributes(telemetry.ErrorAttributes(resultSetupFailed)...)
	span.SetStatus(codes.Error, err.Error())
	logger.Error().Err(err).Str("op", err.Op).Msg("animated cover setup failed")
	return Response{}, err
}

func (p *Provider) removeScratch(logger zerolog.Logger, dir string) {
	if err := fsutil.RemoveUnder(p.scratchRoot, dir); err != nil {
		logger.Warn().Err(err).Str(log.FieldScratchDir, dir).Msg("failed to remove scratch dir")
	}
}
