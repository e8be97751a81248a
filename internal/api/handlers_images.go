// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/animcover/internal/cover"
	"github.com/ManuGH/animcover/internal/domain/media"
	"github.com/ManuGH/animcover/internal/fsutil"
	"github.com/ManuGH/animcover/internal/library"
	"github.com/ManuGH/animcover/internal/log"
)

const contentTypeWebP = "image/webp"

// handleGetImage runs an extraction bound to the request context and streams
// the result. The scratch directory is removed once the body is written.
func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	ctx = log.ContextWithItemID(ctx, id)
	logger := log.WithContext(ctx, s.logger)

	imageType, ok := media.ParseImageType(chi.URLParam(r, "type"))
	if !ok {
		writeError(w, http.StatusBadRequest, codeInvalidImageType, "unknown image type")
		return
	}

	entry, err := s.catalog.Get(ctx, id)
	if errors.Is(err, library.ErrNotFound) {
		writeError(w, http.StatusNotFound, codeNotFound, "item not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err, "get item")
		return
	}

	resp, err := s.images.GetImage(ctx, &entry.Item, imageType)
	var extractionErr *cover.ExtractionError
	var setupErr *cover.SetupError
	switch {
	case errors.As(err, &extractionErr):
		writeError(w, http.StatusBadGateway, codeExtractionFailed, extractionErr.Reason)
		return
	case errors.As(err, &setupErr):
		logger.Error().Err(err).Msg("extraction setup failed")
		writeError(w, http.StatusInternalServerError, codeSetupFailed, setupErr.Op)
		return
	case err != nil:
		s.internalError(w, r, err, "extract image")
		return
	}

	if !resp.HasImage {
		if ctx.Err() != nil {
			// Client went away; nobody is listening for a body.
			return
		}
		writeError(w, http.StatusNotFound, codeNoImage, "no animated cover for this item")
		return
	}
	defer func() {
		if err := fsutil.RemoveUnder(s.cfg.ScratchRoot, resp.ScratchDir()); err != nil {
			logger.Warn().Err(err).Str(log.FieldScratchDir, resp.ScratchDir()).Msg("scratch cleanup failed")
		}
	}()

	f, err := os.Open(resp.Path)
	if err != nil {
		s.internalError(w, r, err, "open image")
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		s.internalError(w, r, err, "stat image")
		return
	}

	w.Header().Set("Content-Type", contentTypeWebP)
	w.Header().Set("Cache-Control", "no-store")
	http.ServeContent(w, r, "", info.ModTime(), f)
}
