// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/animcover/internal/library"
	"github.com/ManuGH/animcover/internal/log"
)

// maxRegisterBody caps the POST body; a path never needs more.
const maxRegisterBody = 64 << 10

type registerRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleRegisterItem(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRegisterBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, codeInvalidPath, "path is required")
		return
	}

	entry, err := s.catalog.Register(r.Context(), req.Path)
	if errors.Is(err, library.ErrInvalidPath) {
		writeError(w, http.StatusBadRequest, codeInvalidPath, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, r, err, "register item")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.List(r.Context())
	if err != nil {
		s.internalError(w, r, err, "list items")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	entry, err := s.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, library.ErrNotFound) {
		writeError(w, http.StatusNotFound, codeNotFound, "item not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err, "get item")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	err := s.catalog.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, library.ErrNotFound) {
		writeError(w, http.StatusNotFound, codeNotFound, "item not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err, "delete item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error, op string) {
	logger := log.WithContext(r.Context(), s.logger)
	logger.Error().Err(err).Str("op", op).Msg("request failed")
	writeError(w, http.StatusInternalServerError, codeInternal, op+" failed")
}
