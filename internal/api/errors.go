// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"net/http"
)

const (
	codeBadRequest       = "bad_request"
	codeInvalidPath      = "invalid_path"
	codeInvalidImageType = "invalid_image_type"
	codeNotFound         = "not_found"
	codeNoImage          = "no_image"
	codeExtractionFailed = "extraction_failed"
	codeSetupFailed      = "setup_failed"
	codeInternal         = "internal_error"
	codeMethodNotAllowed = "method_not_allowed"
)

// errorResponse is the JSON body of every non-2xx API answer.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorResponse{Error: code, Detail: detail})
}
