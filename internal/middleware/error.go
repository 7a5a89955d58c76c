// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/relayhq/relay-go/internal/apperr"
)

// APIError represents a JSON error response for the API.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	apiErr.Error.Details = details

	_ = json.NewEncoder(w).Encode(apiErr)
}

// WriteError maps an error through the application error taxonomy and writes
// the JSON error response. Internal causes are logged, never exposed.
func WriteError(w http.ResponseWriter, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		slog.Error("request failed", "error", err)
	}
	WriteAPIError(w, apperr.HTTPStatus(err), apperr.Code(err), apperr.Message(err), apperr.Details(err))
}
