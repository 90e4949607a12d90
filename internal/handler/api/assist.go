// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"plume/internal/ai"
)

// AssistRequest is the body of the writing-assistant endpoint.
type AssistRequest struct {
	Action string `json:"action" validate:"required"`
	Body   string `json:"body" validate:"required"`
}

// AssistResponse carries the assistant's suggestion.
type AssistResponse struct {
	Action string `json:"action"`
	Result string `json:"result"`
}

// AdminAssist handles POST /api/admin/assist. Returns 404 when no API key
// is configured, so the feature is invisible rather than broken.
func (h *Handler) AdminAssist(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil {
		WriteNotFound(w, "Writing assistant is not configured")
		return
	}

	var req AssistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		WriteValidationError(w, validationDetails(err))
		return
	}
	if !ai.IsValidAction(req.Action) {
		WriteBadRequest(w, "Unknown assistant action", nil)
		return
	}

	result, err := h.assistant.Run(r.Context(), req.Action, req.Body)
	if err != nil {
		slog.Error("Assistant request failed", "error", err, "action", req.Action)
		WriteError(w, http.StatusBadGateway, "assistant_failed",
			"Assistant request failed", nil)
		return
	}
	WriteSuccess(w, AssistResponse{Action: req.Action, Result: result}, nil)
}
