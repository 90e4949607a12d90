// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"
	"strconv"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 500
)

// AdminListEvents handles GET /api/admin/events. Newest first, capped.
func (h *Handler) AdminListEvents(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultEventLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			WriteBadRequest(w, "Invalid limit", nil)
			return
		}
		if n > maxEventLimit {
			n = maxEventLimit
		}
		limit = n
	}

	events, err := h.queries.ListEvents(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list events", "error", err)
		WriteInternalError(w, "Failed to list events")
		return
	}
	WriteSuccess(w, events, &Meta{Total: int64(len(events))})
}
