// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"plume/internal/middleware"
	"plume/internal/model"
)

// readSettings loads the reader settings from the session, falling back to
// defaults when the session has none or holds garbage.
func (h *Handler) readSettings(r *http.Request) model.Settings {
	settings := model.DefaultSettings()
	raw := h.sessions.GetString(r.Context(), middleware.SessionKeySettings)
	if raw == "" {
		return settings
	}
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		slog.Warn("Discarding unreadable reader settings", "error", err)
		return model.DefaultSettings()
	}
	settings.Normalize()
	return settings
}

// writeSettings stores the reader settings back into the session.
func (h *Handler) writeSettings(r *http.Request, settings model.Settings) {
	raw, err := json.Marshal(settings)
	if err != nil {
		slog.Error("Failed to encode reader settings", "error", err)
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeySettings, string(raw))
}

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, h.readSettings(r), nil)
}

// UpdateSettings handles PUT /api/settings. Unknown option values are
// normalized rather than rejected, so an outdated client cannot wedge its
// own session.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings model.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	settings.Normalize()

	// The liked set is owned by the like endpoint; keep the stored one.
	settings.LikedPosts = h.readSettings(r).LikedPosts

	h.writeSettings(r, settings)
	WriteSuccess(w, settings, nil)
}
