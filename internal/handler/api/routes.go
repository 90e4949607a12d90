// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"github.com/go-chi/chi/v5"

	"plume/internal/middleware"
)

// Routes returns the API router. Session loading and user resolution happen
// here; transport-level middleware (security headers, rate limiting, CSRF)
// is layered on by the caller.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.sessions.LoadAndSave)
	r.Use(middleware.LoadUser(h.sessions, h.db))

	r.Get("/healthz", h.Healthz)

	// Public surface.
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{slug}", h.GetPostBySlug)
	r.Get("/posts/{slug}/related", h.GetRelatedPosts)
	r.Post("/posts/{id}/view", h.TrackView)
	r.Post("/posts/{id}/like", h.ToggleLike)
	r.Post("/posts/{id}/share", h.TrackShare)
	r.Get("/images/{uuid}", h.ServeImage)

	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)

	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/me", h.Me)

	// Admin surface.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(h.gate))

		r.Get("/posts", h.AdminListPosts)
		r.Post("/posts", h.AdminCreatePost)
		r.Get("/posts/{id}", h.AdminGetPost)
		r.Put("/posts/{id}", h.AdminUpdatePost)
		r.Delete("/posts/{id}", h.AdminDeletePost)
		r.Post("/posts/preview", h.AdminPreviewPost)

		r.Post("/images", h.AdminUploadImage)
		r.Get("/images", h.AdminListImages)
		r.Delete("/images/{id}", h.AdminDeleteImage)

		r.Get("/events", h.AdminListEvents)
		r.Post("/assist", h.AdminAssist)
	})

	return r
}
