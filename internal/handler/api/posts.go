// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"plume/internal/markdown"
	"plume/internal/model"
	"plume/internal/store"
	"plume/internal/util"
)

const (
	relatedPostLimit = 3

	// excerptLength caps derived excerpts; fits a search-result snippet.
	excerptLength = 155
)

// PostResponse represents a post in API responses. Body and the rendered
// fields are omitted from listings.
type PostResponse struct {
	ID             int64              `json:"id"`
	Slug           string             `json:"slug"`
	Title          string             `json:"title"`
	Excerpt        string             `json:"excerpt,omitempty"`
	Body           string             `json:"body,omitempty"`
	HTML           string             `json:"html,omitempty"`
	TOC            []markdown.Heading `json:"toc,omitempty"`
	Category       string             `json:"category"`
	Tags           []string           `json:"tags"`
	IsPublished    bool               `json:"is_published"`
	PublishedAt    *time.Time         `json:"published_at,omitempty"`
	ScheduledAt    *time.Time         `json:"scheduled_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	SEOTitle       string             `json:"seo_title,omitempty"`
	SEODescription string             `json:"seo_description,omitempty"`
	SEOImage       string             `json:"seo_image,omitempty"`
	Views          int64              `json:"views"`
	Likes          int64              `json:"likes"`
	Shares         int64              `json:"shares"`

	// LoggedViews counts surviving view-log rows; admin detail only. It
	// trails the views counter once the retention job starts pruning.
	LoggedViews *int64 `json:"logged_views,omitempty"`
}

// CreatePostRequest is the admin create body. A missing slug is derived
// from the title.
type CreatePostRequest struct {
	Title          string   `json:"title" validate:"required,max=200"`
	Slug           string   `json:"slug"`
	Excerpt        string   `json:"excerpt"`
	Body           string   `json:"body"`
	Category       string   `json:"category" validate:"required,oneof=engineering projects career notes"`
	Tags           []string `json:"tags"`
	IsPublished    bool     `json:"is_published"`
	ScheduledAt    *string  `json:"scheduled_at,omitempty"`
	SEOTitle       string   `json:"seo_title"`
	SEODescription string   `json:"seo_description"`
	SEOImage       string   `json:"seo_image"`
}

// UpdatePostRequest is the admin partial-update body. Nil fields keep
// their stored values.
type UpdatePostRequest struct {
	Title          *string   `json:"title,omitempty"`
	Slug           *string   `json:"slug,omitempty"`
	Excerpt        *string   `json:"excerpt,omitempty"`
	Body           *string   `json:"body,omitempty"`
	Category       *string   `json:"category,omitempty"`
	Tags           *[]string `json:"tags,omitempty"`
	IsPublished    *bool     `json:"is_published,omitempty"`
	PublishedAt    *string   `json:"published_at,omitempty"`
	ScheduledAt    *string   `json:"scheduled_at,omitempty"`
	SEOTitle       *string   `json:"seo_title,omitempty"`
	SEODescription *string   `json:"seo_description,omitempty"`
	SEOImage       *string   `json:"seo_image,omitempty"`
}

// postToResponse converts a model.Post to its API shape.
func postToResponse(p model.Post) PostResponse {
	resp := PostResponse{
		ID:             p.ID,
		Slug:           p.Slug,
		Title:          p.Title,
		Excerpt:        p.Excerpt,
		Category:       p.Category,
		Tags:           p.Tags,
		IsPublished:    p.IsPublished,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		SEOTitle:       p.SEOTitle,
		SEODescription: p.SEODescription,
		SEOImage:       p.SEOImage,
		Views:          p.Views,
		Likes:          p.Likes,
		Shares:         p.Shares,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if p.PublishedAt.Valid {
		resp.PublishedAt = &p.PublishedAt.Time
	}
	if p.ScheduledAt.Valid {
		resp.ScheduledAt = &p.ScheduledAt.Time
	}
	return resp
}

// deriveExcerpt fills presentation fallbacks on public responses: an empty
// excerpt becomes the body's plain text, an empty seo_description becomes
// the excerpt. Admin responses skip this so stored values stay visible.
func deriveExcerpt(resp *PostResponse, body string) {
	if resp.Excerpt == "" {
		excerpt, err := markdown.Excerpt(body, excerptLength)
		if err != nil {
			slog.Error("excerpt derivation failed", "category", model.EventCategoryPost,
				"post_id", resp.ID, "error", err)
			return
		}
		resp.Excerpt = excerpt
	}
	if resp.SEODescription == "" {
		resp.SEODescription = resp.Excerpt
	}
}

// postToDetailResponse additionally carries the body, rendered HTML, and
// table of contents.
func postToDetailResponse(p model.Post) PostResponse {
	resp := postToResponse(p)
	resp.Body = p.Body

	html, err := markdown.Render(p.Body)
	if err != nil {
		slog.Error("post render failed", "category", model.EventCategoryPost,
			"post_id", p.ID, "error", err)
	} else {
		resp.HTML = html
		resp.TOC = markdown.ExtractTOC(p.Body)
	}
	return resp
}

// ListPosts handles GET /api/posts. Public: published posts only,
// newest first, optionally filtered by category.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category != "" && !model.IsValidCategory(category) {
		WriteBadRequest(w, "Unknown category", nil)
		return
	}

	posts, err := h.queries.ListPosts(r.Context(), false)
	if err != nil {
		WriteInternalError(w, "Failed to list posts")
		return
	}
	responses := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		if category != "" && p.Category != category {
			continue
		}
		resp := postToResponse(p)
		deriveExcerpt(&resp, p.Body)
		responses = append(responses, resp)
	}

	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// GetPostBySlug handles GET /api/posts/{slug}. Public: published posts
// only, rendered for display.
func (h *Handler) GetPostBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		WriteBadRequest(w, "Slug is required", nil)
		return
	}

	post, err := h.queries.GetPublishedPostBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Post not found")
		} else {
			WriteInternalError(w, "Failed to retrieve post")
		}
		return
	}

	resp := postToDetailResponse(post)
	deriveExcerpt(&resp, post.Body)
	WriteSuccess(w, resp, nil)
}

// GetRelatedPosts handles GET /api/posts/{slug}/related: up to three
// other published posts from the same category.
func (h *Handler) GetRelatedPosts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := h.queries.GetPublishedPostBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Post not found")
		} else {
			WriteInternalError(w, "Failed to retrieve post")
		}
		return
	}

	related, err := h.queries.ListPostsByCategory(r.Context(), post.Category, post.ID, relatedPostLimit)
	if err != nil {
		WriteInternalError(w, "Failed to list related posts")
		return
	}

	responses := make([]PostResponse, 0, len(related))
	for _, p := range related {
		resp := postToResponse(p)
		deriveExcerpt(&resp, p.Body)
		responses = append(responses, resp)
	}
	WriteSuccess(w, responses, nil)
}

// AdminListPosts handles GET /api/admin/posts: drafts included.
func (h *Handler) AdminListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.queries.ListPosts(r.Context(), true)
	if err != nil {
		WriteInternalError(w, "Failed to list posts")
		return
	}

	responses := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		responses = append(responses, postToResponse(p))
	}
	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// AdminGetPost handles GET /api/admin/posts/{id}.
func (h *Handler) AdminGetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}

	post, err := h.queries.GetPostByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Post not found")
		} else {
			WriteInternalError(w, "Failed to retrieve post")
		}
		return
	}

	resp := postToDetailResponse(post)
	if n, err := h.queries.CountViewLog(r.Context(), post.ID); err == nil {
		resp.LoggedViews = &n
	} else {
		slog.Error("view log count failed", "category", model.EventCategoryCounter,
			"post_id", post.ID, "error", err)
	}
	WriteSuccess(w, resp, nil)
}

// AdminCreatePost handles POST /api/admin/posts. New posts start as
// drafts unless is_published is set.
func (h *Handler) AdminCreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		WriteValidationError(w, validationDetails(err))
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = util.Slugify(req.Title)
	}
	if !util.IsValidSlug(slug) {
		WriteValidationError(w, map[string]string{"slug": "Slug must contain only lowercase letters, digits, and hyphens"})
		return
	}

	now := time.Now().UTC()
	params := store.CreatePostParams{
		Slug:           slug,
		Title:          req.Title,
		Excerpt:        req.Excerpt,
		Body:           req.Body,
		Category:       req.Category,
		Tags:           req.Tags,
		IsPublished:    req.IsPublished,
		SEOTitle:       req.SEOTitle,
		SEODescription: req.SEODescription,
		SEOImage:       req.SEOImage,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.IsPublished {
		params.PublishedAt = sql.NullTime{Time: now, Valid: true}
	}
	if req.ScheduledAt != nil && *req.ScheduledAt != "" {
		t, parseErr := time.Parse(time.RFC3339, *req.ScheduledAt)
		if parseErr != nil {
			WriteValidationError(w, map[string]string{"scheduled_at": "Invalid date format. Use RFC3339 (e.g., 2026-01-01T00:00:00Z)"})
			return
		}
		params.ScheduledAt = sql.NullTime{Time: t, Valid: true}
	}

	post, err := h.queries.CreatePost(r.Context(), params)
	if err != nil {
		WriteInternalError(w, "Failed to create post")
		return
	}

	slog.Info("post created", "category", model.EventCategoryPost,
		"post_id", post.ID, "slug", post.Slug)
	WriteCreated(w, postToResponse(post))
}

// AdminUpdatePost handles PUT /api/admin/posts/{id}: partial update,
// nil fields keep their stored values, updated_at always refreshes.
func (h *Handler) AdminUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	post, err := h.queries.GetPostByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Post not found")
		} else {
			WriteInternalError(w, "Failed to retrieve post")
		}
		return
	}

	params := store.UpdatePostParams{
		ID:             post.ID,
		Slug:           post.Slug,
		Title:          post.Title,
		Excerpt:        post.Excerpt,
		Body:           post.Body,
		Category:       post.Category,
		Tags:           post.Tags,
		IsPublished:    post.IsPublished,
		PublishedAt:    post.PublishedAt,
		ScheduledAt:    post.ScheduledAt,
		SEOTitle:       post.SEOTitle,
		SEODescription: post.SEODescription,
		SEOImage:       post.SEOImage,
		UpdatedAt:      time.Now().UTC(),
	}

	if req.Title != nil {
		params.Title = *req.Title
		// Editing the title re-derives the slug unless one is supplied.
		if req.Slug == nil {
			params.Slug = util.Slugify(*req.Title)
		}
	}
	if req.Slug != nil {
		params.Slug = *req.Slug
	}
	if req.Excerpt != nil {
		params.Excerpt = *req.Excerpt
	}
	if req.Body != nil {
		params.Body = *req.Body
	}
	if req.Category != nil {
		if !model.IsValidCategory(*req.Category) {
			WriteValidationError(w, map[string]string{"category": "Unknown category"})
			return
		}
		params.Category = *req.Category
	}
	if req.Tags != nil {
		params.Tags = *req.Tags
	}
	if req.IsPublished != nil {
		params.IsPublished = *req.IsPublished
		if *req.IsPublished && !post.PublishedAt.Valid {
			params.PublishedAt = sql.NullTime{Time: params.UpdatedAt, Valid: true}
		}
	}
	if req.PublishedAt != nil {
		// Supplied publication timestamps pass through unchanged.
		if *req.PublishedAt == "" {
			params.PublishedAt = sql.NullTime{}
		} else {
			t, parseErr := time.Parse(time.RFC3339, *req.PublishedAt)
			if parseErr != nil {
				WriteValidationError(w, map[string]string{"published_at": "Invalid date format. Use RFC3339"})
				return
			}
			params.PublishedAt = sql.NullTime{Time: t, Valid: true}
		}
	}
	if req.ScheduledAt != nil {
		if *req.ScheduledAt == "" {
			params.ScheduledAt = sql.NullTime{}
		} else {
			t, parseErr := time.Parse(time.RFC3339, *req.ScheduledAt)
			if parseErr != nil {
				WriteValidationError(w, map[string]string{"scheduled_at": "Invalid date format. Use RFC3339"})
				return
			}
			params.ScheduledAt = sql.NullTime{Time: t, Valid: true}
		}
	}
	if !util.IsValidSlug(params.Slug) {
		WriteValidationError(w, map[string]string{"slug": "Slug must contain only lowercase letters, digits, and hyphens"})
		return
	}
	if req.SEOTitle != nil {
		params.SEOTitle = *req.SEOTitle
	}
	if req.SEODescription != nil {
		params.SEODescription = *req.SEODescription
	}
	if req.SEOImage != nil {
		params.SEOImage = *req.SEOImage
	}

	updated, err := h.queries.UpdatePost(r.Context(), params)
	if err != nil {
		WriteInternalError(w, "Failed to update post")
		return
	}

	WriteSuccess(w, postToResponse(updated), nil)
}

// AdminDeletePost handles DELETE /api/admin/posts/{id}: hard delete, no
// cascade to images.
func (h *Handler) AdminDeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}

	if _, err := h.queries.GetPostByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Post not found")
		} else {
			WriteInternalError(w, "Failed to retrieve post")
		}
		return
	}

	if err := h.queries.DeletePost(r.Context(), id); err != nil {
		WriteInternalError(w, "Failed to delete post")
		return
	}

	slog.Info("post deleted", "category", model.EventCategoryPost, "post_id", id)
	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}

// PreviewRequest is the admin preview body.
type PreviewRequest struct {
	Body string `json:"body"`
}

// PreviewResponse carries the rendered preview.
type PreviewResponse struct {
	HTML string             `json:"html"`
	TOC  []markdown.Heading `json:"toc"`
}

// AdminPreviewPost handles POST /api/admin/posts/preview. The same
// pipeline renders previews and the public reader view.
func (h *Handler) AdminPreviewPost(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	html, err := markdown.Render(req.Body)
	if err != nil {
		WriteInternalError(w, "Failed to render preview")
		return
	}

	WriteSuccess(w, PreviewResponse{
		HTML: html,
		TOC:  markdown.ExtractTOC(req.Body),
	}, nil)
}
