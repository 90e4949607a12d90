// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"plume/internal/middleware"
	"plume/internal/model"
	"plume/internal/store"
)

// maxUploadBytes caps the multipart form size. The configured soft limit
// below this is advisory only: oversized uploads are stored with a
// warning, matching the inline-storage design.
const maxUploadBytes = 20 << 20

// ImageResponse represents an image in API responses. Payloads are never
// embedded; readers fetch them from the serving URL.
type ImageResponse struct {
	ID         int64      `json:"id"`
	UUID       string     `json:"uuid"`
	PostID     *int64     `json:"post_id,omitempty"`
	Filename   string     `json:"filename"`
	MimeType   string     `json:"mime_type"`
	Size       int64      `json:"size"`
	Width      *int64     `json:"width,omitempty"`
	Height     *int64     `json:"height,omitempty"`
	Alt        string     `json:"alt"`
	URL        string     `json:"url"`
	UploadedBy string     `json:"uploaded_by"`
	CreatedAt  time.Time  `json:"created_at"`
	Oversized  bool       `json:"oversized,omitempty"`
}

func imageToResponse(img model.Image) ImageResponse {
	resp := ImageResponse{
		ID:         img.ID,
		UUID:       img.UUID,
		Filename:   img.Filename,
		MimeType:   img.MimeType,
		Size:       img.Size,
		Alt:        img.Alt,
		URL:        img.EmbedPath(),
		UploadedBy: img.UploadedBy,
		CreatedAt:  img.CreatedAt,
	}
	if img.PostID.Valid {
		resp.PostID = &img.PostID.Int64
	}
	if img.Width.Valid {
		resp.Width = &img.Width.Int64
	}
	if img.Height.Valid {
		resp.Height = &img.Height.Int64
	}
	return resp
}

// AdminUploadImage handles POST /api/admin/images: multipart "file"
// field plus optional "post_id" and "alt" values. The payload is read
// fully into memory, processed, and stored inline as base64.
func (h *Handler) AdminUploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteBadRequest(w, "Failed to parse multipart form", nil)
		return
	}

	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "No file provided. Use the 'file' field", nil)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteInternalError(w, "Failed to read upload")
		return
	}

	mimeType := h.processor.DetectMimeType(data)
	if !h.processor.IsSupportedType(mimeType) {
		WriteValidationError(w, map[string]string{"file": "Unsupported image type: " + mimeType})
		return
	}

	result, err := h.processor.Process(data)
	if err != nil {
		WriteValidationError(w, map[string]string{"file": "Failed to process image"})
		return
	}

	oversized := result.Size > h.cfg.ImageSoftLimit
	if oversized {
		// Soft limit only: the upload still goes through.
		slog.Warn("image exceeds soft size limit", "category", model.EventCategoryImage,
			"filename", header.Filename, "size", result.Size, "limit", h.cfg.ImageSoftLimit)
	}

	var postID sql.NullInt64
	if postIDStr := r.FormValue("post_id"); postIDStr != "" {
		pid, parseErr := strconv.ParseInt(postIDStr, 10, 64)
		if parseErr != nil {
			WriteValidationError(w, map[string]string{"post_id": "Invalid post ID"})
			return
		}
		postID = sql.NullInt64{Int64: pid, Valid: true}
	}

	alt := r.FormValue("alt")
	if alt == "" {
		alt = model.AltFromFilename(header.Filename)
	}

	img, err := h.queries.CreateImage(r.Context(), store.CreateImageParams{
		UUID:       uuid.NewString(),
		PostID:     postID,
		Filename:   header.Filename,
		MimeType:   result.MimeType,
		Size:       result.Size,
		Width:      sql.NullInt64{Int64: int64(result.Width), Valid: true},
		Height:     sql.NullInt64{Int64: int64(result.Height), Valid: true},
		Alt:        alt,
		Data:       result.Data,
		Thumbnail:  result.Thumbnail,
		UploadedBy: user.Email,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to store image")
		return
	}

	slog.Info("image uploaded", "category", model.EventCategoryImage,
		"image_id", img.ID, "filename", img.Filename, "size", img.Size)

	resp := imageToResponse(img)
	resp.Oversized = oversized
	WriteCreated(w, resp)
}

// AdminListImages handles GET /api/admin/images, optionally filtered by
// ?post_id=. Listings carry metadata only.
func (h *Handler) AdminListImages(w http.ResponseWriter, r *http.Request) {
	var (
		images []model.Image
		err    error
	)

	if postIDStr := r.URL.Query().Get("post_id"); postIDStr != "" {
		postID, parseErr := strconv.ParseInt(postIDStr, 10, 64)
		if parseErr != nil {
			WriteBadRequest(w, "Invalid post ID", nil)
			return
		}
		images, err = h.queries.ListImagesByPost(r.Context(), postID)
	} else {
		images, err = h.queries.ListImages(r.Context())
	}
	if err != nil {
		WriteInternalError(w, "Failed to list images")
		return
	}

	responses := make([]ImageResponse, 0, len(images))
	for _, img := range images {
		responses = append(responses, imageToResponse(img))
	}
	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// ServeImage handles GET /api/images/{uuid}: decodes the stored
// payload and serves the raw bytes. ?variant=thumb serves the thumbnail.
func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	imageUUID := chi.URLParam(r, "uuid")
	if _, err := uuid.Parse(imageUUID); err != nil {
		WriteBadRequest(w, "Invalid image UUID", nil)
		return
	}

	img, err := h.queries.GetImageByUUID(r.Context(), imageUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Image not found")
		} else {
			WriteInternalError(w, "Failed to retrieve image")
		}
		return
	}

	payload := img.Data
	if r.URL.Query().Get("variant") == "thumb" && img.Thumbnail != "" {
		payload = img.Thumbnail
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		slog.Error("stored image payload corrupt", "category", model.EventCategoryImage,
			"image_id", img.ID, "error", err)
		WriteInternalError(w, "Stored image payload is corrupt")
		return
	}

	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// AdminDeleteImage handles DELETE /api/admin/images/{id}. Markdown that
// still references the image keeps its now-broken embed URL.
func (h *Handler) AdminDeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid image ID", nil)
		return
	}

	if _, err := h.queries.GetImageByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Image not found")
		} else {
			WriteInternalError(w, "Failed to retrieve image")
		}
		return
	}

	if err := h.queries.DeleteImage(r.Context(), id); err != nil {
		WriteInternalError(w, "Failed to delete image")
		return
	}

	slog.Info("image deleted", "category", model.EventCategoryImage, "image_id", id)
	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}
