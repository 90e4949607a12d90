// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"strings"
	"time"
)

// Supported MIME types for inline-stored images.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// Image represents an uploaded image stored inline as a base64 payload,
// optionally associated to a post. Images live independently of their post:
// deleting either side never cascades, so markdown may reference an image
// that no longer exists.
type Image struct {
	ID         int64         `json:"id"`
	UUID       string        `json:"uuid"`
	PostID     sql.NullInt64 `json:"post_id,omitempty"`
	Filename   string        `json:"filename"`
	MimeType   string        `json:"mime_type"`
	Size       int64         `json:"size"`
	Width      sql.NullInt64 `json:"width,omitempty"`
	Height     sql.NullInt64 `json:"height,omitempty"`
	Alt        string        `json:"alt"`
	Data       string        `json:"-"` // base64 payload, omitted from list responses
	Thumbnail  string        `json:"-"` // base64 thumbnail payload
	UploadedBy string        `json:"uploaded_by"`
	CreatedAt  time.Time     `json:"created_at"`
}

// EmbedPath returns the route path used in markdown image embeds.
func (i *Image) EmbedPath() string {
	return "/api/images/" + i.UUID
}

// SupportedImageTypes returns the MIME types accepted by the upload endpoint.
func SupportedImageTypes() []string {
	return []string{MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP}
}

// IsSupportedImageType checks whether a MIME type can be stored.
func IsSupportedImageType(mimeType string) bool {
	for _, t := range SupportedImageTypes() {
		if t == mimeType {
			return true
		}
	}
	return false
}

// AltFromFilename derives alt text from an upload filename: the base name
// without its extension.
func AltFromFilename(filename string) string {
	base := filename
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx > 0 {
		base = base[:idx]
	}
	return base
}
