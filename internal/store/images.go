// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"plume/internal/model"
)

const imageColumns = `id, uuid, post_id, filename, mime_type, size,
	width, height, alt, data, thumbnail, uploaded_by, created_at`

// imageListColumns omits the payload columns so listings stay small.
const imageListColumns = `id, uuid, post_id, filename, mime_type, size,
	width, height, alt, '', '', uploaded_by, created_at`

func scanImage(row interface{ Scan(...any) error }) (model.Image, error) {
	var img model.Image
	err := row.Scan(
		&img.ID, &img.UUID, &img.PostID, &img.Filename, &img.MimeType, &img.Size,
		&img.Width, &img.Height, &img.Alt, &img.Data, &img.Thumbnail,
		&img.UploadedBy, &img.CreatedAt,
	)
	return img, err
}

// CreateImageParams holds fields for storing an uploaded image.
type CreateImageParams struct {
	UUID       string
	PostID     sql.NullInt64
	Filename   string
	MimeType   string
	Size       int64
	Width      sql.NullInt64
	Height     sql.NullInt64
	Alt        string
	Data       string // base64 payload
	Thumbnail  string // base64 thumbnail payload
	UploadedBy string
	CreatedAt  time.Time
}

// CreateImage inserts an image record with its inline payload and returns it.
func (q *Queries) CreateImage(ctx context.Context, params CreateImageParams) (model.Image, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO images (
			uuid, post_id, filename, mime_type, size, width, height,
			alt, data, thumbnail, uploaded_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		params.UUID, params.PostID, params.Filename, params.MimeType, params.Size,
		params.Width, params.Height, params.Alt, params.Data, params.Thumbnail,
		params.UploadedBy, params.CreatedAt,
	)
	if err != nil {
		return model.Image{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Image{}, err
	}
	return q.GetImageByID(ctx, id)
}

// GetImageByID returns an image including its payload.
func (q *Queries) GetImageByID(ctx context.Context, id int64) (model.Image, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+imageColumns+` FROM images WHERE id = ?`, id)
	return scanImage(row)
}

// GetImageByUUID returns an image including its payload, looked up by the
// route identity used in markdown embeds.
func (q *Queries) GetImageByUUID(ctx context.Context, uuid string) (model.Image, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+imageColumns+` FROM images WHERE uuid = ?`, uuid)
	return scanImage(row)
}

// ListImagesByPost returns image metadata (no payloads) for a post.
func (q *Queries) ListImagesByPost(ctx context.Context, postID int64) ([]model.Image, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+imageListColumns+` FROM images
		WHERE post_id = ? ORDER BY created_at DESC, id DESC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []model.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// ListImages returns metadata for all images, newest first.
func (q *Queries) ListImages(ctx context.Context) ([]model.Image, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+imageListColumns+` FROM images
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []model.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// DeleteImage removes an image record permanently. Markdown that still embeds
// the image is left alone, so a dangling reference is possible afterwards.
func (q *Queries) DeleteImage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM images WHERE id = ?`, id)
	return err
}
