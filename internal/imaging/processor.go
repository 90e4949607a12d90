// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging processes uploaded images for inline storage: it
// decodes, applies EXIF orientation, re-encodes, and produces a base64
// payload plus thumbnail.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"plume/internal/model"
)

// Default thumbnail bounds and encode quality.
const (
	DefaultThumbWidth  = 480
	DefaultThumbHeight = 480
	DefaultQuality     = 85
)

// ProcessResult holds the encoded payloads and metadata for one upload.
type ProcessResult struct {
	Width     int
	Height    int
	MimeType  string
	Size      int64
	Data      string // base64 of the processed original
	Thumbnail string // base64 of the thumbnail
}

// Processor converts uploaded bytes into storable payloads.
type Processor struct {
	thumbWidth  int
	thumbHeight int
	quality     int
}

// NewProcessor creates a processor with the default thumbnail bounds.
func NewProcessor() *Processor {
	return &Processor{
		thumbWidth:  DefaultThumbWidth,
		thumbHeight: DefaultThumbHeight,
		quality:     DefaultQuality,
	}
}

// Process decodes an uploaded image, auto-rotates it per its EXIF
// orientation, and returns base64 payloads for the original and a
// thumbnail. EXIF metadata is dropped: the pure Go encoders do not
// carry it through.
func (p *Processor) Process(data []byte) (*ProcessResult, error) {
	format := detectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	orientation := readExifOrientation(bytes.NewReader(data))
	img = applyOrientation(img, orientation)

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	processed, err := encodeImage(img, format, 95)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	thumb := img
	if width > p.thumbWidth || height > p.thumbHeight {
		thumb = imaging.Fit(img, p.thumbWidth, p.thumbHeight, imaging.Lanczos)
	}
	thumbData, err := encodeImage(thumb, format, p.quality)
	if err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}

	return &ProcessResult{
		Width:     width,
		Height:    height,
		MimeType:  formatToMimeType(format),
		Size:      int64(len(processed)),
		Data:      base64.StdEncoding.EncodeToString(processed),
		Thumbnail: base64.StdEncoding.EncodeToString(thumbData),
	}, nil
}

// DetectMimeType detects the MIME type of image data.
func (p *Processor) DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

// IsSupportedType checks whether a MIME type can be stored.
func (p *Processor) IsSupportedType(mimeType string) bool {
	return model.IsSupportedImageType(mimeType)
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// encodeImage encodes an image with the given format and quality. WebP
// re-encodes as JPEG: pure Go has no WebP encoder.
func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

// formatToMimeType converts a format string to the stored MIME type.
// WebP uploads come back as JPEG after re-encoding.
func formatToMimeType(format string) string {
	switch format {
	case "png":
		return model.MimeTypePNG
	case "gif":
		return model.MimeTypeGIF
	default:
		return model.MimeTypeJPEG
	}
}
