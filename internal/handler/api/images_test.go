// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"testing"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// uploadImage posts a multipart upload and returns the decoded response.
func (e *testEnv) uploadImage(filename string, payload []byte, fields map[string]string) (ImageResponse, *http.Response) {
	e.t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		e.t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		e.t.Fatalf("write part: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			e.t.Fatalf("WriteField: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		e.t.Fatalf("close writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/admin/images", &body)
	if err != nil {
		e.t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", testChromeUA)

	resp, err := e.client.Do(req)
	if err != nil {
		e.t.Fatalf("upload: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return ImageResponse{}, resp
	}

	var uploaded ImageResponse
	decodeData(e.t, resp, &uploaded)
	return uploaded, nil
}

func TestImageUploadAndServe(t *testing.T) {
	env := newTestEnv(t)
	env.login(testAdminEmail, testAdminPassword)

	uploaded, errResp := env.uploadImage("photo.png", pngBytes(t, 64, 48), nil)
	if errResp != nil {
		wantStatus(t, errResp, http.StatusCreated)
	}
	if uploaded.MimeType != "image/png" {
		t.Errorf("mime_type = %q", uploaded.MimeType)
	}
	if uploaded.Width == nil || *uploaded.Width != 64 || uploaded.Height == nil || *uploaded.Height != 48 {
		t.Errorf("dimensions = %v x %v, want 64 x 48", uploaded.Width, uploaded.Height)
	}
	if uploaded.Alt != "photo" {
		t.Errorf("alt = %q, want derived from filename", uploaded.Alt)
	}
	if uploaded.UploadedBy != testAdminEmail {
		t.Errorf("uploaded_by = %q", uploaded.UploadedBy)
	}

	resp := env.do(http.MethodGet, "/images/"+uploaded.UUID, nil)
	wantStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("served payload is not a PNG: %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 48 {
		t.Errorf("served image %dx%d, want 64x48", cfg.Width, cfg.Height)
	}
}

func TestImageThumbnailVariant(t *testing.T) {
	env := newTestEnv(t)
	env.login(testAdminEmail, testAdminPassword)

	uploaded, errResp := env.uploadImage("big.png", pngBytes(t, 800, 600), nil)
	if errResp != nil {
		wantStatus(t, errResp, http.StatusCreated)
	}

	resp := env.do(http.MethodGet, "/images/"+uploaded.UUID+"?variant=thumb", nil)
	wantStatus(t, resp, http.StatusOK)
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("thumbnail is not a PNG: %v", err)
	}
	if cfg.Width > 480 || cfg.Height > 480 {
		t.Errorf("thumbnail %dx%d exceeds 480x480", cfg.Width, cfg.Height)
	}
}

func TestImageUploadRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)
	env.login(testAdminEmail, testAdminPassword)

	_, errResp := env.uploadImage("notes.txt", []byte("plain text, not an image"), nil)
	if errResp == nil {
		t.Fatal("expected rejection")
	}
	wantStatus(t, errResp, http.StatusUnprocessableEntity)
}

func TestImageUploadRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	_, errResp := env.uploadImage("photo.png", pngBytes(t, 8, 8), nil)
	if errResp == nil {
		t.Fatal("expected rejection")
	}
	wantStatus(t, errResp, http.StatusUnauthorized)
}

func TestImageListAndPostFilter(t *testing.T) {
	env := newTestEnv(t)
	env.login(testAdminEmail, testAdminPassword)
	post := env.seedPost("illustrated", "Illustrated", "notes", true)

	_, errResp := env.uploadImage("attached.png", pngBytes(t, 8, 8),
		map[string]string{"post_id": strconv.FormatInt(post.ID, 10)})
	if errResp != nil {
		wantStatus(t, errResp, http.StatusCreated)
	}
	_, errResp = env.uploadImage("loose.png", pngBytes(t, 8, 8), nil)
	if errResp != nil {
		wantStatus(t, errResp, http.StatusCreated)
	}

	resp := env.do(http.MethodGet, "/admin/images", nil)
	wantStatus(t, resp, http.StatusOK)
	var all []ImageResponse
	decodeData(t, resp, &all)
	if len(all) != 2 {
		t.Fatalf("len(all) = %d, want 2", len(all))
	}

	resp = env.do(http.MethodGet, "/admin/images?post_id="+strconv.FormatInt(post.ID, 10), nil)
	wantStatus(t, resp, http.StatusOK)
	var attached []ImageResponse
	decodeData(t, resp, &attached)
	if len(attached) != 1 || attached[0].Filename != "attached.png" {
		t.Fatalf("attached = %+v, want only attached.png", attached)
	}
}

func TestImageDelete(t *testing.T) {
	env := newTestEnv(t)
	env.login(testAdminEmail, testAdminPassword)

	uploaded, errResp := env.uploadImage("gone.png", pngBytes(t, 8, 8), nil)
	if errResp != nil {
		wantStatus(t, errResp, http.StatusCreated)
	}

	path := "/admin/images/" + strconv.FormatInt(uploaded.ID, 10)
	resp := env.do(http.MethodDelete, path, nil)
	wantStatus(t, resp, http.StatusOK)
	_ = resp.Body.Close()

	resp = env.do(http.MethodDelete, path, nil)
	wantStatus(t, resp, http.StatusNotFound)

	resp = env.do(http.MethodGet, "/images/"+uploaded.UUID, nil)
	wantStatus(t, resp, http.StatusNotFound)
}

func TestImageOversizedFlag(t *testing.T) {
	env := newTestEnv(t)
	env.handler.cfg.ImageSoftLimit = 16 // everything is oversized now
	env.login(testAdminEmail, testAdminPassword)

	uploaded, errResp := env.uploadImage("huge.png", pngBytes(t, 64, 64), nil)
	if errResp != nil {
		wantStatus(t, errResp, http.StatusCreated)
	}
	if !uploaded.Oversized {
		t.Error("upload above the soft limit should be flagged, not rejected")
	}
}
