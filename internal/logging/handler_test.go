// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"plume/internal/model"
	"plume/internal/store"
)

// testDB creates a temporary database with migrations applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "plume-logging-test.db")
	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	})
	return db
}

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func lastEvent(t *testing.T, db *sql.DB) model.Event {
	t.Helper()
	events, err := store.New(db).ListEvents(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("no events recorded")
	}
	return events[0]
}

func countEvents(t *testing.T, db *sql.DB) int {
	t.Helper()
	events, err := store.New(db).ListEvents(context.Background(), 100)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	return len(events)
}

func TestEventLogHandler_ErrorLevel(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Error("image decode failed", "filename", "broken.png")

	ev := lastEvent(t, db)
	if ev.Level != model.EventLevelError {
		t.Errorf("level = %q, want %q", ev.Level, model.EventLevelError)
	}
	if ev.Message != "image decode failed" {
		t.Errorf("message = %q", ev.Message)
	}
	if ev.Category != model.EventCategoryImage {
		t.Errorf("category = %q, want %q", ev.Category, model.EventCategoryImage)
	}
	if !strings.Contains(ev.Metadata, `"filename":"broken.png"`) {
		t.Errorf("metadata = %q", ev.Metadata)
	}
}

func TestEventLogHandler_WarnLevel(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Warn("login rejected", "email", "reader@example.com")

	ev := lastEvent(t, db)
	if ev.Level != model.EventLevelWarning {
		t.Errorf("level = %q, want %q", ev.Level, model.EventLevelWarning)
	}
	if ev.Category != model.EventCategoryAuth {
		t.Errorf("category = %q, want %q", ev.Category, model.EventCategoryAuth)
	}
}

func TestEventLogHandler_InfoNotCaptured(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Info("server started")
	logger.Debug("noise")

	if n := countEvents(t, db); n != 0 {
		t.Errorf("captured %d events below WARN, want 0", n)
	}
}

func TestEventLogHandler_ExplicitCategory(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Warn("something odd", "category", model.EventCategoryCounter)

	ev := lastEvent(t, db)
	if ev.Category != model.EventCategoryCounter {
		t.Errorf("category = %q, want explicit %q", ev.Category, model.EventCategoryCounter)
	}
	if strings.Contains(ev.Metadata, "category") {
		t.Errorf("category leaked into metadata: %q", ev.Metadata)
	}
}

func TestEventLogHandler_CategoryInference(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"scheduled post published", model.EventCategoryPost},
		{"upload rejected", model.EventCategoryImage},
		{"view recorded twice", model.EventCategoryCounter},
		{"disk almost full", model.EventCategorySystem},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			db := testDB(t)
			logger := slog.New(NewEventLogHandler(discardHandler{}, db))
			logger.Warn(tt.message)

			if ev := lastEvent(t, db); ev.Category != tt.want {
				t.Errorf("category = %q, want %q", ev.Category, tt.want)
			}
		})
	}
}

func TestEventLogHandler_WithAttrs(t *testing.T) {
	db := testDB(t)
	base := NewEventLogHandler(discardHandler{}, db)
	logger := slog.New(base.WithAttrs([]slog.Attr{slog.String("component", "scheduler")}))

	logger.Error("tick failed")

	if countEvents(t, db) != 1 {
		t.Fatal("derived handler did not record the event")
	}
}

func TestEscapeJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, `plain`},
		{`with "quotes"`, `with \"quotes\"`},
		{"line\nbreak", `line\nbreak`},
		{`back\slash`, `back\\slash`},
		{"tab\there", `tab\there`},
	}

	for _, tt := range tests {
		if got := escapeJSON(tt.in); got != tt.want {
			t.Errorf("escapeJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEventLevel(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelError, model.EventLevelError},
		{slog.LevelWarn, model.EventLevelWarning},
		{slog.LevelInfo, model.EventLevelInfo},
	}

	for _, tt := range tests {
		if got := eventLevel(tt.level); got != tt.want {
			t.Errorf("eventLevel(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}
