// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including Post, Image, User and event log structures.
package model

import (
	"database/sql"
	"time"
)

// Post categories. The editor offers exactly this set.
const (
	CategoryEngineering = "engineering"
	CategoryProjects    = "projects"
	CategoryCareer      = "career"
	CategoryNotes       = "notes"
)

// Categories returns the fixed category enumeration in display order.
func Categories() []string {
	return []string{CategoryEngineering, CategoryProjects, CategoryCareer, CategoryNotes}
}

// IsValidCategory reports whether c is a member of the category enumeration.
func IsValidCategory(c string) bool {
	switch c {
	case CategoryEngineering, CategoryProjects, CategoryCareer, CategoryNotes:
		return true
	}
	return false
}

// Post represents a blog post.
//
// Slug is derived from the title when the post is created or edited and is
// expected to be unique for routing; uniqueness is not enforced by the store,
// so a slug lookup returns the first match.
type Post struct {
	ID          int64        `json:"id"`
	Slug        string       `json:"slug"`
	Title       string       `json:"title"`
	Excerpt     string       `json:"excerpt"`
	Body        string       `json:"body"`
	Category    string       `json:"category"`
	Tags        []string     `json:"tags"`
	IsPublished bool         `json:"is_published"`
	PublishedAt sql.NullTime `json:"published_at,omitempty"`
	ScheduledAt sql.NullTime `json:"scheduled_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// SEO overrides; empty means derive from the post itself.
	SEOTitle       string `json:"seo_title,omitempty"`
	SEODescription string `json:"seo_description,omitempty"`
	SEOImage       string `json:"seo_image,omitempty"`

	// Engagement counters, never negative.
	Views  int64 `json:"views"`
	Likes  int64 `json:"likes"`
	Shares int64 `json:"shares"`
}

// IsDraft returns true if the post has not been published.
func (p *Post) IsDraft() bool {
	return !p.IsPublished
}

// SortTime returns the timestamp used for ordering post lists:
// publication time when published, creation time for drafts.
func (p *Post) SortTime() time.Time {
	if p.PublishedAt.Valid {
		return p.PublishedAt.Time
	}
	return p.CreatedAt
}
