// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "slices"

// Reader settings option values.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"

	FontSizeSmall  = "small"
	FontSizeMedium = "medium"
	FontSizeLarge  = "large"
)

// Settings holds per-browser reader preferences. They live in the session,
// never in the database, so anonymous visitors keep them too.
type Settings struct {
	Theme       string  `json:"theme"`
	FontSize    string  `json:"font_size"`
	ReadingMode bool    `json:"reading_mode"`
	LikedPosts  []int64 `json:"liked_posts"`
}

// DefaultSettings returns the settings applied to a fresh session.
func DefaultSettings() Settings {
	return Settings{
		Theme:      ThemeSystem,
		FontSize:   FontSizeMedium,
		LikedPosts: []int64{},
	}
}

// Normalize replaces invalid option values with their defaults and drops a
// nil liked-posts slice so the JSON form is always an array.
func (s *Settings) Normalize() {
	switch s.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		s.Theme = ThemeSystem
	}
	switch s.FontSize {
	case FontSizeSmall, FontSizeMedium, FontSizeLarge:
	default:
		s.FontSize = FontSizeMedium
	}
	if s.LikedPosts == nil {
		s.LikedPosts = []int64{}
	}
}

// MarkLiked records or removes a post from the liked set.
func (s *Settings) MarkLiked(postID int64, liked bool) {
	idx := slices.Index(s.LikedPosts, postID)
	if liked && idx < 0 {
		s.LikedPosts = append(s.LikedPosts, postID)
	}
	if !liked && idx >= 0 {
		s.LikedPosts = slices.Delete(s.LikedPosts, idx, idx+1)
	}
}

// HasLiked reports whether a post is in the liked set.
func (s *Settings) HasLiked(postID int64) bool {
	return slices.Contains(s.LikedPosts, postID)
}
