// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package markdown

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// PlainText renders markdown and strips all markup, returning whitespace-
// normalized text. Used to derive excerpts and SEO descriptions.
func PlainText(src string) (string, error) {
	rendered, err := Render(src)
	if err != nil {
		return "", err
	}
	text := stripPolicy.Sanitize(rendered)
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " "), nil
}

// Excerpt returns up to max characters of the post body's plain text,
// cut on a word boundary with a trailing ellipsis when truncated.
func Excerpt(src string, max int) (string, error) {
	text, err := PlainText(src)
	if err != nil {
		return "", err
	}
	if len(text) <= max {
		return text, nil
	}
	cut := strings.LastIndex(text[:max], " ")
	if cut <= 0 {
		cut = max
	}
	return strings.TrimRight(text[:cut], " .,;:") + "…", nil
}
