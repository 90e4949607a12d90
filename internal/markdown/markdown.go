// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package markdown converts stored post bodies to HTML and extracts
// table-of-contents headings. The same anchor-id assignment feeds both
// the renderer and the TOC scan so the two never disagree.
package markdown

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"plume/internal/util"
)

// md is the shared converter. Raw HTML passthrough is intentional: posts
// are authored by the single admin only.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		extension.Strikethrough,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(true),
			),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
	),
)

// Render converts a markdown string to HTML. It is a pure function of its
// input: the same source always produces byte-identical output.
func Render(src string) (string, error) {
	var buf bytes.Buffer
	ctx := parser.NewContext(parser.WithIDs(newHeadingIDs()))
	if err := md.Convert([]byte(src), &buf, parser.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// HeadingID derives the base anchor id for a heading's text. Duplicate
// handling lives in headingIDs so renderer and TOC count the same way.
func HeadingID(text string) string {
	id := util.Slugify(text)
	if id == "" {
		return "section"
	}
	return id
}

// headingIDs assigns unique anchor ids within one document. It implements
// goldmark's parser.IDs and is reused by ExtractTOC.
type headingIDs struct {
	used map[string]bool
}

func newHeadingIDs() *headingIDs {
	return &headingIDs{used: make(map[string]bool)}
}

func (h *headingIDs) assign(text string) string {
	base := HeadingID(text)
	id := base
	for n := 2; h.used[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	h.used[id] = true
	return id
}

func (h *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	return []byte(h.assign(string(value)))
}

func (h *headingIDs) Put(value []byte) {
	h.used[string(value)] = true
}
