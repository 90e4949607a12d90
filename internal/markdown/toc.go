// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package markdown

import (
	"strings"
)

// Heading is one table-of-contents entry.
type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// ExtractTOC scans markdown line by line and returns the h2/h3 headings in
// document order. Lines inside fenced code blocks are ignored. Every ATX
// and setext heading feeds the id sequence, even levels the TOC omits, so
// the ids here match the anchors Render assigns. A setext heading's text is
// taken from the single line above its underline.
func ExtractTOC(src string) []Heading {
	var (
		toc      []Heading
		ids      = newHeadingIDs()
		inFence  bool
		fenceTok string
	)

	lines := strings.Split(src, "\n")
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])

		if tok := fenceToken(trimmed); tok != "" {
			if !inFence {
				inFence = true
				fenceTok = tok
			} else if strings.HasPrefix(tok, fenceTok) {
				inFence = false
			}
			continue
		}
		if inFence {
			continue
		}

		level, text := parseATXHeading(trimmed)
		if level == 0 && trimmed != "" && setextLevel(trimmed) == 0 && i+1 < len(lines) {
			if lv := setextLevel(strings.TrimSpace(lines[i+1])); lv != 0 {
				level, text = lv, trimmed
				i++ // consume the underline
			}
		}
		if level == 0 {
			continue
		}

		id := ids.assign(text)
		if level == 2 || level == 3 {
			toc = append(toc, Heading{ID: id, Text: text, Level: level})
		}
	}
	return toc
}

// setextLevel reports the heading level a setext underline produces: 1 for
// a run of '=', 2 for a run of '-', 0 when the line is not an underline.
// The caller checks that a paragraph line precedes it; a bare dash run
// after a blank line is a thematic break, not a heading.
func setextLevel(line string) int {
	if line == "" {
		return 0
	}
	marker := line[0]
	if marker != '=' && marker != '-' {
		return 0
	}
	for i := 1; i < len(line); i++ {
		if line[i] != marker {
			return 0
		}
	}
	if marker == '=' {
		return 1
	}
	return 2
}

// fenceToken returns the leading run of backticks or tildes when the line
// opens or closes a code fence, or "" otherwise.
func fenceToken(line string) string {
	for _, marker := range []byte{'`', '~'} {
		n := 0
		for n < len(line) && line[n] == marker {
			n++
		}
		if n >= 3 {
			return line[:n]
		}
	}
	return ""
}

// parseATXHeading returns the level and trimmed text of an ATX heading
// line, or level 0 when the line is not a heading.
func parseATXHeading(line string) (int, string) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, ""
	}
	rest := line[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, ""
	}
	text := strings.TrimSpace(rest)
	text = strings.TrimRight(text, "#")
	return level, strings.TrimSpace(text)
}
