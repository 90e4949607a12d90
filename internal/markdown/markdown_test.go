// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package markdown

import (
	"fmt"
	"strings"
	"testing"
)

func TestRenderBasic(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"paragraph", "hello world", "<p>hello world</p>"},
		{"emphasis", "*hi*", "<em>hi</em>"},
		{"strikethrough", "~~gone~~", "<del>gone</del>"},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |", "<table>"},
		{"raw html passthrough", "<div class=\"cv\">x</div>", "<div class=\"cv\">x</div>"},
		{"heading anchor", "## Getting Started", `id="getting-started"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.src)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("Render(%q) = %q, want it to contain %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestRenderIdempotent(t *testing.T) {
	src := "# Title\n\nSome *text* with `code`.\n\n```go\nfunc main() {}\n```\n\n## Section\n"

	first, err := Render(src)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	second, err := Render(src)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if first != second {
		t.Error("rendering the same source twice produced different output")
	}
}

func TestRenderCodeHighlighting(t *testing.T) {
	got, err := Render("```go\nfunc main() {}\n```")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(got, "chroma") {
		t.Errorf("go fence not highlighted: %q", got)
	}

	// Unknown language tags fall back to an unstyled code block.
	got, err = Render("```nosuchlang\nwords\n```")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(got, "<code") {
		t.Errorf("unknown-language fence lost its code block: %q", got)
	}
}

func TestHeadingID(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Getting Started", "getting-started"},
		{"API & CLI", "api-cli"},
		{"Héllo Wörld", "hello-world"},
		{"", "section"},
		{"!!!", "section"},
	}

	for _, tt := range tests {
		if got := HeadingID(tt.text); got != tt.want {
			t.Errorf("HeadingID(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestExtractTOC(t *testing.T) {
	src := "# Top\n\nintro\n\n## First\n\ntext\n\n### Nested\n\n```sh\n## not a heading\n```\n\n## Second\n\n#### Too deep\n"

	got := ExtractTOC(src)
	want := []Heading{
		{ID: "first", Text: "First", Level: 2},
		{ID: "nested", Text: "Nested", Level: 3},
		{ID: "second", Text: "Second", Level: 2},
	}

	if len(got) != len(want) {
		t.Fatalf("ExtractTOC() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestExtractTOCDuplicateHeadings(t *testing.T) {
	got := ExtractTOC("## Setup\n\n## Setup\n\n## Setup\n")
	ids := []string{"setup", "setup-2", "setup-3"}

	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	for i, id := range ids {
		if got[i].ID != id {
			t.Errorf("entry %d ID = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestExtractTOCSetextHeadings(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Heading
	}{
		{
			// A setext h1 claims the base id; the ATX h2 with the same
			// text must get the deduped one, matching the renderer.
			name: "setext h1 shifts duplicate ATX id",
			src:  "Intro\n=====\n\ntext\n\n## Intro\n",
			want: []Heading{{ID: "intro-2", Text: "Intro", Level: 2}},
		},
		{
			name: "setext h2 is emitted",
			src:  "Subtitle\n--------\n\ntext\n",
			want: []Heading{{ID: "subtitle", Text: "Subtitle", Level: 2}},
		},
		{
			name: "dash run after blank line is a thematic break",
			src:  "text\n\n---\n\n## After\n",
			want: []Heading{{ID: "after", Text: "After", Level: 2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTOC(tt.src)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractTOC() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// TOC anchors must match the ids the renderer writes into the HTML.
func TestTOCMatchesRenderedAnchors(t *testing.T) {
	src := "Intro\n=====\n\n## Intro\n\n## Setup\n\n## Setup\n\n### Config & Env\n"

	html, err := Render(src)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, h := range ExtractTOC(src) {
		// Level-checked: the id must sit on a heading tag of the same
		// level, not merely appear somewhere in the document.
		anchor := fmt.Sprintf(`<h%d id="%s"`, h.Level, h.ID)
		if !strings.Contains(html, anchor) {
			t.Errorf("anchor %q missing from rendered HTML:\n%s", anchor, html)
		}
	}
}

func TestPlainText(t *testing.T) {
	got, err := PlainText("# Title\n\nSome **bold** and a [link](https://example.com).")
	if err != nil {
		t.Fatalf("PlainText() error = %v", err)
	}
	want := "Title Some bold and a link."
	if got != want {
		t.Errorf("PlainText() = %q, want %q", got, want)
	}
}

func TestExcerpt(t *testing.T) {
	src := "This is a rather long opening paragraph that will need truncation somewhere sensible."

	got, err := Excerpt(src, 30)
	if err != nil {
		t.Fatalf("Excerpt() error = %v", err)
	}
	if len([]rune(got)) > 32 {
		t.Errorf("Excerpt() = %q, longer than requested", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("Excerpt() = %q, want trailing ellipsis", got)
	}

	short, err := Excerpt("tiny", 30)
	if err != nil {
		t.Fatalf("Excerpt() error = %v", err)
	}
	if short != "tiny" {
		t.Errorf("Excerpt(short) = %q, want unchanged", short)
	}
}
