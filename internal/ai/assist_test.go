// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package ai

import (
	"strings"
	"testing"
)

func TestIsValidAction(t *testing.T) {
	for _, action := range []string{ActionImprove, ActionTitle, ActionExcerpt, ActionSEODescription} {
		if !IsValidAction(action) {
			t.Errorf("IsValidAction(%q) = false", action)
		}
	}
	for _, action := range []string{"", "summarize", "IMPROVE"} {
		if IsValidAction(action) {
			t.Errorf("IsValidAction(%q) = true", action)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	body := "## My Post\n\nSome content."

	prompt, err := buildPrompt(ActionTitle, body)
	if err != nil {
		t.Fatalf("buildPrompt error = %v", err)
	}
	if !strings.Contains(prompt, "title") {
		t.Errorf("title prompt missing instruction: %q", prompt)
	}
	if !strings.HasSuffix(prompt, body) {
		t.Errorf("prompt does not end with the post body: %q", prompt)
	}

	if _, err := buildPrompt("bogus", body); err == nil {
		t.Error("buildPrompt accepted unknown action")
	}
}
