// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package ai provides the optional editor assistant backed by the
// OpenAI API. When no API key is configured the feature is absent from
// the router entirely.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Assist actions accepted by Run.
const (
	ActionImprove        = "improve"
	ActionTitle          = "title"
	ActionExcerpt        = "excerpt"
	ActionSEODescription = "seo_description"
)

const systemPrompt = "You are an editorial assistant for a personal " +
	"engineering blog. Work with the markdown you are given. Reply with " +
	"the result only, no preamble."

// Assistant wraps the OpenAI chat API for the admin editor.
type Assistant struct {
	client openai.Client
	model  string
}

// NewAssistant creates an assistant using the given API key and model.
func NewAssistant(apiKey, model string) *Assistant {
	return &Assistant{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Run executes one assist action against the post body and returns the
// generated text.
func (a *Assistant) Run(ctx context.Context, action, body string) (string, error) {
	prompt, err := buildPrompt(action, body)
	if err != nil {
		return "", err
	}

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("assist request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("assist request: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// IsValidAction reports whether the action name is known.
func IsValidAction(action string) bool {
	switch action {
	case ActionImprove, ActionTitle, ActionExcerpt, ActionSEODescription:
		return true
	}
	return false
}

// buildPrompt maps an action to its instruction, with the post body
// appended.
func buildPrompt(action, body string) (string, error) {
	var instruction string
	switch action {
	case ActionImprove:
		instruction = "Improve the clarity and flow of this post. Keep the author's voice and all code blocks unchanged."
	case ActionTitle:
		instruction = "Suggest one concise title for this post. Plain text, no quotes."
	case ActionExcerpt:
		instruction = "Write a two-sentence excerpt for this post. Plain text, no markdown."
	case ActionSEODescription:
		instruction = "Write a meta description for this post in at most 155 characters. Plain text."
	default:
		return "", fmt.Errorf("unknown assist action: %q", action)
	}
	return instruction + "\n\n---\n\n" + body, nil
}
