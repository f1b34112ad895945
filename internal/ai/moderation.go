// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

// ModerationResult contains the outcome of a prompt safety check.
type ModerationResult struct {
	Safe       bool     // true if the prompt passes moderation
	Categories []string // flagged category names, empty when safe
}

// Moderator checks topics for policy violations before they are sent to
// generation endpoints.
type Moderator interface {
	CheckSafety(ctx context.Context, text string) (*ModerationResult, error)
}

// classifier is a moderation endpoint speaking the OpenAI wire format.
// Mistral omits the top-level "flagged" field, so flagged is derived from
// the categories when the endpoint does not report it.
type classifier struct {
	label   string
	model   string
	url     string
	apiKey  string
	client  *http.Client
	hasFlag bool
}

// newOpenAIModerator uses OpenAI's free /moderations endpoint.
func newOpenAIModerator(apiKey, baseURL string) *classifier {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &classifier{
		label:   "moderation",
		model:   "omni-moderation-latest",
		url:     baseURL + "/moderations",
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
		hasFlag: true,
	}
}

// newMistralModerator uses Mistral's paid /v1/moderations endpoint.
func newMistralModerator(apiKey, baseURL string) *classifier {
	if baseURL == "" {
		baseURL = "https://api.mistral.ai"
	}
	baseURL = strings.TrimSuffix(baseURL, "/v1")
	return &classifier{
		label:  "mistral moderation",
		model:  "mistral-moderation-latest",
		url:    baseURL + "/v1/moderations",
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (m *classifier) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	var result moderationResponse
	err := postJSON(ctx, m.client, m.label, m.url, bearer(m.apiKey),
		moderationRequest{Model: m.model, Input: text}, &result)
	if err != nil {
		return nil, err
	}

	if len(result.Results) == 0 {
		return &ModerationResult{Safe: true}, nil
	}
	r := result.Results[0]
	if m.hasFlag && !r.Flagged {
		return &ModerationResult{Safe: true}, nil
	}

	var flagged []string
	for cat, isFlagged := range r.Categories {
		if isFlagged {
			flagged = append(flagged, categoryLabel(cat))
		}
	}
	sort.Strings(flagged)

	return &ModerationResult{Safe: len(flagged) == 0 && !r.Flagged, Categories: flagged}, nil
}

// categoryLabel turns "hate/threatening" into "hate (threatening)".
func categoryLabel(cat string) string {
	display := cat
	if head, tail, ok := strings.Cut(cat, "/"); ok {
		display = head + " (" + tail + ")"
	}
	return strings.ReplaceAll(display, "_", " ")
}

// fallbackModerator asks primary first and switches to secondary for good
// once primary rejects its credentials (e.g. project-scoped OpenAI keys).
type fallbackModerator struct {
	primary   Moderator
	secondary Moderator
	demoted   atomic.Bool
}

func newFallbackModerator(primary, secondary Moderator) *fallbackModerator {
	return &fallbackModerator{primary: primary, secondary: secondary}
}

func (f *fallbackModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	if !f.demoted.Load() {
		res, err := f.primary.CheckSafety(ctx, text)
		var apiErr *APIError
		if err == nil || !errors.As(err, &apiErr) || !apiErr.IsAuth() {
			return res, err
		}
		slog.Warn("primary moderation rejected credentials, using fallback", "error", err)
		f.demoted.Store(true)
	}
	return f.secondary.CheckSafety(ctx, text)
}

type moderationRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []moderationResult `json:"results"`
}

type moderationResult struct {
	Flagged    bool            `json:"flagged"`
	Categories map[string]bool `json:"categories"`
}
