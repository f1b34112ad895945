// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"carouselstudio/internal/models"
)

// ErrUnsafePrompt is returned when moderation flags a topic.
var ErrUnsafePrompt = errors.New("ai: prompt rejected by moderation")

// defaultSystemPrompt is used when AppSettings.SystemPrompt is empty.
const defaultSystemPrompt = `You are a social media strategist who writes high-performing Instagram and LinkedIn carousels.
You write punchy, concrete copy. Headlines are at most 8 words; bodies are at most 30 words.
You always answer in the exact format requested, without commentary.`

// ContentRequest is the input of the content step.
type ContentRequest struct {
	Topic string
	Niche string
	Style models.Style
}

// SlideContent is one content item returned by the model.
type SlideContent struct {
	Headline     string `json:"headline"`
	Body         string `json:"body"`
	VisualPrompt string `json:"visual_prompt"`
}

// Image is a generated image.
type Image struct {
	Data        []byte
	ContentType string
}

// AssistKind selects which kind of short suggestion Assist produces.
type AssistKind string

const (
	AssistHook AssistKind = "hook"
	AssistCTA  AssistKind = "cta"
)

// Gateway exposes the carousel-level AI operations. Every call takes the
// caller's AppSettings; the Gateway keeps no per-user state.
type Gateway struct {
	registry *Registry
}

// NewGateway returns a Gateway backed by registry.
func NewGateway(registry *Registry) *Gateway {
	return &Gateway{registry: registry}
}

// Registry returns the underlying provider registry.
func (g *Gateway) Registry() *Registry {
	return g.registry
}

// provider resolves the provider for settings without touching the network.
func (g *Gateway) provider(settings models.AppSettings) (Provider, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if settings.UsesCustomKey() {
		p, err := g.registry.WithKey(settings.CustomAPIKey)
		if err != nil {
			return nil, &models.ConfigurationError{Field: "provider", Reason: err.Error()}
		}
		return p, nil
	}
	p, err := g.registry.Active()
	if err != nil {
		return nil, &models.ConfigurationError{Field: "api_key", Reason: "no API key configured for provider " + g.registry.ActiveName()}
	}
	return p, nil
}

func (g *Gateway) generate(ctx context.Context, settings models.AppSettings, userPrompt string) (string, error) {
	p, err := g.provider(settings)
	if err != nil {
		return "", err
	}

	system := settings.SystemPrompt
	if strings.TrimSpace(system) == "" {
		system = defaultSystemPrompt
	}

	var out string
	if mg, ok := p.(ModelGenerator); ok {
		out, err = mg.GenerateWithModel(ctx, settings.Model, system, userPrompt)
	} else {
		out, err = p.Generate(ctx, system, userPrompt)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("ai: empty response from %s", p.Name())
	}
	return out, nil
}

func (g *Gateway) moderate(ctx context.Context, text string) error {
	res, err := g.registry.CheckPrompt(ctx, text)
	if err != nil {
		// Fail open: providers still apply their own safety filters.
		slog.Warn("moderation check failed, allowing prompt", "error", err)
		return nil
	}
	if !res.Safe {
		return fmt.Errorf("%w: %s", ErrUnsafePrompt, strings.Join(res.Categories, ", "))
	}
	return nil
}

// GenerateContent asks for 5 to 7 slides, hook first and call to action
// last. The count is requested, not enforced: any non-empty list of
// well-formed items is returned in the order received.
func (g *Gateway) GenerateContent(ctx context.Context, req ContentRequest, settings models.AppSettings) ([]SlideContent, error) {
	if _, err := g.provider(settings); err != nil {
		return nil, err
	}
	if err := g.moderate(ctx, req.Topic); err != nil {
		return nil, err
	}

	niche := req.Niche
	if niche == "" {
		niche = "general audience"
	}
	prompt := fmt.Sprintf(`Create a carousel about: %q
Niche: %s
Visual style: %s

Return ONLY a JSON array of 5 to 7 objects with the keys "headline", "body" and "visual_prompt".
The first slide is a scroll-stopping hook. The last slide is a call to action.
"visual_prompt" describes a background illustration in the %s style, with no text in the image.`,
		req.Topic, niche, req.Style, strings.ToLower(string(req.Style)))

	out, err := g.generate(ctx, settings, prompt)
	if err != nil {
		return nil, err
	}
	return parseSlides(out)
}

// GenerateImage renders one slide image. It fails when the provider returns
// no image bytes.
func (g *Gateway) GenerateImage(ctx context.Context, prompt string, aspect models.AspectRatio, settings models.AppSettings) (Image, error) {
	p, err := g.provider(settings)
	if err != nil {
		return Image{}, err
	}
	data, contentType, err := generateImage(ctx, p, prompt, string(aspect))
	if err != nil {
		return Image{}, err
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("ai: %s returned no image", p.Name())
	}
	return Image{Data: data, ContentType: contentType}, nil
}

// Assist returns short hook or call-to-action suggestions for a topic.
func (g *Gateway) Assist(ctx context.Context, topic string, kind AssistKind, settings models.AppSettings) ([]string, error) {
	var what string
	switch kind {
	case AssistHook:
		what = "scroll-stopping opening hooks"
	case AssistCTA:
		what = "closing calls to action"
	default:
		return nil, fmt.Errorf("ai: unknown assist kind %q", kind)
	}
	if _, err := g.provider(settings); err != nil {
		return nil, err
	}
	if err := g.moderate(ctx, topic); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf("Write 5 %s for a carousel about %q. Return ONLY a JSON array of strings.", what, topic)
	out, err := g.generate(ctx, settings, prompt)
	if err != nil {
		return nil, err
	}
	return parseStringList(out)
}

// Hashtags returns hashtags for a carousel, each starting with '#'.
func (g *Gateway) Hashtags(ctx context.Context, c *models.Carousel, settings models.AppSettings) ([]string, error) {
	prompt := "Suggest 10 to 15 relevant hashtags for this carousel. Return ONLY a JSON array of strings.\n\n" + deckText(c)
	out, err := g.generate(ctx, settings, prompt)
	if err != nil {
		return nil, err
	}
	tags, err := parseStringList(out)
	if err != nil {
		return nil, err
	}
	for i, t := range tags {
		t = strings.Join(strings.Fields(t), "")
		if !strings.HasPrefix(t, "#") {
			t = "#" + t
		}
		tags[i] = t
	}
	return tags, nil
}

// Caption returns a post caption for a carousel.
func (g *Gateway) Caption(ctx context.Context, c *models.Carousel, settings models.AppSettings) (string, error) {
	prompt := "Write an engaging social media caption (under 150 words) to accompany this carousel. " +
		"Return ONLY the caption text.\n\n" + deckText(c)
	out, err := g.generate(ctx, settings, prompt)
	if err != nil {
		return "", err
	}
	caption := strings.Trim(stripFences(out), "\"\n ")
	if caption == "" {
		return "", fmt.Errorf("ai: empty caption")
	}
	return caption, nil
}

// Thread rewrites a carousel as a thread of short posts, one per slide.
func (g *Gateway) Thread(ctx context.Context, c *models.Carousel, settings models.AppSettings) ([]string, error) {
	prompt := "Rewrite this carousel as a thread of short posts (max 280 characters each), one post per slide. " +
		"Return ONLY a JSON array of strings.\n\n" + deckText(c)
	out, err := g.generate(ctx, settings, prompt)
	if err != nil {
		return nil, err
	}
	return parseStringList(out)
}

// deckText renders a carousel as numbered plain text for prompts.
func deckText(c *models.Carousel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\nCategory: %s\n", c.Title, c.Category)
	for i, s := range c.Slides {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, s.Headline, s.Body)
	}
	return b.String()
}
