// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// openAIProvider implements Provider against the OpenAI chat completions
// API and ImageGenerator against /images/generations.
type openAIProvider struct {
	config    ProviderConfig
	client    *http.Client
	imgClient *http.Client
	label     string
}

func newOpenAI(cfg ProviderConfig) *openAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return &openAIProvider{
		config:    cfg,
		client:    &http.Client{Timeout: 60 * time.Second},
		imgClient: &http.Client{Timeout: 120 * time.Second},
		label:     "openai",
	}
}

func (p *openAIProvider) Name() string { return "openai" }

func (p *openAIProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return p.GenerateWithModel(ctx, "", systemPrompt, userPrompt)
}

// GenerateWithModel sends a chat completion using model, or the configured
// default when model is empty.
func (p *openAIProvider) GenerateWithModel(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	if model == "" {
		model = p.config.Model
	}
	return p.doChat(ctx, openAIRequest{
		Model: model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
}

// doChat is shared with Mistral, which speaks the same wire format.
func (p *openAIProvider) doChat(ctx context.Context, body openAIRequest) (string, error) {
	var result openAIResponse
	err := postJSON(ctx, p.client, p.label, p.config.BaseURL+"/chat/completions",
		bearer(p.config.APIKey), body, &result)
	if err != nil {
		return "", err
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices returned", p.label)
	}
	return result.Choices[0].Message.Content, nil
}

// GenerateImage renders prompt with the configured image model. The image
// comes back base64-encoded in the JSON body.
func (p *openAIProvider) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, string, error) {
	model := p.config.ModelImage
	if model == "" {
		model = "gpt-image-1"
	}

	body := openAIImageRequest{
		Model:  model,
		Prompt: prompt,
		N:      1,
		Size:   openAIImageSize(model, aspectRatio),
	}
	// gpt-image models always answer with b64_json and reject the parameter.
	if strings.HasPrefix(model, "dall-e") {
		body.ResponseFormat = "b64_json"
	}

	var result openAIImageResponse
	err := postJSON(ctx, p.imgClient, "openai image", p.config.BaseURL+"/images/generations",
		bearer(p.config.APIKey), body, &result)
	if err != nil {
		return nil, "", err
	}

	for _, d := range result.Data {
		if d.B64JSON == "" {
			continue
		}
		img, err := base64.StdEncoding.DecodeString(d.B64JSON)
		if err != nil {
			return nil, "", fmt.Errorf("openai image decode base64: %w", err)
		}
		return img, "image/png", nil
	}
	return nil, "", fmt.Errorf("openai image: no image data in response")
}

// openAIImageSize maps a slide aspect ratio to the nearest size the model
// accepts. Portrait ratios share the tallest supported size.
func openAIImageSize(model, aspectRatio string) string {
	switch aspectRatio {
	case "3:4", "9:16":
		if model == "dall-e-3" {
			return "1024x1792"
		}
		if model == "dall-e-2" {
			return "1024x1024"
		}
		return "1024x1536"
	default:
		return "1024x1024"
	}
}

// --- OpenAI-compatible request/response types ---

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
}

type openAIChoice struct {
	Message openAIMessage `json:"message"`
}

type openAIImageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type openAIImageResponse struct {
	Data []openAIImageData `json:"data"`
}

type openAIImageData struct {
	B64JSON string `json:"b64_json"`
}
