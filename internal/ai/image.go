// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
)

// ImageGenerator is an optional interface for providers that can render
// images. Claude and Mistral are text-only.
type ImageGenerator interface {
	// GenerateImage renders prompt at the given aspect ratio ("1:1",
	// "3:4", "9:16"). Returns the raw image bytes and their MIME type.
	GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, string, error)
}

// SupportsImageGeneration returns true if the active provider can generate images.
func (r *Registry) SupportsImageGeneration() bool {
	p, err := r.Active()
	if err != nil {
		return false
	}
	_, ok := p.(ImageGenerator)
	return ok
}

func generateImage(ctx context.Context, p Provider, prompt, aspectRatio string) ([]byte, string, error) {
	ig, ok := p.(ImageGenerator)
	if !ok {
		return nil, "", fmt.Errorf("ai: provider %q does not support image generation", p.Name())
	}
	return ig.GenerateImage(ctx, prompt, aspectRatio)
}
