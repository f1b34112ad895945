// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package carousel

import (
	"context"
	"encoding/base64"

	"github.com/google/uuid"

	"carouselstudio/internal/ai"
)

// ImageSink turns generated image bytes into the URL stored on a slide.
type ImageSink interface {
	Store(ctx context.Context, carouselID uuid.UUID, slideID string, img ai.Image) (string, error)
}

// DataURLSink inlines images as base64 data URLs. Used when no object
// storage is configured.
type DataURLSink struct{}

func (DataURLSink) Store(_ context.Context, _ uuid.UUID, _ string, img ai.Image) (string, error) {
	ct := img.ContentType
	if ct == "" {
		ct = "image/png"
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(img.Data), nil
}
