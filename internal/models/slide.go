// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// slideIDPrefix marks slide identifiers so they are never confused with
// carousel UUIDs in URLs and logs.
const slideIDPrefix = "sld"

// Slide is one entry of a carousel deck. The ID is assigned at creation and
// never changes; every other field is editable.
type Slide struct {
	ID                string `json:"id"`
	Headline          string `json:"headline"`
	Body              string `json:"body"`
	VisualPrompt      string `json:"visual_prompt"`
	ImageURL          string `json:"image_url,omitempty"`
	IsGeneratingImage bool   `json:"is_generating_image"`
}

// HasImage reports whether a generated image is attached to the slide.
func (s Slide) HasImage() bool {
	return s.ImageURL != ""
}

// NewSlideID returns a fresh prefixed NanoID (e.g. "sld-V1StGXR8_Z5jdHi6B-myT").
func NewSlideID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate slide id: %w", err)
	}
	return slideIDPrefix + "-" + id, nil
}
