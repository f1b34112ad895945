// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package carousel

import "carouselstudio/internal/models"

// Direction is the side a slide moves towards.
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
)

// SlidePatch lists the fields to replace on a slide. Nil fields are kept.
type SlidePatch struct {
	Headline     *string `json:"headline,omitempty" validate:"omitempty,max=200"`
	Body         *string `json:"body,omitempty" validate:"omitempty,max=2000"`
	VisualPrompt *string `json:"visual_prompt,omitempty" validate:"omitempty,max=1000"`
	ImageURL     *string `json:"image_url,omitempty" validate:"omitempty,datauri"`
}

// IsEmpty reports whether the patch changes nothing.
func (p SlidePatch) IsEmpty() bool {
	return p.Headline == nil && p.Body == nil && p.VisualPrompt == nil && p.ImageURL == nil
}

// UpdateSlide returns a copy of c with the patched fields applied to the
// slide id. The slide keeps its position and id. When id is not in the
// deck, c itself is returned.
func UpdateSlide(c *models.Carousel, id string, p SlidePatch) *models.Carousel {
	idx := c.SlideIndex(id)
	if idx == -1 {
		return c
	}

	next := c.Clone()
	s := &next.Slides[idx]
	if p.Headline != nil {
		s.Headline = *p.Headline
	}
	if p.Body != nil {
		s.Body = *p.Body
	}
	if p.VisualPrompt != nil {
		s.VisualPrompt = *p.VisualPrompt
	}
	if p.ImageURL != nil {
		s.ImageURL = *p.ImageURL
	}
	return next
}

// MoveSlide swaps the slide id with its neighbour in direction d. Exactly
// two slides change position. Moving the first slide left, the last slide
// right or an unknown id returns c itself.
func MoveSlide(c *models.Carousel, id string, d Direction) *models.Carousel {
	idx := c.SlideIndex(id)
	if idx == -1 {
		return c
	}

	var other int
	switch d {
	case Left:
		other = idx - 1
	case Right:
		other = idx + 1
	default:
		return c
	}
	if other < 0 || other >= len(c.Slides) {
		return c
	}

	next := c.Clone()
	next.Slides[idx], next.Slides[other] = next.Slides[other], next.Slides[idx]
	return next
}

// UpdatePreferences returns a copy of c carrying prefs.
func UpdatePreferences(c *models.Carousel, prefs models.DesignPreferences) *models.Carousel {
	next := c.Clone()
	next.Preferences = prefs.Clone()
	return next
}

// MergeImages copies image state from settled into draft, matching slides
// by id. Slides edited or reordered in draft keep their edits and order.
func MergeImages(draft, settled *models.Carousel) *models.Carousel {
	next := draft.Clone()
	for i := range next.Slides {
		j := settled.SlideIndex(next.Slides[i].ID)
		if j == -1 {
			continue
		}
		next.Slides[i].IsGeneratingImage = settled.Slides[j].IsGeneratingImage
		if settled.Slides[j].ImageURL != "" && next.Slides[i].ImageURL == "" {
			next.Slides[i].ImageURL = settled.Slides[j].ImageURL
		}
	}
	return next
}
