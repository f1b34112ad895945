// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Carousel is an ordered, editable deck of slides produced from one topic.
// Slide order is the canonical display and export order. A Carousel owns
// its slide slice and preferences; use Clone before handing it to code that
// may mutate either.
type Carousel struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Category    string            `json:"category"`
	Slides      []Slide           `json:"slides"`
	Preferences DesignPreferences `json:"preferences"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Clone returns a deep copy. The copy shares no mutable state with c.
func (c *Carousel) Clone() *Carousel {
	if c == nil {
		return nil
	}
	out := *c
	out.Slides = make([]Slide, len(c.Slides))
	copy(out.Slides, c.Slides)
	return &out
}

// SlideIndex returns the position of the slide with the given id, or -1.
func (c *Carousel) SlideIndex(id string) int {
	for i := range c.Slides {
		if c.Slides[i].ID == id {
			return i
		}
	}
	return -1
}

// PendingImages counts slides still waiting for their image call to settle.
func (c *Carousel) PendingImages() int {
	n := 0
	for _, s := range c.Slides {
		if s.IsGeneratingImage {
			n++
		}
	}
	return n
}

// IsSettled reports whether no slide is waiting for an image.
func (c *Carousel) IsSettled() bool {
	return c.PendingImages() == 0
}
