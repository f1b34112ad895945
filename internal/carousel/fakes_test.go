// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package carousel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"carouselstudio/internal/ai"
	"carouselstudio/internal/models"
)

// fakeGateway returns canned content and fails image calls whose prompt is
// listed in failPrompts.
type fakeGateway struct {
	items       []ai.SlideContent
	contentErr  error
	failPrompts map[string]bool
	delay       time.Duration

	imageCalls atomic.Int32
	inFlight   atomic.Int32
	maxFlight  atomic.Int32
	release    chan struct{} // when non-nil, image calls block until closed
}

func (g *fakeGateway) GenerateContent(ctx context.Context, req ai.ContentRequest, settings models.AppSettings) ([]ai.SlideContent, error) {
	if g.contentErr != nil {
		return nil, g.contentErr
	}
	return g.items, nil
}

func (g *fakeGateway) GenerateImage(ctx context.Context, prompt string, aspect models.AspectRatio, settings models.AppSettings) (ai.Image, error) {
	g.imageCalls.Add(1)
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		m := g.maxFlight.Load()
		if n <= m || g.maxFlight.CompareAndSwap(m, n) {
			break
		}
	}

	if g.release != nil {
		<-g.release
	}
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	if g.failPrompts[prompt] {
		return ai.Image{}, errors.New("provider refused " + prompt)
	}
	return ai.Image{Data: []byte(prompt), ContentType: "image/png"}, nil
}

func sixItems() []ai.SlideContent {
	items := make([]ai.SlideContent, 6)
	for i := range items {
		items[i] = ai.SlideContent{
			Headline:     fmt.Sprintf("Tip %d", i+1),
			Body:         "body",
			VisualPrompt: fmt.Sprintf("prompt-%d", i+1),
		}
	}
	return items
}

// urlSink records stored images and returns stable fake URLs.
type urlSink struct{}

func (urlSink) Store(_ context.Context, id uuid.UUID, slideID string, img ai.Image) (string, error) {
	return "https://cdn.test/" + id.String() + "/" + slideID + ".png", nil
}

// memoryHistory is an in-memory History counting writes.
type memoryHistory struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.Carousel
	saves int
	err   error
}

func newMemoryHistory() *memoryHistory {
	return &memoryHistory{items: make(map[uuid.UUID]*models.Carousel)}
}

func (h *memoryHistory) Save(c *models.Carousel) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.saves++
	if h.err != nil {
		return h.err
	}
	h.items[c.ID] = c.Clone()
	return nil
}

func (h *memoryHistory) FindByID(id uuid.UUID) (*models.Carousel, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.items[id].Clone(), nil
}

func (h *memoryHistory) saveCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.saves
}

// memoryDrafts is an in-memory DraftStore.
type memoryDrafts struct {
	mu     sync.Mutex
	items  map[uuid.UUID]*models.Carousel
	putErr error
}

func newMemoryDrafts() *memoryDrafts {
	return &memoryDrafts{items: make(map[uuid.UUID]*models.Carousel)}
}

func (d *memoryDrafts) Get(_ context.Context, id uuid.UUID) (*models.Carousel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.items[id].Clone(), nil
}

func (d *memoryDrafts) Put(_ context.Context, c *models.Carousel) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.putErr != nil {
		return d.putErr
	}
	d.items[c.ID] = c.Clone()
	return nil
}

func defaultRequest() Request {
	prefs := models.DefaultPreferences()
	return Request{
		Topic:       "5 tips for Instagram growth",
		Niche:       "Digital Marketing",
		Preferences: prefs,
		Settings:    models.DefaultSettings(),
	}
}
