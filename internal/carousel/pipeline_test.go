// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package carousel

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"carouselstudio/internal/models"
)

func TestAssembleAllImagesSucceed(t *testing.T) {
	gw := &fakeGateway{items: sixItems()}
	hist := newMemoryHistory()
	a := NewAssembler(gw, urlSink{}, hist)

	var ready, settled *models.Carousel
	res, err := a.Assemble(context.Background(), defaultRequest(), Hooks{
		ContentReady:  func(c *models.Carousel) { ready = c },
		ImagesSettled: func(c *models.Carousel) { settled = c },
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if res.Warning != nil {
		t.Errorf("unexpected warning: %v", res.Warning)
	}

	c := res.Carousel
	if len(c.Slides) != 6 {
		t.Fatalf("slides = %d, want 6", len(c.Slides))
	}
	if c.Title != "5 tips for Instagram growth" || c.Category != "Digital Marketing" {
		t.Errorf("title/category = %q/%q", c.Title, c.Category)
	}

	ids := make(map[string]bool)
	for i, s := range c.Slides {
		if ids[s.ID] {
			t.Errorf("duplicate slide id %s", s.ID)
		}
		ids[s.ID] = true
		if s.IsGeneratingImage {
			t.Errorf("slide %d still generating after barrier", i)
		}
		if !s.HasImage() {
			t.Errorf("slide %d has no image", i)
		}
		if s.Headline != sixItems()[i].Headline {
			t.Errorf("slide %d headline = %q, order not preserved", i, s.Headline)
		}
	}

	if ready == nil || ready.PendingImages() != 6 {
		t.Fatalf("ContentReady should see 6 pending slides, got %v", ready)
	}
	for _, s := range ready.Slides {
		if s.HasImage() {
			t.Error("ContentReady snapshot should have no images yet")
		}
	}
	if settled == nil || !settled.IsSettled() {
		t.Error("ImagesSettled should see a settled deck")
	}
	if int(gw.imageCalls.Load()) != 6 {
		t.Errorf("image calls = %d, want 6", gw.imageCalls.Load())
	}
	if hist.saveCount() != 1 {
		t.Errorf("history saves = %d, want exactly 1", hist.saveCount())
	}
}

func TestAssemblePartialImageFailure(t *testing.T) {
	gw := &fakeGateway{items: sixItems(), failPrompts: map[string]bool{"prompt-2": true, "prompt-5": true}}
	hist := newMemoryHistory()
	a := NewAssembler(gw, urlSink{}, hist)

	res, err := a.Assemble(context.Background(), defaultRequest(), Hooks{})
	if err != nil {
		t.Fatalf("partial failure must not fail the assembly: %v", err)
	}
	c := res.Carousel
	if len(c.Slides) != 6 {
		t.Fatalf("slides = %d, want 6", len(c.Slides))
	}

	withImage := 0
	for _, s := range c.Slides {
		if s.IsGeneratingImage {
			t.Errorf("slide %s still generating", s.ID)
		}
		if s.HasImage() {
			withImage++
		}
	}
	if withImage != 4 {
		t.Errorf("slides with image = %d, want 4", withImage)
	}

	if res.Warning == nil {
		t.Fatal("expected one aggregate warning")
	}
	if len(res.Warning.Failures) != 2 {
		t.Fatalf("failures = %d, want 2", len(res.Warning.Failures))
	}
	want := []string{c.Slides[1].ID, c.Slides[4].ID}
	for i, id := range res.Warning.SlideIDs() {
		if id != want[i] {
			t.Errorf("failure %d = %s, want %s", i, id, want[i])
		}
	}
	if c.Slides[1].HasImage() || c.Slides[4].HasImage() {
		t.Error("failed slides should have no image")
	}
	wantMsg := "image generation failed for 2 slide(s): " + want[0] + ", " + want[1]
	if res.Warning.Error() != wantMsg {
		t.Errorf("warning message = %q, want %q", res.Warning.Error(), wantMsg)
	}
	if hist.saveCount() != 1 {
		t.Errorf("history saves = %d, want 1", hist.saveCount())
	}
}

func TestAssembleAllImagesFail(t *testing.T) {
	fail := map[string]bool{}
	for _, it := range sixItems() {
		fail[it.VisualPrompt] = true
	}
	a := NewAssembler(&fakeGateway{items: sixItems(), failPrompts: fail}, urlSink{}, nil)

	res, err := a.Assemble(context.Background(), defaultRequest(), Hooks{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(res.Warning.Failures) != 6 || len(res.Carousel.Slides) != 6 {
		t.Errorf("failures=%d slides=%d", len(res.Warning.Failures), len(res.Carousel.Slides))
	}
}

func TestAssembleBackgroundImageSkipsImageCalls(t *testing.T) {
	gw := &fakeGateway{items: sixItems()}
	hist := newMemoryHistory()
	a := NewAssembler(gw, urlSink{}, hist)

	req := defaultRequest()
	req.Preferences.BackgroundImage = "data:image/png;base64,iVBORw0KGgo="

	var ready *models.Carousel
	res, err := a.Assemble(context.Background(), req, Hooks{ContentReady: func(c *models.Carousel) { ready = c }})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if gw.imageCalls.Load() != 0 {
		t.Errorf("image calls = %d, want 0", gw.imageCalls.Load())
	}
	if ready.PendingImages() != 0 {
		t.Error("slides should not be generating when a background image is set")
	}
	if res.Warning != nil {
		t.Error("no warning expected")
	}
	if hist.saveCount() != 1 {
		t.Errorf("history saves = %d, want 1", hist.saveCount())
	}
}

func TestAssembleContentFailure(t *testing.T) {
	hist := newMemoryHistory()
	cause := errors.New("upstream 500")
	a := NewAssembler(&fakeGateway{contentErr: cause}, urlSink{}, hist)

	called := false
	res, err := a.Assemble(context.Background(), defaultRequest(), Hooks{ContentReady: func(*models.Carousel) { called = true }})
	if res != nil {
		t.Error("no carousel should be produced")
	}
	var cge *ContentGenerationError
	if !errors.As(err, &cge) {
		t.Fatalf("error = %v, want *ContentGenerationError", err)
	}
	if !errors.Is(err, cause) {
		t.Error("ContentGenerationError should unwrap to the gateway error")
	}
	if called || hist.saveCount() != 0 {
		t.Error("nothing should be published on content failure")
	}
}

func TestAssembleConfigurationError(t *testing.T) {
	gw := &fakeGateway{items: sixItems()}
	a := NewAssembler(gw, urlSink{}, nil)

	req := defaultRequest()
	req.Settings = models.AppSettings{APIKeySource: models.APIKeySourceCustom}

	_, err := a.Assemble(context.Background(), req, Hooks{})
	var cfgErr *models.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *ConfigurationError", err)
	}
}

func TestAssembleAcceptsAnyItemCount(t *testing.T) {
	for _, n := range []int{1, 3, 9} {
		items := sixItems()
		for len(items) < n {
			items = append(items, items[0])
		}
		items = items[:n]
		a := NewAssembler(&fakeGateway{items: items}, urlSink{}, nil)
		res, err := a.Assemble(context.Background(), defaultRequest(), Hooks{})
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if len(res.Carousel.Slides) != n {
			t.Errorf("n=%d: slides = %d", n, len(res.Carousel.Slides))
		}
	}
}

func TestAssembleImagesRunConcurrently(t *testing.T) {
	gw := &fakeGateway{items: sixItems(), release: make(chan struct{})}
	a := NewAssembler(gw, urlSink{}, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.Assemble(context.Background(), defaultRequest(), Hooks{})
	}()

	deadline := time.After(2 * time.Second)
	for gw.inFlight.Load() < 6 {
		select {
		case <-deadline:
			t.Fatalf("only %d image calls in flight, want 6", gw.inFlight.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	close(gw.release)
	<-done

	if gw.maxFlight.Load() != 6 {
		t.Errorf("max in flight = %d, want 6", gw.maxFlight.Load())
	}
}

func TestAssembleInputPreferencesNotShared(t *testing.T) {
	a := NewAssembler(&fakeGateway{items: sixItems()}, urlSink{}, nil)
	req := defaultRequest()
	res, err := a.Assemble(context.Background(), req, Hooks{})
	if err != nil {
		t.Fatal(err)
	}
	res.Carousel.Preferences.Font = "Lora"
	if req.Preferences.Font != "Inter" {
		t.Error("carousel preferences must be a copy")
	}
}

func TestRegenerateImage(t *testing.T) {
	gw := &fakeGateway{items: sixItems(), failPrompts: map[string]bool{"prompt-3": true}}
	a := NewAssembler(gw, urlSink{}, nil)
	res, _ := a.Assemble(context.Background(), defaultRequest(), Hooks{})
	c := res.Carousel
	target := c.Slides[2].ID

	if _, err := a.RegenerateImage(context.Background(), c, target, models.DefaultSettings()); err == nil {
		t.Fatal("expected failure while the provider still refuses")
	}

	delete(gw.failPrompts, "prompt-3")
	next, err := a.RegenerateImage(context.Background(), c, target, models.DefaultSettings())
	if err != nil {
		t.Fatalf("RegenerateImage: %v", err)
	}
	if !next.Slides[2].HasImage() {
		t.Error("slide should have an image after regeneration")
	}
	if c.Slides[2].HasImage() {
		t.Error("input carousel must not be modified")
	}

	if _, err := a.RegenerateImage(context.Background(), c, "sld-nope", models.DefaultSettings()); !errors.Is(err, ErrSlideNotFound) {
		t.Errorf("error = %v, want ErrSlideNotFound", err)
	}
}

func TestDataURLSink(t *testing.T) {
	gw := &fakeGateway{items: sixItems()[:1]}
	a := NewAssembler(gw, nil, nil)
	res, err := a.Assemble(context.Background(), defaultRequest(), Hooks{})
	if err != nil {
		t.Fatal(err)
	}
	if url := res.Carousel.Slides[0].ImageURL; !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("ImageURL = %q, want data URL", url)
	}
}
