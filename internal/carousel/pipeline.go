// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package carousel assembles carousels from a topic, edits their slide
// decks and packages them for export.
package carousel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"carouselstudio/internal/ai"
	"carouselstudio/internal/metrics"
	"carouselstudio/internal/models"
)

// Gateway is the subset of the AI gateway the pipeline consumes.
type Gateway interface {
	GenerateContent(ctx context.Context, req ai.ContentRequest, settings models.AppSettings) ([]ai.SlideContent, error)
	GenerateImage(ctx context.Context, prompt string, aspect models.AspectRatio, settings models.AppSettings) (ai.Image, error)
}

// HistoryWriter records finished carousels. Save replaces by id.
type HistoryWriter interface {
	Save(c *models.Carousel) error
}

// Hooks observe the intermediate states of an assembly. Any may be nil.
// All receive a private copy of the carousel.
type Hooks struct {
	// Persist runs once the deck exists, before ContentReady. An error
	// aborts the assembly before any image is requested.
	Persist func(c *models.Carousel) error
	// ContentReady fires once the deck exists, before any image is fetched.
	ContentReady func(c *models.Carousel)
	// ImagesSettled fires after every image call has finished.
	ImagesSettled func(c *models.Carousel)
}

// Request is the input of one assembly.
type Request struct {
	Topic       string
	Niche       string
	Preferences models.DesignPreferences
	Settings    models.AppSettings
}

// Result is a finished assembly. Warning is non-nil when some slides have
// no image; the carousel is complete either way.
type Result struct {
	Carousel *models.Carousel
	Warning  *ImageGenerationError
}

// Assembler turns a topic into a carousel: one content call, then one
// concurrent image call per slide joined by a single barrier.
type Assembler struct {
	gateway Gateway
	sink    ImageSink
	history HistoryWriter
	now     func() time.Time
}

// NewAssembler returns an Assembler. A nil sink inlines images as data
// URLs; a nil history skips registration.
func NewAssembler(gateway Gateway, sink ImageSink, history HistoryWriter) *Assembler {
	if sink == nil {
		sink = DataURLSink{}
	}
	return &Assembler{gateway: gateway, sink: sink, history: history, now: time.Now}
}

// imageOutcome is one cell of the fan-out result table.
type imageOutcome struct {
	url string
	err error
}

// Assemble runs the pipeline. It fails only when settings are invalid or
// the content step fails; image failures are reported in Result.Warning.
func (a *Assembler) Assemble(ctx context.Context, req Request, hooks Hooks) (*Result, error) {
	start := a.now()
	if err := req.Settings.Validate(); err != nil {
		metrics.AssembliesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, err
	}

	items, err := a.gateway.GenerateContent(ctx, ai.ContentRequest{
		Topic: req.Topic,
		Niche: req.Niche,
		Style: req.Preferences.Style,
	}, req.Settings)
	if err != nil {
		metrics.AssembliesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, &ContentGenerationError{Topic: req.Topic, Err: err}
	}

	c, err := a.newCarousel(req, items)
	if err != nil {
		metrics.AssembliesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, &ContentGenerationError{Topic: req.Topic, Err: err}
	}
	if hooks.Persist != nil {
		if err := hooks.Persist(c.Clone()); err != nil {
			metrics.AssembliesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
			return nil, err
		}
	}
	if hooks.ContentReady != nil {
		hooks.ContentReady(c.Clone())
	}

	res := &Result{Carousel: c}
	if !c.Preferences.HasBackgroundImage() {
		res.Warning = a.fillImages(ctx, c, req.Settings)
	}

	a.register(c)
	if hooks.ImagesSettled != nil {
		hooks.ImagesSettled(c.Clone())
	}

	outcome := metrics.OutcomeSuccess
	if res.Warning != nil {
		outcome = metrics.OutcomePartial
		slog.Warn("carousel assembled with missing images",
			"carousel_id", c.ID, "failed", len(res.Warning.Failures), "slides", len(c.Slides))
	}
	metrics.AssembliesTotal.WithLabelValues(outcome).Inc()
	metrics.AssemblyDuration.Observe(a.now().Sub(start).Seconds())
	slog.Info("carousel assembled", "carousel_id", c.ID, "slides", len(c.Slides), "outcome", outcome)

	return res, nil
}

// newCarousel builds the deck from content items, one slide per item in
// the order received.
func (a *Assembler) newCarousel(req Request, items []ai.SlideContent) (*models.Carousel, error) {
	pending := !req.Preferences.HasBackgroundImage()
	slides := make([]models.Slide, len(items))
	for i, it := range items {
		id, err := models.NewSlideID()
		if err != nil {
			return nil, err
		}
		slides[i] = models.Slide{
			ID:                id,
			Headline:          it.Headline,
			Body:              it.Body,
			VisualPrompt:      it.VisualPrompt,
			IsGeneratingImage: pending,
		}
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generate carousel id: %w", err)
	}
	return &models.Carousel{
		ID:          id,
		Title:       req.Topic,
		Category:    req.Niche,
		Slides:      slides,
		Preferences: req.Preferences.Clone(),
		CreatedAt:   a.now().UTC(),
	}, nil
}

// fillImages issues one image call per slide and waits for all of them.
// Calls never return an error to the group, so one failure cannot cancel
// its siblings. Each goroutine writes only its own cell of results.
func (a *Assembler) fillImages(ctx context.Context, c *models.Carousel, settings models.AppSettings) *ImageGenerationError {
	results := make([]imageOutcome, len(c.Slides))

	var g errgroup.Group
	for i, s := range c.Slides {
		g.Go(func() error {
			results[i] = a.slideImage(ctx, c.ID, s, c.Preferences.AspectRatio, settings)
			return nil
		})
	}
	_ = g.Wait()

	var failures []SlideFailure
	for i := range c.Slides {
		c.Slides[i].IsGeneratingImage = false
		if results[i].err != nil {
			failures = append(failures, SlideFailure{SlideID: c.Slides[i].ID, Err: results[i].err})
			continue
		}
		c.Slides[i].ImageURL = results[i].url
	}
	if len(failures) == 0 {
		return nil
	}
	return &ImageGenerationError{Failures: failures}
}

func (a *Assembler) slideImage(ctx context.Context, carouselID uuid.UUID, s models.Slide, aspect models.AspectRatio, settings models.AppSettings) imageOutcome {
	img, err := a.gateway.GenerateImage(ctx, s.VisualPrompt, aspect, settings)
	if err == nil {
		var url string
		url, err = a.sink.Store(ctx, carouselID, s.ID, img)
		if err == nil {
			metrics.ImageCallsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
			return imageOutcome{url: url}
		}
	}
	metrics.ImageCallsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
	slog.Warn("slide image failed", "carousel_id", carouselID, "slide_id", s.ID, "error", err)
	return imageOutcome{err: err}
}

// register writes the carousel to history. A failed write is logged; the
// assembled carousel is still returned.
func (a *Assembler) register(c *models.Carousel) {
	if a.history == nil {
		return
	}
	if err := a.history.Save(c.Clone()); err != nil {
		slog.Error("failed to save carousel to history", "carousel_id", c.ID, "error", err)
	}
}

// RegenerateImage retries the image of one slide and returns the updated
// carousel. The input is not modified. A failed call returns an
// *ImageGenerationError for that slide.
func (a *Assembler) RegenerateImage(ctx context.Context, c *models.Carousel, slideID string, settings models.AppSettings) (*models.Carousel, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	idx := c.SlideIndex(slideID)
	if idx == -1 {
		return nil, ErrSlideNotFound
	}

	out := a.slideImage(ctx, c.ID, c.Slides[idx], c.Preferences.AspectRatio, settings)
	if out.err != nil {
		return nil, &ImageGenerationError{Failures: []SlideFailure{{SlideID: slideID, Err: out.err}}}
	}

	next := c.Clone()
	next.Slides[idx].ImageURL = out.url
	next.Slides[idx].IsGeneratingImage = false
	return next, nil
}
