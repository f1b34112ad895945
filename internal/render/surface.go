// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"carouselstudio/internal/carousel"
	"carouselstudio/internal/models"
)

// Surface captures every slide of a carousel as an image.
type Surface struct {
	raster  *Rasterizer
	workers int
}

// NewSurface returns a Surface that renders up to workers slides at once.
// workers <= 0 uses GOMAXPROCS.
func NewSurface(raster *Rasterizer, workers int) *Surface {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Surface{raster: raster, workers: workers}
}

// Capture renders all slides concurrently. Visuals are returned in the
// order rendering finished, which is generally not deck order. Any failure
// aborts the capture with a *carousel.CaptureError.
func (s *Surface) Capture(ctx context.Context, c *models.Carousel) ([]carousel.Visual, error) {
	start := time.Now()

	backdrop, err := s.raster.Backdrop(ctx, c.Preferences)
	if err != nil {
		return nil, &carousel.CaptureError{Err: err}
	}

	var (
		mu      sync.Mutex
		visuals = make([]carousel.Visual, 0, len(c.Slides))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, slide := range c.Slides {
		g.Go(func() error {
			img, err := s.raster.Render(gctx, c, i, backdrop)
			if err != nil {
				return &carousel.CaptureError{SlideID: slide.ID, Err: err}
			}
			mu.Lock()
			visuals = append(visuals, carousel.Visual{SlideID: slide.ID, Image: img})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("slides captured",
		"carousel_id", c.ID,
		"slides", len(visuals),
		"duration", time.Since(start),
	)
	return visuals, nil
}
