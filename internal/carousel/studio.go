// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package carousel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"carouselstudio/internal/models"
)

// DraftStore holds the working copy of each open carousel. Get returns
// nil, nil on a miss.
type DraftStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Carousel, error)
	Put(ctx context.Context, c *models.Carousel) error
}

// History is the persisted list of carousels. FindByID returns nil, nil
// on a miss.
type History interface {
	HistoryWriter
	FindByID(id uuid.UUID) (*models.Carousel, error)
}

// Capturer renders every slide of a carousel. Visuals may come back in
// any order.
type Capturer interface {
	Capture(ctx context.Context, c *models.Carousel) ([]Visual, error)
}

// Studio is the single writer of every open carousel. Operations on one
// carousel id run one at a time; an in-flight assembly and an edit of
// the same deck never interleave.
type Studio struct {
	assembler *Assembler
	packager  *Packager
	capturer  Capturer
	drafts    DraftStore
	history   History

	mu       sync.Mutex
	locks    map[uuid.UUID]*lockEntry
	sessions map[string]struct{}
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewStudio wires a studio. The assembler must not have its own history:
// the studio registers the merged draft itself.
func NewStudio(gateway Gateway, sink ImageSink, capturer Capturer, drafts DraftStore, history History) *Studio {
	s := &Studio{
		packager: NewPackager(),
		capturer: capturer,
		drafts:   drafts,
		history:  history,
		locks:    make(map[uuid.UUID]*lockEntry),
		sessions: make(map[string]struct{}),
	}
	s.assembler = NewAssembler(gateway, sink, nil)
	return s
}

// lock acquires the per-carousel lock and returns its release func.
func (s *Studio) lock(id uuid.UUID) func() {
	s.mu.Lock()
	e, ok := s.locks[id]
	if !ok {
		e = &lockEntry{}
		s.locks[id] = e
	}
	e.refs++
	s.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		s.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

func (s *Studio) beginSession(session string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.sessions[session]; busy {
		return false
	}
	s.sessions[session] = struct{}{}
	return true
}

func (s *Studio) endSession(session string) {
	s.mu.Lock()
	delete(s.sessions, session)
	s.mu.Unlock()
}

// Assemble runs an assembly for session. The draft becomes visible as soon
// as content is ready; edits made while images are in flight are kept and
// the settled images are merged into them by slide id. The merged deck is
// saved to history once.
func (s *Studio) Assemble(ctx context.Context, session string, req Request, hooks Hooks) (*Result, error) {
	if !s.beginSession(session) {
		return nil, ErrAssemblyInFlight
	}
	defer s.endSession(session)

	inner := Hooks{
		Persist: func(c *models.Carousel) error {
			unlock := s.lock(c.ID)
			defer unlock()
			if err := s.drafts.Put(ctx, c); err != nil {
				return fmt.Errorf("store draft: %w", err)
			}
			return nil
		},
		ContentReady: hooks.ContentReady,
	}

	res, err := s.assembler.Assemble(ctx, req, inner)
	if err != nil {
		return nil, err
	}

	merged, err := s.settle(ctx, res.Carousel)
	if err != nil {
		return nil, err
	}
	res.Carousel = merged
	if hooks.ImagesSettled != nil {
		hooks.ImagesSettled(merged.Clone())
	}
	return res, nil
}

// settle merges the assembled images into the current draft and registers
// the result in history. A failed history write is logged; the draft stays
// open and can be saved again.
func (s *Studio) settle(ctx context.Context, settled *models.Carousel) (*models.Carousel, error) {
	unlock := s.lock(settled.ID)
	defer unlock()

	draft, err := s.drafts.Get(ctx, settled.ID)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	merged := settled
	if draft != nil {
		merged = MergeImages(draft, settled)
	}
	if err := s.drafts.Put(ctx, merged); err != nil {
		return nil, fmt.Errorf("store draft: %w", err)
	}
	if err := s.history.Save(merged.Clone()); err != nil {
		slog.Error("failed to save carousel to history", "carousel_id", merged.ID, "error", err)
	}
	return merged, nil
}

// Get returns the working copy of id, falling back to history.
func (s *Studio) Get(ctx context.Context, id uuid.UUID) (*models.Carousel, error) {
	c, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if c != nil {
		return c, nil
	}
	c, err = s.history.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// mutate applies fn to the current version of id under its lock and stores
// the result as the new draft.
func (s *Studio) mutate(ctx context.Context, id uuid.UUID, fn func(c *models.Carousel) (*models.Carousel, error)) (*models.Carousel, error) {
	unlock := s.lock(id)
	defer unlock()

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := fn(c)
	if err != nil {
		return nil, err
	}
	if next == c {
		return c, nil
	}
	if err := s.drafts.Put(ctx, next); err != nil {
		return nil, fmt.Errorf("store draft: %w", err)
	}
	return next, nil
}

// UpdateSlide applies a field patch to one slide.
func (s *Studio) UpdateSlide(ctx context.Context, id uuid.UUID, slideID string, p SlidePatch) (*models.Carousel, error) {
	return s.mutate(ctx, id, func(c *models.Carousel) (*models.Carousel, error) {
		if c.SlideIndex(slideID) == -1 {
			return nil, ErrSlideNotFound
		}
		return UpdateSlide(c, slideID, p), nil
	})
}

// MoveSlide swaps a slide with its neighbour. Out-of-bounds moves are no-ops.
func (s *Studio) MoveSlide(ctx context.Context, id uuid.UUID, slideID string, d Direction) (*models.Carousel, error) {
	return s.mutate(ctx, id, func(c *models.Carousel) (*models.Carousel, error) {
		if c.SlideIndex(slideID) == -1 {
			return nil, ErrSlideNotFound
		}
		return MoveSlide(c, slideID, d), nil
	})
}

// UpdatePreferences replaces the design preferences of a carousel.
func (s *Studio) UpdatePreferences(ctx context.Context, id uuid.UUID, prefs models.DesignPreferences) (*models.Carousel, error) {
	return s.mutate(ctx, id, func(c *models.Carousel) (*models.Carousel, error) {
		return UpdatePreferences(c, prefs), nil
	})
}

// RegenerateImage retries one slide image. The AI call runs outside the
// lock; its result is applied to whatever the deck looks like when it
// returns.
func (s *Studio) RegenerateImage(ctx context.Context, id uuid.UUID, slideID string, settings models.AppSettings) (*models.Carousel, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	regenerated, err := s.assembler.RegenerateImage(ctx, c, slideID, settings)
	if err != nil {
		return nil, err
	}
	idx := regenerated.SlideIndex(slideID)
	url := regenerated.Slides[idx].ImageURL

	return s.mutate(ctx, id, func(cur *models.Carousel) (*models.Carousel, error) {
		i := cur.SlideIndex(slideID)
		if i == -1 {
			return nil, ErrSlideNotFound
		}
		next := cur.Clone()
		next.Slides[i].ImageURL = url
		next.Slides[i].IsGeneratingImage = false
		return next, nil
	})
}

// Save writes the current working copy to history.
func (s *Studio) Save(ctx context.Context, id uuid.UUID) (*models.Carousel, error) {
	unlock := s.lock(id)
	defer unlock()

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.history.Save(c); err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}
	return c, nil
}

// Export captures every slide of the working copy and packages the
// visuals. A deck whose images have not settled is not exported. Export
// failures leave the carousel untouched.
func (s *Studio) Export(ctx context.Context, id uuid.UUID) (*Archive, error) {
	unlock := s.lock(id)
	c, err := s.Get(ctx, id)
	unlock()
	if err != nil {
		return nil, err
	}
	if !c.IsSettled() {
		return nil, ErrImagesPending
	}

	visuals, err := s.capturer.Capture(ctx, c)
	if err != nil {
		return nil, err
	}
	return s.packager.Export(ctx, c, visuals)
}
