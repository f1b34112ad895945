// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package carousel

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAssemblyInFlight rejects a second assembly from the same session
	// while the first is still waiting on the AI gateway.
	ErrAssemblyInFlight = errors.New("carousel: an assembly is already in progress")

	// ErrImagesPending rejects an export while slide images are still
	// being generated.
	ErrImagesPending = errors.New("carousel: slide images are still being generated")

	// ErrNotFound means no draft or history entry exists for the id.
	ErrNotFound = errors.New("carousel: not found")

	// ErrSlideNotFound means the slide id is not part of the deck.
	ErrSlideNotFound = errors.New("carousel: slide not found")
)

// ContentGenerationError aborts an assembly: no carousel is produced.
type ContentGenerationError struct {
	Topic string
	Err   error
}

func (e *ContentGenerationError) Error() string {
	return fmt.Sprintf("content generation failed for %q: %v", e.Topic, e.Err)
}

func (e *ContentGenerationError) Unwrap() error { return e.Err }

// SlideFailure is one failed image call.
type SlideFailure struct {
	SlideID string
	Err     error
}

// ImageGenerationError is the aggregate, non-fatal warning for an assembly
// whose deck is complete but where some slides have no image.
type ImageGenerationError struct {
	Failures []SlideFailure
}

func (e *ImageGenerationError) Error() string {
	return fmt.Sprintf("image generation failed for %d slide(s): %s", len(e.Failures), strings.Join(e.SlideIDs(), ", "))
}

func (e *ImageGenerationError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// SlideIDs returns the ids of the slides that have no image.
func (e *ImageGenerationError) SlideIDs() []string {
	ids := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		ids[i] = f.SlideID
	}
	return ids
}

// CaptureError aborts an export when a slide visual is missing or cannot
// be encoded. The carousel itself is unaffected.
type CaptureError struct {
	SlideID string
	Err     error
}

func (e *CaptureError) Error() string {
	if e.SlideID == "" {
		return fmt.Sprintf("capture: %v", e.Err)
	}
	return fmt.Sprintf("capture slide %s: %v", e.SlideID, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// PackagingError aborts an export when the archive cannot be written.
type PackagingError struct {
	Err error
}

func (e *PackagingError) Error() string {
	return fmt.Sprintf("package archive: %v", e.Err)
}

func (e *PackagingError) Unwrap() error { return e.Err }
