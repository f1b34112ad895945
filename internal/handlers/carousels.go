// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"carouselstudio/internal/carousel"
	"carouselstudio/internal/models"
	"carouselstudio/internal/store"
)

// createRequest is the body of POST /api/carousels.
type createRequest struct {
	Topic       string                    `json:"topic" validate:"required,max=300"`
	Niche       string                    `json:"niche" validate:"max=120"`
	Preferences *models.DesignPreferences `json:"preferences"`
}

// warningPayload reports slides that finished without an image.
type warningPayload struct {
	Message        string   `json:"message"`
	FailedSlideIDs []string `json:"failed_slide_ids"`
}

// createResponse is the JSON result of a non-streaming assembly.
type createResponse struct {
	Carousel *models.Carousel `json:"carousel"`
	Warning  *warningPayload  `json:"warning,omitempty"`
}

func newWarning(w *carousel.ImageGenerationError) *warningPayload {
	if w == nil {
		return nil
	}
	return &warningPayload{Message: w.Error(), FailedSlideIDs: w.SlideIDs()}
}

// CreateCarousel assembles a carousel from a topic. With
// "Accept: text/event-stream" the placeholder deck is streamed as soon as
// content is ready and the final deck once every image call has settled.
func (a *API) CreateCarousel(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	body.Topic = strings.TrimSpace(body.Topic)
	body.Niche = strings.TrimSpace(body.Niche)
	if err := a.validate.Validate(body); err != nil {
		writeFailure(w, r, err)
		return
	}

	prefs := models.DefaultPreferences()
	if body.Preferences != nil {
		prefs = body.Preferences.Clone()
	}
	if err := a.validate.Validate(prefs); err != nil {
		writeFailure(w, r, err)
		return
	}

	req := carousel.Request{
		Topic:       body.Topic,
		Niche:       body.Niche,
		Preferences: prefs,
		Settings:    a.loadSettings(),
	}

	if wantsEventStream(r) {
		if stream, ok := newEventStream(w); ok {
			a.streamAssembly(stream, r, req)
			return
		}
	}

	res, err := a.studio.Assemble(r.Context(), sessionKey(r), req, carousel.Hooks{})
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{Carousel: res.Carousel, Warning: newWarning(res.Warning)})
}

// streamAssembly runs an assembly and reports its progress as events.
// Once the stream has started, failures are sent as an error event.
func (a *API) streamAssembly(stream *eventStream, r *http.Request, req carousel.Request) {
	hooks := carousel.Hooks{
		ContentReady: func(c *models.Carousel) {
			if err := stream.send(EventContentReady, c); err != nil {
				slog.Warn("event stream write failed", "event", EventContentReady, "error", err)
			}
		},
		ImagesSettled: func(c *models.Carousel) {
			if err := stream.send(EventImagesSettled, c); err != nil {
				slog.Warn("event stream write failed", "event", EventImagesSettled, "error", err)
			}
		},
	}

	res, err := a.studio.Assemble(r.Context(), sessionKey(r), req, hooks)
	if err != nil {
		status, body := classify(r, err)
		stream.send(EventError, map[string]any{"status": status, "error": body.Error, "fields": body.Fields})
		return
	}
	if res.Warning != nil {
		stream.send(EventWarning, newWarning(res.Warning))
	}
}

// ListCarousels returns the saved history, newest first.
func (a *API) ListCarousels(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	list, err := a.history.List(limit)
	if err != nil {
		slog.Error("failed to list carousels", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if list == nil {
		list = []models.Carousel{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"carousels": list})
}

// GetCarousel returns the working copy of a carousel, or its history entry.
func (a *API) GetCarousel(w http.ResponseWriter, r *http.Request) {
	id, ok := carouselID(w, r)
	if !ok {
		return
	}
	c, err := a.studio.Get(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// UpdateSlide patches the text fields or image of one slide.
func (a *API) UpdateSlide(w http.ResponseWriter, r *http.Request) {
	id, ok := carouselID(w, r)
	if !ok {
		return
	}
	var patch carousel.SlidePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.IsEmpty() {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if err := a.validate.Validate(patch); err != nil {
		writeFailure(w, r, err)
		return
	}

	c, err := a.studio.UpdateSlide(r.Context(), id, chi.URLParam(r, "slideID"), patch)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// moveRequest is the body of the move endpoint.
type moveRequest struct {
	Direction carousel.Direction `json:"direction" validate:"required,oneof=left right"`
}

// MoveSlide swaps a slide with its left or right neighbour. Moving past
// either end returns the deck unchanged.
func (a *API) MoveSlide(w http.ResponseWriter, r *http.Request) {
	id, ok := carouselID(w, r)
	if !ok {
		return
	}
	var body moveRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Validate(body); err != nil {
		writeFailure(w, r, err)
		return
	}

	c, err := a.studio.MoveSlide(r.Context(), id, chi.URLParam(r, "slideID"), body.Direction)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// RegenerateImage retries the image of one slide.
func (a *API) RegenerateImage(w http.ResponseWriter, r *http.Request) {
	id, ok := carouselID(w, r)
	if !ok {
		return
	}
	c, err := a.studio.RegenerateImage(r.Context(), id, chi.URLParam(r, "slideID"), a.loadSettings())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// UpdatePreferences replaces the design preferences of a carousel.
func (a *API) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	id, ok := carouselID(w, r)
	if !ok {
		return
	}
	var prefs models.DesignPreferences
	if err := decodeJSON(w, r, &prefs); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Validate(prefs); err != nil {
		writeFailure(w, r, err)
		return
	}

	c, err := a.studio.UpdatePreferences(r.Context(), id, prefs)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// SaveCarousel writes the working copy to history.
func (a *API) SaveCarousel(w http.ResponseWriter, r *http.Request) {
	id, ok := carouselID(w, r)
	if !ok {
		return
	}
	c, err := a.studio.Save(r.Context(), id)
	if err != nil {
		if errors.Is(err, carousel.ErrNotFound) {
			writeFailure(w, r, err)
			return
		}
		slog.Error("failed to save carousel", "carousel_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save carousel")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ExportCarousel renders every slide and returns the zip archive. With
// ?delivery=link and object storage configured, the archive is uploaded
// and a time-limited download link is returned instead.
func (a *API) ExportCarousel(w http.ResponseWriter, r *http.Request) {
	id, ok := carouselID(w, r)
	if !ok {
		return
	}
	archive, err := a.studio.Export(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	if r.URL.Query().Get("delivery") == "link" {
		if a.archives == nil {
			writeError(w, http.StatusNotImplemented, "download links require object storage")
			return
		}
		url, err := a.archives.Put(r.Context(), id, archive)
		if err != nil {
			slog.Error("failed to upload archive", "carousel_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to upload archive")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"url": url, "name": archive.Name, "files": archive.Files})
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+archive.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(archive.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(archive.Data); err != nil {
		slog.Warn("archive download interrupted", "carousel_id", id, "error", err)
	}
}
