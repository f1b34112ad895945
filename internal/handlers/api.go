// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON API of the carousel studio: settings,
// carousel assembly and editing, export and the social copy helpers.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"carouselstudio/internal/ai"
	"carouselstudio/internal/carousel"
	"carouselstudio/internal/middleware"
	"carouselstudio/internal/models"
	"carouselstudio/internal/validation"
)

// maxBodyBytes bounds JSON request bodies. Background images arrive as
// data URLs, so the limit is generous.
const maxBodyBytes = 25 << 20

// SettingsStore loads and saves the application settings record.
type SettingsStore interface {
	Load() (models.AppSettings, error)
	Save(settings models.AppSettings) error
}

// HistoryLister lists saved carousels, newest first.
type HistoryLister interface {
	List(limit int) ([]models.Carousel, error)
}

// ArchiveStore keeps exported archives and returns a download link.
type ArchiveStore interface {
	Put(ctx context.Context, id uuid.UUID, a *carousel.Archive) (string, error)
}

// API groups the dependencies of every API handler.
type API struct {
	studio   *carousel.Studio
	gateway  *ai.Gateway
	settings SettingsStore
	history  HistoryLister
	archives ArchiveStore // nil when object storage is not configured
	validate *validation.Validator
}

// NewAPI creates the API handler group. archives may be nil.
func NewAPI(studio *carousel.Studio, gateway *ai.Gateway, settings SettingsStore, history HistoryLister, archives ArchiveStore) *API {
	return &API{
		studio:   studio,
		gateway:  gateway,
		settings: settings,
		history:  history,
		archives: archives,
		validate: validation.New(),
	}
}

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFailure maps a domain error to its HTTP status and writes it.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	status, body := classify(r, err)
	writeJSON(w, status, body)
}

// classify returns the HTTP status and response body for err. Server-side
// failures are logged here.
func classify(r *http.Request, err error) (int, errorResponse) {
	var (
		cfgErr     *models.ConfigurationError
		valErr     *validation.Error
		contentErr *carousel.ContentGenerationError
		captureErr *carousel.CaptureError
		packErr    *carousel.PackagingError
	)

	switch {
	case errors.As(err, &valErr):
		return http.StatusBadRequest, errorResponse{Error: "invalid request", Fields: valErr.Fields}
	case errors.As(err, &cfgErr):
		return http.StatusBadRequest, errorResponse{Error: cfgErr.Error()}
	case errors.Is(err, ai.ErrUnsafePrompt):
		slog.Warn("prompt flagged by moderation", "path", r.URL.Path, "error", err)
		return http.StatusUnprocessableEntity, errorResponse{Error: "Your topic was flagged by moderation. Please reformulate it and try again."}
	case errors.Is(err, carousel.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: "carousel not found"}
	case errors.Is(err, carousel.ErrSlideNotFound):
		return http.StatusNotFound, errorResponse{Error: "slide not found"}
	case errors.Is(err, carousel.ErrAssemblyInFlight):
		return http.StatusConflict, errorResponse{Error: "a carousel is already being generated for this session"}
	case errors.Is(err, carousel.ErrImagesPending):
		return http.StatusConflict, errorResponse{Error: "slide images are still being generated"}
	case errors.As(err, &contentErr):
		slog.Error("content generation failed", "path", r.URL.Path, "error", err)
		return http.StatusBadGateway, errorResponse{Error: "Failed to generate carousel content. Please try again."}
	case errors.As(err, &captureErr), errors.As(err, &packErr):
		slog.Error("export failed", "path", r.URL.Path, "error", err)
		return http.StatusInternalServerError, errorResponse{Error: "Failed to export carousel."}
	default:
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		return http.StatusBadGateway, errorResponse{Error: "AI request failed. Please try again."}
	}
}

// decodeJSON reads the request body into dst. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// carouselID parses the {id} URL parameter.
func carouselID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid carousel id")
		return uuid.Nil, false
	}
	return id, true
}

// loadSettings returns the stored settings, or the defaults when the
// store fails.
func (a *API) loadSettings() models.AppSettings {
	s, err := a.settings.Load()
	if err != nil {
		slog.Error("failed to load settings, using defaults", "error", err)
		return models.DefaultSettings()
	}
	return s
}

// sessionKey identifies the caller for the one-assembly-at-a-time rule.
// Clients may pin a session with the X-Session-ID header; otherwise the
// client IP is used.
func sessionKey(r *http.Request) string {
	if s := strings.TrimSpace(r.Header.Get("X-Session-ID")); s != "" {
		return "sid:" + s
	}
	return "ip:" + middleware.ClientIP(r)
}
