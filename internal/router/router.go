// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// carousel studio API. Routes that call an AI provider sit behind the
// per-IP rate limiter.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carouselstudio/internal/handlers"
	"carouselstudio/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. aiLimiter guards every route that reaches an
// AI provider.
func New(api *handlers.API, aiLimiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecureHeaders)

	r.NotFound(jsonStatus(http.StatusNotFound))
	r.MethodNotAllowed(jsonStatus(http.StatusMethodNotAllowed))

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	limited := aiLimiter.Middleware

	r.Route("/api", func(r chi.Router) {
		// Settings
		r.Get("/settings", api.GetSettings)
		r.Put("/settings", api.SaveSettings)
		r.Put("/settings/provider", api.SetProvider)
		r.Get("/catalog", api.Catalog)

		r.With(limited).Post("/assist", api.Assist)

		r.Route("/carousels", func(r chi.Router) {
			r.Get("/", api.ListCarousels)
			r.With(limited).Post("/", api.CreateCarousel)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", api.GetCarousel)
				r.Put("/preferences", api.UpdatePreferences)
				r.Post("/save", api.SaveCarousel)
				r.Get("/export", api.ExportCarousel)

				// Slide editing
				r.Patch("/slides/{slideID}", api.UpdateSlide)
				r.Post("/slides/{slideID}/move", api.MoveSlide)
				r.With(limited).Post("/slides/{slideID}/image", api.RegenerateImage)

				// Social copy
				r.Group(func(r chi.Router) {
					r.Use(limited)
					r.Post("/hashtags", api.Hashtags)
					r.Post("/caption", api.Caption)
					r.Post("/thread", api.Thread)
				})
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// jsonStatus answers with a JSON error body carrying the status text.
func jsonStatus(status int) http.HandlerFunc {
	body := []byte(`{"error":"` + http.StatusText(status) + `"}`)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		w.Write(body)
	}
}
