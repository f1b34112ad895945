// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"carouselstudio/internal/models"
)

// redactedKey is what GetSettings shows in place of a stored custom key.
// Sending it back unchanged keeps the stored key.
const redactedKey = "********"

// settingsResponse is the body of the settings endpoints.
type settingsResponse struct {
	Settings  models.AppSettings `json:"settings"`
	Provider  string             `json:"provider"`
	Providers []string           `json:"providers"`
}

func (a *API) settingsResponse(s models.AppSettings) settingsResponse {
	reg := a.gateway.Registry()
	return settingsResponse{
		Settings:  s.Redacted(),
		Provider:  reg.ActiveName(),
		Providers: reg.Available(),
	}
}

// GetSettings returns the current settings with the custom key redacted.
func (a *API) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := a.settings.Load()
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, a.settingsResponse(s))
}

// SaveSettings validates and stores new settings. A custom key source with
// no key is rejected before anything is written.
func (a *API) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var next models.AppSettings
	if err := decodeJSON(w, r, &next); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	next.Model = strings.TrimSpace(next.Model)
	if next.APIKeySource == "" {
		next.APIKeySource = models.APIKeySourceDefault
	}

	if next.CustomAPIKey == redactedKey {
		current, err := a.settings.Load()
		if err != nil {
			slog.Error("failed to load settings", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load settings")
			return
		}
		next.CustomAPIKey = current.CustomAPIKey
	}
	if !next.UsesCustomKey() {
		next.CustomAPIKey = ""
	}

	if err := next.Validate(); err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := a.settings.Save(next); err != nil {
		slog.Error("failed to save settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	slog.Info("settings updated", "model", next.Model, "api_key_source", next.APIKeySource)
	writeJSON(w, http.StatusOK, a.settingsResponse(next))
}

// providerRequest is the body of PUT /api/settings/provider.
type providerRequest struct {
	Provider string `json:"provider" validate:"required"`
}

// SetProvider switches the active AI provider at runtime. Only providers
// with a server-side API key can be selected.
func (a *API) SetProvider(w http.ResponseWriter, r *http.Request) {
	var body providerRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	body.Provider = strings.TrimSpace(body.Provider)
	if err := a.validate.Validate(body); err != nil {
		writeFailure(w, r, err)
		return
	}

	reg := a.gateway.Registry()
	if !reg.HasProvider(body.Provider) {
		writeError(w, http.StatusBadRequest, "provider "+body.Provider+" is not available (no API key configured)")
		return
	}
	if err := reg.SetActive(body.Provider); err != nil {
		slog.Error("failed to switch AI provider", "provider", body.Provider, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to switch provider")
		return
	}
	slog.Info("ai provider switched", "provider", body.Provider)

	writeJSON(w, http.StatusOK, a.settingsResponse(a.loadSettings()))
}

// catalogResponse lists the design choices a client can offer.
type catalogResponse struct {
	Styles       []models.Style           `json:"styles"`
	Fonts        []models.Font            `json:"fonts"`
	AspectRatios []models.AspectRatio     `json:"aspect_ratios"`
	Defaults     models.DesignPreferences `json:"defaults"`
}

// Catalog returns the styles, fonts and aspect ratios accepted in design
// preferences.
func (a *API) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		Styles:       models.Styles(),
		Fonts:        models.Fonts(),
		AspectRatios: models.AspectRatios(),
		Defaults:     models.DefaultPreferences(),
	})
}
