// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"
	"testing"

	"carouselstudio/internal/models"
)

func TestGetSettingsRedactsKey(t *testing.T) {
	env := newTestEnv(t)
	env.settings.s = models.AppSettings{
		Model:        "gpt-4o",
		APIKeySource: models.APIKeySourceCustom,
		CustomAPIKey: "sk-secret",
	}

	rec := env.do(t, http.MethodGet, "/api/settings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "sk-secret") {
		t.Fatal("custom key leaked in the response")
	}

	var body settingsResponse
	decode(t, rec, &body)
	if body.Settings.CustomAPIKey != redactedKey {
		t.Errorf("expected a redacted key, got %q", body.Settings.CustomAPIKey)
	}
	if body.Settings.Model != "gpt-4o" {
		t.Errorf("model = %q", body.Settings.Model)
	}
	if body.Provider != "mock" {
		t.Errorf("provider = %q", body.Provider)
	}
}

func TestSaveSettings(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/settings", map[string]any{
		"model":          " gemini-2.5-pro ",
		"api_key_source": "custom",
		"custom_api_key": "key-123",
		"system_prompt":  "Be brief.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	got := env.settings.s
	want := models.AppSettings{
		Model:        "gemini-2.5-pro",
		APIKeySource: models.APIKeySourceCustom,
		CustomAPIKey: "key-123",
		SystemPrompt: "Be brief.",
	}
	if got != want {
		t.Errorf("stored %+v, want %+v", got, want)
	}
}

func TestSaveSettingsKeepsRedactedKey(t *testing.T) {
	env := newTestEnv(t)
	env.settings.s = models.AppSettings{APIKeySource: models.APIKeySourceCustom, CustomAPIKey: "sk-secret"}

	rec := env.do(t, http.MethodPut, "/api/settings", map[string]any{
		"model":          "gpt-4o-mini",
		"api_key_source": "custom",
		"custom_api_key": redactedKey,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.settings.s.CustomAPIKey != "sk-secret" {
		t.Errorf("stored key = %q, want the previous key", env.settings.s.CustomAPIKey)
	}
}

func TestSaveSettingsDropsKeyForDefaultSource(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/settings", map[string]any{
		"api_key_source": "default",
		"custom_api_key": "leftover",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.settings.s.CustomAPIKey != "" {
		t.Errorf("expected the key to be cleared, got %q", env.settings.s.CustomAPIKey)
	}
}

func TestSaveSettingsRejectsMissingCustomKey(t *testing.T) {
	env := newTestEnv(t)
	before := env.settings.s

	rec := env.do(t, http.MethodPut, "/api/settings", map[string]any{
		"api_key_source": "custom",
		"custom_api_key": "  ",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.settings.s != before {
		t.Error("invalid settings must not be stored")
	}

	rec = env.do(t, http.MethodPut, "/api/settings", map[string]any{"api_key_source": "shared"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown key source, got %d", rec.Code)
	}
}

func TestSaveSettingsUnknownField(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPut, "/api/settings", map[string]any{"temperature": 2})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSetProvider(t *testing.T) {
	env := newTestEnv(t)
	env.registry.Register("backup", &mockAIProvider{name: "backup"})

	rec := env.do(t, http.MethodPut, "/api/settings/provider", map[string]any{"provider": "backup"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body settingsResponse
	decode(t, rec, &body)
	if body.Provider != "backup" {
		t.Errorf("provider = %q, want backup", body.Provider)
	}
	if len(body.Providers) != 2 {
		t.Errorf("providers = %v", body.Providers)
	}
	if env.registry.ActiveName() != "backup" {
		t.Errorf("active provider = %q", env.registry.ActiveName())
	}
}

func TestSetProviderUnavailable(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/settings/provider", map[string]any{"provider": "claude"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.registry.ActiveName() != "mock" {
		t.Errorf("active provider changed to %q", env.registry.ActiveName())
	}

	rec = env.do(t, http.MethodPut, "/api/settings/provider", map[string]any{"provider": " "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a blank provider, got %d", rec.Code)
	}
}

func TestCatalog(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/catalog", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body catalogResponse
	decode(t, rec, &body)
	if len(body.Styles) != 5 || body.Styles[0] != models.StyleMinimalist {
		t.Errorf("styles = %v", body.Styles)
	}
	if len(body.AspectRatios) != 3 || body.AspectRatios[2] != models.AspectStory {
		t.Errorf("aspect ratios = %v", body.AspectRatios)
	}
	for i := 1; i < len(body.Fonts); i++ {
		if body.Fonts[i-1] >= body.Fonts[i] {
			t.Fatalf("fonts not sorted at %d: %v", i, body.Fonts[i-1:i+1])
		}
	}
	if body.Defaults != models.DefaultPreferences() {
		t.Errorf("defaults = %+v", body.Defaults)
	}
}
