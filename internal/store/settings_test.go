// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"carouselstudio/internal/database"
	"carouselstudio/internal/models"
)

func TestSettingsStoreRoundTrip(t *testing.T) {
	db := testDB(t)
	restoreSettings(t, db)
	s := NewSettingsStore(db)

	want := models.AppSettings{
		Model:        "gpt-4o-mini",
		APIKeySource: models.APIKeySourceCustom,
		CustomAPIKey: "sk-test",
		SystemPrompt: "You write carousels.",
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestSettingsStoreMissingFallsBack(t *testing.T) {
	db := testDB(t)
	restoreSettings(t, db)
	db.Exec("DELETE FROM settings WHERE key = $1", database.SettingsKey)

	got, err := NewSettingsStore(db).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != models.DefaultSettings() {
		t.Errorf("Load = %+v, want defaults", got)
	}
}

func TestSettingsStoreMalformedFallsBack(t *testing.T) {
	db := testDB(t)
	restoreSettings(t, db)
	if _, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES ($1, '"not an object"'::jsonb)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, database.SettingsKey); err != nil {
		t.Fatalf("insert malformed: %v", err)
	}

	got, err := NewSettingsStore(db).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != models.DefaultSettings() {
		t.Errorf("Load = %+v, want defaults", got)
	}
}
