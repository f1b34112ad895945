// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"carouselstudio/internal/database"
	"carouselstudio/internal/models"
)

// SettingsStore persists the single AppSettings record.
type SettingsStore struct {
	db *sql.DB
}

// NewSettingsStore returns a new SettingsStore backed by the given database.
func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Load returns the stored settings. A missing or undecodable record yields
// models.DefaultSettings(); only database failures are returned as errors.
func (s *SettingsStore) Load() (models.AppSettings, error) {
	var raw []byte
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = $1`, database.SettingsKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.DefaultSettings(), fmt.Errorf("load settings: %w", err)
	}

	settings := models.DefaultSettings()
	if err := json.Unmarshal(raw, &settings); err != nil {
		slog.Warn("stored settings are malformed, using defaults", "error", err)
		return models.DefaultSettings(), nil
	}
	if settings.APIKeySource == "" {
		settings.APIKeySource = models.APIKeySourceDefault
	}
	return settings, nil
}

// Save upserts the settings record.
func (s *SettingsStore) Save(settings models.AppSettings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		database.SettingsKey, value, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
