// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"carouselstudio/internal/models"
)

// SettingsKey is the settings row holding the AppSettings record.
const SettingsKey = "app_settings"

// Seed writes the default AppSettings record if none exists yet.
func Seed(db *sql.DB) error {
	value, err := json.Marshal(models.DefaultSettings())
	if err != nil {
		return fmt.Errorf("seed marshal settings: %w", err)
	}

	res, err := db.Exec(`
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING`,
		SettingsKey, value,
	)
	if err != nil {
		return fmt.Errorf("seed insert settings: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}
	slog.Info("database seeded with default settings")
	return nil
}
