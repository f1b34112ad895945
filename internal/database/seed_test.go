// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"encoding/json"
	"testing"

	"carouselstudio/internal/models"
)

func TestSeedIdempotent(t *testing.T) {
	db, err := Connect(testDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed only inserts when the row is missing, so calling it twice is
	// safe even while other packages use the same database.
	if err := Seed(db); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	var raw []byte
	if err := db.QueryRow("SELECT value FROM settings WHERE key = $1", SettingsKey).Scan(&raw); err != nil {
		t.Fatalf("read seeded settings: %v", err)
	}
	var s models.AppSettings
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatalf("decode seeded settings: %v", err)
	}
	if s.APIKeySource == "" {
		t.Error("seeded settings have no api key source")
	}
}
