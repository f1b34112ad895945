// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carouselstudio/internal/models"
)

// DefaultListLimit caps history listings when no limit is given.
const DefaultListLimit = 50

// CarouselStore is the carousel history. Slides and preferences are kept
// as JSONB documents next to the scalar columns.
type CarouselStore struct {
	db *sql.DB
}

// NewCarouselStore creates a new CarouselStore with the given database connection.
func NewCarouselStore(db *sql.DB) *CarouselStore {
	return &CarouselStore{db: db}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCarousel(row rowScanner) (*models.Carousel, error) {
	var (
		c                   models.Carousel
		slides, preferences []byte
	)
	if err := row.Scan(&c.ID, &c.Title, &c.Category, &slides, &preferences, &c.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(slides, &c.Slides); err != nil {
		return nil, fmt.Errorf("decode slides of %s: %w", c.ID, err)
	}
	if err := json.Unmarshal(preferences, &c.Preferences); err != nil {
		return nil, fmt.Errorf("decode preferences of %s: %w", c.ID, err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

// Save inserts c, or replaces the stored carousel with the same id. The
// original creation time is kept on replace, so a re-saved carousel
// keeps its place in the history.
func (s *CarouselStore) Save(c *models.Carousel) error {
	slides, err := json.Marshal(c.Slides)
	if err != nil {
		return fmt.Errorf("encode slides: %w", err)
	}
	preferences, err := json.Marshal(c.Preferences)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.Exec(`
		INSERT INTO carousels (id, title, category, slides, preferences, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			slides = EXCLUDED.slides,
			preferences = EXCLUDED.preferences,
			updated_at = EXCLUDED.updated_at`,
		c.ID, c.Title, c.Category, slides, preferences, createdAt, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("save carousel %s: %w", c.ID, err)
	}
	return nil
}

// FindByID retrieves a carousel by its UUID. Returns nil if not found.
func (s *CarouselStore) FindByID(id uuid.UUID) (*models.Carousel, error) {
	c, err := scanCarousel(s.db.QueryRow(`
		SELECT id, title, category, slides, preferences, created_at
		FROM carousels WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find carousel by id: %w", err)
	}
	return c, nil
}

// List returns up to limit carousels, newest first.
func (s *CarouselStore) List(limit int) ([]models.Carousel, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.Query(`
		SELECT id, title, category, slides, preferences, created_at
		FROM carousels
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list carousels: %w", err)
	}
	defer rows.Close()

	var items []models.Carousel
	for rows.Next() {
		c, err := scanCarousel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan carousel: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}
