// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// draft.go provides a Valkey-backed store for the working copy of every
// open carousel. Drafts are JSON documents that expire after a period of
// inactivity; saved carousels live on in the history table.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"carouselstudio/internal/models"
)

const (
	// draftKeyPrefix is the Valkey key prefix for carousel drafts.
	draftKeyPrefix = "draft:"

	// DefaultDraftTTL is how long an untouched draft is kept.
	DefaultDraftTTL = 24 * time.Hour
)

// DraftCache keeps carousel drafts in Valkey.
type DraftCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftCache creates a draft cache backed by the given Valkey client.
func NewDraftCache(client *redis.Client, ttl time.Duration) *DraftCache {
	if ttl == 0 {
		ttl = DefaultDraftTTL
	}
	return &DraftCache{client: client, ttl: ttl}
}

// DraftKey returns the Valkey key of a carousel draft.
func DraftKey(id uuid.UUID) string {
	return draftKeyPrefix + id.String()
}

// Get returns the draft for id, or nil, nil if there is none. A draft that
// can no longer be decoded is dropped and reported as a miss.
func (dc *DraftCache) Get(ctx context.Context, id uuid.UUID) (*models.Carousel, error) {
	val, err := dc.client.Get(ctx, DraftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("draft cache get %s: %w", id, err)
	}

	var c models.Carousel
	if err := json.Unmarshal(val, &c); err != nil {
		slog.Warn("discarding undecodable draft", "carousel_id", id, "error", err)
		dc.Delete(ctx, id)
		return nil, nil
	}
	slog.Debug("draft cache hit", "carousel_id", id)
	return &c, nil
}

// Put stores c as the current draft and resets its TTL.
func (dc *DraftCache) Put(ctx context.Context, c *models.Carousel) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("draft cache marshal %s: %w", c.ID, err)
	}
	if err := dc.client.Set(ctx, DraftKey(c.ID), data, dc.ttl).Err(); err != nil {
		return fmt.Errorf("draft cache set %s: %w", c.ID, err)
	}
	return nil
}

// Delete removes a draft.
func (dc *DraftCache) Delete(ctx context.Context, id uuid.UUID) {
	if err := dc.client.Del(ctx, DraftKey(id)).Err(); err != nil {
		slog.Warn("draft cache delete error", "carousel_id", id, "error", err)
	}
}
