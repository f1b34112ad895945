// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carouselstudio/internal/ai"
	"carouselstudio/internal/carousel"
)

// DefaultArchiveURLExpiry is how long a presigned archive link stays valid.
const DefaultArchiveURLExpiry = time.Hour

// extensions maps image content types to object key extensions.
var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// SlideImages stores generated slide images in the public bucket and
// returns their public URL. It satisfies carousel.ImageSink.
type SlideImages struct {
	client *Client
	now    func() time.Time
}

// NewSlideImages returns an image sink backed by c.
func NewSlideImages(c *Client) *SlideImages {
	return &SlideImages{client: c, now: time.Now}
}

// Store uploads img under carousels/<carousel id>/<slide id>-<unix nanos>.<ext>.
// The timestamp keeps regenerated images from overwriting cached copies.
func (s *SlideImages) Store(ctx context.Context, carouselID uuid.UUID, slideID string, img ai.Image) (string, error) {
	ct := img.ContentType
	if ct == "" {
		ct = "image/png"
	}
	ext, ok := extensions[ct]
	if !ok {
		ext = ".bin"
	}

	key := fmt.Sprintf("carousels/%s/%s-%d%s", carouselID, slideID, s.now().UnixNano(), ext)
	if err := s.client.Upload(ctx, s.client.PublicBucket(), key, ct, bytes.NewReader(img.Data), int64(len(img.Data))); err != nil {
		return "", err
	}
	return s.client.FileURL(key), nil
}

// Archives keeps exported zip archives in the private bucket and hands out
// short-lived download links.
type Archives struct {
	client *Client
	expiry time.Duration
}

// NewArchives returns an archive store backed by c. expiry <= 0 uses
// DefaultArchiveURLExpiry.
func NewArchives(c *Client, expiry time.Duration) *Archives {
	if expiry <= 0 {
		expiry = DefaultArchiveURLExpiry
	}
	return &Archives{client: c, expiry: expiry}
}

// Put uploads the archive and returns a presigned GET URL for it.
func (a *Archives) Put(ctx context.Context, carouselID uuid.UUID, arch *carousel.Archive) (string, error) {
	key := fmt.Sprintf("exports/%s/%s", carouselID, arch.Name)
	if err := a.client.Upload(ctx, a.client.PrivateBucket(), key, "application/zip", bytes.NewReader(arch.Data), int64(len(arch.Data))); err != nil {
		return "", err
	}
	return a.client.PresignedURL(ctx, a.client.PrivateBucket(), key, a.expiry)
}
