// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package carousel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"sort"
	"time"

	"github.com/klauspost/compress/zip"

	"carouselstudio/internal/metrics"
	"carouselstudio/internal/models"
	"carouselstudio/internal/slug"
)

// fallbackArchiveName is used when a title has no alphanumeric characters.
const fallbackArchiveName = "carousel"

// Visual is the rendered image of one slide, as captured by a surface.
type Visual struct {
	SlideID string
	Image   image.Image
}

// Archive is a packaged export.
type Archive struct {
	Name  string   // e.g. "5tipsforinstagramgrowth.zip"
	Files []string // entry names in archive order
	Data  []byte
}

// ArchiveName derives the zip file name from a carousel title.
func ArchiveName(title string) string {
	return slug.Compact(title, fallbackArchiveName) + ".zip"
}

// Packager writes captured visuals into a zip archive in deck order.
type Packager struct {
	now func() time.Time
}

// NewPackager returns a Packager.
func NewPackager() *Packager {
	return &Packager{now: time.Now}
}

// Export sorts visuals into the order of c.Slides and writes them as
// slide-1.png, slide-2.png, ... Visuals whose slide id is not in the deck
// are kept and placed last. Every deck slide must have a visual.
func (p *Packager) Export(ctx context.Context, c *models.Carousel, visuals []Visual) (*Archive, error) {
	arch, err := p.export(ctx, c, visuals)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		slog.Error("carousel export failed", "carousel_id", c.ID, "error", err)
		return nil, err
	}
	metrics.ExportsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.ExportSize.Observe(float64(len(arch.Data)))
	return arch, nil
}

func (p *Packager) export(ctx context.Context, c *models.Carousel, visuals []Visual) (*Archive, error) {
	position := make(map[string]int, len(c.Slides))
	for i, s := range c.Slides {
		position[s.ID] = i
	}
	rank := func(id string) int {
		if i, ok := position[id]; ok {
			return i
		}
		return len(c.Slides)
	}

	captured := make(map[string]bool, len(visuals))
	for _, v := range visuals {
		if v.Image == nil {
			return nil, &CaptureError{SlideID: v.SlideID, Err: errors.New("empty visual")}
		}
		captured[v.SlideID] = true
	}
	for _, s := range c.Slides {
		if !captured[s.ID] {
			return nil, &CaptureError{SlideID: s.ID, Err: errors.New("no visual captured")}
		}
	}

	ordered := make([]Visual, len(visuals))
	copy(ordered, visuals)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rank(ordered[i].SlideID) < rank(ordered[j].SlideID)
	})

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	modified := p.now()
	files := make([]string, 0, len(ordered))

	for i, v := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, &PackagingError{Err: err}
		}

		var encoded bytes.Buffer
		if err := png.Encode(&encoded, v.Image); err != nil {
			return nil, &CaptureError{SlideID: v.SlideID, Err: err}
		}

		name := fmt.Sprintf("slide-%d.png", i+1)
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return nil, &PackagingError{Err: err}
		}
		if _, err := w.Write(encoded.Bytes()); err != nil {
			return nil, &PackagingError{Err: err}
		}
		files = append(files, name)
	}
	if err := zw.Close(); err != nil {
		return nil, &PackagingError{Err: err}
	}

	return &Archive{Name: ArchiveName(c.Title), Files: files, Data: buf.Bytes()}, nil
}
