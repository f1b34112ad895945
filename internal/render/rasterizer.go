// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render rasterises carousel slides into images with fogleman/gg.
// The canvas starts fully transparent; only the slide's background colour,
// background image, generated image and text are painted onto it. Slides
// are drawn at a fixed multiple of their display size for crisp exports.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"carouselstudio/internal/imaging"
	"carouselstudio/internal/markdown"
	"carouselstudio/internal/models"
)

// DefaultScale is the upscale factor applied to the display size.
const DefaultScale = 2

// ImageLoader resolves an image reference (data URL or http URL).
type ImageLoader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// Rasterizer draws single slides.
type Rasterizer struct {
	scale  float64
	loader ImageLoader
}

// NewRasterizer returns a Rasterizer drawing at scale times the display
// size. A scale below 1 falls back to DefaultScale.
func NewRasterizer(scale float64, loader ImageLoader) *Rasterizer {
	if scale < 1 {
		scale = DefaultScale
	}
	return &Rasterizer{scale: scale, loader: loader}
}

// Canvas returns the pixel size of a slide with the given preferences.
func (r *Rasterizer) Canvas(p models.DesignPreferences) (int, int) {
	w, h := p.AspectRatio.Dimensions(models.BaseSlideWidth)
	return int(float64(w) * r.scale), int(float64(h) * r.scale)
}

// Backdrop decodes the carousel background image and fits it to the
// canvas. It returns nil when the preferences carry no background image.
func (r *Rasterizer) Backdrop(ctx context.Context, p models.DesignPreferences) (image.Image, error) {
	if !p.HasBackgroundImage() {
		return nil, nil
	}
	img, err := r.loader.Load(ctx, p.BackgroundImage)
	if err != nil {
		return nil, fmt.Errorf("background image: %w", err)
	}
	w, h := r.Canvas(p)
	return imaging.CoverFit(img, w, h), nil
}

// Render draws slide index of c. backdrop is the result of Backdrop and
// may be nil.
func (r *Rasterizer) Render(ctx context.Context, c *models.Carousel, index int, backdrop image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(c.Slides) {
		return nil, fmt.Errorf("slide index %d out of range", index)
	}

	prefs := c.Preferences
	slide := c.Slides[index]
	lay := layoutFor(prefs.Style)
	w, h := r.Canvas(prefs)
	fw, fh := float64(w), float64(h)
	margin := fw * marginRatio

	dc := gg.NewContext(w, h)

	switch {
	case backdrop != nil:
		dc.DrawImage(backdrop, 0, 0)
	case prefs.BackgroundColor != "":
		bg, err := parseHex(prefs.BackgroundColor)
		if err != nil {
			return nil, err
		}
		dc.SetColor(bg)
		dc.DrawRectangle(0, 0, fw, fh)
		dc.Fill()
	}

	ink, err := parseHex(prefs.FontColor)
	if err != nil {
		return nil, err
	}

	textTop := 0.0
	if backdrop == nil && slide.HasImage() {
		if pic := r.slideImage(ctx, slide); pic != nil {
			boxW := int(fw - 2*margin)
			boxH := int(fh*imageAreaRatio - margin)
			dc.DrawImage(imaging.CoverFit(pic, boxW, boxH), int(margin), int(margin))
			textTop = fh * imageAreaRatio
		}
	}

	if lay.frame {
		inset := margin / 2
		dc.SetColor(ink)
		dc.SetLineWidth(2 * r.scale)
		dc.DrawRectangle(inset, inset, fw-2*inset, fh-2*inset)
		dc.Stroke()
	}

	r.drawText(dc, prefs, slide, lay, ink, textTop, margin)
	r.drawFooter(dc, c, index, lay, ink, margin)

	return dc.Image(), nil
}

// slideImage loads the generated image of a slide. A slide whose image can
// no longer be fetched is drawn without it.
func (r *Rasterizer) slideImage(ctx context.Context, s models.Slide) image.Image {
	img, err := r.loader.Load(ctx, s.ImageURL)
	if err != nil {
		slog.Warn("slide image unavailable, rendering text only", "slide_id", s.ID, "error", err)
		return nil
	}
	return img
}

// textBlock is a run of wrapped lines drawn with one face.
type textBlock struct {
	face    font.Face
	lines   []string
	leading float64 // line height in pixels
}

func (b textBlock) height() float64 {
	return float64(len(b.lines)) * b.leading
}

// wrap breaks every paragraph of text to fit width with the current face.
func wrap(dc *gg.Context, paragraphs []string, width float64) []string {
	var out []string
	for _, p := range paragraphs {
		for _, line := range dc.WordWrap(p, width) {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

// drawText lays out the headline and body. With top == 0 the text is
// centred vertically on the slide; otherwise it starts below top.
func (r *Rasterizer) drawText(dc *gg.Context, prefs models.DesignPreferences, s models.Slide, lay layout, ink color.Color, top, margin float64) {
	tf := typefaceFor(prefs.Font)
	fw, fh := float64(dc.Width()), float64(dc.Height())
	width := fw - 2*margin

	headline := strings.TrimSpace(s.Headline)
	if lay.uppercase {
		headline = strings.ToUpper(headline)
	}

	head := textBlock{face: newFace(tf.headline, lay.headlineSize*r.scale)}
	dc.SetFontFace(head.face)
	head.lines = wrap(dc, []string{headline}, width)
	head.leading = dc.FontHeight() * headlineLeading

	body := textBlock{face: newFace(tf.body, lay.bodySize*r.scale)}
	dc.SetFontFace(body.face)
	body.lines = wrap(dc, markdown.Lines(s.Body), width)
	body.leading = dc.FontHeight() * bodyLeading

	gap := lay.bodySize * r.scale
	barH := 0.0
	if lay.accentBar {
		barH = 6 * r.scale
		gap += barH + lay.bodySize*r.scale/2
	}

	bottom := fh - margin - 2*lay.footerSize*r.scale
	y := top + margin/2
	if top == 0 {
		total := head.height() + gap + body.height()
		y = margin + (bottom-margin-total)/2
		if y < margin {
			y = margin
		}
	}

	x, ax := margin, 0.0
	if lay.centered {
		x, ax = fw/2, 0.5
	}

	dc.SetColor(ink)
	dc.SetFontFace(head.face)
	for _, line := range head.lines {
		dc.DrawStringAnchored(line, x, y, ax, 1)
		y += head.leading
	}

	if lay.accentBar {
		barW := width * 0.15
		barX := margin
		if lay.centered {
			barX = fw/2 - barW/2
		}
		y += lay.bodySize * r.scale / 2
		dc.DrawRectangle(barX, y, barW, barH)
		dc.Fill()
		y += barH
	}
	y += lay.bodySize * r.scale

	dc.SetFontFace(body.face)
	for _, line := range body.lines {
		if y+body.leading > bottom {
			break
		}
		dc.DrawStringAnchored(line, x, y, ax, 1)
		y += body.leading
	}
}

// drawFooter writes the branding line and the page counter.
func (r *Rasterizer) drawFooter(dc *gg.Context, c *models.Carousel, index int, lay layout, ink color.Color, margin float64) {
	tf := typefaceFor(c.Preferences.Font)
	fw, fh := float64(dc.Width()), float64(dc.Height())
	y := fh - margin

	dc.SetFontFace(newFace(tf.body, lay.footerSize*r.scale))
	dc.SetColor(ink)
	if b := strings.TrimSpace(c.Preferences.Branding); b != "" {
		dc.DrawStringAnchored(b, margin, y, 0, 0)
	}
	page := strconv.Itoa(index+1) + "/" + strconv.Itoa(len(c.Slides))
	dc.DrawStringAnchored(page, fw-margin, y, 1, 0)
}
