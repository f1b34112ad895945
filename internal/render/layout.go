// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"carouselstudio/internal/models"
)

// layout holds the per-style typography of a slide. Sizes are in pixels at
// the base slide width and are multiplied by the rasterizer scale.
type layout struct {
	headlineSize float64
	bodySize     float64
	footerSize   float64
	centered     bool
	uppercase    bool // headline in capitals
	accentBar    bool // bar under the headline
	frame        bool // thin border inset from the edges
}

var layouts = map[models.Style]layout{
	models.StyleMinimalist: {headlineSize: 64, bodySize: 34, footerSize: 22},
	models.StyleBold:       {headlineSize: 84, bodySize: 36, footerSize: 24, uppercase: true},
	models.StyleColorful:   {headlineSize: 72, bodySize: 34, footerSize: 22, centered: true, accentBar: true},
	models.StyleElegant:    {headlineSize: 60, bodySize: 32, footerSize: 20, centered: true},
	models.StyleVintage:    {headlineSize: 64, bodySize: 32, footerSize: 22, centered: true, frame: true},
}

func layoutFor(s models.Style) layout {
	if l, ok := layouts[s]; ok {
		return l
	}
	return layouts[models.StyleMinimalist]
}

// Proportions of the slide canvas.
const (
	marginRatio     = 0.08 // outer margin, relative to width
	imageAreaRatio  = 0.5  // generated image box, relative to height
	headlineLeading = 1.2
	bodyLeading     = 1.45
)

// parseHex parses "#RGB" or "#RRGGBB" into an opaque colour.
func parseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("render: invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("render: invalid hex colour %q", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
