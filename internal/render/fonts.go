// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"

	"carouselstudio/internal/models"
)

// typeface is the pair of parsed fonts used for one font class.
type typeface struct {
	headline *truetype.Font
	body     *truetype.Font
}

// typefaces maps every font class to bundled Go fonts. The catalogue names
// web fonts the server does not ship; each one renders with the Go font of
// the same class.
var typefaces = map[models.FontClass]typeface{
	models.FontClassSans:    {headline: mustParse(gobold.TTF), body: mustParse(goregular.TTF)},
	models.FontClassSerif:   {headline: mustParse(gobolditalic.TTF), body: mustParse(goitalic.TTF)},
	models.FontClassDisplay: {headline: mustParse(gobold.TTF), body: mustParse(gomedium.TTF)},
	models.FontClassMono:    {headline: mustParse(gomonobold.TTF), body: mustParse(gomono.TTF)},
	models.FontClassScript:  {headline: mustParse(gobolditalic.TTF), body: mustParse(goitalic.TTF)},
}

func mustParse(ttf []byte) *truetype.Font {
	f, err := truetype.Parse(ttf)
	if err != nil {
		panic(fmt.Sprintf("render: parse bundled font: %v", err))
	}
	return f
}

func typefaceFor(f models.Font) typeface {
	if tf, ok := typefaces[f.Class()]; ok {
		return tf
	}
	return typefaces[models.FontClassSans]
}

// newFace builds a face at the given pixel size. Faces cache glyphs and
// are not safe for concurrent use, so every render gets its own.
func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
