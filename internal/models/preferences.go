// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Style is the visual variant requested from the AI and used by the renderer.
type Style string

const (
	StyleMinimalist Style = "Minimalist"
	StyleBold       Style = "Bold"
	StyleColorful   Style = "Colorful"
	StyleElegant    Style = "Elegant"
	StyleVintage    Style = "Vintage"
)

// Styles returns every style in display order.
func Styles() []Style {
	return []Style{StyleMinimalist, StyleBold, StyleColorful, StyleElegant, StyleVintage}
}

// AspectRatio is the slide canvas shape.
type AspectRatio string

const (
	AspectSquare   AspectRatio = "1:1"
	AspectPortrait AspectRatio = "3:4"
	AspectStory    AspectRatio = "9:16"
)

// AspectRatios returns every supported ratio, squarest first.
func AspectRatios() []AspectRatio {
	return []AspectRatio{AspectSquare, AspectPortrait, AspectStory}
}

// BaseSlideWidth is the display width of every slide in pixels. Heights
// follow from the aspect ratio.
const BaseSlideWidth = 1080

// Dimensions returns the slide size in pixels for the given width.
// Unknown ratios fall back to square.
func (a AspectRatio) Dimensions(width int) (int, int) {
	switch a {
	case AspectPortrait:
		return width, width * 4 / 3
	case AspectStory:
		return width, width * 16 / 9
	default:
		return width, width
	}
}

// Font is a font family name from the closed catalogue below.
type Font string

// FontClass groups fonts by their typographic family. The rasteriser picks a
// glyph set per class rather than per font.
type FontClass string

const (
	FontClassSans    FontClass = "sans"
	FontClassSerif   FontClass = "serif"
	FontClassDisplay FontClass = "display"
	FontClassMono    FontClass = "mono"
	FontClassScript  FontClass = "script"
)

// fontClasses is the font catalogue offered to users.
var fontClasses = map[Font]FontClass{
	"Inter":              FontClassSans,
	"Roboto":             FontClassSans,
	"Open Sans":          FontClassSans,
	"Lato":               FontClassSans,
	"Montserrat":         FontClassSans,
	"Poppins":            FontClassSans,
	"Raleway":            FontClassSans,
	"Nunito":             FontClassSans,
	"Source Sans Pro":    FontClassSans,
	"Work Sans":          FontClassSans,
	"DM Sans":            FontClassSans,
	"Manrope":            FontClassSans,
	"Playfair Display":   FontClassSerif,
	"Merriweather":       FontClassSerif,
	"Lora":               FontClassSerif,
	"PT Serif":           FontClassSerif,
	"Libre Baskerville":  FontClassSerif,
	"Cormorant Garamond": FontClassSerif,
	"EB Garamond":        FontClassSerif,
	"Roboto Slab":        FontClassSerif,
	"Oswald":             FontClassDisplay,
	"Bebas Neue":         FontClassDisplay,
	"Anton":              FontClassDisplay,
	"Archivo Black":      FontClassDisplay,
	"Abril Fatface":      FontClassDisplay,
	"Space Mono":         FontClassMono,
	"Roboto Mono":        FontClassMono,
	"IBM Plex Mono":      FontClassMono,
	"Dancing Script":     FontClassScript,
	"Pacifico":           FontClassScript,
	"Caveat":             FontClassScript,
	"Lobster":            FontClassScript,
}

// knownFonts is the font catalogue as a set, used by request validation.
var knownFonts = mapset.NewSetFromMapKeys(fontClasses)

// IsKnownFont reports whether f belongs to the font catalogue.
func IsKnownFont(f Font) bool {
	return knownFonts.Contains(f)
}

// Fonts returns the catalogue sorted by name.
func Fonts() []Font {
	fonts := knownFonts.ToSlice()
	sort.Slice(fonts, func(i, j int) bool { return fonts[i] < fonts[j] })
	return fonts
}

// Class returns the typographic class of the font, defaulting to sans.
func (f Font) Class() FontClass {
	if c, ok := fontClasses[f]; ok {
		return c
	}
	return FontClassSans
}

// DesignPreferences is the visual configuration of a carousel. It is a pure
// value: each carousel stores its own copy.
type DesignPreferences struct {
	BackgroundColor string      `json:"background_color" validate:"required,hexcolor"`
	FontColor       string      `json:"font_color" validate:"required,hexcolor"`
	BackgroundImage string      `json:"background_image,omitempty" validate:"omitempty,datauri"`
	Style           Style       `json:"style" validate:"required,oneof=Minimalist Bold Colorful Elegant Vintage"`
	Font            Font        `json:"font" validate:"required,font"`
	AspectRatio     AspectRatio `json:"aspect_ratio" validate:"required,oneof=1:1 3:4 9:16"`
	Branding        string      `json:"branding,omitempty" validate:"max=80"`
}

// DefaultPreferences returns the preferences a new user starts with.
func DefaultPreferences() DesignPreferences {
	return DesignPreferences{
		BackgroundColor: "#FFFFFF",
		FontColor:       "#111827",
		Style:           StyleMinimalist,
		Font:            "Inter",
		AspectRatio:     AspectSquare,
	}
}

// HasBackgroundImage reports whether a custom background replaces the
// per-slide generated images.
func (p DesignPreferences) HasBackgroundImage() bool {
	return p.BackgroundImage != ""
}

// Clone returns an independent copy of the preferences.
func (p DesignPreferences) Clone() DesignPreferences {
	return p
}
