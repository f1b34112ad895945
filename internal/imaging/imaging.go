// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging decodes slide artwork (raw bytes, data URLs or remote
// URLs) and fits it into slide-sized rectangles. PNG, JPEG and WebP sources
// are supported.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultMaxBytes caps the size of a remote image download (20 MB).
const DefaultMaxBytes = 20 << 20

// ErrUnsupportedSource is returned for references that are neither data
// URLs nor http(s) URLs.
var ErrUnsupportedSource = errors.New("imaging: unsupported image source")

// ErrHostNotAllowed is returned for remote URLs whose host is not one the
// Loader was configured to trust.
var ErrHostNotAllowed = errors.New("imaging: image host not allowed")

// Decode decodes PNG, JPEG or WebP bytes.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}
	return img, nil
}

// IsDataURL reports whether ref is an inline data: URL.
func IsDataURL(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}

// DecodeDataURL decodes a base64 data URL such as
// "data:image/png;base64,iVBOR...".
func DecodeDataURL(ref string) (image.Image, error) {
	if !IsDataURL(ref) {
		return nil, ErrUnsupportedSource
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, errors.New("imaging: malformed data URL")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("imaging: data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("imaging: data URL payload: %w", err)
	}
	return Decode(data)
}

// Loader resolves image references into decoded images. Remote URLs are
// only fetched from the hosts it was created with.
type Loader struct {
	client   *http.Client
	maxBytes int64
	hosts    mapset.Set[string]
}

// NewLoader returns a Loader that downloads remote images with the given
// client from the listed hosts (host or host:port). A nil client gets a 30
// second timeout. With no hosts only data URLs can be loaded.
func NewLoader(client *http.Client, hosts ...string) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	allowed := mapset.NewThreadUnsafeSet[string]()
	for _, h := range hosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			allowed.Add(h)
		}
	}
	return &Loader{client: client, maxBytes: DefaultMaxBytes, hosts: allowed}
}

// Load decodes ref, which may be a data URL or an http(s) URL.
func (l *Loader) Load(ctx context.Context, ref string) (image.Image, error) {
	switch {
	case IsDataURL(ref):
		return DecodeDataURL(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.fetch(ctx, ref)
	default:
		return nil, ErrUnsupportedSource
	}
}

func (l *Loader) fetch(ctx context.Context, ref string) (image.Image, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("imaging: parse url: %w", err)
	}
	if !l.hosts.Contains(strings.ToLower(u.Host)) {
		return nil, fmt.Errorf("%w: %s", ErrHostNotAllowed, u.Host)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("imaging: request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imaging: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imaging: fetch %s: status %d", u.Redacted(), resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("imaging: read body: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("imaging: image exceeds %d bytes", l.maxBytes)
	}
	return Decode(data)
}

// CoverFit scales src so that it covers a w x h rectangle, cropping the
// overflow evenly from both sides, like CSS background-size: cover.
func CoverFit(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	b := src.Bounds()
	if b.Empty() || w <= 0 || h <= 0 {
		return dst
	}

	// Crop the source to the target aspect ratio, centred.
	sw, sh := b.Dx(), b.Dy()
	cw, ch := sw, sw*h/w
	if ch > sh {
		cw, ch = sh*w/h, sh
	}
	x0 := b.Min.X + (sw-cw)/2
	y0 := b.Min.Y + (sh-ch)/2
	crop := image.Rect(x0, y0, x0+cw, y0+ch)

	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst
}
