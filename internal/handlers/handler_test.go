// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// The AI provider is a fake registered in a real registry, the studio keeps
// drafts and history in memory and exports go through the real rasterizer.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"carouselstudio/internal/ai"
	"carouselstudio/internal/carousel"
	"carouselstudio/internal/imaging"
	"carouselstudio/internal/models"
	"carouselstudio/internal/render"
)

// mockAIProvider implements ai.Provider and ai.ImageGenerator. It answers
// by looking at the user prompt.
type mockAIProvider struct {
	name       string
	failImages string // image prompts containing this substring fail
	err        error
}

func (m *mockAIProvider) Name() string { return m.name }

func (m *mockAIProvider) Generate(_ context.Context, _, user string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	switch {
	case strings.Contains(user, "Create a carousel about"):
		if strings.Contains(user, "broken") {
			return "Sorry, I cannot help with that.", nil
		}
		return slidesJSON(6), nil
	case strings.Contains(user, "opening hooks"), strings.Contains(user, "calls to action"):
		return `["Stop scrolling", "Nobody tells you this"]`, nil
	case strings.Contains(user, "hashtags"):
		return "```json\n[\"growth\", \"#reels\"]\n```", nil
	case strings.Contains(user, "caption"):
		return "Swipe through for five quick wins.", nil
	case strings.Contains(user, "thread"):
		return `["Post one", "Post two"]`, nil
	}
	return "", errors.New("unexpected prompt")
}

func (m *mockAIProvider) GenerateImage(_ context.Context, prompt, _ string) ([]byte, string, error) {
	if m.failImages != "" && strings.Contains(prompt, m.failImages) {
		return nil, "", errors.New("image refused")
	}
	return testPNG(), "image/png", nil
}

func slidesJSON(n int) string {
	items := make([]map[string]string, n)
	for i := range items {
		items[i] = map[string]string{
			"headline":      fmt.Sprintf("Headline %d", i+1),
			"body":          fmt.Sprintf("Body of slide **%d**", i+1),
			"visual_prompt": fmt.Sprintf("visual %d", i+1),
		}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func testPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

// flaggingModerator flags every text containing "forbidden".
type flaggingModerator struct{}

func (flaggingModerator) CheckSafety(_ context.Context, text string) (*ai.ModerationResult, error) {
	if strings.Contains(text, "forbidden") {
		return &ai.ModerationResult{Safe: false, Categories: []string{"violence"}}, nil
	}
	return &ai.ModerationResult{Safe: true}, nil
}

type memoryDrafts struct {
	mu sync.Mutex
	m  map[uuid.UUID]*models.Carousel
}

func (d *memoryDrafts) Get(_ context.Context, id uuid.UUID) (*models.Carousel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.m[id].Clone(), nil
}

func (d *memoryDrafts) Put(_ context.Context, c *models.Carousel) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m[c.ID] = c.Clone()
	return nil
}

type memoryHistory struct {
	mu    sync.Mutex
	m     map[uuid.UUID]*models.Carousel
	saves int
}

func (h *memoryHistory) Save(c *models.Carousel) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.m[c.ID] = c.Clone()
	h.saves++
	return nil
}

func (h *memoryHistory) FindByID(id uuid.UUID) (*models.Carousel, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.m[id].Clone(), nil
}

func (h *memoryHistory) List(limit int) ([]models.Carousel, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]models.Carousel, 0, len(h.m))
	for _, c := range h.m {
		out = append(out, *c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memorySettings struct {
	mu sync.Mutex
	s  models.AppSettings
}

func (m *memorySettings) Load() (models.AppSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, nil
}

func (m *memorySettings) Save(s models.AppSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	return nil
}

type memoryArchives struct {
	puts int
}

func (m *memoryArchives) Put(_ context.Context, id uuid.UUID, a *carousel.Archive) (string, error) {
	m.puts++
	return "https://downloads.test/exports/" + id.String() + "/" + a.Name + "?X-Amz-Signature=abc", nil
}

// testEnv bundles a handler router with its in-memory backing stores.
type testEnv struct {
	api      *API
	handler  http.Handler
	provider *mockAIProvider
	registry *ai.Registry
	history  *memoryHistory
	settings *memorySettings
	archives *memoryArchives
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	provider := &mockAIProvider{name: "mock"}
	registry := ai.NewRegistry("mock", nil)
	registry.Register("mock", provider)
	gateway := ai.NewGateway(registry)

	drafts := &memoryDrafts{m: make(map[uuid.UUID]*models.Carousel)}
	history := &memoryHistory{m: make(map[uuid.UUID]*models.Carousel)}
	settings := &memorySettings{s: models.DefaultSettings()}
	archives := &memoryArchives{}

	surface := render.NewSurface(render.NewRasterizer(1, imaging.NewLoader(nil)), 2)
	studio := carousel.NewStudio(gateway, carousel.DataURLSink{}, surface, drafts, history)
	api := NewAPI(studio, gateway, settings, history, archives)

	return &testEnv{
		api:      api,
		handler:  testRouter(api),
		provider: provider,
		registry: registry,
		history:  history,
		settings: settings,
		archives: archives,
	}
}

// testRouter mounts the API the same way the application router does.
func testRouter(api *API) http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/settings", api.GetSettings)
		r.Put("/settings", api.SaveSettings)
		r.Put("/settings/provider", api.SetProvider)
		r.Get("/catalog", api.Catalog)
		r.Post("/assist", api.Assist)
		r.Route("/carousels", func(r chi.Router) {
			r.Get("/", api.ListCarousels)
			r.Post("/", api.CreateCarousel)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", api.GetCarousel)
				r.Put("/preferences", api.UpdatePreferences)
				r.Post("/save", api.SaveCarousel)
				r.Get("/export", api.ExportCarousel)
				r.Post("/hashtags", api.Hashtags)
				r.Post("/caption", api.Caption)
				r.Post("/thread", api.Thread)
				r.Patch("/slides/{slideID}", api.UpdateSlide)
				r.Post("/slides/{slideID}/move", api.MoveSlide)
				r.Post("/slides/{slideID}/image", api.RegenerateImage)
			})
		})
	})
	return r
}

// do sends a request with an optional JSON body and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// create assembles a carousel and returns the decoded response.
func (e *testEnv) create(t *testing.T) createResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/carousels", map[string]any{
		"topic": "5 tips for Instagram growth",
		"niche": "Digital Marketing",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var res createResponse
	decode(t, rec, &res)
	return res
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, rec.Body.String())
	}
}

func decodeCarousel(t *testing.T, rec *httptest.ResponseRecorder) *models.Carousel {
	t.Helper()
	var c models.Carousel
	decode(t, rec, &c)
	return &c
}

func slideOrder(c *models.Carousel) []string {
	ids := make([]string, len(c.Slides))
	for i, s := range c.Slides {
		ids[i] = s.ID
	}
	return ids
}
