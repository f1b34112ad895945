// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestAssist(t *testing.T) {
	env := newTestEnv(t)

	for _, kind := range []string{"hook", "cta"} {
		rec := env.do(t, http.MethodPost, "/api/assist", map[string]any{"topic": "Sleep better", "kind": kind})
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", kind, rec.Code, rec.Body.String())
		}
		var body struct {
			Suggestions []string `json:"suggestions"`
		}
		decode(t, rec, &body)
		if len(body.Suggestions) != 2 {
			t.Errorf("%s: suggestions = %v", kind, body.Suggestions)
		}
	}

	rec := env.do(t, http.MethodPost, "/api/assist", map[string]any{"topic": "Sleep better", "kind": "intro"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown kind, got %d", rec.Code)
	}
}

func TestAssistProviderFailure(t *testing.T) {
	env := newTestEnv(t)
	env.provider.err = errors.New("upstream timeout")

	rec := env.do(t, http.MethodPost, "/api/assist", map[string]any{"topic": "Sleep better", "kind": "hook"})
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}

func TestSocialCopy(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t).Carousel.ID.String()

	rec := env.do(t, http.MethodPost, "/api/carousels/"+id+"/hashtags", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("hashtags: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var tags struct {
		Hashtags []string `json:"hashtags"`
	}
	decode(t, rec, &tags)
	if !reflect.DeepEqual(tags.Hashtags, []string{"#growth", "#reels"}) {
		t.Errorf("hashtags = %v", tags.Hashtags)
	}

	rec = env.do(t, http.MethodPost, "/api/carousels/"+id+"/caption", nil)
	var caption struct {
		Caption string `json:"caption"`
	}
	decode(t, rec, &caption)
	if caption.Caption != "Swipe through for five quick wins." {
		t.Errorf("caption = %q", caption.Caption)
	}

	rec = env.do(t, http.MethodPost, "/api/carousels/"+id+"/thread", nil)
	var thread struct {
		Posts []string `json:"posts"`
	}
	decode(t, rec, &thread)
	if !reflect.DeepEqual(thread.Posts, []string{"Post one", "Post two"}) {
		t.Errorf("posts = %v", thread.Posts)
	}
}

func TestSocialCopyUnknownCarousel(t *testing.T) {
	env := newTestEnv(t)
	for _, op := range []string{"hashtags", "caption", "thread"} {
		rec := env.do(t, http.MethodPost, "/api/carousels/"+uuid.NewString()+"/"+op, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", op, rec.Code)
		}
	}
}
