// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"carouselstudio/internal/ai"
)

// --- Social copy endpoints ---
//
// These power the assistant panel next to the editor. Each call goes to
// the active AI provider with the stored settings and returns JSON.

// assistRequest is the body of POST /api/assist.
type assistRequest struct {
	Topic string        `json:"topic" validate:"required,max=300"`
	Kind  ai.AssistKind `json:"kind" validate:"required,oneof=hook cta"`
}

// Assist suggests opening hooks or closing calls to action for a topic.
func (a *API) Assist(w http.ResponseWriter, r *http.Request) {
	var body assistRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	body.Topic = strings.TrimSpace(body.Topic)
	if err := a.validate.Validate(body); err != nil {
		writeFailure(w, r, err)
		return
	}

	suggestions, err := a.gateway.Assist(r.Context(), body.Topic, body.Kind, a.loadSettings())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// Hashtags suggests hashtags for a carousel.
func (a *API) Hashtags(w http.ResponseWriter, r *http.Request) {
	id, ok := carouselID(w, r)
	if !ok {
		return
	}
	c, err := a.studio.Get(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	tags, err := a.gateway.Hashtags(r.Context(), c, a.loadSettings())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hashtags": tags})
}

// Caption writes a post caption for a carousel.
func (a *API) Caption(w http.ResponseWriter, r *http.Request) {
	id, ok := carouselID(w, r)
	if !ok {
		return
	}
	c, err := a.studio.Get(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	caption, err := a.gateway.Caption(r.Context(), c, a.loadSettings())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"caption": caption})
}

// Thread turns a carousel into a text thread, one post per entry.
func (a *API) Thread(w http.ResponseWriter, r *http.Request) {
	id, ok := carouselID(w, r)
	if !ok {
		return
	}
	c, err := a.studio.Get(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	posts, err := a.gateway.Thread(r.Context(), c, a.loadSettings())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}
