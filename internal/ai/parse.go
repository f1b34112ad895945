// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse means the model answered with something that is not
// the requested structure.
var ErrMalformedResponse = errors.New("ai: malformed response")

// stripFences removes a surrounding markdown code fence (```json ... ```).
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.Index(s, "\n"); nl != -1 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// extractJSON returns the outermost JSON array or object in s, skipping
// code fences and any prose the model wrapped around it.
func extractJSON(s string) (string, bool) {
	s = stripFences(s)
	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return "", false
	}
	closer := byte(']')
	if s[start] == '{' {
		closer = '}'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return "", false
	}
	return s[start : end+1], true
}

// parseSlides decodes content items. It accepts a bare array or an object
// wrapping the array under "slides".
func parseSlides(raw string) ([]SlideContent, error) {
	js, ok := extractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON found", ErrMalformedResponse)
	}

	var items []SlideContent
	if strings.HasPrefix(js, "{") {
		var wrapped struct {
			Slides []SlideContent `json:"slides"`
		}
		if err := json.Unmarshal([]byte(js), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		items = wrapped.Slides
	} else if err := json.Unmarshal([]byte(js), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no slides", ErrMalformedResponse)
	}
	for i, it := range items {
		if strings.TrimSpace(it.Headline) == "" && strings.TrimSpace(it.Body) == "" {
			return nil, fmt.Errorf("%w: slide %d has no text", ErrMalformedResponse, i+1)
		}
	}
	return items, nil
}

// parseStringList decodes a JSON array of strings, falling back to a
// numbered or bulleted plain-text list.
func parseStringList(raw string) ([]string, error) {
	var items []string
	if js, ok := extractJSON(raw); ok && strings.HasPrefix(js, "[") {
		if err := json.Unmarshal([]byte(js), &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	} else {
		items = parseNumberedList(stripFences(raw))
	}

	out := items[:0]
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty list", ErrMalformedResponse)
	}
	return out, nil
}

// parseNumberedList splits "1. foo", "2) bar", "- baz" lines into items.
func parseNumberedList(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimLeft(line, "-*• ")
		if i := strings.IndexAny(line, ".)"); i > 0 && i <= 3 && isDigits(line[:i]) {
			line = line[i+1:]
		}
		line = strings.Trim(strings.TrimSpace(line), `"'`)
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
