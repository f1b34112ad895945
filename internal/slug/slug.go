// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives file names from user-entered titles.
package slug

import (
	"regexp"
	"strings"
)

// notAlnum matches every character outside [a-z0-9].
var notAlnum = regexp.MustCompile(`[^a-z0-9]`)

// Compact lower-cases s and drops every non-alphanumeric character,
// including spaces. Returns fallback when nothing is left.
// Example: "5 Tips: Growth!" → "5tipsgrowth"
func Compact(s, fallback string) string {
	result := notAlnum.ReplaceAllString(strings.ToLower(s), "")
	if result == "" {
		return fallback
	}
	return result
}
