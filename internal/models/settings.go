// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strings"
)

// APIKeySource selects which credential is used for AI calls.
type APIKeySource string

const (
	// APIKeySourceDefault uses the server-configured provider key.
	APIKeySourceDefault APIKeySource = "default"
	// APIKeySourceCustom uses the key supplied in AppSettings.CustomAPIKey.
	APIKeySourceCustom APIKeySource = "custom"
)

// AppSettings configures every AI call. It is passed by value; nothing in
// the core reads settings from global state.
type AppSettings struct {
	Model        string       `json:"model"`
	APIKeySource APIKeySource `json:"api_key_source"`
	CustomAPIKey string       `json:"custom_api_key,omitempty"`
	SystemPrompt string       `json:"system_prompt,omitempty"`
}

// DefaultSettings returns the settings used when none are stored or the
// stored record is malformed. An empty Model means the provider default.
func DefaultSettings() AppSettings {
	return AppSettings{
		APIKeySource: APIKeySourceDefault,
	}
}

// Validate fails fast on settings that cannot produce a working AI call.
func (s AppSettings) Validate() error {
	switch s.APIKeySource {
	case APIKeySourceDefault, "":
		return nil
	case APIKeySourceCustom:
		if strings.TrimSpace(s.CustomAPIKey) == "" {
			return &ConfigurationError{Field: "custom_api_key", Reason: "custom key source selected but no key provided"}
		}
		return nil
	default:
		return &ConfigurationError{Field: "api_key_source", Reason: fmt.Sprintf("unknown key source %q", s.APIKeySource)}
	}
}

// UsesCustomKey reports whether AI calls must use the caller's own key.
func (s AppSettings) UsesCustomKey() bool {
	return s.APIKeySource == APIKeySourceCustom
}

// Redacted returns a copy safe for logs and API responses.
func (s AppSettings) Redacted() AppSettings {
	if s.CustomAPIKey != "" {
		s.CustomAPIKey = "********"
	}
	return s
}

// ConfigurationError reports a missing or invalid AI credential or setting.
// It is raised before any network call is made.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}
