package models

import (
	"errors"
	"testing"
)

func TestAppSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       AppSettings
		wantErr bool
		field   string
	}{
		{name: "defaults", s: DefaultSettings()},
		{name: "empty source", s: AppSettings{}},
		{name: "custom with key", s: AppSettings{APIKeySource: APIKeySourceCustom, CustomAPIKey: "sk-123"}},
		{name: "custom without key", s: AppSettings{APIKeySource: APIKeySourceCustom}, wantErr: true, field: "custom_api_key"},
		{name: "custom with blank key", s: AppSettings{APIKeySource: APIKeySourceCustom, CustomAPIKey: "   "}, wantErr: true, field: "custom_api_key"},
		{name: "unknown source", s: AppSettings{APIKeySource: "vault"}, wantErr: true, field: "api_key_source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() = %v, want *ConfigurationError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestAppSettingsRedacted(t *testing.T) {
	s := AppSettings{APIKeySource: APIKeySourceCustom, CustomAPIKey: "sk-secret"}
	r := s.Redacted()
	if r.CustomAPIKey == "sk-secret" {
		t.Error("Redacted() leaked the custom key")
	}
	if s.CustomAPIKey != "sk-secret" {
		t.Error("Redacted() mutated the receiver")
	}
	if DefaultSettings().Redacted().CustomAPIKey != "" {
		t.Error("Redacted() should leave an empty key empty")
	}
}
