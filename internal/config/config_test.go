package config

import (
	"strings"
	"testing"
)

func TestResolvedAuthMode(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"explicit wins", Config{Env: "development", AuthMode: "jwt"}, "jwt"},
		{"dev infers development", Config{Env: "development"}, "development"},
		{"production infers jwt", Config{Env: "production"}, "jwt"},
		{"staging infers jwt", Config{Env: "staging"}, "jwt"},
	}
	for _, tc := range cases {
		if got := tc.cfg.ResolvedAuthMode(); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestValidate_JWTSecretRequired(t *testing.T) {
	cfg := Config{Env: "production"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing AUTH_JWT_SECRET")
	}
	if !strings.Contains(err.Error(), "AUTH_JWT_SECRET") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_ShortSecretRejected(t *testing.T) {
	cfg := Config{Env: "production", AuthJWTSecret: "too-short"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestValidate_DevNeedsNoSecret(t *testing.T) {
	cfg := Config{Env: "development"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownAuthMode(t *testing.T) {
	cfg := Config{Env: "production", AuthMode: "oauth-magic"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown auth mode")
	}
}

func TestValidate_ConnBounds(t *testing.T) {
	cfg := Config{
		Env:           "production",
		AuthJWTSecret: strings.Repeat("s", 32),
		DBMaxConns:    5,
		DBMinConns:    10,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when min conns exceed max conns")
	}
}

func TestVocabEnabled(t *testing.T) {
	if (&Config{}).VocabEnabled() {
		t.Error("expected vocab disabled without DATABASE_URL")
	}
	if !(&Config{DatabaseURL: "postgres://localhost/notecore"}).VocabEnabled() {
		t.Error("expected vocab enabled with DATABASE_URL")
	}
}
