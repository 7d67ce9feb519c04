package config

import (
	"reflect"
	"testing"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://gouache.app, https://staging.gouache.app")
	t.Setenv("DEFAULT_CURRENCY", "eur")

	cfg := Load()

	want := []string{"https://gouache.app", "https://staging.gouache.app"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Fatalf("expected origins %v, got %v", want, cfg.AllowedOrigins)
	}
	if cfg.DefaultCurrency != "eur" {
		t.Fatalf("expected default currency eur, got %q", cfg.DefaultCurrency)
	}
}

func TestParseStringSlice(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{"a,,b", []string{"a", "b"}},
		{" a , b ", []string{"a", "b"}},
		{"", []string{}},
	}
	for _, tc := range cases {
		if got := parseStringSlice(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("parseStringSlice(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
