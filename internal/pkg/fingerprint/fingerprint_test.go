package fingerprint

import (
	"strings"
	"testing"
)

func desktopSignals() Signals {
	return Signals{
		UserAgent:           "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
		Language:            "en-US",
		ScreenWidth:         2560,
		ScreenHeight:        1440,
		ColorDepth:          24,
		TimezoneOffset:      -120,
		HardwareConcurrency: 8,
		MaxTouchPoints:      0,
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(desktopSignals())
	b := Generate(desktopSignals())
	if a != b {
		t.Fatalf("same signals produced different identities: %q vs %q", a, b)
	}
}

func TestGeneratePrefix(t *testing.T) {
	id := Generate(desktopSignals())
	if !strings.HasPrefix(id, "anon_") {
		t.Fatalf("expected anon_ prefix, got %q", id)
	}
	if !IsAnonymous(id) {
		t.Fatalf("IsAnonymous(%q) = false", id)
	}
	if IsAnonymous("8e7c2a1f-user-id") {
		t.Fatal("user id should not be anonymous")
	}
}

func TestGenerateDistinguishesDevices(t *testing.T) {
	a := Generate(desktopSignals())

	phone := desktopSignals()
	phone.UserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"
	phone.ScreenWidth = 390
	phone.ScreenHeight = 844
	phone.MaxTouchPoints = 5
	b := Generate(phone)

	if a == b {
		t.Fatalf("distinct devices produced the same identity %q", a)
	}
}

func TestGenerateEmptySignals(t *testing.T) {
	id := Generate(Signals{})
	if !strings.HasPrefix(id, "anon_") || len(id) <= len("anon_") {
		t.Fatalf("empty signals should still yield a usable identity, got %q", id)
	}
}
