package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func cronProtected(t *testing.T, secret string) http.Handler {
	t.Helper()
	return CronAuth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCronAuthAcceptsHeaderKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/internal/billing/run", nil)
	req.Header.Set("X-Cron-Key", "cron-secret")
	w := httptest.NewRecorder()
	cronProtected(t, "cron-secret").ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCronAuthAcceptsBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/internal/billing/run", nil)
	req.Header.Set("Authorization", "Bearer cron-secret")
	w := httptest.NewRecorder()
	cronProtected(t, "cron-secret").ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCronAuthRejectsWrongKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/internal/billing/run", nil)
	req.Header.Set("X-Cron-Key", "guess")
	w := httptest.NewRecorder()
	cronProtected(t, "cron-secret").ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestCronAuthRejectsWhenSecretUnset(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/internal/billing/run", nil)
	req.Header.Set("X-Cron-Key", "")
	w := httptest.NewRecorder()
	cronProtected(t, "").ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unconfigured secret must reject everything, got %d", w.Code)
	}
}
