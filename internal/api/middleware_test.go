package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/healseek/appointment-service/internal/appointment"
	"github.com/healseek/appointment-service/internal/auth"
)

func protectedEcho(t *testing.T, roles ...appointment.Role) http.Handler {
	t.Helper()
	return RequireRoles(testSecret, roles...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			t.Error("principal missing from context behind auth middleware")
		}
		if p.UserID == 0 || p.Role == "" {
			t.Errorf("incomplete principal %+v", p)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestRequireRolesAcceptsValidToken(t *testing.T) {
	h := protectedEcho(t, appointment.RoleDoctor)

	tok, err := auth.MakeToken(5, "doctor", testSecret, time.Minute)
	if err != nil {
		t.Fatalf("make token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestRequireRolesRejections(t *testing.T) {
	goodToken, err := auth.MakeToken(5, "doctor", testSecret, time.Minute)
	if err != nil {
		t.Fatalf("make token: %v", err)
	}
	expired, err := auth.MakeToken(5, "doctor", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("make token: %v", err)
	}
	forged, err := auth.MakeToken(5, "doctor", "other-secret", time.Minute)
	if err != nil {
		t.Fatalf("make token: %v", err)
	}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + forged, http.StatusUnauthorized},
		{"wrong role", "Bearer " + goodToken, http.StatusForbidden},
	}

	for _, tc := range cases {
		roles := []appointment.Role{appointment.RoleDoctor}
		if tc.name == "wrong role" {
			roles = []appointment.Role{appointment.RoleAdmin}
		}
		h := protectedEcho(t, roles...)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewClientRateLimiter(1, 2)
	h := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:50000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := send(); got != http.StatusNoContent {
		t.Fatalf("first request: status = %d, want 204", got)
	}
	if got := send(); got != http.StatusNoContent {
		t.Fatalf("second request: status = %d, want 204", got)
	}
	if got := send(); got != http.StatusTooManyRequests {
		t.Fatalf("third request: status = %d, want 429", got)
	}

	// a different client keeps its own bucket
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.2:50000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("other client: status = %d, want 204", rec.Code)
	}
}

func TestClientRateLimiterSweepsStaleEntries(t *testing.T) {
	rl := NewClientRateLimiter(1, 1)

	rl.clients["10.0.0.9"] = &client{
		lim:  rate.NewLimiter(rl.r, rl.burst),
		seen: time.Now().Add(-2 * limiterStaleAfter),
	}
	rl.clients["10.0.0.8"] = &client{
		lim:  rate.NewLimiter(rl.r, rl.burst),
		seen: time.Now(),
	}
	rl.lastSweep = time.Now().Add(-2 * limiterSweepEvery)

	rl.get("10.0.0.1")

	if _, ok := rl.clients["10.0.0.9"]; ok {
		t.Error("stale entry survived sweep")
	}
	if _, ok := rl.clients["10.0.0.8"]; !ok {
		t.Error("fresh entry removed by sweep")
	}
	if _, ok := rl.clients["10.0.0.1"]; !ok {
		t.Error("current caller not tracked")
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRequestID(r.Context()) == "" {
			t.Error("request id missing from context")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}
