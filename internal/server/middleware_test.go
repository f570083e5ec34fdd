package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/replog/internal/identity"
	"github.com/claude/replog/internal/logging"
	"tailscale.com/client/tailscale/apitype"
	"tailscale.com/tailcfg"
)

// TestAPIKeyAuth verifies missing and wrong keys are rejected with distinct
// status codes.
func TestAPIKeyAuth(t *testing.T) {
	handler := APIKeyAuth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusForbidden},
		{"valid", "secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// TestMutatingRoutesNeedKey verifies session creation is protected while
// reads are not.
func TestMutatingRoutesNeedKey(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("POST sessions without key = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/workout-types", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET workout-types without key = %d, want 200", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight must not reach the handler")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/sessions", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("missing Access-Control-Allow-Methods")
	}
}

// TestDevIdentity verifies every request acts for the configured user.
func TestDevIdentity(t *testing.T) {
	var got identity.User
	handler := DevIdentity(identity.User{ID: 5, Login: "me"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = userFromRequest(r)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got.ID != 5 || got.Login != "me" {
		t.Errorf("user = %+v, want id 5 login me", got)
	}
}

type fakeWhoIs struct {
	login string
	err   error
}

func (f fakeWhoIs) WhoIs(context.Context, string) (*apitype.WhoIsResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &apitype.WhoIsResponse{
		UserProfile: &tailcfg.UserProfile{LoginName: f.login, DisplayName: "Alice"},
	}, nil
}

type countingUsers struct{ calls int }

func (c *countingUsers) GetOrCreateUser(_ context.Context, login, _ string) (int, error) {
	c.calls++
	return 42, nil
}

// TestTailscaleIdentity verifies the tailnet user is resolved once and cached,
// and unknown peers are rejected.
func TestTailscaleIdentity(t *testing.T) {
	users := &countingUsers{}
	var got identity.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = userFromRequest(r)
	})

	handler := TailscaleIdentity(fakeWhoIs{login: "alice@example.com"}, users, 1, logging.NewNop())(next)
	for range 2 {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	if got.ID != 42 || got.Login != "alice@example.com" {
		t.Errorf("user = %+v, want id 42 alice", got)
	}
	if users.calls != 1 {
		t.Errorf("GetOrCreateUser calls = %d, want 1", users.calls)
	}

	rejecting := TailscaleIdentity(fakeWhoIs{err: errors.New("no peer")}, users, 1, logging.NewNop())(next)
	rec := httptest.NewRecorder()
	rejecting.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

// TestServerSwitchesToTailscale verifies SetTailscale changes who /me reports.
func TestServerSwitchesToTailscale(t *testing.T) {
	s := newTestServer(t, Deps{})
	s.SetTailscale(fakeWhoIs{login: "bob@example.com"})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "bob@example.com") {
		t.Errorf("body = %s, want bob", body)
	}
}
