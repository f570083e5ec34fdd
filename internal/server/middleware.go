package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/claude/replog/internal/identity"
	"tailscale.com/client/tailscale/apitype"
)

// APIKeyAuth returns middleware that validates the X-API-Key header.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing API key"})
				return
			}
			if key != apiKey {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid API key"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogging returns middleware that logs each request.
func RequestLogging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start).String(),
			)
		})
	}
}

// CORS adds permissive CORS headers for local development.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusWriter wraps ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// WhoIser identifies the tailnet peer behind a remote address.
type WhoIser interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

// UserResolver maps a login to a stored user ID.
type UserResolver interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
}

// DevIdentity returns middleware that makes every request act for u.
func DevIdentity(u identity.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(identity.With(r.Context(), u)))
		})
	}
}

// TailscaleIdentity returns middleware that resolves the tailnet user behind
// each request. Requests from unknown peers are rejected. users may be nil, in
// which case every tailnet user gets fallbackID.
func TailscaleIdentity(who WhoIser, users UserResolver, fallbackID int, log *slog.Logger) func(http.Handler) http.Handler {
	var ids sync.Map // login -> int

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := who.WhoIs(r.Context(), r.RemoteAddr)
			if err != nil || res == nil || res.UserProfile == nil {
				log.Warn("tailscale whois failed", "remote", r.RemoteAddr, "error", err)
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "unknown tailnet peer"})
				return
			}

			u := identity.User{
				ID:          fallbackID,
				Login:       res.UserProfile.LoginName,
				DisplayName: res.UserProfile.DisplayName,
			}
			if users != nil {
				if id, ok := ids.Load(u.Login); ok {
					u.ID = id.(int)
				} else {
					id, err := users.GetOrCreateUser(r.Context(), u.Login, u.DisplayName)
					if err != nil {
						log.Error("resolving user", "login", u.Login, "error", err)
						writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "resolving user"})
						return
					}
					ids.Store(u.Login, id)
					u.ID = id
				}
			}
			next.ServeHTTP(w, r.WithContext(identity.With(r.Context(), u)))
		})
	}
}

// identify applies Tailscale identity when a tailnet is attached and the
// default user otherwise.
func (s *Server) identify(next http.Handler) http.Handler {
	dev := DevIdentity(s.deps.DefaultUser)(next)
	var ts http.Handler
	var once sync.Once
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.who == nil {
			dev.ServeHTTP(w, r)
			return
		}
		once.Do(func() {
			ts = TailscaleIdentity(s.who, s.deps.Users, s.deps.DefaultUser.ID, s.log)(next)
		})
		ts.ServeHTTP(w, r)
	})
}

func userFromRequest(r *http.Request) identity.User {
	return identity.FromOr(r.Context(), identity.Local)
}
