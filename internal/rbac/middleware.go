package rbac

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/odyssey-erp/backoffice/internal/session"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/auth/login"

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
	Now    func() time.Time
}

// RequireSession redirects visitors without a usable bearer token to the
// login page.
func (m Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.session(w, r); !ok {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAny ensures the current user has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return m.require(func(sess *session.Session) bool {
		if len(normalized) == 0 {
			return true
		}
		for _, p := range normalized {
			if sess.Can(p) {
				return true
			}
		}
		return false
	})
}

// RequireAll ensures the current user has all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return m.require(func(sess *session.Session) bool {
		for _, p := range normalized {
			if !sess.Can(p) {
				return false
			}
		}
		return true
	})
}

func (m Middleware) require(allowed func(*session.Session) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := m.session(w, r)
			if !ok {
				return
			}
			if !allowed(sess) {
				if m.Logger != nil {
					m.Logger.Warn("rbac denied", slog.String("path", r.URL.Path), slog.String("role", string(sess.Profile.Role)))
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess := session.FromContext(r.Context())
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	if !sess.Authenticated() || sess.Expired(now()) {
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return nil, false
	}
	return sess, true
}

func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		if _, ok := unique[p]; ok {
			continue
		}
		unique[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}
