package backofficetest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/apiclient"
	"github.com/odyssey-erp/backoffice/internal/console"
	"github.com/odyssey-erp/backoffice/internal/session"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

// CookieName is the session cookie used by the harness.
const CookieName = "backoffice_test"

// Harness serves handlers the way the application router does: the browser
// session is loaded from Redis, resolved into a session.Session and
// committed after the handler runs.
type Harness struct {
	Backend  *Backend
	Client   *apiclient.Client
	Sessions *shared.SessionManager
	CSRF     *shared.CSRFManager
	Kit      *console.Kit

	cookie string
}

// New builds a harness with an anonymous browser.
func New(t *testing.T) *Harness {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	backend := NewBackend(t)
	client, err := apiclient.New(apiclient.Config{BaseURL: backend.Server.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	engine, err := view.NewEngine()
	require.NoError(t, err)
	csrf := shared.NewCSRFManager("test-csrf-secret")
	return &Harness{
		Backend:  backend,
		Client:   client,
		Sessions: shared.NewSessionManager(rdb, CookieName, time.Hour, false),
		CSRF:     csrf,
		Kit:      console.NewKit(view.NewResponder(engine, nil), csrf, nil),
	}
}

// Token signs a bearer token for subject valid for an hour.
func Token(t *testing.T, subject string) string {
	t.Helper()
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"iss": "backend",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
		"sid": "sid-" + subject,
	}).SignedString([]byte("backend-key"))
	require.NoError(t, err)
	return token
}

// SignIn stores a bearer token and profile in a fresh browser session.
func (h *Harness) SignIn(t *testing.T, profile session.Profile) string {
	t.Helper()
	token := Token(t, profile.ID)
	h.withSession(t, func(sess *shared.Session) {
		require.NoError(t, session.Persist(sess, token, profile))
	})
	return token
}

// SuperAdmin signs in with every permission.
func (h *Harness) SuperAdmin(t *testing.T) string {
	t.Helper()
	return h.SignIn(t, session.Profile{ID: "u-1", Name: "Ayu Admin", Role: session.RoleSuperAdmin, Status: session.AccountActive})
}

// Serve runs req through the handlers registered by mount.
func (h *Harness) Serve(t *testing.T, mount func(chi.Router), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Use(h.middleware(t))
	mount(router)

	if h.cookie != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: h.cookie})
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func (h *Harness) middleware(t *testing.T) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			webSess, err := h.Sessions.Load(r.Context(), r)
			require.NoError(t, err)
			ctx := shared.ContextWithSession(r.Context(), webSess)
			ctx = session.ContextWithSession(ctx, session.Resolve(webSess))
			next.ServeHTTP(w, r.WithContext(ctx))
			require.NoError(t, h.Sessions.Commit(context.Background(), httptest.NewRecorder(), webSess))
			h.cookie = webSess.ID
		})
	}
}

func (h *Harness) withSession(t *testing.T, fn func(*shared.Session)) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if h.cookie != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: h.cookie})
	}
	sess, err := h.Sessions.Load(context.Background(), req)
	require.NoError(t, err)
	fn(sess)
	require.NoError(t, h.Sessions.Commit(context.Background(), httptest.NewRecorder(), sess))
	h.cookie = sess.ID
}

// CSRFToken returns the token stored in the browser session.
func (h *Harness) CSRFToken(t *testing.T) string {
	t.Helper()
	var token string
	h.withSession(t, func(sess *shared.Session) {
		var err error
		token, err = h.CSRF.EnsureToken(sess)
		require.NoError(t, err)
	})
	return token
}

// Flash pops the pending flash message, if any.
func (h *Harness) Flash(t *testing.T) *shared.FlashMessage {
	t.Helper()
	var flash *shared.FlashMessage
	h.withSession(t, func(sess *shared.Session) {
		flash = sess.PopFlash()
	})
	return flash
}

// Value reads one value of the browser session.
func (h *Harness) Value(t *testing.T, key string) string {
	t.Helper()
	var v string
	h.withSession(t, func(sess *shared.Session) { v = sess.Get(key) })
	return v
}

// PostForm builds a form POST.
func PostForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

var confirmTokenPattern = regexp.MustCompile(`name="` + shared.ConfirmFormField + `" value="([^"]+)"`)

// ConfirmToken extracts the confirmation token from a rendered confirm page.
func ConfirmToken(t *testing.T, body string) string {
	t.Helper()
	m := confirmTokenPattern.FindStringSubmatch(body)
	require.Len(t, m, 2, "confirm token not found in page")
	return m[1]
}
