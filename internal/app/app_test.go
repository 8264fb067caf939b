package app

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/testing/backofficetest"
	_ "github.com/odyssey-erp/backoffice/testing"
)

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

type browser struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

func newStack(t *testing.T) (*browser, *backofficetest.Backend) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	backend := backofficetest.NewBackend(t)
	cfg := &Config{
		AppEnv:            "test",
		AppRequestTimeout: 5 * time.Second,
		SessionCookie:     "backoffice_session",
		SessionTTL:        time.Hour,
		CSRFSecret:        "app-test-secret",
		APIBaseURL:        backend.Server.URL,
	}
	handler, err := NewHandler(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), rdb)
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &browser{t: t, server: server, client: client}, backend
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	res, err := b.client.Get(b.server.URL + path)
	require.NoError(b.t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(b.t, err)
	return res, string(body)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	res, err := b.client.PostForm(b.server.URL+path, form)
	require.NoError(b.t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(b.t, err)
	return res, string(body)
}

func csrfFrom(t *testing.T, body string) string {
	t.Helper()
	m := csrfPattern.FindStringSubmatch(body)
	require.Len(t, m, 2, "csrf token not rendered")
	return m[1]
}

func signIn(t *testing.T, b *browser, backend *backofficetest.Backend, perms []string) {
	t.Helper()
	backend.On(http.MethodPost, "/auth/signin", http.StatusOK, backofficetest.Envelope(map[string]any{"access_token": backofficetest.Token(t, "u-9")}, nil))
	backend.On(http.MethodGet, "/auth/session", http.StatusOK, backofficetest.Envelope(map[string]any{
		"user": map[string]any{"id": "u-9", "name": "Rina", "role": "staff", "permissions": perms, "status": "active"},
	}, nil))

	_, body := b.get("/auth/login")
	res, _ := b.post("/auth/login", url.Values{"identifier": {"8801700000000"}, "password": {"secret"}, "csrf_token": {csrfFrom(t, body)}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.Equal(t, "/", res.Header.Get("Location"))
}

func TestHomeRedirectsAnonymousVisitors(t *testing.T) {
	b, _ := newStack(t)
	res, _ := b.get("/")
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/auth/login", res.Header.Get("Location"))
}

func TestLoginRequiresCSRFToken(t *testing.T) {
	b, backend := newStack(t)
	b.get("/auth/login")
	res, _ := b.post("/auth/login", url.Values{"identifier": {"8801700000000"}, "password": {"secret"}})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Empty(t, backend.Calls())
}

func TestSignInFlowShowsPermittedNavigation(t *testing.T) {
	b, backend := newStack(t)
	signIn(t, b, backend, []string{"order.view", "customer.view"})

	res, body := b.get("/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Welcome back")
	assert.Contains(t, body, "Rina")
	assert.Contains(t, body, `href="/sales/orders"`)
	assert.NotContains(t, body, `href="/staff"`)

	res, _ = b.get("/staff")
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestListThroughFullStack(t *testing.T) {
	b, backend := newStack(t)
	signIn(t, b, backend, []string{"order.view"})
	backend.On(http.MethodGet, "/order/orders", http.StatusOK, backofficetest.Envelope([]any{
		map[string]any{"id": "o1", "order_number": "INV-001", "status": "pending", "total": "120.00"},
	}, nil))

	res, body := b.get("/sales/orders?status=pending")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "INV-001")

	call := backend.Last(t)
	assert.Equal(t, "pending", call.Query.Get("status"))
	assert.True(t, strings.HasPrefix(call.Header.Get("Authorization"), "Bearer "))
	assert.NotEmpty(t, call.Header.Get("X-Request-ID"))
}

func TestLogoutClearsSession(t *testing.T) {
	b, backend := newStack(t)
	signIn(t, b, backend, nil)

	_, body := b.get("/")
	res, _ := b.post("/auth/logout", url.Values{"csrf_token": {csrfFrom(t, body)}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	res, _ = b.get("/")
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/auth/login", res.Header.Get("Location"))
}

func TestUploadPresignAcceptsHeaderToken(t *testing.T) {
	b, backend := newStack(t)
	signIn(t, b, backend, []string{"upload.create"})
	backend.On(http.MethodPost, "/upload/presigned-url", http.StatusOK, backofficetest.Envelope(map[string]any{"url": "https://s3.example/put", "key": "k1"}, nil))
	_, body := b.get("/")

	send := func(token string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, b.server.URL+"/uploads/presign", bytes.NewBufferString(`{"file_name":"a.png","content_type":"image/png"}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("X-CSRF-Token", token)
		}
		res, err := b.client.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = res.Body.Close() })
		return res
	}

	assert.Equal(t, http.StatusForbidden, send("").StatusCode)
	assert.Equal(t, http.StatusOK, send(csrfFrom(t, body)).StatusCode)
}

func TestOperationalEndpoints(t *testing.T) {
	b, backend := newStack(t)
	signIn(t, b, backend, nil)

	res, body := b.get("/healthz")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
	assert.Equal(t, "DENY", res.Header.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", res.Header.Get("X-Content-Type-Options"))

	_, body = b.get("/metrics")
	assert.Contains(t, body, "backoffice_backend_calls_total")
	assert.Contains(t, body, "backoffice_http_requests_total")

	res, _ = b.get("/static/css/app.css")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "public, max-age=3600", res.Header.Get("Cache-Control"))

	res, body = b.get("/no/such/page")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, body, "Page not found")
}
