package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/auth"
	"github.com/odyssey-erp/backoffice/internal/session"
	"github.com/odyssey-erp/backoffice/internal/testing/backofficetest"
	_ "github.com/odyssey-erp/backoffice/testing"
)

func newAuth(t *testing.T) (*backofficetest.Harness, func(chi.Router)) {
	t.Helper()
	h := backofficetest.New(t)
	handler := auth.NewHandler(nil, auth.NewService(h.Client), h.Kit, h.Sessions)
	return h, func(r chi.Router) { r.Route("/auth", handler.MountRoutes) }
}

func TestLoginPage(t *testing.T) {
	h, mount := newAuth(t)
	res := h.Serve(t, mount, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "<form")
	assert.Contains(t, res.Body.String(), `name="identifier"`)
}

func TestSignInStripsLeadingPlus(t *testing.T) {
	h, mount := newAuth(t)
	token := backofficetest.Token(t, "u-9")
	h.Backend.On(http.MethodPost, "/auth/signin", http.StatusOK, backofficetest.Envelope(map[string]any{"access_token": token}, nil))
	h.Backend.On(http.MethodGet, "/auth/session", http.StatusOK, backofficetest.Envelope(map[string]any{
		"user": map[string]any{"id": "u-9", "name": "Rahim", "role": "manager", "permissions": []string{"order.view"}, "status": "active"},
	}, nil))

	res := h.Serve(t, mount, backofficetest.PostForm("/auth/login", url.Values{
		"identifier": {"+8801XXXXXXXXX"},
		"password":   {"secret1"},
	}))
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/", res.Header().Get("Location"))

	signIn := h.Backend.CallsTo(http.MethodPost, "/auth/signin")
	require.Len(t, signIn, 1)
	assert.JSONEq(t, `{"identifier":"8801XXXXXXXXX","password":"secret1"}`, signIn[0].Body)
	assert.Empty(t, signIn[0].Header.Get("Authorization"))

	profileCall := h.Backend.CallsTo(http.MethodGet, "/auth/session")
	require.Len(t, profileCall, 1)
	assert.Equal(t, "Bearer "+token, profileCall[0].Header.Get("Authorization"))

	assert.Equal(t, token, h.Value(t, session.TokenKey))
	assert.Contains(t, h.Value(t, session.ProfileKey), `"role":"manager"`)
	flash := h.Flash(t)
	require.NotNil(t, flash)
	assert.Equal(t, "Welcome back", flash.Message)
}

func TestSignInRejectedShowsInvalidCredentials(t *testing.T) {
	h, mount := newAuth(t)
	h.Backend.On(http.MethodPost, "/auth/signin", http.StatusUnauthorized, backofficetest.Rejected(http.StatusUnauthorized, "wrong password"))

	res := h.Serve(t, mount, backofficetest.PostForm("/auth/login", url.Values{"identifier": {"8801"}, "password": {"nope"}}))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Invalid mobile number or password")
	assert.NotContains(t, res.Body.String(), "wrong password")
	assert.Empty(t, h.Backend.CallsTo(http.MethodGet, "/auth/session"))
	assert.Empty(t, h.Value(t, session.TokenKey))
}

func TestSignInLocalValidationSkipsBackend(t *testing.T) {
	h, mount := newAuth(t)
	res := h.Serve(t, mount, backofficetest.PostForm("/auth/login", url.Values{"identifier": {"+"}, "password": {""}}))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Password is required")
	assert.Empty(t, h.Backend.Calls())
}

func TestLoginRedirectsWhenSignedIn(t *testing.T) {
	h, mount := newAuth(t)
	h.SuperAdmin(t)
	res := h.Serve(t, mount, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	assert.Equal(t, http.StatusSeeOther, res.Code)
}

func TestLogoutClearsSession(t *testing.T) {
	h, mount := newAuth(t)
	h.SuperAdmin(t)
	res := h.Serve(t, mount, backofficetest.PostForm("/auth/logout", nil))
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/auth/login", res.Header().Get("Location"))
	assert.Empty(t, h.Value(t, session.TokenKey))
}

func TestServiceSignIn(t *testing.T) {
	h := backofficetest.New(t)
	svc := auth.NewService(h.Client)

	sess, err := svc.SignIn(context.Background(), "  ", "secret1")
	assert.NoError(t, err)
	assert.Nil(t, sess)
	assert.Empty(t, h.Backend.Calls())

	token := backofficetest.Token(t, "u-3")
	h.Backend.On(http.MethodPost, "/auth/signin", http.StatusOK, backofficetest.Envelope(map[string]any{"access_token": token}, nil))
	sess, err = svc.SignIn(context.Background(), "+8801700000000", "secret1")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "u-3", sess.Account.Subject)
	assert.Equal(t, "sid-u-3", sess.Account.SessionID)
}

func TestServiceSignInTransportFailure(t *testing.T) {
	h := backofficetest.New(t)
	h.Backend.Server.Close()
	_, err := auth.NewService(h.Client).SignIn(context.Background(), "8801", "secret1")
	assert.Error(t, err)
}

func TestNormalizeIdentifier(t *testing.T) {
	assert.Equal(t, "8801XXXXXXXXX", auth.NormalizeIdentifier(" +8801XXXXXXXXX "))
	assert.Equal(t, "+8801", auth.NormalizeIdentifier("++8801"))
	assert.Equal(t, "8801", auth.NormalizeIdentifier("8801"))
	assert.Empty(t, auth.NormalizeIdentifier("+"))
}
