package uploads_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/session"
	"github.com/odyssey-erp/backoffice/internal/testing/backofficetest"
	"github.com/odyssey-erp/backoffice/internal/uploads"
	_ "github.com/odyssey-erp/backoffice/testing"
)

func newUploads(t *testing.T) (*backofficetest.Harness, func(chi.Router)) {
	t.Helper()
	h := backofficetest.New(t)
	handler := uploads.NewHandler(h.Client, nil)
	return h, func(r chi.Router) { r.Route("/uploads", handler.MountRoutes) }
}

func presign(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/uploads/presign", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func problem(t *testing.T, res *httptest.ResponseRecorder) httpx.ProblemDetail {
	t.Helper()
	var p httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &p))
	return p
}

func TestPresignForwardsAndReturnsURL(t *testing.T) {
	h, mount := newUploads(t)
	h.SuperAdmin(t)
	h.Backend.On(http.MethodPost, "/upload/presigned-url", http.StatusOK, backofficetest.Envelope(map[string]any{
		"url": "https://bucket.example/products/abc.png?sig=1", "key": "products/abc.png",
	}, nil))

	res := h.Serve(t, mount, presign(`{"file_name":"C:\\photos\\shirt.png","content_type":"image/png"}`))
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"url":"https://bucket.example/products/abc.png?sig=1","key":"products/abc.png"}`, res.Body.String())

	call := h.Backend.Last(t)
	assert.JSONEq(t, `{"file_name":"shirt.png","content_type":"image/png"}`, call.Body)
	assert.True(t, strings.HasPrefix(call.Header.Get("Authorization"), "Bearer "))
}

func TestPresignValidation(t *testing.T) {
	h, mount := newUploads(t)
	h.SuperAdmin(t)

	for _, body := range []string{
		`{"file_name":"","content_type":"image/png"}`,
		`{"file_name":"notes.pdf","content_type":"application/pdf"}`,
		`{"file_name":"shirt.jpg","content_type":"image/png"}`,
		`{"file_name":"shirt.png","content_type":"image/png","acl":"public-read"}`,
	} {
		res := h.Serve(t, mount, presign(body))
		assert.Equal(t, http.StatusBadRequest, res.Code, body)
		assert.Equal(t, "Validation Failed", problem(t, res).Title, body)
	}
	assert.Empty(t, h.Backend.Calls())
}

func TestPresignBackendRejection(t *testing.T) {
	h, mount := newUploads(t)
	h.SuperAdmin(t)
	h.Backend.On(http.MethodPost, "/upload/presigned-url", http.StatusForbidden, backofficetest.Rejected(http.StatusForbidden, "bucket policy denied"))

	res := h.Serve(t, mount, presign(`{"file_name":"a.webp","content_type":"image/webp"}`))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.NotContains(t, res.Body.String(), "bucket policy")
}

func TestPresignRequiresSessionAndPermission(t *testing.T) {
	h, mount := newUploads(t)
	res := h.Serve(t, mount, presign(`{"file_name":"a.png","content_type":"image/png"}`))
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	h.SignIn(t, session.Profile{ID: "u3", Role: session.RoleStaff, Permissions: []string{"product.view"}})
	res = h.Serve(t, mount, presign(`{"file_name":"a.png","content_type":"image/png"}`))
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Empty(t, h.Backend.Calls())
}
