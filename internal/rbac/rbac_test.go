package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/odyssey-erp/backoffice/internal/session"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
})

func serve(h http.Handler, sess *session.Session) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/catalog/products", nil)
	if sess != nil {
		req = req.WithContext(session.ContextWithSession(req.Context(), sess))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func staffWith(perms ...string) *session.Session {
	return &session.Session{Token: "tok", Profile: session.Profile{Role: session.RoleStaff, Permissions: perms}}
}

func TestRequireSessionRedirects(t *testing.T) {
	m := Middleware{}
	rec := serve(m.RequireSession(okHandler), nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))

	rec = serve(m.RequireSession(okHandler), &session.Session{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = serve(m.RequireSession(okHandler), staffWith())
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestExpiredTokenRedirects(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	m := Middleware{Now: func() time.Time { return now }}
	sess := staffWith("product.view")
	sess.Account.ExpiresAt = now.Add(-time.Second)

	rec := serve(m.RequireAny("product.view")(okHandler), sess)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	sess.Account.ExpiresAt = now.Add(time.Minute)
	rec = serve(m.RequireAny("product.view")(okHandler), sess)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRequireAnyAndAll(t *testing.T) {
	m := Middleware{}
	sess := staffWith("Product.View")

	assert.Equal(t, http.StatusTeapot, serve(m.RequireAny(" product.view ", "product.edit")(okHandler), sess).Code)
	assert.Equal(t, http.StatusForbidden, serve(m.RequireAll("product.view", "product.edit")(okHandler), sess).Code)
	assert.Equal(t, http.StatusForbidden, serve(m.RequireAny("order.view")(okHandler), sess).Code)
	assert.Equal(t, http.StatusTeapot, serve(m.RequireAny()(okHandler), sess).Code)

	admin := &session.Session{Token: "tok", Profile: session.Profile{Role: session.RoleSuperAdmin}}
	assert.Equal(t, http.StatusTeapot, serve(m.RequireAll("staff.manage", "product.delete")(okHandler), admin).Code)
}

func TestNormalizePermissions(t *testing.T) {
	assert.Equal(t, []string{"order.view", "order.update"}, normalizePermissions([]string{"Order.View", " ", "order.view", "order.update"}))
}

func TestNavigationFiltersByPermission(t *testing.T) {
	assert.Nil(t, Navigation(nil, "/"))

	items := Navigation(staffWith("order.view", "customer.view"), "/sales/orders/o1")
	if assert.Len(t, items, 2) {
		assert.Equal(t, "/sales/orders", items[0].Href)
		assert.True(t, items[0].Active)
		assert.Equal(t, "/sales/customers", items[1].Href)
		assert.False(t, items[1].Active)
	}

	admin := &session.Session{Token: "tok", Profile: session.Profile{Role: session.RoleSuperAdmin}}
	assert.Len(t, Navigation(admin, "/"), len(navEntries))
}

func TestNavigationActivePrefixIsSegmentAware(t *testing.T) {
	items := Navigation(staffWith("staff.view"), "/staffing")
	if assert.Len(t, items, 1) {
		assert.False(t, items[0].Active)
	}
}
