package analytics_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/analytics"
	"github.com/odyssey-erp/backoffice/internal/rbac"
	"github.com/odyssey-erp/backoffice/internal/session"
	"github.com/odyssey-erp/backoffice/internal/testing/backofficetest"
	_ "github.com/odyssey-erp/backoffice/testing"
)

func newAnalytics(t *testing.T) (*backofficetest.Harness, func(chi.Router)) {
	t.Helper()
	h := backofficetest.New(t)
	handler := analytics.NewHandler(h.Kit, h.Client, rbac.Middleware{})
	return h, func(r chi.Router) { r.Route("/analytics", handler.MountRoutes) }
}

func stubSummary(h *backofficetest.Harness) {
	h.Backend.On(http.MethodGet, "/analytics/summary", http.StatusOK, backofficetest.Envelope(map[string]any{
		"total_revenue": "125000.50", "total_orders": 42, "total_customers": 17, "average_order_value": "2976.20", "pending_orders": 3,
	}, nil))
}

func stubTrend(h *backofficetest.Harness) {
	h.Backend.On(http.MethodGet, "/analytics/sales-trend", http.StatusOK, backofficetest.Envelope([]any{
		map[string]any{"date": "2024-03-01", "revenue": "1000", "orders": 4},
		map[string]any{"date": "2024-03-02", "revenue": "2500", "orders": 9},
	}, nil))
}

func stubTop(h *backofficetest.Harness) {
	h.Backend.On(http.MethodGet, "/analytics/top-products", http.StatusOK, backofficetest.Envelope([]any{
		map[string]any{"product_id": "p1", "name": "Linen Shirt", "quantity_sold": 30, "revenue": "45000"},
		map[string]any{"product_id": "p2", "name": "Denim, Slim", "quantity_sold": 12, "revenue": "30000.5"},
	}, nil))
}

func TestDashboardRendersEverySection(t *testing.T) {
	h, mount := newAnalytics(t)
	h.SuperAdmin(t)
	stubSummary(h)
	stubTrend(h)
	stubTop(h)

	res := h.Serve(t, mount, httptest.NewRequest(http.MethodGet, "/analytics?date_from=2024-03-01&date_to=2024-03-31", nil))
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "125,000.50")
	assert.Contains(t, body, "Linen Shirt")
	assert.Contains(t, body, "/catalog/products/p1")
	assert.Equal(t, 2, strings.Count(body, "<svg"))
	assert.NotContains(t, body, "could not be loaded")

	for _, path := range []string{"/analytics/summary", "/analytics/sales-trend", "/analytics/top-products"} {
		calls := h.Backend.CallsTo(http.MethodGet, path)
		require.Len(t, calls, 1, path)
		assert.Equal(t, url.Values{"date_from": {"2024-03-01"}, "date_to": {"2024-03-31"}}, calls[0].Query)
		assert.True(t, strings.HasPrefix(calls[0].Header.Get("Authorization"), "Bearer "))
	}
}

func TestDashboardSectionFailureIsIsolated(t *testing.T) {
	h, mount := newAnalytics(t)
	h.SuperAdmin(t)
	stubSummary(h)
	stubTop(h)
	h.Backend.On(http.MethodGet, "/analytics/sales-trend", http.StatusInternalServerError, backofficetest.Rejected(http.StatusInternalServerError, "trend store down"))

	res := h.Serve(t, mount, httptest.NewRequest(http.MethodGet, "/analytics", nil))
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Equal(t, 1, strings.Count(body, "could not be loaded"))
	assert.Contains(t, body, "125,000.50")
	assert.Contains(t, body, "Linen Shirt")
	assert.NotContains(t, body, "trend store down")
	assert.Empty(t, h.Backend.Last(t).Query)
}

func TestDashboardEmptySections(t *testing.T) {
	h, mount := newAnalytics(t)
	h.SuperAdmin(t)
	stubSummary(h)
	h.Backend.On(http.MethodGet, "/analytics/sales-trend", http.StatusOK, backofficetest.Envelope([]any{}, nil))
	h.Backend.On(http.MethodGet, "/analytics/top-products", http.StatusOK, backofficetest.Envelope(nil, nil))

	res := h.Serve(t, mount, httptest.NewRequest(http.MethodGet, "/analytics", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, 2, strings.Count(res.Body.String(), "No data for this period"))
}

func TestDashboardRequiresPermission(t *testing.T) {
	h, mount := newAnalytics(t)
	h.SignIn(t, session.Profile{ID: "u2", Role: session.RoleStaff, Permissions: []string{"order.view"}})

	res := h.Serve(t, mount, httptest.NewRequest(http.MethodGet, "/analytics", nil))
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Empty(t, h.Backend.Calls())
}

func TestExportTopProducts(t *testing.T) {
	h, mount := newAnalytics(t)
	h.SuperAdmin(t)
	stubTop(h)

	res := h.Serve(t, mount, httptest.NewRequest(http.MethodGet, "/analytics/top-products.csv?date_from=2024-03-01", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "text/csv; charset=utf-8", res.Header().Get("Content-Type"))
	assert.Contains(t, res.Header().Get("Content-Disposition"), "top-products-2024-03-01.csv")
	assert.Equal(t, "Period,from 2024-03-01\n"+
		"Rank,Product ID,Product,Quantity Sold,Revenue\n"+
		"1,p1,Linen Shirt,30,45000.00\n"+
		"2,p2,\"Denim, Slim\",12,30000.50\n", res.Body.String())
}

func TestExportFailureIsGeneric(t *testing.T) {
	h, mount := newAnalytics(t)
	h.SuperAdmin(t)

	res := h.Serve(t, mount, httptest.NewRequest(http.MethodGet, "/analytics/top-products.csv", nil))
	assert.Equal(t, http.StatusBadGateway, res.Code)
	assert.Contains(t, res.Body.String(), "Something went wrong")
}

func TestParseRange(t *testing.T) {
	rng := analytics.ParseRange(url.Values{"date_from": {"2024-04-30"}, "date_to": {"2024-04-01"}})
	assert.Equal(t, analytics.Range{From: "2024-04-01", To: "2024-04-30"}, rng)

	rng = analytics.ParseRange(url.Values{"date_from": {"yesterday"}, "date_to": {"2024-04-01"}})
	assert.Equal(t, analytics.Range{To: "2024-04-01"}, rng)
}
