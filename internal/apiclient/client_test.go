package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/session"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   string
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func newFakeBackend(t *testing.T, status int, body string) (*fakeBackend, *httptest.Server) {
	t.Helper()
	fb := &fakeBackend{status: status, body: body}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		fb.mu.Lock()
		fb.requests = append(fb.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   string(raw),
		})
		status, body := fb.status, fb.body
		fb.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return fb, srv
}

func (fb *fakeBackend) last(t *testing.T) recordedRequest {
	t.Helper()
	fb.mu.Lock()
	defer fb.mu.Unlock()
	require.NotEmpty(t, fb.requests, "backend was never called")
	return fb.requests[len(fb.requests)-1]
}

func (fb *fakeBackend) count() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.requests)
}

type observation struct {
	resource, method, outcome string
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (o *recordingObserver) ObserveBackendCall(resource, method, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observation{resource, method, outcome})
}

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, baseURL string, obs Observer) *Client {
	t.Helper()
	client, err := New(Config{BaseURL: baseURL, Observer: obs})
	require.NoError(t, err)
	return client
}

var signedIn = &session.Session{Token: "tok-123"}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	_, err = New(Config{BaseURL: "::not a url"})
	require.Error(t, err)
}

func TestListSendsOnlyDefinedParameters(t *testing.T) {
	fb, srv := newFakeBackend(t, http.StatusOK, `{"data":[{"id":"p1","name":"Shirt"}],"meta":{"page":2,"limit":5,"pages":4,"total":18},"success":true,"message":"ok","status":200}`)
	products := NewResource[item](newTestClient(t, srv.URL, nil), "/product/products")

	page, err := products.List(context.Background(), signedIn, Query{
		Page:    2,
		Limit:   5,
		Filters: map[string]string{"brand": "", "category": "tops"},
	})
	require.NoError(t, err)

	req := fb.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/product/products", req.Path)
	assert.Equal(t, map[string][]string{
		"page":     {"2"},
		"limit":    {"5"},
		"category": {"tops"},
	}, req.Query)
	assert.Equal(t, "Bearer tok-123", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	require.Len(t, page.Items, 1)
	assert.Equal(t, "Shirt", page.Items[0].Name)
	require.NotNil(t, page.Meta)
	assert.Equal(t, Meta{Page: 2, Limit: 5, Pages: 4, Total: 18}, *page.Meta)
}

// Discounts and transactions have always sent an empty search parameter
// while other collections omit it. Both behaviors are kept per collection.
func TestAlwaysSearchCollectionsSendEmptySearch(t *testing.T) {
	fb, srv := newFakeBackend(t, http.StatusOK, `{"data":[],"success":true,"message":"ok","status":200}`)
	client := newTestClient(t, srv.URL, nil)

	discounts := NewResource[item](client, "/discount/discounts").WithAlwaysSearch()
	_, err := discounts.List(context.Background(), signedIn, Query{Page: 1, Limit: 10})
	require.NoError(t, err)
	req := fb.last(t)
	require.Contains(t, req.Query, "search")
	assert.Equal(t, []string{""}, req.Query["search"])

	products := NewResource[item](client, "/product/products")
	_, err = products.List(context.Background(), signedIn, Query{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.NotContains(t, fb.last(t).Query, "search")
}

func TestMutationRejectionIsGenericAndDropsData(t *testing.T) {
	_, srv := newFakeBackend(t, http.StatusUnprocessableEntity, `{"data":{"id":"leaked"},"success":false,"message":"name: already taken","status":422}`)
	obs := &recordingObserver{}
	products := NewResource[item](newTestClient(t, srv.URL, obs), "/product/products")

	created, err := products.Create(context.Background(), signedIn, map[string]string{"name": "Shirt"})
	require.Error(t, err)
	assert.Equal(t, "Bad Request", err.Error())
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, item{}, created)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 422, apiErr.Status)
	assert.Equal(t, "name: already taken", apiErr.Detail)
	assert.Equal(t, []observation{{"/product/products", http.MethodPost, "rejected"}}, obs.seen)
}

func TestReadRejectionFailsTheSameWay(t *testing.T) {
	_, srv := newFakeBackend(t, http.StatusOK, `{"data":[],"success":false,"message":"nope","status":403}`)
	orders := NewResource[item](newTestClient(t, srv.URL, nil), "/order/orders")

	page, err := orders.List(context.Background(), signedIn, Query{Page: 1})
	assert.ErrorIs(t, err, ErrRejected)
	assert.Nil(t, page.Items)
}

func TestUnauthenticatedCallIsStillIssued(t *testing.T) {
	fb, srv := newFakeBackend(t, http.StatusUnauthorized, `{"data":null,"success":false,"message":"unauthorized","status":401}`)
	staff := NewResource[item](newTestClient(t, srv.URL, nil), "/staff/staffs")

	_, err := staff.List(context.Background(), nil, Query{Page: 1, Limit: 10})
	assert.ErrorIs(t, err, ErrRejected)
	require.Equal(t, 1, fb.count())
	assert.Empty(t, fb.last(t).Header.Get("Authorization"))
}

func TestIdenticalReadsAreIdentical(t *testing.T) {
	fb, srv := newFakeBackend(t, http.StatusOK, `{"data":[{"id":"c1","name":"Ana"}],"meta":{"page":1,"limit":10,"pages":1,"total":1},"success":true,"message":"ok","status":200}`)
	customers := NewResource[item](newTestClient(t, srv.URL, nil), "/customer/customers")
	q := Query{Page: 1, Limit: 10, Status: "active"}

	first, err := customers.List(context.Background(), signedIn, q)
	require.NoError(t, err)
	second, err := customers.List(context.Background(), signedIn, q)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, fb.count(), "each read must reach the backend")
}

func TestBodyParsedRegardlessOfHTTPStatus(t *testing.T) {
	_, srv := newFakeBackend(t, http.StatusInternalServerError, `{"data":{"id":"x","name":"ok anyway"},"success":true,"message":"ok","status":200}`)
	products := NewResource[item](newTestClient(t, srv.URL, nil), "/product/products")

	got, err := products.Get(context.Background(), signedIn, "x")
	require.NoError(t, err)
	assert.Equal(t, "ok anyway", got.Name)
}

func TestBoundaryValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		kind Kind
	}{
		{"html error page", `<html>oops</html>`, KindDecode},
		{"empty body", ``, KindDecode},
		{"array body", `[1,2,3]`, KindMalformed},
		{"missing success", `{"data":[],"status":200}`, KindMalformed},
		{"string success", `{"success":"true"}`, KindMalformed},
		{"string status", `{"success":true,"status":"200"}`, KindMalformed},
		{"meta list", `{"success":true,"meta":[1]}`, KindMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, srv := newFakeBackend(t, http.StatusOK, tc.body)
			client := newTestClient(t, srv.URL, nil)
			_, err := client.Do(context.Background(), signedIn, Request{Path: "/brand/brands"})
			require.Error(t, err)
			assert.Equal(t, tc.kind, KindOf(err))
		})
	}
}

func TestTransportFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := newTestClient(t, base, nil)
	_, err := client.Do(context.Background(), signedIn, Request{Path: "/brand/brands"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestGetWithEmptyDataReportsErrEmptyData(t *testing.T) {
	for _, body := range []string{
		`{"success":true,"message":"ok","status":200}`,
		`{"data":null,"success":true,"message":"ok","status":200}`,
		`{"data":{},"success":true,"message":"ok","status":200}`,
	} {
		_, srv := newFakeBackend(t, http.StatusOK, body)
		brands := NewResource[item](newTestClient(t, srv.URL, nil), "brand/brands")
		_, err := brands.Get(context.Background(), signedIn, "b1")
		assert.ErrorIs(t, err, ErrEmptyData, body)
	}
}

func TestWritesEncodeBodyAndUsePatchAndDelete(t *testing.T) {
	fb, srv := newFakeBackend(t, http.StatusOK, `{"data":{"id":"o1","name":"shipped"},"success":true,"message":"ok","status":200}`)
	orders := NewResource[item](newTestClient(t, srv.URL, nil), "/order/orders")

	_, err := orders.Action(context.Background(), signedIn, http.MethodPatch, "o1", "status", map[string]string{"status": "shipped"})
	require.NoError(t, err)
	req := fb.last(t)
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/order/orders/o1/status", req.Path)
	var sent map[string]string
	require.NoError(t, json.Unmarshal([]byte(req.Body), &sent))
	assert.Equal(t, "shipped", sent["status"])

	require.NoError(t, orders.Delete(context.Background(), signedIn, "o 2"))
	req = fb.last(t)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/order/orders/o 2", req.Path)
}

func TestRequestIDIsForwarded(t *testing.T) {
	fb, srv := newFakeBackend(t, http.StatusOK, `{"data":[],"success":true,"message":"ok","status":200}`)
	client := newTestClient(t, srv.URL, nil)
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-77")

	_, err := client.Do(ctx, signedIn, Request{Path: "/category/categories"})
	require.NoError(t, err)
	assert.Equal(t, "req-77", fb.last(t).Header.Get("X-Request-ID"))
}
