// Package backofficetest provides a fake backend API and a signed-in browser
// session for handler tests.
package backofficetest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/apiclient"
	_ "github.com/odyssey-erp/backoffice/internal/testing/guard"
)

// Call is one request received by the fake backend.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   string
}

// JSON decodes the request body.
func (c Call) JSON(t *testing.T) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(c.Body), &out))
	return out
}

type reply struct {
	status int
	body   string
}

// Backend is an httptest server answering canned envelopes per route.
type Backend struct {
	Server *httptest.Server

	mu     sync.Mutex
	routes map[string]reply
	calls  []Call
}

// NewBackend starts a fake backend closed with the test. Unknown routes
// answer a 404 rejection envelope.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{routes: make(map[string]reply)}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// On sets the reply for method and path.
func (b *Backend) On(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = reply{status: status, body: body}
}

// Calls returns a copy of every call received so far.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallsTo filters calls by method and path.
func (b *Backend) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Last returns the most recent call.
func (b *Backend) Last(t *testing.T) Call {
	t.Helper()
	calls := b.Calls()
	require.NotEmpty(t, calls, "backend was never called")
	return calls[len(calls)-1]
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.calls = append(b.calls, Call{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   string(raw),
	})
	rep, ok := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()
	if !ok {
		rep = reply{status: http.StatusNotFound, body: Rejected(http.StatusNotFound, "route not found")}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rep.status)
	_, _ = io.WriteString(w, rep.body)
}

// Envelope renders a success envelope around data.
func Envelope(data any, meta *apiclient.Meta) string {
	env := map[string]any{"success": true, "status": http.StatusOK, "message": "ok", "data": data}
	if meta != nil {
		env["meta"] = meta
	}
	raw, _ := json.Marshal(env)
	return string(raw)
}

// Rejected renders a success=false envelope.
func Rejected(status int, message string) string {
	raw, _ := json.Marshal(map[string]any{"success": false, "status": status, "message": message, "data": nil})
	return string(raw)
}
