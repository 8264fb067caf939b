package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/apiclient"
)

func TestRespondErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		detail string
	}{
		{fmt.Errorf("%w: file_name is required", ErrValidation), http.StatusBadRequest, "validation failed: file_name is required"},
		{ErrForbidden, http.StatusForbidden, ""},
		{&apiclient.Error{Kind: apiclient.KindRejected, Detail: "bucket quota exceeded"}, http.StatusBadRequest, ""},
		{&apiclient.Error{Kind: apiclient.KindTransport, Err: errors.New("dial tcp")}, http.StatusBadGateway, ""},
		{errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err)
		assert.Equal(t, tc.status, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

		var body ProblemDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.status, body.Status)
		assert.Equal(t, tc.detail, body.Detail)
		assert.NotContains(t, rec.Body.String(), "bucket quota")
	}
}

func TestDecodeJSONRejectsUnknownAndTrailing(t *testing.T) {
	var target struct {
		Name string `json:"name"`
	}
	decode := func(body string) error {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		return DecodeJSON(httptest.NewRecorder(), req, &target)
	}
	require.NoError(t, decode(`{"name":"a.png"}`))
	assert.Equal(t, "a.png", target.Name)
	assert.ErrorIs(t, decode(`{"name":"a","extra":1}`), ErrValidation)
	assert.ErrorIs(t, decode(`{"name":"a"}{"name":"b"}`), ErrValidation)
	assert.ErrorIs(t, decode(`not json`), ErrValidation)
}
