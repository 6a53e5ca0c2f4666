package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docker/explainer/pkg/useragent"
)

func captureHeaders(t *testing.T, client *http.Client) http.Header {
	t.Helper()

	headers := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
	}))
	defer srv.Close()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	return <-headers
}

func TestNewHTTPClient_SetsUserAgent(t *testing.T) {
	t.Parallel()

	headers := captureHeaders(t, NewHTTPClient())
	assert.Equal(t, useragent.Header, headers.Get("User-Agent"))
	assert.Empty(t, headers.Get("X-Explainer-Model"))
}

func TestWithModel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		model   string
		wantSet bool
	}{
		{name: "sets header when model is provided", model: "gpt-4o-mini", wantSet: true},
		{name: "skips header when model is empty", model: "", wantSet: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			headers := captureHeaders(t, NewHTTPClient(WithModel(tt.model)))
			if tt.wantSet {
				assert.Equal(t, tt.model, headers.Get("X-Explainer-Model"))
			} else {
				assert.Empty(t, headers.Values("X-Explainer-Model"))
			}
		})
	}
}
