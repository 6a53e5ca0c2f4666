package httpclient

import (
	"maps"
	"net/http"
	"time"

	"github.com/docker/explainer/pkg/useragent"
)

type headerTransport struct {
	headers http.Header
	rt      http.RoundTripper
}

func (h *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r2 := req.Clone(req.Context())
	maps.Copy(r2.Header, h.headers)
	return h.rt.RoundTrip(r2)
}

type options struct {
	headers http.Header
	timeout time.Duration
	rt      http.RoundTripper
}

type Opt func(*options)

// WithModel tags outgoing requests with the model they are made for.
func WithModel(model string) Opt {
	return func(o *options) {
		if model != "" {
			o.headers.Set("X-Explainer-Model", model)
		}
	}
}

func WithTimeout(d time.Duration) Opt {
	return func(o *options) {
		o.timeout = d
	}
}

func WithTransport(rt http.RoundTripper) Opt {
	return func(o *options) {
		o.rt = rt
	}
}

// NewHTTPClient returns a client that identifies itself with the explainer
// user agent.
func NewHTTPClient(opts ...Opt) *http.Client {
	o := options{
		headers: http.Header{},
		rt:      http.DefaultTransport,
	}
	o.headers.Set("User-Agent", useragent.Header)
	for _, opt := range opts {
		opt(&o)
	}

	return &http.Client{
		Timeout: o.timeout,
		Transport: &headerTransport{
			headers: o.headers,
			rt:      o.rt,
		},
	}
}
