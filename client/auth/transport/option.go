package transport

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/lore/client/auth/store"
)

type Option func(*RoundTripper)

// WithStore sets token store
func WithStore(store store.Store) Option {
	return func(t *RoundTripper) {
		t.store = store
	}
}

// WithTransport sets the underlying transport
func WithTransport(transport http.RoundTripper) Option {
	return func(t *RoundTripper) {
		t.transport = transport
	}
}

// WithRefreshURL sets an absolute token refresh URL; by default it is derived from the failed request host.
func WithRefreshURL(URL string) Option {
	return func(t *RoundTripper) {
		t.refreshURL = URL
	}
}

// WithAuthPaths overrides path fragments identifying authentication endpoints
func WithAuthPaths(paths ...string) Option {
	return func(t *RoundTripper) {
		t.authPaths = paths
	}
}

// WithRefreshTimeout bounds a single refresh call
func WithRefreshTimeout(timeout time.Duration) Option {
	return func(t *RoundTripper) {
		t.refreshTimeout = timeout
	}
}

// WithLogger sets logger
func WithLogger(logger zerolog.Logger) Option {
	return func(t *RoundTripper) {
		t.logger = logger
	}
}

// WithMetrics sets metrics collectors
func WithMetrics(metrics *Metrics) Option {
	return func(t *RoundTripper) {
		t.metrics = metrics
	}
}

// WithOnExpired registers a hook called once for every refresh episode that ends the session.
func WithOnExpired(fn func()) Option {
	return func(t *RoundTripper) {
		t.onExpired = fn
	}
}
