package transport

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/lore/client/auth/store"
	"github.com/viant/lore/schema"
	"golang.org/x/sync/singleflight"
)

const defaultRefreshTimeout = 30 * time.Second

type RoundTripper struct {
	store          store.Store
	transport      http.RoundTripper
	refreshURL     string
	authPaths      []string
	refreshTimeout time.Duration
	logger         zerolog.Logger
	metrics        *Metrics
	onExpired      func()
	refreshes      singleflight.Group
}

func New(options ...Option) (*RoundTripper, error) {
	ret := &RoundTripper{
		transport:      http.DefaultTransport,
		store:          store.NewMemoryStore(),
		authPaths:      schema.AuthPaths,
		refreshTimeout: defaultRefreshTimeout,
		logger:         zerolog.Nop(),
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.store == nil {
		return nil, errors.New("token store was nil")
	}
	return ret, nil
}

func (r *RoundTripper) Store() store.Store {
	return r.store
}

func (r *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if r.isAuthEndpoint(req.URL.Path) {
		resp, err := r.transport.RoundTrip(req)
		r.metrics.request(resp, err)
		return resp, err
	}
	body, err := readBody(req)
	if err != nil {
		return nil, err
	}
	ctx := req.Context()

	// 1) Send with whatever access token we hold (possibly none).
	token, _, err := r.store.Get(ctx, store.Access)
	if err != nil {
		return nil, err
	}
	resp, err := r.send(req, body, token)
	if err != nil {
		return nil, err
	}

	// 2) If it wasn’t a 401, just return it.
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	fresh, err := r.refresh(ctx, token, req.URL)
	if err != nil {
		if errors.Is(err, schema.ErrAuthExpired) {
			r.logger.Debug().Str("method", req.Method).Str("path", req.URL.Path).Msg("session expired")
			return resp, nil
		}
		closeBody(resp)
		return nil, err
	}
	closeBody(resp)

	// 3) Replay the request once with the new bearer, whatever its outcome.
	return r.send(req, body, fresh)
}

func (r *RoundTripper) send(req *http.Request, body []byte, token string) (*http.Response, error) {
	outgoing := clone(req, body)
	if token != "" {
		outgoing.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := r.transport.RoundTrip(outgoing)
	r.metrics.request(resp, err)
	if err != nil {
		return nil, err
	}
	r.logger.Debug().Str("method", req.Method).Str("path", req.URL.Path).Int("status", resp.StatusCode).Msg("request")
	return resp, nil
}
