package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/viant/lore/client/auth/store"
	"github.com/viant/lore/schema"
)

const refreshKey = "refresh"

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeMissing = "missing"
	outcomeReused  = "reused"
)

// refresh returns an access token newer than stale. Concurrent callers share a single
// refresh; the refresh itself runs detached from ctx so abandoned requests do not abort it.
func (r *RoundTripper) refresh(ctx context.Context, stale string, failed *url.URL) (string, error) {
	ch := r.refreshes.DoChan(refreshKey, func() (interface{}, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.refreshTimeout)
		defer cancel()
		return r.doRefresh(refreshCtx, stale, failed)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case result := <-ch:
		if result.Err != nil {
			return "", result.Err
		}
		return result.Val.(string), nil
	}
}

func (r *RoundTripper) doRefresh(ctx context.Context, stale string, failed *url.URL) (string, error) {
	pair, err := store.LoadPair(ctx, r.store)
	if err != nil {
		return "", err
	}
	if pair.Access != "" && pair.Access != stale {
		// an earlier refresh already replaced the token the request was sent with
		r.metrics.refresh(outcomeReused)
		return pair.Access, nil
	}
	if pair.Refresh == "" {
		r.metrics.refresh(outcomeMissing)
		if pair.Access == "" {
			return "", schema.ErrAuthExpired
		}
		if err = store.ClearPair(ctx, r.store); err != nil {
			return "", err
		}
		r.expired()
		return "", schema.ErrAuthExpired
	}

	tokens, err := r.requestRefresh(ctx, pair, failed)
	if err != nil {
		r.metrics.refresh(outcomeFailure)
		r.logger.Warn().Err(err).Msg("token refresh failed, clearing credentials")
		if cerr := store.ClearPair(ctx, r.store); cerr != nil {
			return "", cerr
		}
		r.expired()
		return "", fmt.Errorf("%w: %v", schema.ErrAuthExpired, err)
	}
	if tokens.Refresh == "" {
		// preserve refresh token if the server omitted it
		tokens.Refresh = pair.Refresh
	}
	if err = store.SavePair(ctx, r.store, tokens.Access, tokens.Refresh); err != nil {
		return "", err
	}
	r.metrics.refresh(outcomeSuccess)
	r.logger.Debug().Msg("token refreshed")
	return tokens.Access, nil
}

func (r *RoundTripper) requestRefresh(ctx context.Context, pair *schema.TokenPair, failed *url.URL) (*schema.TokenPair, error) {
	payload, err := json.Marshal(&schema.RefreshRequest{Access: pair.Access, Refresh: pair.Refresh})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.refreshEndpoint(failed), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := r.transport.RoundTrip(req)
	r.metrics.request(resp, err)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	ret := &schema.TokenPair{}
	if err = json.Unmarshal(data, ret); err != nil {
		return nil, &schema.SchemaError{Type: "token pair", Err: err}
	}
	if err = schema.ValidateAs("token pair", ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func (r *RoundTripper) refreshEndpoint(failed *url.URL) string {
	if r.refreshURL != "" {
		return r.refreshURL
	}
	return (&url.URL{Scheme: failed.Scheme, Host: failed.Host, Path: schema.PathTokenRefresh}).String()
}

func (r *RoundTripper) expired() {
	if r.onExpired != nil {
		r.onExpired()
	}
}
