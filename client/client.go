package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/viant/lore/internal/collection"
	"github.com/viant/lore/schema"
)

const RequestIDHeader = "X-Request-ID"

// Response is a successful API response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Empty reports whether the response carries no content
func (r *Response) Empty() bool {
	return r.Status == http.StatusNoContent || len(strings.TrimSpace(string(r.Body))) == 0
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	queries    *collection.SyncMap[string, query]
}

// query is a cached infinite query
type query interface {
	Reset()
}

// New creates a client for the API at baseURL
func New(baseURL string, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base URL was empty")
	}
	ret := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     zerolog.Nop(),
		queries:    collection.NewSyncMap[string, query](),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends the descriptor. Non 2xx responses are returned as *schema.FetchError,
// wrapping *schema.ValidationError for field errors and schema.ErrAuthExpired for 401.
func (c *Client) Do(ctx context.Context, descriptor *Descriptor) (*Response, error) {
	req, err := descriptor.request(ctx, c.baseURL)
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var storageErr *schema.StorageError
		if errors.As(err, &storageErr) {
			return nil, storageErr
		}
		return nil, &schema.NetworkError{Method: req.Method, URL: req.URL.Path, Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &schema.NetworkError{Method: req.Method, URL: req.URL.Path, Err: err}
	}
	c.logger.Debug().Str("request_id", requestID).Str("method", req.Method).Str("path", req.URL.Path).Int("status", resp.StatusCode).Msg("api call")
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
	}
	fetchErr := &schema.FetchError{Method: req.Method, URL: req.URL.Path, Status: resp.StatusCode, Body: body}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		fetchErr.Err = schema.ErrAuthExpired
	case http.StatusBadRequest:
		if validationErr := schema.ParseValidationError(resp.StatusCode, body); validationErr != nil {
			fetchErr.Err = validationErr
		}
	}
	return nil, fetchErr
}

// Invalidate resets cached infinite queries whose key starts with one of prefixes
func (c *Client) Invalidate(prefixes ...string) {
	c.queries.Range(func(key string, value query) bool {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				value.Reset()
				c.logger.Debug().Str("query", key).Msg("invalidated")
				break
			}
		}
		return true
	})
}

// InvalidateAll resets every cached infinite query
func (c *Client) InvalidateAll() {
	c.Invalidate("")
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
