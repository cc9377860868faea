package paging

import (
	"net/url"

	"golang.org/x/time/rate"
)

const (
	DefaultPageParam   = "page"
	DefaultInitialPage = "1"
)

type Options struct {
	PageParam   string
	InitialPage string
	Query       url.Values
}

type Option func(o *Options)

// WithPageParam sets the query parameter carrying the page number
func WithPageParam(name string) Option {
	return func(o *Options) {
		o.PageParam = name
	}
}

// WithInitialPage sets the first page value
func WithInitialPage(value string) Option {
	return func(o *Options) {
		o.InitialPage = value
	}
}

// WithQuery sets query parameters sent with every page request
func WithQuery(query url.Values) Option {
	return func(o *Options) {
		o.Query = query
	}
}

type fetchAllOptions struct {
	maxPages int
	limiter  *rate.Limiter
}

// FetchAllOption configures FetchAll.
type FetchAllOption func(o *fetchAllOptions)

// WithMaxPages stops FetchAll with ErrPageLimit after max pages.
func WithMaxPages(max int) FetchAllOption {
	return func(o *fetchAllOptions) {
		o.maxPages = max
	}
}

// WithLimiter paces page requests issued by FetchAll.
func WithLimiter(limiter *rate.Limiter) FetchAllOption {
	return func(o *fetchAllOptions) {
		o.limiter = limiter
	}
}
