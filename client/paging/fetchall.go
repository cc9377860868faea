package paging

import (
	"context"
	"errors"
)

var ErrPageLimit = errors.New("page limit reached")

// Walker advances through pages one at a time.
type Walker interface {
	HasNextPage() bool
	FetchNextPage(ctx context.Context) error
}

// FetchAll fetches pages while the walker reports more; the first error stops the loop.
func FetchAll(ctx context.Context, walker Walker, options ...FetchAllOption) error {
	opts := &fetchAllOptions{}
	for _, opt := range options {
		opt(opts)
	}
	for fetched := 0; walker.HasNextPage(); fetched++ {
		if opts.maxPages > 0 && fetched >= opts.maxPages {
			return ErrPageLimit
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if opts.limiter != nil && fetched > 0 {
			if err := opts.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		if err := walker.FetchNextPage(ctx); err != nil {
			return err
		}
	}
	return nil
}
