package client

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/viant/lore/client/paging"
)

// ErrReset is returned by a fetch whose result was discarded by Reset.
var ErrReset = errors.New("query was reset while fetching")

// Status is the lifecycle state of an infinite query.
type Status string

const (
	StatusIdle              Status = "idle"
	StatusFetchingFirstPage Status = "fetchingFirstPage"
	StatusHasMore           Status = "hasMore"
	StatusFetchingNextPage  Status = "fetchingNextPage"
	StatusExhausted         Status = "exhausted"
	StatusError             Status = "error"
)

// Data holds fetched pages and their flattened results.
type Data[T any] struct {
	Pages []*paging.Envelope[T]
	Items []T
}

// Infinite is a paginated list fetched one page at a time.
type Infinite[T any] struct {
	key         string
	accumulator *paging.Accumulator[T]
	mux         sync.RWMutex
	state       paging.State[T]
	status      Status
	err         error
	generation  uint64
	inFlight    chan struct{}
}

// InfiniteQuery returns the cached infinite query for the descriptor, creating it on first use.
func InfiniteQuery[T any](c *Client, descriptor *Descriptor, options ...paging.Option) *Infinite[T] {
	key := descriptor.Key()
	cached := c.queries.GetOrPut(key, func(candidate query) bool {
		_, ok := candidate.(*Infinite[T])
		return ok
	}, func() query {
		return newInfinite[T](key, c, descriptor, options...)
	})
	return cached.(*Infinite[T])
}

func newInfinite[T any](key string, c *Client, descriptor *Descriptor, options ...paging.Option) *Infinite[T] {
	fetch := func(ctx context.Context, query url.Values) (*paging.Envelope[T], error) {
		resp, err := c.Do(ctx, descriptor.WithQuery(query))
		if err != nil {
			return nil, err
		}
		return paging.Decode[T](resp.Body)
	}
	ret := &Infinite[T]{key: key, accumulator: paging.New[T](fetch, options...), status: StatusIdle}
	ret.state = ret.accumulator.Start()
	return ret
}

func (q *Infinite[T]) Key() string {
	return q.key
}

// Data returns fetched pages and flattened items
func (q *Infinite[T]) Data() Data[T] {
	q.mux.RLock()
	defer q.mux.RUnlock()
	return Data[T]{Pages: q.state.Pages, Items: paging.Flatten(q.state)}
}

func (q *Infinite[T]) HasNextPage() bool {
	q.mux.RLock()
	defer q.mux.RUnlock()
	return q.state.HasNextPage
}

func (q *Infinite[T]) IsFetching() bool {
	status := q.Status()
	return status == StatusFetchingFirstPage || status == StatusFetchingNextPage
}

func (q *Infinite[T]) Status() Status {
	q.mux.RLock()
	defer q.mux.RUnlock()
	return q.status
}

// Err returns the last fetch error, cleared by the next successful fetch
func (q *Infinite[T]) Err() error {
	q.mux.RLock()
	defer q.mux.RUnlock()
	return q.err
}

// FetchNextPage fetches the next page; a concurrent call fails with paging.ErrFetchInProgress
// and a fetch overtaken by Reset returns ErrReset.
func (q *Infinite[T]) FetchNextPage(ctx context.Context) error {
	q.mux.Lock()
	if q.inFlight != nil {
		q.mux.Unlock()
		return paging.ErrFetchInProgress
	}
	if !q.state.HasNextPage {
		q.mux.Unlock()
		return paging.ErrExhausted
	}
	state, generation, previous := q.state, q.generation, q.status
	if len(state.Pages) == 0 {
		q.status = StatusFetchingFirstPage
	} else {
		q.status = StatusFetchingNextPage
	}
	done := make(chan struct{})
	q.inFlight = done
	q.mux.Unlock()

	next, err := q.accumulator.FetchNextPage(ctx, state)

	q.mux.Lock()
	defer q.mux.Unlock()
	q.inFlight = nil
	defer close(done)
	if generation != q.generation {
		return ErrReset
	}
	if err != nil {
		if errors.Is(err, paging.ErrFetchInProgress) || (ctx.Err() != nil && previous != StatusError) {
			q.status = previous
			return err
		}
		q.status, q.err = StatusError, err
		return err
	}
	q.state, q.err = next, nil
	if next.HasNextPage {
		q.status = StatusHasMore
	} else {
		q.status = StatusExhausted
	}
	return nil
}

// Retry refetches the page that failed; it is a no-op unless the query is in error state.
func (q *Infinite[T]) Retry(ctx context.Context) error {
	if q.Status() != StatusError {
		return nil
	}
	return q.FetchNextPage(ctx)
}

// FetchAll fetches remaining pages. A fetch started elsewhere is awaited and the loop
// continues from its result; a Reset restarts the loop from the first page.
func (q *Infinite[T]) FetchAll(ctx context.Context, options ...paging.FetchAllOption) error {
	return paging.FetchAll(ctx, &joiner[T]{query: q}, options...)
}

// wait blocks until the fetch in flight, if any, completes.
func (q *Infinite[T]) wait(ctx context.Context) error {
	q.mux.RLock()
	done := q.inFlight
	q.mux.RUnlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// joiner walks an infinite query, sharing pages fetched by concurrent callers
type joiner[T any] struct {
	query *Infinite[T]
}

func (j *joiner[T]) HasNextPage() bool {
	return j.query.HasNextPage()
}

func (j *joiner[T]) FetchNextPage(ctx context.Context) error {
	err := j.query.FetchNextPage(ctx)
	switch {
	case errors.Is(err, paging.ErrFetchInProgress):
		return j.query.wait(ctx)
	case errors.Is(err, ErrReset), errors.Is(err, paging.ErrExhausted):
		return nil
	}
	return err
}

// Reset discards fetched pages. A fetch in flight is discarded when it completes and
// holds off new fetches until then.
func (q *Infinite[T]) Reset() {
	q.mux.Lock()
	defer q.mux.Unlock()
	q.generation++
	q.state = q.accumulator.Start()
	q.status = StatusIdle
	q.err = nil
}
