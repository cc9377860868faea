package paging

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/viant/lore/schema"
)

var (
	ErrFetchInProgress = errors.New("page fetch already in progress")
	ErrExhausted       = errors.New("no more pages")
)

// FetchFunc retrieves one page for the supplied query.
type FetchFunc[T any] func(ctx context.Context, query url.Values) (*Envelope[T], error)

// State is an immutable snapshot of accumulated pages.
type State[T any] struct {
	Pages       []*Envelope[T]
	PageParam   string
	HasNextPage bool
}

// Accumulator fetches pages one at a time, following each page's next link.
type Accumulator[T any] struct {
	fetch    FetchFunc[T]
	options  Options
	fetching atomic.Bool
}

func New[T any](fetch FetchFunc[T], options ...Option) *Accumulator[T] {
	ret := &Accumulator[T]{
		fetch:   fetch,
		options: Options{PageParam: DefaultPageParam, InitialPage: DefaultInitialPage},
	}
	for _, opt := range options {
		opt(&ret.options)
	}
	return ret
}

// Start returns the state before the first page is fetched.
func (a *Accumulator[T]) Start() State[T] {
	return State[T]{PageParam: a.options.InitialPage, HasNextPage: true}
}

// FetchNextPage fetches the page state points at. On failure state is returned unchanged.
func (a *Accumulator[T]) FetchNextPage(ctx context.Context, state State[T]) (State[T], error) {
	if !state.HasNextPage {
		return state, ErrExhausted
	}
	if !a.fetching.CompareAndSwap(false, true) {
		return state, ErrFetchInProgress
	}
	defer a.fetching.Store(false)

	query := url.Values{}
	for k, v := range a.options.Query {
		query[k] = append([]string(nil), v...)
	}
	query.Set(a.options.PageParam, state.PageParam)
	page, err := a.fetch(ctx, query)
	if err != nil {
		var fetchErr *schema.FetchError
		if !errors.As(err, &fetchErr) {
			err = &schema.FetchError{Err: err}
		}
		return state, err
	}
	if page == nil {
		return state, &schema.FetchError{Err: &schema.SchemaError{Type: "page", Err: errors.New("empty page")}}
	}
	pages := make([]*Envelope[T], 0, len(state.Pages)+1)
	pages = append(append(pages, state.Pages...), page)
	ret := State[T]{Pages: pages}
	ret.PageParam, ret.HasNextPage = NextPageParam(page.Next, a.options.PageParam)
	return ret, nil
}

// Cursor returns a stateful walker over the accumulator pages.
func (a *Accumulator[T]) Cursor() *Cursor[T] {
	return &Cursor[T]{accumulator: a, state: a.Start()}
}

// NextPageParam extracts name from the next page URL; ok is false when next is nil,
// unparsable or has no such parameter.
func NextPageParam(next *string, name string) (string, bool) {
	if next == nil || *next == "" {
		return "", false
	}
	URL, err := url.Parse(*next)
	if err != nil {
		return "", false
	}
	value := URL.Query().Get(name)
	if value == "" {
		return "", false
	}
	return value, true
}

// Flatten concatenates page results in fetch order
func Flatten[T any](state State[T]) []T {
	size := 0
	for _, page := range state.Pages {
		size += len(page.Results)
	}
	ret := make([]T, 0, size)
	for _, page := range state.Pages {
		ret = append(ret, page.Results...)
	}
	return ret
}

// Cursor holds accumulator state between calls.
type Cursor[T any] struct {
	accumulator *Accumulator[T]
	mux         sync.RWMutex
	state       State[T]
}

func (c *Cursor[T]) State() State[T] {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return c.state
}

func (c *Cursor[T]) HasNextPage() bool {
	return c.State().HasNextPage
}

func (c *Cursor[T]) Items() []T {
	return Flatten(c.State())
}

func (c *Cursor[T]) FetchNextPage(ctx context.Context) error {
	state, err := c.accumulator.FetchNextPage(ctx, c.State())
	if err != nil {
		return err
	}
	c.mux.Lock()
	c.state = state
	c.mux.Unlock()
	return nil
}

// Reset discards accumulated pages
func (c *Cursor[T]) Reset() {
	c.mux.Lock()
	c.state = c.accumulator.Start()
	c.mux.Unlock()
}
