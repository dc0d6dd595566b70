// Package paging implements a forward/backward cursor pager over server-held
// collections.
//
// The server only understands "after" cursors. Going back is made possible by
// remembering the end cursor of every page visited on the way forward (the
// cursor stack): the previous page is the page after the cursor below the top
// of the stack, or the first page when the stack runs out.
//
// A Pager tracks paging metadata only. Items are handed to the caller's Apply
// hook, which is invoked solely for responses that are committed. Every
// request is numbered; a response is committed only if no newer request was
// issued for the same pager in the meantime ("last issued wins").
package paging

import (
	"context"
	"errors"
	"sync"
)

// DefaultPageSize is used when no size is configured.
const DefaultPageSize = 25

var (
	// ErrNotFetched is a caller bug: FetchNext or FetchPrevious before Fetch.
	ErrNotFetched = errors.New("paging: fetch must be called first")

	ErrInvalidPageSize = errors.New("paging: page size must be positive")

	// ErrSuperseded means the response arrived after a newer request was
	// issued for the same pager and was discarded.
	ErrSuperseded = errors.New("paging: response superseded by a newer request")
)

// PageInfo is the boundary metadata returned with a page.
type PageInfo struct {
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
	StartCursor     string `json:"startCursor"`
	EndCursor       string `json:"endCursor"`
}

// Page is one fetched page.
type Page[T any] struct {
	Nodes      []T
	PageInfo   PageInfo
	TotalCount int
}

// Fetchers are the caller supplied network calls. Backward receives the
// cursor to read after, empty for the first page.
type Fetchers[T, O any] struct {
	Initial  func(ctx context.Context, opts O, pageSize int) (Page[T], error)
	Forward  func(ctx context.Context, cursor string, pageSize int) (Page[T], error)
	Backward func(ctx context.Context, cursor string, pageSize int) (Page[T], error)

	// Apply commits the items of an accepted page into the caller's cache.
	// It runs after the window is updated and outside the pager's lock.
	Apply func(Page[T])
}

// Window is a snapshot of a pager's state.
type Window struct {
	PageSize   int
	TotalCount int
	TotalPages int
	Page       int // 1-based, 0 when nothing is loaded
	PageInfo   PageInfo
	Cursors    []string
}

// Pager pages one collection. Never share a Pager between caches.
type Pager[T, O any] struct {
	fetchers Fetchers[T, O]

	mu         sync.Mutex
	pageSize   int
	totalCount int
	pageInfo   PageInfo
	cursors    []string
	lastOpts   O
	fetched    bool
	seq        uint64 // latest issued request
}

type Option func(*settings)

type settings struct {
	pageSize int
}

// WithPageSize sets the initial page size. Non-positive values are ignored.
func WithPageSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// New creates an empty pager.
func New[T, O any](f Fetchers[T, O], opts ...Option) *Pager[T, O] {
	s := settings{pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(&s)
	}
	return &Pager[T, O]{fetchers: f, pageSize: s.pageSize}
}

// TotalPages is ceil(totalCount/pageSize), or 0 when totalCount <= 0.
func TotalPages(totalCount, pageSize int) int {
	if totalCount <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}
