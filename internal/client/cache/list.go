package cache

import (
	"context"
	"slices"
	"sync"

	"github.com/aussiebroadwan/banksync/pkg/gqlx"
	"github.com/aussiebroadwan/banksync/pkg/paging"
)

// list is the items of the current page, indexed by id for in-place patches.
type list[T any] struct {
	key func(T) string

	mu    sync.RWMutex
	items []T
	index map[string]int
}

func newList[T any](key func(T) string) *list[T] {
	return &list[T]{key: key, index: make(map[string]int)}
}

func (l *list[T]) replace(items []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = slices.Clone(items)
	l.reindex()
}

// reindex rebuilds the id index. Caller holds l.mu.
func (l *list[T]) reindex() {
	clear(l.index)
	for i, it := range l.items {
		l.index[l.key(it)] = i
	}
}

func (l *list[T]) snapshot() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

func (l *list[T]) get(id string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return l.items[i], true
}

// patch applies fn to the item with id. It reports whether the item is
// loaded.
func (l *list[T]) patch(id string, fn func(*T)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[id]
	if !ok {
		return false
	}
	fn(&l.items[i])
	return true
}

// prepend inserts item at the front, keeping at most limit items. It
// reports false when the item is already present.
func (l *list[T]) prepend(item T, limit int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.index[l.key(item)]; ok {
		return false
	}
	l.items = slices.Insert(l.items, 0, item)
	if limit > 0 && len(l.items) > limit {
		l.items = l.items[:limit]
	}
	l.reindex()
	return true
}

func (l *list[T]) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
	clear(l.index)
}

// listing binds a pager to one paginated operation.
type listing[T, O any] struct {
	client *gqlx.Client
	op     string
	vars   func(O) map[string]any

	items *list[T]
	pager *paging.Pager[T, O]
}

func newListing[T, O any](client *gqlx.Client, op string, vars func(O) map[string]any, key func(T) string, s settings) *listing[T, O] {
	l := &listing[T, O]{client: client, op: op, vars: vars, items: newList(key)}

	follow := func(ctx context.Context, cursor string, size int) (paging.Page[T], error) {
		opts, _ := l.pager.Options()
		return l.fetch(ctx, opts, cursor, size)
	}
	l.pager = paging.New(paging.Fetchers[T, O]{
		Initial: func(ctx context.Context, opts O, size int) (paging.Page[T], error) {
			return l.fetch(ctx, opts, "", size)
		},
		Forward:  follow,
		Backward: follow,
		Apply:    func(p paging.Page[T]) { l.items.replace(p.Nodes) },
	}, paging.WithPageSize(s.pageSize))
	return l
}

func (l *listing[T, O]) fetch(ctx context.Context, opts O, cursor string, size int) (paging.Page[T], error) {
	data, err := gqlx.Query[map[string]gqlx.Connection[T]](ctx, l.client, gqlx.Request{
		Operation: l.op,
		Variables: gqlx.PageVariables(l.vars(opts), cursor, size),
		Policy:    gqlx.NetworkOnly,
	})
	if err != nil {
		return paging.Page[T]{}, err
	}
	return data[l.op].Page(), nil
}

// Fetch loads the first page for opts.
func (l *listing[T, O]) Fetch(ctx context.Context, opts O) error { return l.pager.Fetch(ctx, opts) }

func (l *listing[T, O]) FetchNext(ctx context.Context) error { return l.pager.FetchNext(ctx) }

func (l *listing[T, O]) FetchPrevious(ctx context.Context) error { return l.pager.FetchPrevious(ctx) }

func (l *listing[T, O]) SetPageSize(ctx context.Context, n int) error {
	return l.pager.SetPageSize(ctx, n)
}

// FetchPage loads page n (1-based) by walking forward from the first page.
// It stops early on the last page.
func (l *listing[T, O]) FetchPage(ctx context.Context, opts O, n int) error {
	if err := l.pager.Fetch(ctx, opts); err != nil {
		return err
	}
	for l.pager.Page() < n && l.pager.PageInfo().HasNextPage {
		if err := l.pager.FetchNext(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Items returns a copy of the loaded page.
func (l *listing[T, O]) Items() []T { return l.items.snapshot() }

func (l *listing[T, O]) Window() paging.Window { return l.pager.Window() }

// Clear empties the cache and discards responses still in flight.
func (l *listing[T, O]) Clear() {
	l.pager.Clear()
	l.items.reset()
}

// insert adds an item created locally. The total always grows; the item is
// only shown when the first page is loaded.
func (l *listing[T, O]) insert(item T) {
	w := l.pager.Window()
	if w.Page == 0 {
		return
	}
	if w.Page == 1 {
		if !l.items.prepend(item, w.PageSize) {
			return
		}
	}
	l.pager.AddTotal(1)
}
