package paging

import (
	"context"
	"slices"
)

// request captures what a call saw when it was issued.
type request[O any] struct {
	seq      uint64
	pageSize int
	cursors  []string // stack to install on success

	// Set by Fetch: the options to remember once the first page arrives.
	opts    O
	setOpts bool
}

// issue numbers a new request. Caller holds p.mu.
func (p *Pager[T, O]) issue(pageSize int, cursors []string) request[O] {
	p.seq++
	return request[O]{seq: p.seq, pageSize: pageSize, cursors: cursors}
}

// commit installs a successful response if req is still the latest request.
// Nothing about the window changes before this point, so a failed request
// leaves it as it was.
func (p *Pager[T, O]) commit(req request[O], page Page[T]) error {
	p.mu.Lock()
	if req.seq != p.seq {
		p.mu.Unlock()
		return ErrSuperseded
	}
	p.pageInfo = page.PageInfo
	p.totalCount = page.TotalCount
	p.cursors = req.cursors
	p.pageSize = req.pageSize
	if req.setOpts {
		p.lastOpts = req.opts
	}
	p.fetched = true
	p.mu.Unlock()

	if p.fetchers.Apply != nil {
		p.fetchers.Apply(page)
	}
	return nil
}

// Fetch loads the first page for opts, resetting the cursor stack. The
// options are remembered so a page size change can refetch. On failure the
// previous window and options stay in place.
func (p *Pager[T, O]) Fetch(ctx context.Context, opts O) error {
	p.mu.Lock()
	req := p.issue(p.pageSize, nil)
	req.opts = opts
	req.setOpts = true
	p.mu.Unlock()

	return p.initial(ctx, req, opts)
}

func (p *Pager[T, O]) initial(ctx context.Context, req request[O], opts O) error {
	page, err := p.fetchers.Initial(ctx, opts, req.pageSize)
	if err != nil {
		return err
	}
	return p.commit(req, page)
}

// FetchNext loads the page after the current one. It is a no-op when there
// is no next page.
func (p *Pager[T, O]) FetchNext(ctx context.Context) error {
	p.mu.Lock()
	if !p.fetched {
		p.mu.Unlock()
		return ErrNotFetched
	}
	if !p.pageInfo.HasNextPage {
		p.mu.Unlock()
		return nil
	}
	cursor := p.pageInfo.EndCursor
	req := p.issue(p.pageSize, append(slices.Clone(p.cursors), cursor))
	p.mu.Unlock()

	page, err := p.fetchers.Forward(ctx, cursor, req.pageSize)
	if err != nil {
		return err
	}
	return p.commit(req, page)
}

// FetchPrevious goes back one page using the cursor stack. It is a no-op
// when there is no previous page.
func (p *Pager[T, O]) FetchPrevious(ctx context.Context) error {
	p.mu.Lock()
	if !p.fetched {
		p.mu.Unlock()
		return ErrNotFetched
	}
	if !p.pageInfo.HasPreviousPage {
		p.mu.Unlock()
		return nil
	}

	var cursors []string // nil when back on page 1
	if n := len(p.cursors); n > 1 {
		cursors = slices.Clone(p.cursors[:n-1])
	}
	var cursor string
	if n := len(cursors); n > 0 {
		cursor = cursors[n-1]
	}
	req := p.issue(p.pageSize, cursors)
	p.mu.Unlock()

	page, err := p.fetchers.Backward(ctx, cursor, req.pageSize)
	if err != nil {
		return err
	}
	return p.commit(req, page)
}

// SetPageSize changes the page size. When a Fetch has already run, the pager
// steps back to page 1: the first page is refetched with the last options
// and the cursor stack is replaced (its cursors address pages of the old
// size). The new size takes effect when that page arrives.
func (p *Pager[T, O]) SetPageSize(ctx context.Context, n int) error {
	if n <= 0 {
		return ErrInvalidPageSize
	}

	p.mu.Lock()
	if n == p.pageSize {
		p.mu.Unlock()
		return nil
	}
	if !p.fetched {
		p.pageSize = n
		p.mu.Unlock()
		return nil
	}
	opts := p.lastOpts
	req := p.issue(n, nil)
	p.mu.Unlock()

	return p.initial(ctx, req, opts)
}

// Clear empties the window. Responses to requests still in flight are
// discarded.
func (p *Pager[T, O]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	var zero O
	p.cursors = nil
	p.pageInfo = PageInfo{}
	p.totalCount = 0
	p.lastOpts = zero
	p.fetched = false
	p.seq++
}

// AddTotal adjusts the total count for an item inserted or removed locally.
// It does nothing before the first Fetch.
func (p *Pager[T, O]) AddTotal(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fetched {
		p.totalCount = max(p.totalCount+delta, 0)
	}
}

// Window returns a snapshot of the pager state.
func (p *Pager[T, O]) Window() Window {
	p.mu.Lock()
	defer p.mu.Unlock()

	w := Window{
		PageSize:   p.pageSize,
		TotalCount: p.totalCount,
		TotalPages: TotalPages(p.totalCount, p.pageSize),
		PageInfo:   p.pageInfo,
		Cursors:    slices.Clone(p.cursors),
	}
	if p.fetched {
		w.Page = len(p.cursors) + 1
	}
	return w
}

func (p *Pager[T, O]) PageInfo() PageInfo { return p.Window().PageInfo }

func (p *Pager[T, O]) PageSize() int { return p.Window().PageSize }

func (p *Pager[T, O]) TotalCount() int { return p.Window().TotalCount }

func (p *Pager[T, O]) TotalPages() int { return p.Window().TotalPages }

// Page returns the 1-based index of the current page, 0 before any fetch.
func (p *Pager[T, O]) Page() int { return p.Window().Page }

// Loaded reports whether a Fetch has succeeded since the last Clear.
func (p *Pager[T, O]) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetched
}

// Options returns the options of the last successful Fetch.
func (p *Pager[T, O]) Options() (O, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastOpts, p.fetched
}
