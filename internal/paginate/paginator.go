// Package paginate provides page-indexed navigation over data sources that
// only expose forward, token-cursor iteration ("give me up to N items
// starting at opaque cursor C, plus the cursor for the next page or none").
//
// The paginator records the boundary cursor of every page it has seen, so
// "previous page" replays a cached forward cursor instead of requiring any
// backward iteration support from the data source.
package paginate

import (
	"context"
	"sync"

	apperrors "github.com/cloudboard/cloudboard/internal/errors"
)

// Page is one fetched page: the items plus the cursor for the page after it.
// A nil NextCursor means end of data; item count is never used to infer
// finality, that contract belongs to the data source alone.
type Page[T any] struct {
	Items      []T
	NextCursor *string
}

// PageFunc fetches up to limit items starting at the given opaque cursor.
// A nil cursor requests the first page. Timeouts and retries are the fetch
// function's business; the paginator only distinguishes success from failure.
type PageFunc[T any] func(ctx context.Context, cursor *string, limit int32) (Page[T], error)

// View is the read model handed to rendering code.
type View[T any] struct {
	Items       []T
	CurrentPage int
	HasNext     bool
	HasPrevious bool
	IsLoading   bool
	LastError   error
}

// Paginator tracks the current page, its items, and the cursor history for a
// single view. Page size is fixed for the paginator's lifetime: cursors are
// issued relative to a page size and are not portable across sizes, so a new
// size means a new paginator. Each view owns its own instance; callers must
// not overlap calls on one instance (overlap is rejected, not queued).
type Paginator[T any] struct {
	mu       sync.Mutex
	fetch    PageFunc[T]
	pageSize int32

	// history[n] is the cursor that fetches page n; history[0] is always nil.
	// Extended monotonically as later pages are first visited.
	history  []*string
	current  int
	items    []T
	loaded   bool
	lastPage int // index of the page known to be last, -1 while unknown
	loading  bool
	lastErr  error

	closed bool
	gen    uint64 // bumped on Reset/Close so late fetches cannot apply
}

// New constructs a paginator over fetch with a fixed positive page size.
func New[T any](pageSize int32, fetch PageFunc[T]) (*Paginator[T], error) {
	if pageSize <= 0 {
		return nil, apperrors.Preconditionf("page size must be positive, got %d", pageSize)
	}
	if fetch == nil {
		return nil, apperrors.Precondition("fetch function is required")
	}
	return &Paginator[T]{
		fetch:    fetch,
		pageSize: pageSize,
		history:  []*string{nil},
		lastPage: -1,
	}, nil
}

// LoadPage fetches page n and makes it current. The cursor for page n must
// already be recorded (n == 0, or a prior successful fetch of page n-1
// supplied it); asking for anything else is a caller contract violation. On
// failure the history and current page are left untouched and the error is
// both returned and kept in the view as LastError.
func (p *Paginator[T]) LoadPage(ctx context.Context, n int) error {
	p.mu.Lock()
	if err := p.lockedPrecheck(n); err != nil {
		p.mu.Unlock()
		return err
	}
	cursor := p.history[n]
	gen := p.gen
	p.loading = true
	p.mu.Unlock()

	page, err := p.fetch(ctx, cursor, p.pageSize)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.gen != gen {
		// The instance was reset or torn down while the fetch was in flight.
		// Drop the response rather than mutate state the owner has discarded.
		return apperrors.Precondition("paginator was reset during fetch")
	}
	p.loading = false

	if err != nil {
		if apperrors.GetCode(err) == "" {
			err = apperrors.Wrap(err, apperrors.ErrCodeProvider, "page fetch failed")
		}
		p.lastErr = err
		return err
	}

	p.items = page.Items
	p.current = n
	p.loaded = true
	p.lastErr = nil

	if page.NextCursor != nil {
		p.recordCursor(n+1, page.NextCursor)
		if p.lastPage == n {
			p.lastPage = -1
		}
	} else {
		p.lastPage = n
	}
	return nil
}

// Next advances to the following page. On the page already marked last it is
// a no-op: the view keeps the same items and HasNext stays false, and no
// fetch is issued.
func (p *Paginator[T]) Next(ctx context.Context) error {
	p.mu.Lock()
	if p.loaded && p.lastPage == p.current {
		p.mu.Unlock()
		return nil
	}
	n := p.current + 1
	if !p.loaded {
		n = 0
	}
	p.mu.Unlock()
	return p.LoadPage(ctx, n)
}

// Previous returns to the prior page by replaying its cached forward cursor.
// Calling it on page 0 violates the precondition and issues no fetch.
func (p *Paginator[T]) Previous(ctx context.Context) error {
	p.mu.Lock()
	if p.current == 0 {
		p.mu.Unlock()
		return apperrors.Precondition("already at first page")
	}
	n := p.current - 1
	p.mu.Unlock()
	return p.LoadPage(ctx, n)
}

// Reset returns the paginator to a pristine page-0 state with an empty
// cursor history. Any in-flight fetch is abandoned.
func (p *Paginator[T]) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.history = []*string{nil}
	p.current = 0
	p.items = nil
	p.loaded = false
	p.lastPage = -1
	p.loading = false
	p.lastErr = nil
}

// Close tears the paginator down. Subsequent operations fail their
// preconditions and a fetch still in flight cannot apply its result.
func (p *Paginator[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.gen++
	p.loading = false
}

// View returns the current read model. It never triggers a fetch.
func (p *Paginator[T]) View() View[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	items := make([]T, len(p.items))
	copy(items, p.items)

	// Next is enabled only by an explicit signal: a recorded cursor for the
	// following page and no last-page marker on the current one.
	hasNext := p.loaded &&
		p.lastPage != p.current &&
		p.current+1 < len(p.history)

	return View[T]{
		Items:       items,
		CurrentPage: p.current,
		HasNext:     hasNext,
		HasPrevious: p.loaded && p.current > 0,
		IsLoading:   p.loading,
		LastError:   p.lastErr,
	}
}

// PageSize returns the fixed page size the paginator was built with.
func (p *Paginator[T]) PageSize() int32 {
	return p.pageSize
}

func (p *Paginator[T]) lockedPrecheck(n int) error {
	if p.closed {
		return apperrors.Precondition("paginator is closed")
	}
	if p.loading {
		return apperrors.Precondition("a page fetch is already in flight")
	}
	if n < 0 {
		return apperrors.Preconditionf("page number cannot be negative, got %d", n)
	}
	if n >= len(p.history) {
		return apperrors.Preconditionf("no cursor recorded for page %d", n)
	}
	return nil
}

func (p *Paginator[T]) recordCursor(n int, cursor *string) {
	switch {
	case n < len(p.history):
		p.history[n] = cursor
	case n == len(p.history):
		p.history = append(p.history, cursor)
	}
}
