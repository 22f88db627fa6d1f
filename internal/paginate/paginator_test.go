package paginate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cloudboard/cloudboard/internal/errors"
)

// scriptedSource serves k+1 pages: pages 0..k-1 carry a next cursor, page k
// does not. It records every fetch so tests can assert call shapes.
type scriptedSource struct {
	lastPage   int
	perPage    map[int]int // optional item-count override per page
	failCursor string      // cursor whose fetch fails, "" disables
	calls      []*string   // cursor of every fetch issued
}

func tokenFor(page int) string { return fmt.Sprintf("tok-%d", page) }

func (s *scriptedSource) fetch(_ context.Context, cursor *string, limit int32) (Page[string], error) {
	s.calls = append(s.calls, cursor)

	page := 0
	if cursor != nil {
		if s.failCursor != "" && *cursor == s.failCursor {
			return Page[string]{}, errors.New("store unavailable")
		}
		if _, err := fmt.Sscanf(*cursor, "tok-%d", &page); err != nil {
			return Page[string]{}, fmt.Errorf("unexpected cursor %q", *cursor)
		}
	}

	count := int(limit)
	if n, ok := s.perPage[page]; ok {
		count = n
	}
	items := make([]string, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, fmt.Sprintf("item-%d-%d", page, i))
	}

	if page >= s.lastPage {
		return Page[string]{Items: items}, nil
	}
	next := tokenFor(page + 1)
	return Page[string]{Items: items, NextCursor: &next}, nil
}

func TestNew_InvalidPageSize(t *testing.T) {
	src := &scriptedSource{lastPage: 1}

	_, err := New[string](0, src.fetch)
	require.Error(t, err)
	assert.True(t, apperrors.IsPrecondition(err))

	_, err = New[string](-5, src.fetch)
	require.Error(t, err)
	assert.True(t, apperrors.IsPrecondition(err))
}

func TestLoadPage_FirstPage(t *testing.T) {
	src := &scriptedSource{lastPage: 2}
	p, err := New[string](5, src.fetch)
	require.NoError(t, err)

	require.NoError(t, p.LoadPage(context.Background(), 0))

	v := p.View()
	assert.Len(t, v.Items, 5)
	assert.Equal(t, 0, v.CurrentPage)
	assert.True(t, v.HasNext)
	assert.False(t, v.HasPrevious)
	assert.NoError(t, v.LastError)
	assert.Len(t, src.calls, 1)
	assert.Nil(t, src.calls[0], "page 0 must be fetched with an absent cursor")
}

func TestForwardBack_ReplaysCachedCursors(t *testing.T) {
	const k = 4
	src := &scriptedSource{lastPage: k}
	p, err := New[string](5, src.fetch)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, p.LoadPage(ctx, 0))

	for i := 0; i < k; i++ {
		require.NoError(t, p.Next(ctx))
	}
	assert.Equal(t, k, p.View().CurrentPage)
	assert.False(t, p.View().HasNext)

	for i := 0; i < k; i++ {
		require.NoError(t, p.Previous(ctx))
	}

	v := p.View()
	assert.Equal(t, 0, v.CurrentPage)
	assert.True(t, v.HasNext, "cursor for page 1 is still cached")
	assert.False(t, v.HasPrevious)

	// 1 initial + k forward + k replays, every one a forward fetch.
	require.Len(t, src.calls, 1+2*k)
	assert.Nil(t, src.calls[0])
	for i := 1; i <= k; i++ {
		require.NotNil(t, src.calls[i])
		assert.Equal(t, tokenFor(i), *src.calls[i])
	}
	// The replay leg walks the cached cursors back down: k-1, k-2, ..., 0.
	for i := 0; i < k; i++ {
		call := src.calls[1+k+i]
		wantPage := k - 1 - i
		if wantPage == 0 {
			assert.Nil(t, call)
		} else {
			require.NotNil(t, call)
			assert.Equal(t, tokenFor(wantPage), *call)
		}
	}
}

func TestPrevious_AtFirstPage(t *testing.T) {
	src := &scriptedSource{lastPage: 1}
	p, err := New[string](5, src.fetch)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, p.LoadPage(ctx, 0))
	fetches := len(src.calls)

	err = p.Previous(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsPrecondition(err))
	assert.Len(t, src.calls, fetches, "previous at page 0 must not fetch")
	assert.Equal(t, 0, p.View().CurrentPage)
}

func TestNext_OnLastPage_IsNoOp(t *testing.T) {
	// pageSize=5; page 0 full with a cursor, page 1 short with none.
	src := &scriptedSource{lastPage: 1, perPage: map[int]int{1: 3}}
	p, err := New[string](5, src.fetch)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, p.LoadPage(ctx, 0))
	v := p.View()
	assert.Len(t, v.Items, 5)
	assert.True(t, v.HasNext)

	require.NoError(t, p.Next(ctx))
	v = p.View()
	assert.Len(t, v.Items, 3)
	assert.Equal(t, 1, v.CurrentPage)
	assert.False(t, v.HasNext)

	fetches := len(src.calls)
	require.NoError(t, p.Next(ctx), "next on the last page is a no-op, not an error")
	assert.Len(t, src.calls, fetches, "next on the last page must not fetch")

	v = p.View()
	assert.Len(t, v.Items, 3)
	assert.Equal(t, 1, v.CurrentPage)
	assert.False(t, v.HasNext)
}

func TestShortPageWithCursor_IsNotFinal(t *testing.T) {
	// A page may come back short yet still carry a next cursor; only the
	// cursor's absence marks the end.
	src := &scriptedSource{lastPage: 2, perPage: map[int]int{0: 2}}
	p, err := New[string](5, src.fetch)
	require.NoError(t, err)

	require.NoError(t, p.LoadPage(context.Background(), 0))

	v := p.View()
	assert.Len(t, v.Items, 2)
	assert.True(t, v.HasNext, "short page with a cursor is a valid non-final page")
}

func TestLoadPage_UnknownCursor(t *testing.T) {
	src := &scriptedSource{lastPage: 3}
	p, err := New[string](5, src.fetch)
	require.NoError(t, err)

	err = p.LoadPage(context.Background(), 2)
	require.Error(t, err)
	assert.True(t, apperrors.IsPrecondition(err))
	assert.Empty(t, src.calls)
}

func TestLoadPage_FailureLeavesStateUntouched(t *testing.T) {
	src := &scriptedSource{lastPage: 3, failCursor: tokenFor(1)}
	p, err := New[string](5, src.fetch)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, p.LoadPage(ctx, 0))
	before := p.View()

	err = p.Next(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsProvider(err), "unclassified fetch errors surface as provider failures")

	after := p.View()
	assert.Equal(t, before.CurrentPage, after.CurrentPage)
	assert.Equal(t, before.Items, after.Items)
	assert.True(t, after.HasNext, "history is unchanged by a failed fetch")
	assert.Error(t, after.LastError)

	// The failure is not sticky: clearing the fault lets the same call succeed.
	src.failCursor = ""
	require.NoError(t, p.Next(ctx))
	assert.Equal(t, 1, p.View().CurrentPage)
	assert.NoError(t, p.View().LastError)
}

func TestOverlappingFetch_IsRejected(t *testing.T) {
	p2ptr := new(*Paginator[string])
	var overlapErr error
	fetch := func(ctx context.Context, cursor *string, limit int32) (Page[string], error) {
		// Re-enter while this fetch is still in flight.
		overlapErr = (*p2ptr).LoadPage(ctx, 0)
		return Page[string]{Items: []string{"a"}}, nil
	}
	p, err := New[string](5, fetch)
	require.NoError(t, err)
	*p2ptr = p

	require.NoError(t, p.LoadPage(context.Background(), 0))
	require.Error(t, overlapErr)
	assert.True(t, apperrors.IsPrecondition(overlapErr))
}

func TestClose_DiscardsLateResponse(t *testing.T) {
	pptr := new(*Paginator[string])
	fetch := func(_ context.Context, cursor *string, limit int32) (Page[string], error) {
		// The view is torn down while the fetch is outstanding.
		(*pptr).Close()
		return Page[string]{Items: []string{"stale"}}, nil
	}
	p, err := New[string](5, fetch)
	require.NoError(t, err)
	*pptr = p

	err = p.LoadPage(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsPrecondition(err))

	v := p.View()
	assert.Empty(t, v.Items, "a late response must not mutate a torn-down instance")
	assert.False(t, v.HasNext)
}

func TestReset_ReturnsToPristinePageZero(t *testing.T) {
	src := &scriptedSource{lastPage: 2}
	p, err := New[string](5, src.fetch)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, p.LoadPage(ctx, 0))
	require.NoError(t, p.Next(ctx))

	p.Reset()

	v := p.View()
	assert.Empty(t, v.Items)
	assert.Equal(t, 0, v.CurrentPage)
	assert.False(t, v.HasNext)
	assert.False(t, v.HasPrevious)

	// First page is re-fetched fresh, never served from stale history.
	fetches := len(src.calls)
	require.NoError(t, p.LoadPage(ctx, 0))
	assert.Len(t, src.calls, fetches+1)
	assert.Nil(t, src.calls[len(src.calls)-1])
}

func TestNext_BeforeFirstLoad_LoadsPageZero(t *testing.T) {
	src := &scriptedSource{lastPage: 1}
	p, err := New[string](5, src.fetch)
	require.NoError(t, err)

	require.NoError(t, p.Next(context.Background()))
	assert.Equal(t, 0, p.View().CurrentPage)
	require.Len(t, src.calls, 1)
	assert.Nil(t, src.calls[0])
}
