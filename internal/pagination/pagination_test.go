package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFallback_Consistent(t *testing.T) {
	t.Parallel()
	for page := 1; page <= 4; page++ {
		for size := 1; size <= 12; size++ {
			for rows := 0; rows <= size; rows++ {
				got := Fallback(page, size, rows)
				want := int(math.Ceil(float64(got.TotalItems) / float64(got.PageSize)))
				require.Equal(t, want, got.TotalPages, "page=%d size=%d rows=%d", page, size, rows)
				require.Equal(t, got.CurrentPage < got.TotalPages, got.HasNext)
				require.Equal(t, got.CurrentPage > 1, got.HasPrevious)
			}
		}
	}
}

func TestFallback_Defaults(t *testing.T) {
	t.Parallel()
	got := Fallback(0, 0, 3)
	require.Equal(t, 1, got.CurrentPage)
	require.Equal(t, DefaultPageSize, got.PageSize)
	require.Equal(t, 3, got.TotalItems)
	require.Equal(t, 1, got.TotalPages)
	require.False(t, got.HasNext)
}

func TestResolve_ServerWins(t *testing.T) {
	t.Parallel()
	srv := &Info{CurrentPage: 2, PageSize: 10, TotalItems: 95, TotalPages: 10, HasNext: true, HasPrevious: true}
	require.Equal(t, *srv, Resolve(srv, 1, 10, 3))
	require.Equal(t, Fallback(1, 10, 3), Resolve(nil, 1, 10, 3))
}

func TestWindow(t *testing.T) {
	t.Parallel()
	require.Nil(t, Info{}.Window())
	require.Equal(t, []int{1, 2, 3}, Info{TotalPages: 3}.Window())
	require.Equal(t, []int{1, 2, 3, 4, 5}, Info{TotalPages: 5}.Window())
	require.Equal(t, []int{1, 2, 3, Ellipsis, 12}, Info{TotalPages: 12}.Window())
}

func TestRangeAndGuards(t *testing.T) {
	t.Parallel()
	i := New(3, 10, 25)
	s, e := i.Range()
	require.Equal(t, 21, s)
	require.Equal(t, 25, e)

	require.False(t, i.Valid(0))
	require.True(t, i.Valid(3))
	require.False(t, i.Valid(4))

	require.False(t, New(1, 10, 3).ShowControls(3))
	require.True(t, i.ShowControls(5))
	require.False(t, i.ShowControls(0))
}
