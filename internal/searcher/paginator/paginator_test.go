package paginator

import (
	"errors"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		size  int
		want  [][]int
	}{
		{"even split", []int{1, 2, 3, 4}, 2, [][]int{{1, 2}, {3, 4}}},
		{"short last page", []int{1, 2, 3, 4, 5}, 2, [][]int{{1, 2}, {3, 4}, {5}}},
		{"one page", []int{1, 2}, 10, [][]int{{1, 2}}},
		{"empty", nil, 3, [][]int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages, err := Paginate(tt.items, tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pages)
		})
	}
}

func TestPaginateRejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int{0, -2} {
		pages, err := Paginate([]string{"a"}, size)
		assert.Nil(t, pages)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
	}
}

func TestPagesDoNotOverlap(t *testing.T) {
	items := []int{1, 2, 3}
	pages, err := Paginate(items, 2)
	require.NoError(t, err)
	pages[0] = append(pages[0], 99)
	assert.Equal(t, []int{1, 2, 3}, items)
}
