package document

import (
	"errors"
	"math"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 0, AverageRating(nil))
	assert.Equal(t, 1, AverageRating([]int{1, 2}))
	assert.Equal(t, 5, AverageRating([]int{7, 2, 7}))
	assert.Equal(t, -1, AverageRating([]int{-1, -2}), "truncates toward zero")
	assert.Equal(t, 2, AverageRating([]int{1, 3, 2, 4}))
}

func TestDocumentString(t *testing.T) {
	d := Document{ID: 1, Relevance: math.Log(2) / 2, Rating: 2}
	assert.Equal(t, "{ document_id = 1, relevance = 0.346574, rating = 2 }", d.String())

	zero := Document{ID: 4, Relevance: 0, Rating: -3}
	assert.Equal(t, "{ document_id = 4, relevance = 0, rating = -3 }", zero.String())
}

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{StatusActual, StatusIrrelevant, StatusBanned, StatusRemoved} {
		got, err := ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := ParseStatus("banned")
	require.NoError(t, err)
	assert.Equal(t, StatusBanned, got)

	_, err = ParseStatus("LOST")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
}

func TestHasStatus(t *testing.T) {
	p := HasStatus(StatusBanned)
	assert.True(t, p(1, StatusBanned, 0))
	assert.False(t, p(1, StatusActual, 0))
}
