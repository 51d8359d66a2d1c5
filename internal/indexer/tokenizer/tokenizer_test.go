package tokenizer

import (
	"errors"
	"testing"
	"unsafe"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitIntoWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"simple", "cat in the city", []string{"cat", "in", "the", "city"}},
		{"extra spaces", "  green   cat ", []string{"green", "cat"}},
		{"empty", "", []string{}},
		{"only spaces", "    ", []string{}},
		{"tabs are not separators", "a\tb c", []string{"a\tb", "c"}},
		{"multibyte", "пушистый кот", []string{"пушистый", "кот"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitIntoWords(tt.text)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestIsValidWord(t *testing.T) {
	assert.True(t, IsValidWord("city"))
	assert.True(t, IsValidWord("ошейник"))
	assert.True(t, IsValidWord(""))
	assert.False(t, IsValidWord("ci\x12ty"))
	assert.False(t, IsValidWord("\x00"))
	assert.False(t, IsValidWord("tab\t"))
}

func TestNewStopWords(t *testing.T) {
	sw, err := NewStopWords([]string{"in", "the", "", "in"})
	require.NoError(t, err)
	assert.Equal(t, 2, sw.Len())
	assert.True(t, sw.Contains("in"))
	assert.False(t, sw.Contains(""))
	assert.Equal(t, []string{"in", "the"}, sw.Words())

	_, err = NewStopWords([]string{"ok", "b\x01ad"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
}

func TestParseStopWords(t *testing.T) {
	sw, err := ParseStopWords("  and in   on ")
	require.NoError(t, err)
	assert.Equal(t, []string{"and", "in", "on"}, sw.Words())
}

func TestSplitIntoWordsNoStop(t *testing.T) {
	sw, err := ParseStopWords("the in")
	require.NoError(t, err)

	words, err := sw.SplitIntoWordsNoStop("cat in the city")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "city"}, words)

	words, err = sw.SplitIntoWordsNoStop("the in")
	require.NoError(t, err)
	assert.Empty(t, words)

	_, err = sw.SplitIntoWordsNoStop("cat ci\x1fty")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
}

func TestSplitIntoWordsSharesBacking(t *testing.T) {
	text := "green cat"
	words := SplitIntoWords(text)
	require.Len(t, words, 2)
	assert.Same(t, unsafe.StringData(text[6:]), unsafe.StringData(words[1]))
}
