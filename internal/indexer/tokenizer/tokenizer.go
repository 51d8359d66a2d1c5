// Package tokenizer provides text tokenisation for the search engine.
// Text is split on the space character only; words are returned as
// substrings of the input, so they share its backing memory. Words must not
// contain control characters.
package tokenizer

import (
	"slices"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// SplitIntoWords breaks text into its space-separated words. Runs of spaces
// produce no empty words.
func SplitIntoWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ' '
	})
}

// IsValidWord reports whether word is free of bytes below the space
// character.
func IsValidWord(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < ' ' {
			return false
		}
	}
	return true
}

// StopWords is an immutable set of words excluded from indexing and
// querying.
type StopWords struct {
	words map[string]struct{}
}

// NewStopWords builds a set from words, dropping empty strings and
// duplicates. A word containing a control character is rejected.
func NewStopWords(words []string) (StopWords, error) {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		if !IsValidWord(w) {
			return StopWords{}, apperrors.Newf(apperrors.ErrInvalidArgument, "stop word %q contains a control character", w)
		}
		set[strings.Clone(w)] = struct{}{}
	}
	return StopWords{words: set}, nil
}

// ParseStopWords builds a set from space-separated text.
func ParseStopWords(text string) (StopWords, error) {
	return NewStopWords(SplitIntoWords(text))
}

func (s StopWords) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

func (s StopWords) Len() int {
	return len(s.words)
}

// Words returns the set in ascending order.
func (s StopWords) Words() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

// SplitIntoWordsNoStop splits text and drops stop words. It fails without
// returning any words if one of them contains a control character.
func (s StopWords) SplitIntoWordsNoStop(text string) ([]string, error) {
	words := SplitIntoWords(text)
	kept := words[:0]
	for _, w := range words {
		if !IsValidWord(w) {
			return nil, apperrors.Newf(apperrors.ErrInvalidArgument, "word %q contains a control character", w)
		}
		if !s.Contains(w) {
			kept = append(kept, w)
		}
	}
	return kept, nil
}
