package parser

import (
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Query is the structured form of a raw query. Both word lists are sorted,
// free of duplicates and free of stop words, and no word is in both. Words
// are substrings of RawQuery.
type Query struct {
	PlusWords  []string
	MinusWords []string
	RawQuery   string
}

// Parse splits query on spaces. A word prefixed with "-" becomes a minus
// word. A bare "-", a word starting with "--" or a word with a control
// character makes the whole query invalid.
func Parse(query string, stopWords tokenizer.StopWords) (*Query, error) {
	plan := &Query{
		PlusWords:  make([]string, 0),
		MinusWords: make([]string, 0),
		RawQuery:   query,
	}
	for _, word := range tokenizer.SplitIntoWords(query) {
		term, isMinus, err := parseWord(word)
		if err != nil {
			return nil, err
		}
		if stopWords.Contains(term) {
			continue
		}
		if isMinus {
			plan.MinusWords = append(plan.MinusWords, term)
		} else {
			plan.PlusWords = append(plan.PlusWords, term)
		}
	}
	plan.MinusWords = dedupe(plan.MinusWords)
	// A word excluded by the query can never contribute relevance.
	plan.PlusWords = slices.DeleteFunc(dedupe(plan.PlusWords), func(w string) bool {
		_, found := slices.BinarySearch(plan.MinusWords, w)
		return found
	})
	return plan, nil
}

func parseWord(word string) (term string, isMinus bool, err error) {
	term = word
	if strings.HasPrefix(term, "-") {
		isMinus = true
		term = term[1:]
	}
	if term == "" {
		return "", false, apperrors.New(apperrors.ErrInvalidArgument, "query word is a bare minus")
	}
	if strings.HasPrefix(term, "-") {
		return "", false, apperrors.Newf(apperrors.ErrInvalidArgument, "query word %q has a double minus", word)
	}
	if !tokenizer.IsValidWord(term) {
		return "", false, apperrors.Newf(apperrors.ErrInvalidArgument, "query word %q contains a control character", word)
	}
	return term, isMinus, nil
}

func dedupe(words []string) []string {
	slices.Sort(words)
	return slices.Compact(words)
}
