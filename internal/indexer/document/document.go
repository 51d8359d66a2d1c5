package document

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

type Status int

const (
	StatusActual Status = iota
	StatusIrrelevant
	StatusBanned
	StatusRemoved
)

func (s Status) String() string {
	switch s {
	case StatusActual:
		return "ACTUAL"
	case StatusIrrelevant:
		return "IRRELEVANT"
	case StatusBanned:
		return "BANNED"
	case StatusRemoved:
		return "REMOVED"
	default:
		return fmt.Sprintf("STATUS(%d)", int(s))
	}
}

func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(s) {
	case "ACTUAL":
		return StatusActual, nil
	case "IRRELEVANT":
		return StatusIrrelevant, nil
	case "BANNED":
		return StatusBanned, nil
	case "REMOVED":
		return StatusRemoved, nil
	default:
		return StatusActual, apperrors.Newf(apperrors.ErrInvalidArgument, "unknown document status %q", s)
	}
}

// Metadata is what the store keeps per live document besides its words.
type Metadata struct {
	Rating int
	Status Status
}

// Document is one scored search result.
type Document struct {
	ID        int     `json:"document_id"`
	Relevance float64 `json:"relevance"`
	Rating    int     `json:"rating"`
}

// String renders the result as "{ document_id = 1, relevance = 0.5, rating = 2 }".
func (d Document) String() string {
	return fmt.Sprintf("{ document_id = %d, relevance = %s, rating = %d }",
		d.ID, strconv.FormatFloat(d.Relevance, 'g', 6, 64), d.Rating)
}

// Predicate filters candidate documents during ranking. In parallel mode it
// is called from several goroutines at once.
type Predicate func(id int, status Status, rating int) bool

// HasStatus matches documents whose status equals s.
func HasStatus(s Status) Predicate {
	return func(_ int, status Status, _ int) bool {
		return status == s
	}
}

// AverageRating is the truncating integer mean of ratings, 0 when empty.
func AverageRating(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return sum / len(ratings)
}
