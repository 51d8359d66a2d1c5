// Package dedup removes documents whose set of distinct words repeats that of
// a document with a lower id.
package dedup

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
)

// Store is the part of the engine the remover needs.
type Store interface {
	DocumentIDs() iter.Seq[int]
	// DocumentWords returns the document's distinct words in ascending order.
	DocumentWords(id int) []string
	RemoveDocument(mode execution.Mode, id int)
}

type Remover struct {
	store  Store
	mode   execution.Mode
	out    io.Writer
	logger *slog.Logger
}

// NewRemover reports each duplicate to out as it is removed. out may be nil.
func NewRemover(store Store, mode execution.Mode, out io.Writer) *Remover {
	return &Remover{
		store:  store,
		mode:   mode,
		out:    out,
		logger: logger.WithComponent("dedup"),
	}
}

// Run removes every duplicate and returns the removed ids in ascending order.
// Two documents are duplicates when their word sets are equal, regardless of
// word frequencies; the lowest id is kept.
func (r *Remover) Run() ([]int, error) {
	firstSeen := make(map[string]int)
	var duplicates []int
	for id := range r.store.DocumentIDs() {
		key := strings.Join(r.store.DocumentWords(id), " ")
		if _, exists := firstSeen[key]; exists {
			duplicates = append(duplicates, id)
			continue
		}
		firstSeen[key] = id
	}
	for _, id := range duplicates {
		if r.out != nil {
			if _, err := fmt.Fprintf(r.out, "Found duplicate document id %d\n", id); err != nil {
				return nil, fmt.Errorf("reporting duplicate %d: %w", id, err)
			}
		}
		r.store.RemoveDocument(r.mode, id)
	}
	if len(duplicates) > 0 {
		r.logger.Info("duplicates removed", "count", len(duplicates), "mode", r.mode.String())
	}
	return duplicates, nil
}
