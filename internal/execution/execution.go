// Package execution selects between the sequential and parallel algorithms
// used by search, match and removal, and provides the bounded fan-out that the
// parallel variants share.
package execution

import (
	"fmt"
	"runtime"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type Mode int

const (
	Sequential Mode = iota
	Parallel
)

func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "sequential", "seq":
		return Sequential, nil
	case "parallel", "par":
		return Parallel, nil
	default:
		return Sequential, apperrors.Newf(apperrors.ErrInvalidArgument, "unknown execution mode %q", s)
	}
}

// DefaultWorkers is the pool size used when none is configured.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// ForEach calls fn for every item. In Sequential mode items are visited in
// order on the calling goroutine. In Parallel mode at most workers calls run
// at once; ForEach returns only after every call has finished.
func ForEach[T any](mode Mode, workers int, items []T, fn func(T)) {
	if mode != Parallel || len(items) < 2 {
		for _, item := range items {
			fn(item)
		}
		return
	}
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for _, item := range items {
		g.Go(func() error {
			fn(item)
			return nil
		})
	}
	_ = g.Wait()
}

// Any reports whether pred holds for at least one item. The parallel variant
// evaluates every item before answering.
func Any[T any](mode Mode, workers int, items []T, pred func(T) bool) bool {
	if mode != Parallel {
		for _, item := range items {
			if pred(item) {
				return true
			}
		}
		return false
	}
	hits := make([]bool, len(items))
	indexes := make([]int, len(items))
	for i := range indexes {
		indexes[i] = i
	}
	ForEach(mode, workers, indexes, func(i int) {
		hits[i] = pred(items[i])
	})
	for _, hit := range hits {
		if hit {
			return true
		}
	}
	return false
}

// Filter returns the items for which keep holds, preserving input order in
// both modes.
func Filter[T any](mode Mode, workers int, items []T, keep func(T) bool) []T {
	kept := make([]bool, len(items))
	indexes := make([]int, len(items))
	for i := range indexes {
		indexes[i] = i
	}
	ForEach(mode, workers, indexes, func(i int) {
		kept[i] = keep(items[i])
	})
	result := make([]T, 0, len(items))
	for i, item := range items {
		if kept[i] {
			result = append(result, item)
		}
	}
	return result
}
