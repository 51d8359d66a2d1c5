package main

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/spf13/cobra"
)

type benchOptions struct {
	docs        int
	wordsPerDoc int
	vocabulary  int
	queries     int
	queryWords  int
	removals    int
	seed        int64
}

func newBenchCmd(root *rootOptions) *cobra.Command {
	opts := &benchOptions{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare sequential and parallel search and removal on a synthetic corpus.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runBench(cfg, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&opts.docs, "docs", 10000, "documents in the corpus")
	cmd.Flags().IntVar(&opts.wordsPerDoc, "words", 70, "words per document")
	cmd.Flags().IntVar(&opts.vocabulary, "vocabulary", 2000, "distinct words to draw from")
	cmd.Flags().IntVar(&opts.queries, "queries", 200, "queries per mode")
	cmd.Flags().IntVar(&opts.queryWords, "query-words", 10, "words per query, about a third of them minus words")
	cmd.Flags().IntVar(&opts.removals, "removals", 1000, "documents removed per mode")
	cmd.Flags().Int64Var(&opts.seed, "seed", 1, "random seed")
	return cmd
}

// timings collects per-operation latencies for one mode.
type timings struct {
	name      string
	latencies []time.Duration
}

func (t *timings) time(fn func()) {
	start := time.Now()
	fn()
	t.latencies = append(t.latencies, time.Since(start))
}

func runBench(cfg *config.Config, opts *benchOptions, out io.Writer) error {
	if opts.docs <= 0 || opts.wordsPerDoc <= 0 || opts.vocabulary <= 0 || opts.queryWords <= 0 {
		return apperrors.New(apperrors.ErrInvalidArgument, "bench sizes must be positive")
	}
	rng := rand.New(rand.NewSource(opts.seed))
	vocab := make([]string, opts.vocabulary)
	for i := range vocab {
		vocab[i] = fmt.Sprintf("w%d", i)
	}
	texts := make([]string, opts.docs)
	for i := range texts {
		words := make([]string, opts.wordsPerDoc)
		for j := range words {
			words[j] = vocab[rng.Intn(len(vocab))]
		}
		texts[i] = strings.Join(words, " ")
	}
	queries := make([]string, opts.queries)
	for i := range queries {
		words := make([]string, opts.queryWords)
		for j := range words {
			prefix := ""
			if rng.Intn(3) == 0 {
				prefix = "-"
			}
			words[j] = prefix + vocab[rng.Intn(len(vocab))]
		}
		queries[i] = strings.Join(words, " ")
	}
	removals := rng.Perm(opts.docs)[:min(opts.removals, opts.docs)]

	build := func() (*indexer.Engine, error) {
		e, err := indexer.NewEngine(cfg.Index.StopWords,
			indexer.WithWorkers(cfg.Index.Workers),
			indexer.WithShardCount(cfg.Index.ShardCount),
		)
		if err != nil {
			return nil, err
		}
		for id, text := range texts {
			if err := e.AddDocument(id, text, document.StatusActual, []int{id % 10}); err != nil {
				return nil, err
			}
		}
		return e, nil
	}

	fmt.Fprintln(out, "=== Search Server Bench ===")
	fmt.Fprintf(out, "Documents:   %d x %d words (vocabulary %d)\n", opts.docs, opts.wordsPerDoc, opts.vocabulary)
	fmt.Fprintf(out, "Queries:     %d x %d words\n", opts.queries, opts.queryWords)
	fmt.Fprintf(out, "Removals:    %d\n", len(removals))

	engines := make(map[execution.Mode]*indexer.Engine)
	results := make(map[execution.Mode][][]document.Document)
	for _, mode := range []execution.Mode{execution.Sequential, execution.Parallel} {
		e, err := build()
		if err != nil {
			return err
		}
		engines[mode] = e
		search := &timings{name: mode.String() + " search"}
		for _, q := range queries {
			var docs []document.Document
			search.time(func() {
				docs, err = e.FindTopDocuments(mode, q, nil)
			})
			if err != nil {
				return err
			}
			results[mode] = append(results[mode], docs)
		}
		remove := &timings{name: mode.String() + " removal"}
		for _, id := range removals {
			remove.time(func() { e.RemoveDocument(mode, id) })
		}
		fmt.Fprintf(out, "Workers:     %d\n", e.Workers())
		printTimings(out, search)
		printTimings(out, remove)
	}

	mismatches := 0
	for i := range queries {
		if !sameResults(results[execution.Sequential][i], results[execution.Parallel][i]) {
			mismatches++
		}
	}
	if !slices.Equal(slices.Collect(engines[execution.Sequential].DocumentIDs()), slices.Collect(engines[execution.Parallel].DocumentIDs())) {
		mismatches++
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Mode mismatches: %d\n", mismatches)
	if mismatches > 0 {
		return fmt.Errorf("sequential and parallel results differ in %d cases", mismatches)
	}
	return nil
}

func sameResults(a, b []document.Document) bool {
	return slices.EqualFunc(a, b, func(x, y document.Document) bool {
		return x.ID == y.ID && x.Rating == y.Rating && math.Abs(x.Relevance-y.Relevance) < 1e-9
	})
}

func printTimings(out io.Writer, t *timings) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "=== %s ===\n", t.name)
	if len(t.latencies) == 0 {
		fmt.Fprintln(out, "no operations")
		return
	}
	sorted := slices.Clone(t.latencies)
	slices.Sort(sorted)
	var sum time.Duration
	for _, l := range sorted {
		sum += l
	}
	fmt.Fprintf(out, "Total:  %s\n", sum)
	fmt.Fprintf(out, "Avg:    %s\n", sum/time.Duration(len(sorted)))
	fmt.Fprintf(out, "P50:    %s\n", percentile(sorted, 50))
	fmt.Fprintf(out, "P99:    %s\n", percentile(sorted, 99))
	fmt.Fprintf(out, "Max:    %s\n", sorted[len(sorted)-1])
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}
