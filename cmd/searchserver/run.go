package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/dedup"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/paginator"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/spf13/cobra"
)

type runOptions struct {
	mode     string
	status   string
	pageSize int
	dedup    bool
	stats    bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Index documents from stdin and answer the queries that follow.",
		Long: `Reads from stdin:
  line 1      stop words separated by spaces
  line 2      number of documents N
  2N lines    per document its text, then its ratings as "count r1 .. rN"
  rest        one query per line until EOF

Every result is printed as { document_id = .., relevance = .., rating = .. }.
Document ids are assigned from 0 in input order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg, opts)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runSession(ctx, cfg, opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&opts.mode, "mode", "", "execution mode: sequential or parallel (default from config)")
	cmd.Flags().StringVar(&opts.status, "status", "", "only return documents with this status (default from config)")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "print results in pages of this size followed by \"Page break\"")
	cmd.Flags().BoolVar(&opts.dedup, "dedup", false, "remove duplicate documents before answering queries")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print request statistics as JSON to stderr at the end")
	return cmd
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config, opts *runOptions) {
	if cmd.Flags().Changed("mode") {
		cfg.Search.ExecutionMode = opts.mode
	}
	if cmd.Flags().Changed("status") {
		cfg.Search.DefaultStatus = opts.status
	}
	if cmd.Flags().Changed("page-size") {
		cfg.Search.PageSize = opts.pageSize
	}
}

func runSession(ctx context.Context, cfg *config.Config, opts *runOptions, in io.Reader, out, errOut io.Writer) error {
	log := logger.WithComponent("searchserver")
	mode, err := execution.ParseMode(cfg.Search.ExecutionMode)
	if err != nil {
		return err
	}
	status, err := document.ParseStatus(cfg.Search.DefaultStatus)
	if err != nil {
		return err
	}

	svc := startServices(ctx, cfg)
	defer svc.close()

	r := newLineReader(in)
	engine, err := loadEngine(r, cfg, svc)
	if err != nil {
		return err
	}
	log.Info("documents indexed", "count", engine.DocumentCount(), "mode", mode.String(), "workers", engine.Workers())

	if opts.dedup {
		if _, err := dedup.NewRemover(engine, mode, out).Run(); err != nil {
			return err
		}
	}

	aggregator := analytics.NewAggregator()
	queueOpts := []analytics.QueueOption{analytics.WithAggregator(aggregator), analytics.WithQueueMetrics(svc.metrics)}
	if svc.collector != nil {
		queueOpts = append(queueOpts, analytics.WithTracker(svc.collector))
	}
	queue := analytics.NewRequestQueue(cache.NewSearcher(engine, svc.cache), cfg.Search.RequestWindow, queueOpts...)

	for ctx.Err() == nil {
		query, ok, err := r.next()
		if err != nil {
			return fmt.Errorf("reading query line %d: %w", r.line+1, err)
		}
		if !ok {
			break
		}
		if query == "" {
			continue
		}
		docs, err := queue.AddFindRequestStatus(ctx, mode, query, status)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		if err := printResults(out, docs, cfg.Search.PageSize); err != nil {
			return err
		}
	}

	log.Info("session finished",
		"requests", queue.Len(),
		"no_result_requests", queue.NoResultRequests(),
	)
	if opts.stats {
		enc := json.NewEncoder(errOut)
		enc.SetIndent("", "  ")
		if err := enc.Encode(aggregator.Stats()); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
	}
	return ctx.Err()
}

func loadEngine(r *lineReader, cfg *config.Config, svc *services) (*indexer.Engine, error) {
	stopLine, err := r.require("stop words")
	if err != nil {
		return nil, err
	}
	stopText := stopLine
	for _, w := range cfg.Index.StopWords {
		stopText += " " + w
	}
	engine, err := indexer.NewEngineFromText(stopText,
		indexer.WithWorkers(cfg.Index.Workers),
		indexer.WithShardCount(cfg.Index.ShardCount),
		indexer.WithMetrics(svc.metrics),
	)
	if err != nil {
		return nil, err
	}

	count, err := r.number("document count")
	if err != nil {
		return nil, err
	}
	for id := range count {
		text, err := r.require(fmt.Sprintf("text of document %d", id))
		if err != nil {
			return nil, err
		}
		ratingsLine, err := r.require(fmt.Sprintf("ratings of document %d", id))
		if err != nil {
			return nil, err
		}
		ratings, err := parseRatings(ratingsLine)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		if err := engine.AddDocument(id, text, document.StatusActual, ratings); err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line-1, err)
		}
	}
	return engine, nil
}

func printResults(out io.Writer, docs []document.Document, pageSize int) error {
	if pageSize <= 0 {
		for _, d := range docs {
			if _, err := fmt.Fprintln(out, d.String()); err != nil {
				return err
			}
		}
		return nil
	}
	pages, err := paginator.Paginate(docs, pageSize)
	if err != nil {
		return err
	}
	for _, page := range pages {
		for _, d := range page {
			if _, err := fmt.Fprintln(out, d.String()); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(out, "Page break"); err != nil {
			return err
		}
	}
	return nil
}
