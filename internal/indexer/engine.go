package indexer

import (
	"iter"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/arena"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// Engine is the document store: it owns the stop words, the text arena, the
// inverted index and per-document metadata. All methods are safe for
// concurrent use.
type Engine struct {
	mu         sync.RWMutex
	stopWords  tokenizer.StopWords
	texts      *arena.Arena
	memIndex   *index.MemoryIndex
	documents  map[int]document.Metadata
	handles    map[int]arena.Handle
	ids        []int
	generation uint64

	workers    int
	shardCount int
	ranker     *ranker.Ranker
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

type Option func(*Engine)

// WithWorkers bounds the goroutines used by parallel search and removal.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithShardCount sets the accumulator shard count for parallel search.
func WithShardCount(n int) Option {
	return func(e *Engine) { e.shardCount = n }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine builds an empty engine. It fails with InvalidArgument if a stop
// word contains a control character.
func NewEngine(stopWords []string, opts ...Option) (*Engine, error) {
	sw, err := tokenizer.NewStopWords(stopWords)
	if err != nil {
		return nil, err
	}
	return newEngine(sw, opts), nil
}

// NewEngineFromText is NewEngine with stop words given as one space-separated
// string.
func NewEngineFromText(stopWords string, opts ...Option) (*Engine, error) {
	sw, err := tokenizer.ParseStopWords(stopWords)
	if err != nil {
		return nil, err
	}
	return newEngine(sw, opts), nil
}

func newEngine(sw tokenizer.StopWords, opts []Option) *Engine {
	e := &Engine{
		stopWords: sw,
		texts:     arena.New(),
		memIndex:  index.NewMemoryIndex(),
		documents: make(map[int]document.Metadata),
		handles:   make(map[int]arena.Handle),
		logger:    logger.WithComponent("indexer"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers <= 0 {
		e.workers = execution.DefaultWorkers()
	}
	if e.shardCount <= 0 {
		e.shardCount = e.workers
	}
	e.ranker = ranker.New(e.workers, e.shardCount)
	return e
}

// AddDocument indexes text under id. It fails with InvalidArgument, leaving
// the engine unchanged, if id is negative or already live or if text holds a
// control character.
func (e *Engine) AddDocument(id int, text string, status document.Status, ratings []int) error {
	if id < 0 {
		return apperrors.Newf(apperrors.ErrInvalidArgument, "document id %d is negative", id)
	}
	if !tokenizer.IsValidWord(text) {
		return apperrors.Newf(apperrors.ErrInvalidArgument, "document %d contains a control character", id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.documents[id]; exists {
		return apperrors.Newf(apperrors.ErrInvalidArgument, "document id %d already exists", id)
	}

	handle, owned := e.texts.Append(text)
	words, err := e.stopWords.SplitIntoWordsNoStop(owned)
	if err != nil {
		return err
	}
	e.memIndex.AddDocument(id, words)
	e.documents[id] = document.Metadata{Rating: document.AverageRating(ratings), Status: status}
	e.handles[id] = handle
	pos, _ := slices.BinarySearch(e.ids, id)
	e.ids = slices.Insert(e.ids, pos, id)
	e.generation++

	if e.metrics != nil {
		e.metrics.DocsIndexedTotal.Inc()
		e.metrics.DocumentCount.Set(float64(len(e.ids)))
	}
	e.logger.Debug("document indexed",
		"doc_id", id,
		"word_count", len(words),
		"status", status.String(),
	)
	return nil
}

// RemoveDocument deletes every trace of id. Unknown ids are ignored. Both
// modes leave the engine in the same state.
func (e *Engine) RemoveDocument(mode execution.Mode, id int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.documents[id]; !exists {
		return
	}
	e.memIndex.RemoveDocument(id, mode, e.workers)
	delete(e.documents, id)
	delete(e.handles, id)
	if pos, found := slices.BinarySearch(e.ids, id); found {
		e.ids = slices.Delete(e.ids, pos, pos+1)
	}
	e.generation++

	if e.metrics != nil {
		e.metrics.DocsRemovedTotal.WithLabelValues(mode.String()).Inc()
		e.metrics.DocumentCount.Set(float64(len(e.ids)))
	}
	e.logger.Debug("document removed", "doc_id", id, "mode", mode.String())
}

// FindTopDocuments returns at most ranker.MaxResultDocumentCount documents
// for rawQuery. A nil predicate keeps only ACTUAL documents.
func (e *Engine) FindTopDocuments(mode execution.Mode, rawQuery string, predicate document.Predicate) ([]document.Document, error) {
	start := time.Now()
	e.mu.RLock()
	defer e.mu.RUnlock()

	q, err := parser.Parse(rawQuery, e.stopWords)
	if err != nil {
		e.observeSearch(mode, "error", 0, start)
		return nil, err
	}
	docs := e.ranker.FindTop(mode, corpus{e}, q, predicate)

	resultType := "hit"
	if len(docs) == 0 {
		resultType = "zero_result"
	}
	e.observeSearch(mode, resultType, len(docs), start)
	e.logger.Debug("search executed",
		"mode", mode.String(),
		"plus_words", len(q.PlusWords),
		"minus_words", len(q.MinusWords),
		"results", len(docs),
		"latency", time.Since(start),
	)
	return docs, nil
}

func (e *Engine) observeSearch(mode execution.Mode, resultType string, results int, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.SearchQueriesTotal.WithLabelValues(mode.String(), resultType).Inc()
	if resultType == "error" {
		return
	}
	e.metrics.SearchLatency.WithLabelValues(mode.String()).Observe(time.Since(start).Seconds())
	e.metrics.SearchResultsCount.Observe(float64(results))
}

// MatchDocument returns the plus words of rawQuery found in document id,
// sorted, along with its status. The word list is empty when a minus word
// occurs in the document. An id that is not live yields ErrDocumentNotFound.
func (e *Engine) MatchDocument(mode execution.Mode, rawQuery string, id int) ([]string, document.Status, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	q, err := parser.Parse(rawQuery, e.stopWords)
	if err != nil {
		return nil, document.StatusActual, err
	}
	meta, exists := e.documents[id]
	if !exists {
		return nil, document.StatusActual, apperrors.Newf(apperrors.ErrDocumentNotFound, "document %d is not indexed", id)
	}
	return e.ranker.Match(mode, corpus{e}, q, id), meta.Status, nil
}

// ParseQuery parses rawQuery with this engine's stop words.
func (e *Engine) ParseQuery(rawQuery string) (*parser.Query, error) {
	return parser.Parse(rawQuery, e.stopWords)
}

// WordFrequencies returns a copy of id's word → TF map; empty for an unknown id.
func (e *Engine) WordFrequencies(id int) map[string]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.memIndex.WordFrequencies(id)
}

// DocumentWords returns id's distinct non-stop words in ascending order.
func (e *Engine) DocumentWords(id int) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.memIndex.Words(id)
}

// Text returns the text id was indexed with.
func (e *Engine) Text(id int) (string, bool) {
	e.mu.RLock()
	handle, exists := e.handles[id]
	e.mu.RUnlock()
	if !exists {
		return "", false
	}
	return e.texts.Text(handle)
}

func (e *Engine) DocumentCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.ids)
}

// DocumentIDs yields the live ids in ascending order. It iterates over a
// copy taken when iteration starts, so the body may add or remove documents.
func (e *Engine) DocumentIDs() iter.Seq[int] {
	return func(yield func(int) bool) {
		e.mu.RLock()
		ids := slices.Clone(e.ids)
		e.mu.RUnlock()
		for _, id := range ids {
			if !yield(id) {
				return
			}
		}
	}
}

// DocumentID returns the index-th live id in ascending order.
func (e *Engine) DocumentID(index int) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if index < 0 || index >= len(e.ids) {
		return 0, apperrors.Newf(apperrors.ErrOutOfRange, "document index %d outside [0, %d)", index, len(e.ids))
	}
	return e.ids[index], nil
}

func (e *Engine) IsStopWord(word string) bool {
	return e.stopWords.Contains(word)
}

// Generation changes whenever a document is added or removed.
func (e *Engine) Generation() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.generation
}

func (e *Engine) Workers() int {
	return e.workers
}

// Snapshot returns the inverted index ordered by word.
func (e *Engine) Snapshot() []index.TermEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.memIndex.Snapshot()
}

// TextBytes is the total size of every text ever indexed.
func (e *Engine) TextBytes() int64 {
	return e.texts.Size()
}

// corpus is the ranker's view of an engine whose read lock is already held.
type corpus struct {
	e *Engine
}

func (c corpus) Postings(word string) (map[int]float64, bool) {
	return c.e.memIndex.Postings(word)
}

func (c corpus) DocumentCount() int {
	return len(c.e.ids)
}

func (c corpus) Document(id int) (document.Metadata, bool) {
	meta, ok := c.e.documents[id]
	return meta, ok
}
