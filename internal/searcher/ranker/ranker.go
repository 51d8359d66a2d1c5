package ranker

import (
	"cmp"
	"math"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/accumulator"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
)

const (
	// MaxResultDocumentCount caps every FindTop result.
	MaxResultDocumentCount = 5
	// RelevanceEpsilon is the largest relevance difference treated as a tie.
	RelevanceEpsilon = 1e-6
)

// Corpus is the read-only view of the index the ranker scores against.
// Implementations must not lock: callers already hold the index read lock.
type Corpus interface {
	// Postings returns document id → TF for word. The map must not be
	// modified.
	Postings(word string) (map[int]float64, bool)
	// DocumentCount is the number of live documents.
	DocumentCount() int
	Document(id int) (document.Metadata, bool)
}

type Ranker struct {
	workers    int
	shardCount int
}

// New returns a ranker whose parallel paths use at most workers goroutines
// and an accumulator with shardCount shards.
func New(workers, shardCount int) *Ranker {
	if workers <= 0 {
		workers = execution.DefaultWorkers()
	}
	if shardCount <= 0 {
		shardCount = workers
	}
	return &Ranker{workers: workers, shardCount: shardCount}
}

// FindTop scores every document reachable through a plus word and accepted
// by pred, drops every document reachable through a minus word, and returns
// at most MaxResultDocumentCount results ordered by relevance then rating.
// A nil pred keeps only ACTUAL documents.
func (r *Ranker) FindTop(mode execution.Mode, c Corpus, q *parser.Query, pred document.Predicate) []document.Document {
	if pred == nil {
		pred = document.HasStatus(document.StatusActual)
	}
	var docs []document.Document
	if mode == execution.Parallel {
		docs = r.findAllParallel(c, q, pred)
	} else {
		docs = findAllSequential(c, q, pred)
	}
	sortResults(docs)
	if len(docs) > MaxResultDocumentCount {
		docs = docs[:MaxResultDocumentCount]
	}
	return docs
}

func findAllSequential(c Corpus, q *parser.Query, pred document.Predicate) []document.Document {
	relevance := make(map[int]float64)
	for _, word := range q.PlusWords {
		postings, exists := c.Postings(word)
		if !exists {
			continue
		}
		idf := inverseDocumentFrequency(c.DocumentCount(), len(postings))
		for id, tf := range postings {
			meta, live := c.Document(id)
			if live && pred(id, meta.Status, meta.Rating) {
				relevance[id] += tf * idf
			}
		}
	}
	for _, word := range q.MinusWords {
		postings, _ := c.Postings(word)
		for id := range postings {
			delete(relevance, id)
		}
	}

	ids := make([]int, 0, len(relevance))
	for id := range relevance {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	docs := make([]document.Document, 0, len(ids))
	for _, id := range ids {
		meta, _ := c.Document(id)
		docs = append(docs, document.Document{ID: id, Relevance: relevance[id], Rating: meta.Rating})
	}
	return docs
}

// findAllParallel fans plus words out to the workers, joins, fans minus words
// out, joins, and only then snapshots the accumulator.
func (r *Ranker) findAllParallel(c Corpus, q *parser.Query, pred document.Predicate) []document.Document {
	acc := accumulator.New(r.shardCount)
	total := c.DocumentCount()

	execution.ForEach(execution.Parallel, r.workers, q.PlusWords, func(word string) {
		postings, exists := c.Postings(word)
		if !exists {
			return
		}
		idf := inverseDocumentFrequency(total, len(postings))
		for id, tf := range postings {
			meta, live := c.Document(id)
			if live && pred(id, meta.Status, meta.Rating) {
				acc.Add(id, tf*idf)
			}
		}
	})
	execution.ForEach(execution.Parallel, r.workers, q.MinusWords, func(word string) {
		postings, _ := c.Postings(word)
		for id := range postings {
			acc.Erase(id)
		}
	})

	entries := acc.Snapshot()
	docs := make([]document.Document, 0, len(entries))
	for _, e := range entries {
		meta, _ := c.Document(e.ID)
		docs = append(docs, document.Document{ID: e.ID, Relevance: e.Value, Rating: meta.Rating})
	}
	return docs
}

// Match returns the plus words present in document id, or an empty slice if
// any minus word is present.
func (r *Ranker) Match(mode execution.Mode, c Corpus, q *parser.Query, id int) []string {
	contains := func(word string) bool {
		postings, _ := c.Postings(word)
		_, ok := postings[id]
		return ok
	}
	if execution.Any(mode, r.workers, q.MinusWords, contains) {
		return []string{}
	}
	return execution.Filter(mode, r.workers, q.PlusWords, contains)
}

func inverseDocumentFrequency(total, containing int) float64 {
	return math.Log(float64(total) / float64(containing))
}

// sortResults expects docs ordered by id; equal entries keep that order.
func sortResults(docs []document.Document) {
	slices.SortStableFunc(docs, func(a, b document.Document) int {
		if math.Abs(a.Relevance-b.Relevance) < RelevanceEpsilon {
			return cmp.Compare(b.Rating, a.Rating)
		}
		return cmp.Compare(b.Relevance, a.Relevance)
	})
}
