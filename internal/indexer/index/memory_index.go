package index

import (
	"maps"
	"slices"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
)

// MemoryIndex keeps two views of the same (word, document, frequency)
// triples: word → document → TF for ranking and document → word → TF for
// removal and duplicate detection. Both views always agree, and a word is
// present only while some document still contains it.
//
// MemoryIndex does no locking of its own; the owning engine serialises
// mutations against reads.
type MemoryIndex struct {
	wordToDocFreqs map[string]map[int]float64
	docToWordFreqs map[int]map[string]float64
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		wordToDocFreqs: make(map[string]map[int]float64),
		docToWordFreqs: make(map[int]map[string]float64),
	}
}

// AddDocument records words (stop words already removed) for docID. Every
// occurrence adds 1/len(words) to the word's frequency. An empty word list
// adds nothing.
func (m *MemoryIndex) AddDocument(docID int, words []string) {
	if len(words) == 0 {
		return
	}
	invWordCount := 1.0 / float64(len(words))
	termData := make(map[string]float64)
	for _, word := range words {
		termData[word] += invWordCount
	}
	for term, freq := range termData {
		docs, exists := m.wordToDocFreqs[term]
		if !exists {
			docs = make(map[int]float64)
			m.wordToDocFreqs[term] = docs
		}
		docs[docID] = freq
	}
	m.docToWordFreqs[docID] = termData
}

// RemoveDocument deletes every entry of docID. In parallel mode the per-word
// deletions run concurrently; each touches a different word's posting map.
// Emptied words and the per-document view are dropped after they all finish.
func (m *MemoryIndex) RemoveDocument(docID int, mode execution.Mode, workers int) {
	wordFreqs, exists := m.docToWordFreqs[docID]
	if !exists {
		return
	}
	words := make([]string, 0, len(wordFreqs))
	postings := make([]map[int]float64, 0, len(wordFreqs))
	for word := range wordFreqs {
		words = append(words, word)
		postings = append(postings, m.wordToDocFreqs[word])
	}
	execution.ForEach(mode, workers, postings, func(docs map[int]float64) {
		delete(docs, docID)
	})
	for i, word := range words {
		if len(postings[i]) == 0 {
			delete(m.wordToDocFreqs, word)
		}
	}
	delete(m.docToWordFreqs, docID)
}

// Postings returns the document → TF map for word. The map belongs to the
// index and must not be modified.
func (m *MemoryIndex) Postings(word string) (map[int]float64, bool) {
	docs, exists := m.wordToDocFreqs[word]
	return docs, exists
}

// DocumentFrequency is the number of documents containing word.
func (m *MemoryIndex) DocumentFrequency(word string) int {
	return len(m.wordToDocFreqs[word])
}

func (m *MemoryIndex) Contains(word string, docID int) bool {
	_, ok := m.wordToDocFreqs[word][docID]
	return ok
}

// WordFrequencies returns a copy of docID's word → TF view; empty for an
// unknown document.
func (m *MemoryIndex) WordFrequencies(docID int) map[string]float64 {
	freqs, exists := m.docToWordFreqs[docID]
	if !exists {
		return map[string]float64{}
	}
	return maps.Clone(freqs)
}

// Words returns docID's distinct words in ascending order.
func (m *MemoryIndex) Words(docID int) []string {
	return slices.Sorted(maps.Keys(m.docToWordFreqs[docID]))
}

// TermCount is the number of distinct words indexed.
func (m *MemoryIndex) TermCount() int {
	return len(m.wordToDocFreqs)
}

// Snapshot returns every word with its postings, words ascending and
// postings by document id.
func (m *MemoryIndex) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(m.wordToDocFreqs))
	for term, docs := range m.wordToDocFreqs {
		postings := make(PostingList, 0, len(docs))
		for docID, freq := range docs {
			postings = append(postings, Posting{DocID: docID, Frequency: freq})
		}
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].DocID < postings[j].DocID
		})
		entries = append(entries, TermEntry{
			Term:     term,
			Postings: postings,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}
