package index

// Posting is one document's term frequency for a word.
type Posting struct {
	DocID     int
	Frequency float64
}

type PostingList []Posting

type TermEntry struct {
	Term     string
	Postings PostingList
}
