package indexer

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"hoopla/pkg/errs"
	"hoopla/pkg/logger"
	"hoopla/pkg/metrics"
	"hoopla/pkg/parser"
	"hoopla/pkg/utils/stream"
)

// InvertedIndex maps a token to the documents containing it.
type InvertedIndex map[string]*PostingList

func (idx InvertedIndex) Postings(token string) *PostingList {
	return idx[token]
}

func (idx InvertedIndex) DocFreq(token string) int {
	return idx[token].Len()
}

func (idx InvertedIndex) Terms() []string {
	terms := make([]string, 0, len(idx))
	for term := range idx {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// TermFreqs maps DocID -> token -> occurrences. Counts are always positive;
// a missing token means zero.
type TermFreqs map[parser.DocID]map[string]int

func (tf TermFreqs) AddTerm(docID parser.DocID, term string) {
	if _, ok := tf[docID]; !ok {
		tf[docID] = map[string]int{}
	}
	tf[docID][term]++
}

// Count returns the occurrences of term in docID and whether docID is known.
func (tf TermFreqs) Count(docID parser.DocID, term string) (int, bool) {
	freqs, ok := tf[docID]
	if !ok {
		return 0, false
	}
	return freqs[term], true
}

type DocMap map[parser.DocID]parser.Document

// Snapshot is the unit of persistence: the three tables of one build plus
// the id that ties them together.
type Snapshot struct {
	BuildID string
	Index   InvertedIndex
	Docs    DocMap
	Freqs   TermFreqs
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		BuildID: uuid.NewString(),
		Index:   InvertedIndex{},
		Docs:    DocMap{},
		Freqs:   TermFreqs{},
	}
}

func (s *Snapshot) DocCount() int {
	return len(s.Docs)
}

// Validate checks that the three tables agree with each other.
func (s *Snapshot) Validate() error {
	for id := range s.Docs {
		if _, ok := s.Freqs[id]; !ok {
			return fmt.Errorf("document %d has no term frequencies", id)
		}
	}
	if len(s.Freqs) != len(s.Docs) {
		return fmt.Errorf("term frequencies cover %d documents, docmap has %d", len(s.Freqs), len(s.Docs))
	}

	postings := 0
	for term, list := range s.Index {
		for id := range list.All() {
			if s.Freqs[id][term] <= 0 {
				return fmt.Errorf("posting %q -> %d has no frequency", term, id)
			}
			postings++
		}
	}

	counted := 0
	for _, freqs := range s.Freqs {
		for _, n := range freqs {
			if n <= 0 {
				return fmt.Errorf("non-positive term frequency %d", n)
			}
			counted++
		}
	}
	if counted != postings {
		return fmt.Errorf("index has %d postings, term frequencies have %d entries", postings, counted)
	}
	return nil
}

// Equal reports structural equality, ignoring the build id.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if len(s.Index) != len(other.Index) || len(s.Docs) != len(other.Docs) || len(s.Freqs) != len(other.Freqs) {
		return false
	}
	for term, list := range s.Index {
		if !list.Equal(other.Index[term]) {
			return false
		}
	}
	for id, doc := range s.Docs {
		o, ok := other.Docs[id]
		if !ok || o.ID != doc.ID || o.Title != doc.Title || o.Description != doc.Description || len(o.Extra) != len(doc.Extra) {
			return false
		}
		for k, v := range doc.Extra {
			if string(o.Extra[k]) != string(v) {
				return false
			}
		}
	}
	for id, freqs := range s.Freqs {
		o, ok := other.Freqs[id]
		if !ok || len(o) != len(freqs) {
			return false
		}
		for term, n := range freqs {
			if o[term] != n {
				return false
			}
		}
	}
	return true
}

type Builder struct {
	tok     *parser.Tokenizer
	log     *slog.Logger
	metrics *metrics.Metrics
}

type BuilderOption func(*Builder)

func WithLogger(log *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.log = log
	}
}

func WithMetrics(m *metrics.Metrics) BuilderOption {
	return func(b *Builder) {
		b.metrics = m
	}
}

func NewBuilder(tok *parser.Tokenizer, opts ...BuilderOption) *Builder {
	b := &Builder{
		tok: tok,
		log: logger.WithComponent("indexer"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build indexes every document the producer yields, in order, into a fresh
// snapshot. Nothing is shared with earlier builds.
func (b *Builder) Build(docs stream.Producer[parser.Document]) (*Snapshot, *BuildStats, error) {
	start := time.Now()
	snap := NewSnapshot()
	stats := NewBuildStats()

	for {
		doc, ok := docs.Produce()
		if !ok {
			break
		}
		if doc.ID == 0 {
			return nil, nil, fmt.Errorf("%w: document %q has no id", errs.ErrInvalidCorpus, doc.Title)
		}
		if _, dup := snap.Docs[doc.ID]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate document id %d", errs.ErrInvalidCorpus, doc.ID)
		}

		tokens := b.tok.Tokenize(doc.Text())
		ParsePostings(doc, tokens, snap)
		if of, dup := stats.AddDoc(doc.ID, tokens); dup {
			b.log.Warn("near-duplicate document", "doc_id", doc.ID, "duplicate_of", of, "title", doc.Title)
		}
	}

	stats.Finish(snap)
	elapsed := time.Since(start)
	b.metrics.ObserveBuild(stats.Docs, stats.Terms, elapsed)
	b.log.Info("index built",
		"build_id", snap.BuildID,
		"docs", stats.Docs,
		"terms", stats.Terms,
		"postings", stats.Postings,
		"tokens", stats.Tokens,
		"duplicates", len(stats.Duplicates),
		"elapsed", elapsed,
	)
	return snap, stats, nil
}

// ParsePostings records one document in all three tables. Every occurrence
// bumps the frequency; the posting list gets the id once per distinct token.
func ParsePostings(doc parser.Document, tokens []string, snap *Snapshot) {
	snap.Docs[doc.ID] = doc
	if _, ok := snap.Freqs[doc.ID]; !ok {
		snap.Freqs[doc.ID] = map[string]int{}
	}
	for _, token := range tokens {
		snap.Freqs.AddTerm(doc.ID, token)
	}
	for token := range snap.Freqs[doc.ID] {
		list, ok := snap.Index[token]
		if !ok {
			list = NewPostingList()
			snap.Index[token] = list
		}
		list.Add(doc.ID)
	}
}
