package indexer

import (
	"strings"

	"github.com/mfonda/simhash"

	"hoopla/pkg/parser"
)

type Duplicate struct {
	ID parser.DocID
	Of parser.DocID
}

// BuildStats summarises one build. Duplicates lists documents whose token
// stream fingerprints the same as an earlier document; they are indexed anyway.
type BuildStats struct {
	Docs       int
	Terms      int
	Postings   int
	Tokens     int
	Duplicates []Duplicate

	fingerprints map[uint64]parser.DocID
}

func NewBuildStats() *BuildStats {
	return &BuildStats{
		fingerprints: map[uint64]parser.DocID{},
	}
}

// AddDoc counts the document and returns the earlier document it duplicates, if any.
func (stats *BuildStats) AddDoc(docID parser.DocID, tokens []string) (parser.DocID, bool) {
	stats.Docs++
	stats.Tokens += len(tokens)
	if len(tokens) == 0 {
		return 0, false
	}

	hash := simhash.Simhash(simhash.NewWordFeatureSet([]byte(strings.Join(tokens, " "))))
	if of, ok := stats.fingerprints[hash]; ok {
		stats.Duplicates = append(stats.Duplicates, Duplicate{ID: docID, Of: of})
		return of, true
	}
	stats.fingerprints[hash] = docID
	return 0, false
}

func (stats *BuildStats) Finish(snap *Snapshot) {
	stats.Terms = len(snap.Index)
	stats.Postings = 0
	for _, list := range snap.Index {
		stats.Postings += list.Len()
	}
}

func (stats *BuildStats) AvgTokensPerDoc() float64 {
	if stats.Docs == 0 {
		return 0
	}
	return float64(stats.Tokens) / float64(stats.Docs)
}
