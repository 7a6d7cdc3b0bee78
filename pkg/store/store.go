// Package store persists index snapshots. A snapshot is four artifacts:
// the inverted index, the document map, the term-frequency table and a
// manifest naming the build they came from. Loads either return all three
// tables of one build or a *errs.MissingIndexError.
package store

import (
	"hoopla/pkg/indexer"
	"hoopla/pkg/metrics"
)

type Store interface {
	Save(snap *indexer.Snapshot) error
	Load() (*indexer.Snapshot, error)
}

var _ Store = (*FileStore)(nil)
var _ Store = (*RedisStore)(nil)
var _ Store = (*ObservedStore)(nil)

// ObservedStore counts saves and loads by outcome.
type ObservedStore struct {
	src     Store
	metrics *metrics.Metrics
}

func Observed(src Store, m *metrics.Metrics) *ObservedStore {
	return &ObservedStore{src: src, metrics: m}
}

func (s *ObservedStore) Save(snap *indexer.Snapshot) error {
	err := s.src.Save(snap)
	s.metrics.ObserveSnapshot("save", err)
	return err
}

func (s *ObservedStore) Load() (*indexer.Snapshot, error) {
	snap, err := s.src.Load()
	s.metrics.ObserveSnapshot("load", err)
	return snap, err
}
