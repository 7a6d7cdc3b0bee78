package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"hoopla/pkg/errs"
)

func TestOutcome(t *testing.T) {
	require.Equal(t, "ok", Outcome(nil))
	require.Equal(t, "validation", Outcome(&errs.ValidationError{Term: "a b"}))
	require.Equal(t, "missing_index", Outcome(fmt.Errorf("load: %w", errs.NotLoaded())))
	require.Equal(t, "unknown_document", Outcome(fmt.Errorf("%w: 9", errs.ErrUnknownDocument)))
	require.Equal(t, "error", Outcome(errors.New("disk full")))
}

func TestObserve(t *testing.T) {
	m := New()
	m.ObserveBuild(2, 5, 10*time.Millisecond)
	m.ObserveQuery("tf", nil, time.Millisecond)
	m.ObserveQuery("tf", &errs.ValidationError{Term: "a b"}, time.Millisecond)
	m.CacheHit()
	m.CacheMiss()
	m.CacheMiss()
	m.ObserveSnapshot("load", errs.Absent("manifest", nil))

	require.Equal(t, 2.0, testutil.ToFloat64(m.DocsIndexedTotal))
	require.Equal(t, 5.0, testutil.ToFloat64(m.IndexTerms))
	require.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("tf", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("tf", "validation")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
	require.Equal(t, 2.0, testutil.ToFloat64(m.CacheMissesTotal))
	require.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotOpsTotal.WithLabelValues("load", "missing_index")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveBuild(1, 1, time.Second)
	m.ObserveQuery("search", nil, time.Second)
	m.CacheHit()
	m.CacheMiss()
	m.ObserveSnapshot("save", nil)
	require.Nil(t, m.Registry())
	require.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveBuild(3, 4, time.Millisecond)

	path := filepath.Join(t.TempDir(), "hoopla.prom")
	require.NoError(t, m.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "hoopla_documents_indexed_total 3")
}
