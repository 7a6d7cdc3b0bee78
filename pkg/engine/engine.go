package engine

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/emirpasic/gods/v2/sets/linkedhashset"

	"hoopla/pkg/errs"
	"hoopla/pkg/indexer"
	"hoopla/pkg/logger"
	"hoopla/pkg/metrics"
	"hoopla/pkg/parser"
	"hoopla/pkg/store"
)

const DefaultSearchLimit = 5

// Engine answers queries over one loaded snapshot. It starts unloaded; every
// query fails with a MissingIndexError until Load succeeds.
type Engine struct {
	tok     *parser.Tokenizer
	src     store.Store
	snap    *indexer.Snapshot
	cache   *PostingCache
	limit   int
	log     *slog.Logger
	metrics *metrics.Metrics

	cacheSize int
}

type Option func(*Engine)

func WithSearchLimit(limit int) Option {
	return func(eg *Engine) {
		eg.limit = limit
	}
}

func WithCacheSize(size int) Option {
	return func(eg *Engine) {
		eg.cacheSize = size
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(eg *Engine) {
		eg.log = log
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(eg *Engine) {
		eg.metrics = m
	}
}

func NewEngine(tok *parser.Tokenizer, src store.Store, opts ...Option) *Engine {
	eg := &Engine{
		tok:       tok,
		src:       src,
		limit:     DefaultSearchLimit,
		cacheSize: DefaultCacheSize,
		log:       logger.WithComponent("engine"),
	}
	for _, opt := range opts {
		opt(eg)
	}
	if eg.limit <= 0 {
		eg.limit = DefaultSearchLimit
	}
	eg.cache = NewPostingCache(eg.cacheSize, eg.metrics)
	return eg
}

// Load replaces the engine state with the stored snapshot. On failure the
// engine is left unloaded.
func (eg *Engine) Load() error {
	start := time.Now()
	snap, err := eg.src.Load()
	if err != nil {
		eg.snap = nil
		eg.cache.Reset(nil)
		return fmt.Errorf("load index: %w", err)
	}

	eg.snap = snap
	eg.cache.Reset(snap.Index)
	eg.log.Debug("index loaded",
		"build_id", snap.BuildID,
		"docs", snap.DocCount(),
		"terms", len(snap.Index),
		"elapsed", time.Since(start),
	)
	return nil
}

func (eg *Engine) Loaded() bool {
	return eg.snap != nil
}

// Documents returns the ids of documents containing term, ascending.
func (eg *Engine) Documents(term string) (ids []parser.DocID, err error) {
	defer eg.observe("docs", time.Now(), &err)

	token, err := eg.token(term)
	if err != nil {
		return nil, err
	}
	return slices.Clone(eg.cache.Get(token)), nil
}

// TF returns how often term occurs in docID; zero when it does not.
func (eg *Engine) TF(docID parser.DocID, term string) (n int, err error) {
	defer eg.observe("tf", time.Now(), &err)

	token, err := eg.token(term)
	if err != nil {
		return 0, err
	}
	n, ok := eg.snap.Freqs.Count(docID, token)
	if !ok {
		return 0, fmt.Errorf("%w: %d", errs.ErrUnknownDocument, docID)
	}
	return n, nil
}

// IDF returns ln((N+1)/(df+1)) for term over the loaded corpus.
func (eg *Engine) IDF(term string) (idf float64, err error) {
	defer eg.observe("idf", time.Now(), &err)

	token, err := eg.token(term)
	if err != nil {
		return 0, err
	}
	return IDF(eg.snap.DocCount(), eg.snap.Index.DocFreq(token)), nil
}

// Search returns the titles of documents containing any query token, without
// duplicates and at most the search limit. Tokens are visited in query order
// and each posting list in ascending id order, so results are reproducible.
func (eg *Engine) Search(query string) (titles []string, err error) {
	defer eg.observe("search", time.Now(), &err)

	if !eg.Loaded() {
		return nil, errs.NotLoaded()
	}

	results := linkedhashset.New[string]()
	for _, token := range eg.tok.Tokenize(query) {
		for _, id := range eg.cache.Get(token) {
			if results.Size() >= eg.limit {
				return results.Values(), nil
			}
			results.Add(eg.snap.Docs[id].Title)
		}
	}
	return results.Values(), nil
}

// Document resolves an id to its corpus record.
func (eg *Engine) Document(docID parser.DocID) (parser.Document, error) {
	if !eg.Loaded() {
		return parser.Document{}, errs.NotLoaded()
	}
	doc, ok := eg.snap.Docs[docID]
	if !ok {
		return parser.Document{}, fmt.Errorf("%w: %d", errs.ErrUnknownDocument, docID)
	}
	return doc, nil
}

func (eg *Engine) DocCount() (int, error) {
	if !eg.Loaded() {
		return 0, errs.NotLoaded()
	}
	return eg.snap.DocCount(), nil
}

// token checks the engine state and the single-token rule before any lookup.
func (eg *Engine) token(term string) (string, error) {
	if !eg.Loaded() {
		return "", errs.NotLoaded()
	}
	return eg.tok.SingleToken(term)
}

func (eg *Engine) observe(op string, start time.Time, err *error) {
	eg.metrics.ObserveQuery(op, *err, time.Since(start))
}
