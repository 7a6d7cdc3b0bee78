package engine

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"hoopla/pkg/indexer"
	"hoopla/pkg/metrics"
	"hoopla/pkg/parser"
)

const DefaultCacheSize = 256

// PostingCache keeps the sorted id lists of recently queried tokens in front
// of the loaded inverted index. Unknown tokens are cached as empty lists.
type PostingCache struct {
	cache   *lru.Cache[string, []parser.DocID]
	index   indexer.InvertedIndex
	metrics *metrics.Metrics
}

func NewPostingCache(size int, m *metrics.Metrics) *PostingCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, []parser.DocID](size)
	return &PostingCache{
		cache:   cache,
		metrics: m,
	}
}

// Reset points the cache at a newly loaded index and drops every entry.
func (pc *PostingCache) Reset(index indexer.InvertedIndex) {
	pc.cache.Purge()
	pc.index = index
}

// Get returns ascending ids for token. The slice is shared with the cache and
// must not be modified.
func (pc *PostingCache) Get(token string) []parser.DocID {
	if ids, ok := pc.cache.Get(token); ok {
		pc.metrics.CacheHit()
		return ids
	}
	pc.metrics.CacheMiss()

	ids := pc.index.Postings(token).IDs()
	pc.cache.Add(token, ids)
	return ids
}

func (pc *PostingCache) Len() int {
	return pc.cache.Len()
}
