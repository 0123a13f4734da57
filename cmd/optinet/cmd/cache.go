package cmd

import (
	"context"
	"sync"

	"github.com/dchest/siphash"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vic/optinet/pkg/config"
	"github.com/vic/optinet/pkg/engine"
)

// cacheKeys are fixed rather than random: the cache only needs to
// de-duplicate repeated reductions of the same source within one
// process's lifetime, not resist an adversary choosing inputs.
const cacheK0, cacheK1 = 0x6f7074696e657421, 0x63616368656b6579

type cacheEntry struct {
	result string
	stats  engine.Stats
}

var (
	cacheOnce sync.Once
	cache     *lru.Cache[uint64, cacheEntry]
)

func getCache(size int) *lru.Cache[uint64, cacheEntry] {
	cacheOnce.Do(func() {
		cache, _ = lru.New[uint64, cacheEntry](size)
	})
	return cache
}

// cachedReduce memoizes engine.Reduce, keyed by the SipHash of source,
// so re-reducing an unchanged program is O(1) instead of re-running
// the whole walker pool.
func cachedReduce(ctx context.Context, source string, cfg *config.Config) (string, engine.Stats, error) {
	c := getCache(cfg.CacheSize)
	key := siphash.Hash(cacheK0, cacheK1, []byte(source))

	if entry, ok := c.Get(key); ok {
		return entry.result, entry.stats, nil
	}

	result, stats, err := engine.Reduce(ctx, source, reduceOpts(cfg))
	if err != nil {
		return "", stats, err
	}

	c.Add(key, cacheEntry{result: result, stats: stats})
	return result, stats, nil
}
