package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/yndnr/evalboard/internal/core/domain"
	"github.com/yndnr/evalboard/internal/telemetry/metric"
)

const evalPrefix = "eval/"

// EvalCache stores engine analyses keyed by position. Only the deepest
// analysis of a position is kept.
type EvalCache struct {
	store *BadgerStore
	ttl   time.Duration
}

// NewEvalCache creates a cache over store. A positive ttl expires entries.
func NewEvalCache(store *BadgerStore, ttl time.Duration) *EvalCache {
	return &EvalCache{store: store, ttl: ttl}
}

// Get returns a cached analysis of pos searched to at least depth.
func (c *EvalCache) Get(ctx context.Context, pos domain.Position, depth int) (domain.AnalysisResult, bool, error) {
	data, err := c.store.Get(ctx, cacheKey(pos))
	if errors.Is(err, ErrKeyNotFound) {
		return domain.AnalysisResult{}, false, nil
	}
	if err != nil {
		return domain.AnalysisResult{}, false, err
	}

	var res domain.AnalysisResult
	if err := json.Unmarshal(data, &res); err != nil {
		return domain.AnalysisResult{}, false, err
	}
	if res.Depth < depth {
		return domain.AnalysisResult{}, false, nil
	}
	return res, true, nil
}

// Put stores res for pos unless a deeper analysis is already cached.
func (c *EvalCache) Put(ctx context.Context, pos domain.Position, res domain.AnalysisResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.store.Upsert(ctx, cacheKey(pos), c.ttl, func(old []byte) ([]byte, error) {
		if old != nil {
			var prev domain.AnalysisResult
			if json.Unmarshal(old, &prev) == nil && prev.Depth > res.Depth {
				return nil, nil
			}
		}
		return data, nil
	})
}

// Len returns the number of cached positions.
func (c *EvalCache) Len(ctx context.Context) (int, error) {
	return c.store.Count(ctx, []byte(evalPrefix))
}

// Stats reports cache size for the metrics collector.
func (c *EvalCache) Stats() metric.CacheStats {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var st metric.CacheStats
	if n, err := c.Len(ctx); err == nil {
		st.Entries = int64(n)
	}
	if kv, err := c.store.Stats(ctx); err == nil {
		st.LSMSize = int64(kv.LSMSize)
		st.VLogSize = int64(kv.ValueLogSize)
	}
	return st
}

// cacheKey keys a position by placement, side to move, castling rights and
// en passant square. Move clocks do not change the evaluation.
func cacheKey(pos domain.Position) []byte {
	fields := strings.Fields(pos.String())
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return []byte(evalPrefix + strings.Join(fields, " "))
}
