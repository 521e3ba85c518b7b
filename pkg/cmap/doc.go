// Package cmap provides a sharded concurrent map.
//
// Each shard has its own RWMutex, so lookups for different keys rarely
// contend. The HTTP server keeps one rate limiter per client in it.
//
//	m := cmap.New[string, *rate.Limiter]()
//	l, _ := m.GetOrCreate(ip, func() *rate.Limiter { return rate.NewLimiter(5, 5) })
package cmap
