// Package idempotency suppresses duplicate log writes for the same logical
// table transition. A transition is identified by (table, action, instant),
// never by how many times it was evaluated.
package idempotency

import (
	"strconv"
	"sync"
	"time"
)

// Guard is a process-lifetime set of transition keys.
type Guard struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{seen: make(map[string]struct{})}
}

func OpenKey(table string, start time.Time) string {
	return table + "-open-" + strconv.FormatInt(start.UnixMilli(), 10)
}

func CloseKey(table string, closedAt time.Time) string {
	return table + "-close-" + strconv.FormatInt(closedAt.UnixMilli(), 10)
}

// Claim records key and reports whether it was new. Callers write to the log
// only when Claim returns true.
func (g *Guard) Claim(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.seen[key]; ok {
		return false
	}
	g.seen[key] = struct{}{}
	return true
}

func (g *Guard) Seen(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.seen[key]
	return ok
}

// Forget drops key so the same transition can be logged again, e.g. after a
// scheduled open is cancelled or a failed write is rolled back.
func (g *Guard) Forget(key string) {
	g.mu.Lock()
	delete(g.seen, key)
	g.mu.Unlock()
}

func (g *Guard) Reset() {
	g.mu.Lock()
	g.seen = make(map[string]struct{})
	g.mu.Unlock()
}

func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}
