package progression

import "sync"

// inflightGuard rejects concurrent mutating operations per user. The flag is
// checked and set synchronously before the first suspension point, so two
// overlapping calls can never both reach storage: the loser gets
// ErrConcurrentOperation and should retry after a short delay.
type inflightGuard struct {
	mu  sync.Mutex
	ops map[string]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{ops: make(map[string]struct{})}
}

// tryAcquire claims the user's slot. Returns false if a mutating operation is
// already in flight for that user.
func (g *inflightGuard) tryAcquire(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.ops[userID]; busy {
		return false
	}
	g.ops[userID] = struct{}{}
	return true
}

// release frees the user's slot.
func (g *inflightGuard) release(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.ops, userID)
}
