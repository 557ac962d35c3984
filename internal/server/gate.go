package server

import "sync"

// sessionGate lets one matching request per session run at a time.
type sessionGate struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func newSessionGate() *sessionGate {
	return &sessionGate{busy: make(map[string]struct{})}
}

func (g *sessionGate) acquire(session string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.busy[session]; ok {
		return false
	}
	g.busy[session] = struct{}{}
	return true
}

func (g *sessionGate) release(session string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.busy, session)
}
