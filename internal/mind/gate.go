package mind

import (
	"fmt"
	"sync"
)

// InflightScope selects what one in-flight generation blocks.
type InflightScope string

const (
	ScopeChannel InflightScope = "channel"
	ScopeGlobal  InflightScope = "global"
)

// ParseInflightScope accepts "channel" (or empty) and "global".
func ParseInflightScope(s string) (InflightScope, error) {
	switch InflightScope(s) {
	case "", ScopeChannel:
		return ScopeChannel, nil
	case ScopeGlobal:
		return ScopeGlobal, nil
	}
	return "", fmt.Errorf("unknown in-flight scope %q", s)
}

// InflightGate admits at most one generation per scope key. Busy means drop, never wait.
type InflightGate struct {
	mu    sync.Mutex
	scope InflightScope
	busy  map[string]struct{}
}

// NewInflightGate creates a gate for scope.
func NewInflightGate(scope InflightScope) *InflightGate {
	return &InflightGate{scope: scope, busy: make(map[string]struct{})}
}

func (g *InflightGate) key(channelID string) string {
	if g.scope == ScopeGlobal {
		return "*"
	}
	return channelID
}

// TryEnter claims the slot for channelID. On success the returned func releases it.
func (g *InflightGate) TryEnter(channelID string) (release func(), ok bool) {
	k := g.key(channelID)
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, taken := g.busy[k]; taken {
		return nil, false
	}
	g.busy[k] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.busy, k)
			g.mu.Unlock()
		})
	}, true
}

// InFlight is the number of generations currently running.
func (g *InflightGate) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.busy)
}

// Scope returns the gate scope.
func (g *InflightGate) Scope() InflightScope { return g.scope }
