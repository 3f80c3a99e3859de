package cmd

import (
	"sort"
	"sync"
)

// Registry maps command names to their decorated commands. Lookup is
// case-sensitive; callers lowercase what the user typed.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds a command, applying middlewares in order. A later command with the same name replaces the earlier one.
func (r *Registry) Register(c Command, mws ...Middleware) {
	name := c.Name()
	c = Apply(c, mws...)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[name] = c
}

// Get returns the command with the given name, or nil.
func (r *Registry) Get(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[name]
}

// GetAll returns all registered commands, sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}
