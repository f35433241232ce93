package annotation

import (
	"sync"

	"github.com/banshee-data/sceneview/internal/viewer/entity"
)

// Map attaches annotation contexts to entity paths.
type Map struct {
	mu       sync.RWMutex
	contexts map[entity.Path]*Context
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{contexts: make(map[entity.Path]*Context)}
}

// Set attaches ctx to path.
func (m *Map) Set(path entity.Path, ctx *Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contexts[path] = ctx
}

// Len returns the number of paths with a context.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.contexts)
}

// Find returns the context of path or of its nearest ancestor that has
// one, or an empty context.
func (m *Map) Find(path entity.Path) *Context {
	if m == nil {
		return NewContext()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	next, ok := path, true
	for ok {
		if ctx, found := m.contexts[next]; found {
			return ctx
		}
		next, ok = next.Parent()
	}
	return NewContext()
}
