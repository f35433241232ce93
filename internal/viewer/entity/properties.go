package entity

import "sync"

// Properties are the per-entity display settings.
type Properties struct {
	Visible     bool
	Interactive bool
}

// DefaultProperties apply to every entity without an override.
var DefaultProperties = Properties{Visible: true, Interactive: true}

// PropertyMap resolves the properties of an entity from per-path
// overrides and a default. A nil *PropertyMap yields DefaultProperties.
type PropertyMap struct {
	mu        sync.RWMutex
	defaults  Properties
	overrides map[Path]Properties
}

// NewPropertyMap creates a PropertyMap with the given defaults.
func NewPropertyMap(defaults Properties) *PropertyMap {
	return &PropertyMap{
		defaults:  defaults,
		overrides: make(map[Path]Properties),
	}
}

// Set overrides the properties of path.
func (m *PropertyMap) Set(path Path, props Properties) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[path] = props
}

// Get returns the properties of path.
func (m *PropertyMap) Get(path Path) Properties {
	if m == nil {
		return DefaultProperties
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.overrides[path]; ok {
		return p
	}
	return m.defaults
}
