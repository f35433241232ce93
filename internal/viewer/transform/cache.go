// Package transform resolves where an entity sits in the reference space
// of a view.
//
// Every entity may carry a local transform relative to its parent. The
// transform of an entity in the reference space is the product of the
// local transforms on the path from the reference entity down to it. An
// entity is unreachable when it does not lie under the reference, or when
// a link on that path is disconnected (for example a camera projection
// that cannot be inverted).
package transform

import (
	"sync"

	"github.com/banshee-data/sceneview/internal/viewer/entity"
	"github.com/banshee-data/sceneview/internal/viewer/geom"
)

// Resolution is either Reachable with a reference-from-entity transform,
// or Unreachable.
type Resolution struct {
	ReferenceFromEntity geom.Affine
	Reachable           bool
}

// Unreachable is the resolution of an entity with no path to the
// reference.
var Unreachable = Resolution{}

// Reachable wraps a resolved transform.
func Reachable(referenceFromEntity geom.Affine) Resolution {
	return Resolution{ReferenceFromEntity: referenceFromEntity, Reachable: true}
}

// Resolver resolves entity transforms. Implementations must be safe for
// concurrent reads.
type Resolver interface {
	Resolve(path entity.Path) Resolution
}

// Local is the transform of an entity relative to its parent.
type Local struct {
	ParentFromEntity geom.Affine
	Disconnected     bool
}

// Cache resolves transforms from per-entity local transforms. Entities
// without a local transform are placed at their parent's origin.
type Cache struct {
	mu        sync.RWMutex
	reference entity.Path
	locals    map[entity.Path]Local
}

// NewCache returns a Cache whose reference space is that of reference.
func NewCache(reference entity.Path) *Cache {
	return &Cache{
		reference: reference,
		locals:    make(map[entity.Path]Local),
	}
}

// Reference returns the reference path.
func (c *Cache) Reference() entity.Path {
	return c.reference
}

// SetLocal records the parent-from-entity transform of path.
func (c *Cache) SetLocal(path entity.Path, parentFromEntity geom.Affine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locals[path] = Local{ParentFromEntity: parentFromEntity}
}

// SetDisconnected marks path as having no usable transform to its parent,
// cutting it and its descendants off from the reference.
func (c *Cache) SetDisconnected(path entity.Path) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locals[path] = Local{Disconnected: true}
}

// Resolve implements Resolver.
func (c *Cache) Resolve(path entity.Path) Resolution {
	if path == c.reference || (path.IsRoot() && c.reference.IsRoot()) {
		return Reachable(geom.Identity)
	}
	if !path.IsDescendantOf(c.reference) {
		return Unreachable
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	// Walk up from the entity, composing parent-from-child on the left.
	result := geom.Identity
	for p := path; p != c.reference && !p.IsRoot(); {
		local, ok := c.locals[p]
		if ok {
			if local.Disconnected {
				return Unreachable
			}
			result = local.ParentFromEntity.Mul(result)
		}
		parent, _ := p.Parent()
		p = parent
	}
	return Reachable(result)
}
