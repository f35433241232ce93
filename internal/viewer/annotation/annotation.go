package annotation

import (
	"image/color"
	"sync"
)

// ClassID identifies a class within an annotation context.
type ClassID uint16

// Info is the display information of one class.
type Info struct {
	ID    ClassID
	Label string       // empty means no label
	Color *color.NRGBA // nil means no colour
}

// ClassDescription describes one class of an annotation context.
type ClassDescription struct {
	Info Info
}

// Context maps class ids to descriptions. It is read-only once built and
// safe to share between goroutines.
type Context struct {
	mu      sync.RWMutex
	classes map[ClassID]ClassDescription
}

// NewContext returns a context holding descs.
func NewContext(descs ...ClassDescription) *Context {
	c := &Context{classes: make(map[ClassID]ClassDescription, len(descs))}
	for _, d := range descs {
		c.classes[d.Info.ID] = d
	}
	return c
}

// Add registers or replaces a class description.
func (c *Context) Add(d ClassDescription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.classes[d.Info.ID] = d
}

// Len returns the number of classes.
func (c *Context) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.classes)
}

// ClassDescription looks up a class. A nil id, an unknown id or a nil
// context all resolve to the unclassified description.
func (c *Context) ClassDescription(id *ClassID) ResolvedClassDescription {
	if c == nil || id == nil {
		return ResolvedClassDescription{}
	}
	c.mu.RLock()
	d, ok := c.classes[*id]
	c.mu.RUnlock()
	if !ok {
		return ResolvedClassDescription{}
	}
	return ResolvedClassDescription{desc: &d}
}

// ResolvedClassDescription is the result of a class lookup, possibly
// empty.
type ResolvedClassDescription struct {
	desc *ClassDescription
}

// Found reports whether the lookup hit a configured class.
func (r ResolvedClassDescription) Found() bool {
	return r.desc != nil
}

// AnnotationInfo returns the class's display info, empty if unclassified.
func (r ResolvedClassDescription) AnnotationInfo() ResolvedInfo {
	if r.desc == nil {
		return ResolvedInfo{}
	}
	info := r.desc.Info
	return ResolvedInfo{info: &info}
}

// ResolvedInfo applies the class's colour and label as fallbacks for
// per-instance values.
type ResolvedInfo struct {
	info *Info
}

// Color picks the explicit colour if given, else the class colour, else
// the default policy.
func (r ResolvedInfo) Color(explicit *color.NRGBA, def DefaultColor) color.NRGBA {
	if explicit != nil {
		return *explicit
	}
	if r.info != nil && r.info.Color != nil {
		return *r.info.Color
	}
	return def.Resolve()
}

// Label picks the explicit label if given, else the class label. The
// second result is false when neither is available.
func (r ResolvedInfo) Label(explicit *string) (string, bool) {
	if explicit != nil {
		return *explicit, true
	}
	if r.info != nil && r.info.Label != "" {
		return r.info.Label, true
	}
	return "", false
}
