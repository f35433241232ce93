// Package entity identifies things in the scene: entity paths, per-path
// display properties, and the instance identity hashes used for hover
// highlighting and hit-testing.
package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ErrInvalidPath is returned by ParsePath for malformed paths.
var ErrInvalidPath = errors.New("entity: invalid path")

// Path names a node in the scene hierarchy, e.g. "/world/car/box". The
// zero value is the root.
type Path string

// Root is the top of the scene hierarchy.
const Root Path = "/"

// ParsePath validates and normalises s. A leading slash is optional;
// empty components ("//") are rejected.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "/" {
		return Root, nil
	}
	s = strings.TrimPrefix(s, "/")
	s = strings.TrimSuffix(s, "/")
	parts := strings.Split(s, "/")
	for i, part := range parts {
		if part == "" {
			return "", fmt.Errorf("%w: empty component %d in %q", ErrInvalidPath, i, s)
		}
	}
	return NewPath(parts...), nil
}

// NewPath joins components into a path.
func NewPath(parts ...string) Path {
	if len(parts) == 0 {
		return Root
	}
	return Path("/" + strings.Join(parts, "/"))
}

// String returns the canonical form.
func (p Path) String() string {
	if p == "" {
		return string(Root)
	}
	return string(p)
}

// IsRoot reports whether p is the root.
func (p Path) IsRoot() bool {
	return p == "" || p == Root
}

// Parts returns the path components, nil for the root.
func (p Path) Parts() []string {
	if p.IsRoot() {
		return nil
	}
	return strings.Split(strings.TrimPrefix(string(p), "/"), "/")
}

// Parent returns the parent path. The root has no parent.
func (p Path) Parent() (Path, bool) {
	if p.IsRoot() {
		return "", false
	}
	i := strings.LastIndexByte(string(p), '/')
	if i <= 0 {
		return Root, true
	}
	return p[:i], true
}

// Child appends a component.
func (p Path) Child(name string) Path {
	if p.IsRoot() {
		return NewPath(name)
	}
	return p + "/" + Path(name)
}

// IsDescendantOf reports whether p lies strictly below ancestor.
func (p Path) IsDescendantOf(ancestor Path) bool {
	if p.IsRoot() {
		return false
	}
	if ancestor.IsRoot() {
		return true
	}
	return strings.HasPrefix(string(p), string(ancestor)+"/")
}

// Hash returns a stable, non-zero 64-bit hash of the canonical path.
func (p Path) Hash() uint64 {
	h := xxhash.Sum64String(p.String())
	if h == 0 {
		h = 1
	}
	return h
}
