package entity

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// IndexHash identifies one instance within an entity. NoIndex means the
// row carries no instance identifier.
type IndexHash uint64

// NoIndex is the IndexHash of a row without an instance identifier.
const NoIndex IndexHash = 0

// IndexHashFromUint hashes an integer instance key. Legacy integer indices
// and columnar instance keys share this hash so that equivalent data in
// either store yields the same identity.
func IndexHashFromUint(n uint64) IndexHash {
	var buf [9]byte
	buf[0] = 'i'
	binary.LittleEndian.PutUint64(buf[1:], n)
	return nonZero(xxhash.Sum64(buf[:]))
}

// IndexHashFromString hashes a string instance key.
func IndexHashFromString(s string) IndexHash {
	d := xxhash.New()
	_, _ = d.WriteString("s")
	_, _ = d.WriteString(s)
	return nonZero(d.Sum64())
}

func nonZero(h uint64) IndexHash {
	if h == 0 {
		return 1
	}
	return IndexHash(h)
}

// InstanceIDHash identifies a selectable object: an entity, optionally
// narrowed to one instance. The zero value is NoInstance.
type InstanceIDHash struct {
	PathHash  uint64
	IndexHash IndexHash
	valid     bool
}

// NoInstance is the explicit "nothing selectable" identity. It never
// matches a hover target.
var NoInstance = InstanceIDHash{}

// NewInstanceIDHash returns the identity of instance index of path. With
// NoIndex the identity covers the whole entity.
func NewInstanceIDHash(path Path, index IndexHash) InstanceIDHash {
	return InstanceIDHash{PathHash: path.Hash(), IndexHash: index, valid: true}
}

// IdentityIfInteractive returns the identity of (path, index), or
// NoInstance when the entity is not interactive.
func IdentityIfInteractive(path Path, index IndexHash, interactive bool) InstanceIDHash {
	if !interactive {
		return NoInstance
	}
	return NewInstanceIDHash(path, index)
}

// IsSome reports whether h identifies something.
func (h InstanceIDHash) IsSome() bool {
	return h.valid
}

// Matches reports whether h is a real identity equal to hovered.
func (h InstanceIDHash) Matches(hovered InstanceIDHash) bool {
	return h.valid && h == hovered
}

// Equal reports whether h and o are the same identity.
func (h InstanceIDHash) Equal(o InstanceIDHash) bool {
	return h == o
}

func (h InstanceIDHash) String() string {
	if !h.valid {
		return "none"
	}
	return fmt.Sprintf("%016x/%016x", h.PathHash, uint64(h.IndexHash))
}
