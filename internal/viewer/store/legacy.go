package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/sceneview/internal/viewer/entity"
)

// ObjectType is the kind of a legacy object.
type ObjectType int

const (
	ObjectTypeUnknown ObjectType = iota
	ObjectTypeBox3D
	ObjectTypePoint3D
	ObjectTypeLineSegments3D
)

func (t ObjectType) String() string {
	switch t {
	case ObjectTypeBox3D:
		return "Box3D"
	case ObjectTypePoint3D:
		return "Point3D"
	case ObjectTypeLineSegments3D:
		return "LineSegments3D"
	default:
		return fmt.Sprintf("ObjectType(%d)", int(t))
	}
}

// FieldName names a field of a legacy object.
type FieldName string

// Box3D object fields.
const (
	FieldOBB         FieldName = "obb"          // Box3
	FieldColor       FieldName = "color"        // [4]uint8
	FieldStrokeWidth FieldName = "stroke_width" // float32
	FieldLabel       FieldName = "label"        // string
	FieldClassID     FieldName = "class_id"     // int32
)

type indexKind uint8

const (
	indexInt indexKind = iota + 1
	indexString
)

// Index identifies an instance within a legacy batch.
type Index struct {
	kind indexKind
	n    uint64
	s    string
}

// IntIndex returns an integer index.
func IntIndex(n uint64) Index { return Index{kind: indexInt, n: n} }

// StringIndex returns a string index.
func StringIndex(s string) Index { return Index{kind: indexString, s: s} }

// Int returns the integer value and whether the index is an integer.
func (i Index) Int() (uint64, bool) { return i.n, i.kind == indexInt }

// Str returns the string value and whether the index is a string.
func (i Index) Str() (string, bool) { return i.s, i.kind == indexString }

// Hash returns the instance hash. Integer indices hash like columnar
// Instance keys of the same value.
func (i Index) Hash() entity.IndexHash {
	switch i.kind {
	case indexInt:
		return entity.IndexHashFromUint(i.n)
	case indexString:
		return entity.IndexHashFromString(i.s)
	default:
		return entity.NoIndex
	}
}

func (i Index) String() string {
	if i.kind == indexString {
		return fmt.Sprintf("%q", i.s)
	}
	return fmt.Sprintf("#%d", i.n)
}

// Box3 is an oriented box: half size, rotation as (x, y, z, w) and
// translation.
type Box3 struct {
	HalfSize    [3]float32
	Rotation    [4]float32
	Translation [3]float32
}

// IndexedValue is one value of a field batch. Index is nil in a mono
// batch, whose single value applies to every instance.
type IndexedValue struct {
	Index *Index
	Value any
}

// FieldBatch is everything logged to one field at one time.
type FieldBatch struct {
	Time   TimeInt
	MsgID  uuid.UUID
	Values []IndexedValue
}

// NewMonoBatch returns a batch whose single value applies to all
// instances.
func NewMonoBatch(t TimeInt, v any) FieldBatch {
	return FieldBatch{Time: t, MsgID: uuid.New(), Values: []IndexedValue{{Value: v}}}
}

// IsMono reports whether the batch holds a single unindexed value.
func (b *FieldBatch) IsMono() bool {
	return len(b.Values) == 1 && b.Values[0].Index == nil
}

// ByIndex returns a lookup from index to value. Mono batches return nil;
// use the single value directly.
func (b *FieldBatch) ByIndex() map[Index]any {
	if b.IsMono() {
		return nil
	}
	m := make(map[Index]any, len(b.Values))
	for _, v := range b.Values {
		if v.Index != nil {
			m[*v.Index] = v.Value
		}
	}
	return m
}

// ObjectStore is the legacy store of one object.
type ObjectStore interface {
	Type() ObjectType
	// LatestAt returns the latest batch of field at or before the query
	// time, or nil when there is none.
	LatestAt(q LatestAtQuery, field FieldName) (*FieldBatch, error)
}

// ObjectStores looks up the object logged at an entity path.
type ObjectStores interface {
	// ObjectStore returns ErrObjectNotFound when nothing is logged at path.
	ObjectStore(path entity.Path) (ObjectStore, error)
}

// LegacyWriter writes legacy objects.
type LegacyWriter interface {
	SetObjectType(path entity.Path, t ObjectType) error
	InsertField(path entity.Path, timeline Timeline, field FieldName, batch FieldBatch) error
}

// CheckFieldValue reports ErrComponentType when v is not the Go type of
// field. Unknown fields accept any value.
func CheckFieldValue(field FieldName, v any) error {
	var ok bool
	switch field {
	case FieldOBB:
		_, ok = v.(Box3)
	case FieldColor:
		_, ok = v.([4]uint8)
	case FieldStrokeWidth:
		_, ok = v.(float32)
	case FieldLabel:
		_, ok = v.(string)
	case FieldClassID:
		_, ok = v.(int32)
	default:
		ok = true
	}
	if !ok {
		return fmt.Errorf("%w: field %s holds %T", ErrComponentType, field, v)
	}
	return nil
}
