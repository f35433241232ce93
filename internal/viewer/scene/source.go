package scene

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/banshee-data/sceneview/internal/viewer/annotation"
	"github.com/banshee-data/sceneview/internal/viewer/entity"
	"github.com/banshee-data/sceneview/internal/viewer/store"
)

// BoxRows is the row set of one entity at one time. All yields each row
// once, in store order; a non-nil error drops only that row.
type BoxRows struct {
	Len int
	All iter.Seq2[BoxInstance, error]
}

// BoxSource reads the box rows of an entity. Rows returns an error
// wrapping store.ErrPrimaryNotFound when there is nothing to draw; any
// other error is a query failure.
type BoxSource interface {
	Rows(q store.LatestAtQuery, path entity.Path) (BoxRows, error)
}

// LegacySource reads Box3D objects from a per-object store.
type LegacySource struct {
	Stores store.ObjectStores
}

var legacyAuxFields = []store.FieldName{
	store.FieldColor, store.FieldStrokeWidth, store.FieldLabel, store.FieldClassID,
}

// legacyField is one auxiliary field: either a single value for all
// instances or a lookup by index.
type legacyField struct {
	mono    any
	hasMono bool
	byIndex map[store.Index]any
}

func (f *legacyField) lookup(idx *store.Index) (any, bool) {
	if f == nil {
		return nil, false
	}
	if f.hasMono {
		return f.mono, true
	}
	if idx == nil {
		return nil, false
	}
	v, ok := f.byIndex[*idx]
	return v, ok
}

// Rows implements BoxSource.
func (s LegacySource) Rows(q store.LatestAtQuery, path entity.Path) (BoxRows, error) {
	obj, err := s.Stores.ObjectStore(path)
	if errors.Is(err, store.ErrObjectNotFound) {
		return BoxRows{}, fmt.Errorf("%w: no object at %s", store.ErrPrimaryNotFound, path)
	}
	if err != nil {
		return BoxRows{}, err
	}
	if obj.Type() != store.ObjectTypeBox3D {
		return BoxRows{}, fmt.Errorf("%w: %s is a %s object", store.ErrPrimaryNotFound, path, obj.Type())
	}

	obb, err := obj.LatestAt(q, store.FieldOBB)
	if err != nil {
		return BoxRows{}, err
	}
	if obb == nil {
		return BoxRows{}, fmt.Errorf("%w: %s.%s at %s", store.ErrPrimaryNotFound, path, store.FieldOBB, q)
	}
	if err := checkFieldBatch(store.FieldOBB, obb); err != nil {
		return BoxRows{}, fmt.Errorf("%s: %w", path, err)
	}

	fields := make(map[store.FieldName]*legacyField, len(legacyAuxFields))
	for _, name := range legacyAuxFields {
		b, err := obj.LatestAt(q, name)
		if err != nil {
			return BoxRows{}, err
		}
		if b == nil {
			continue
		}
		if err := checkFieldBatch(name, b); err != nil {
			return BoxRows{}, fmt.Errorf("%s: %w", path, err)
		}
		f := &legacyField{byIndex: b.ByIndex()}
		if b.IsMono() {
			f.mono, f.hasMono = b.Values[0].Value, true
		}
		fields[name] = f
	}

	return BoxRows{
		Len: len(obb.Values),
		All: func(yield func(BoxInstance, error) bool) {
			for _, v := range obb.Values {
				if !yield(legacyRow(v, fields)) {
					return
				}
			}
		},
	}, nil
}

func checkFieldBatch(name store.FieldName, b *store.FieldBatch) error {
	for _, v := range b.Values {
		if err := store.CheckFieldValue(name, v.Value); err != nil {
			return err
		}
	}
	return nil
}

func legacyRow(v store.IndexedValue, fields map[store.FieldName]*legacyField) (BoxInstance, error) {
	box := v.Value.(store.Box3)
	inst := BoxInstance{
		HalfExtent:  box.HalfSize,
		Rotation:    &box.Rotation,
		Translation: &box.Translation,
	}
	if v.Index != nil {
		inst.Index = v.Index.Hash()
	}
	if c, ok := fields[store.FieldColor].lookup(v.Index); ok {
		nrgba := annotation.FromArray(c.([4]uint8))
		inst.Color = &nrgba
	}
	if w, ok := fields[store.FieldStrokeWidth].lookup(v.Index); ok {
		width := w.(float32)
		inst.StrokeWidth = &width
	}
	if l, ok := fields[store.FieldLabel].lookup(v.Index); ok {
		label := l.(string)
		inst.Label = &label
	}
	if c, ok := fields[store.FieldClassID].lookup(v.Index); ok {
		raw := c.(int32)
		// Class ids are uint16; a value outside that range is a malformed
		// row, not a wrapped id, so the instance is dropped.
		if raw < 0 || raw > math.MaxUint16 {
			return BoxInstance{}, fmt.Errorf("class id %d out of range", raw)
		}
		id := annotation.ClassID(raw)
		inst.ClassID = &id
	}
	return inst, nil
}

// ColumnarSource reads box3d entities from a component store.
type ColumnarSource struct {
	Store store.ComponentStore
}

// BoxComponents are the auxiliary components joined to store.ComponentBox3D.
var BoxComponents = []store.ComponentName{
	store.ComponentVec3D,
	store.ComponentQuaternion,
	store.ComponentColor,
	store.ComponentRadius,
	store.ComponentLabel,
	store.ComponentClassID,
}

// Rows implements BoxSource.
func (s ColumnarSource) Rows(q store.LatestAtQuery, path entity.Path) (BoxRows, error) {
	view, err := store.QueryEntityWithPrimary(s.Store, q, path, store.ComponentBox3D, BoxComponents)
	if err != nil {
		return BoxRows{}, err
	}
	return BoxRows{
		Len: view.Len(),
		All: func(yield func(BoxInstance, error) bool) {
			for row := 0; row < view.Len(); row++ {
				if !yield(columnarRow(view, row)) {
					return
				}
			}
		},
	}, nil
}

func columnarRow(view *store.EntityView, row int) (BoxInstance, error) {
	half, _, err := store.ComponentAt[store.Box3D](view, store.ComponentBox3D, row)
	if err != nil {
		return BoxInstance{}, err
	}
	inst := BoxInstance{
		HalfExtent: half,
		Index:      view.Instance(row).Hash(),
	}

	if pos, ok, err := store.ComponentAt[store.Vec3D](view, store.ComponentVec3D, row); err != nil {
		return BoxInstance{}, err
	} else if ok {
		t := [3]float32(pos)
		inst.Translation = &t
	}
	if rot, ok, err := store.ComponentAt[store.Quaternion](view, store.ComponentQuaternion, row); err != nil {
		return BoxInstance{}, err
	} else if ok {
		r := [4]float32(rot)
		inst.Rotation = &r
	}
	if c, ok, err := store.ComponentAt[store.ColorRGBA](view, store.ComponentColor, row); err != nil {
		return BoxInstance{}, err
	} else if ok {
		nrgba := annotation.FromPacked(uint32(c))
		inst.Color = &nrgba
	}
	if r, ok, err := store.ComponentAt[store.Radius](view, store.ComponentRadius, row); err != nil {
		return BoxInstance{}, err
	} else if ok {
		radius := float32(r)
		inst.Radius = &radius
	}
	if l, ok, err := store.ComponentAt[store.Label](view, store.ComponentLabel, row); err != nil {
		return BoxInstance{}, err
	} else if ok {
		label := string(l)
		inst.Label = &label
	}
	if c, ok, err := store.ComponentAt[store.ClassID](view, store.ComponentClassID, row); err != nil {
		return BoxInstance{}, err
	} else if ok {
		id := annotation.ClassID(c)
		inst.ClassID = &id
	}
	return inst, nil
}
