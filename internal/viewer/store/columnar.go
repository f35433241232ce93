package store

import (
	"fmt"
	"math"

	"github.com/banshee-data/sceneview/internal/viewer/entity"
)

// Instance is the key joining component columns of one entity.
type Instance uint64

// SplatInstance keys a single value that applies to every instance.
const SplatInstance Instance = math.MaxUint64

// Hash returns the instance hash used for identity.
func (i Instance) Hash() entity.IndexHash {
	return entity.IndexHashFromUint(uint64(i))
}

// ComponentBatch is everything logged to one component at one time.
// Instances is either nil (implicit keys 0..n-1) or parallel to Values.
type ComponentBatch struct {
	Time      TimeInt
	Instances []Instance
	Values    []any
}

// Validate checks the batch shape and value types against name.
func (b *ComponentBatch) Validate(name ComponentName) error {
	if b.Instances != nil && len(b.Instances) != len(b.Values) {
		return fmt.Errorf("%w: %s has %d instance keys for %d values",
			ErrMalformedComponent, name, len(b.Instances), len(b.Values))
	}
	for _, v := range b.Values {
		if err := CheckComponentValue(name, v); err != nil {
			return err
		}
	}
	return nil
}

// InstanceAt returns the key of row i.
func (b *ComponentBatch) InstanceAt(i int) Instance {
	if b.Instances == nil {
		return Instance(i)
	}
	return b.Instances[i]
}

func (b *ComponentBatch) isSplat() bool {
	return len(b.Values) == 1 && len(b.Instances) == 1 && b.Instances[0] == SplatInstance
}

// ComponentStore answers latest-at queries per component.
type ComponentStore interface {
	// LatestAt returns the latest batch at or before the query time, or nil
	// when the component has never been logged for path by then.
	LatestAt(path entity.Path, q LatestAtQuery, name ComponentName) (*ComponentBatch, error)
}

// ColumnarWriter writes component batches.
type ColumnarWriter interface {
	InsertComponent(path entity.Path, timeline Timeline, name ComponentName, batch ComponentBatch) error
}

// EntityView is the result of a primary-joined latest-at query: one row
// per primary instance, with auxiliary components aligned to those rows.
type EntityView struct {
	Path    entity.Path
	Primary ComponentName

	instances []Instance
	primary   []any
	columns   map[ComponentName][]any
}

// Len returns the number of rows.
func (v *EntityView) Len() int {
	return len(v.primary)
}

// Instance returns the key of row.
func (v *EntityView) Instance(row int) Instance {
	return v.instances[row]
}

// QueryEntityWithPrimary fetches primary and components at q and joins
// them by instance key. It returns ErrPrimaryNotFound when primary has
// no batch at q; any other error is a query failure.
func QueryEntityWithPrimary(s ComponentStore, q LatestAtQuery, path entity.Path, primary ComponentName, components []ComponentName) (*EntityView, error) {
	pb, err := s.LatestAt(path, q, primary)
	if err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", path, primary, err)
	}
	if pb == nil {
		return nil, fmt.Errorf("%w: %s.%s at %s", ErrPrimaryNotFound, path, primary, q)
	}
	if err := pb.Validate(primary); err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", path, primary, err)
	}

	view := &EntityView{
		Path:      path,
		Primary:   primary,
		instances: make([]Instance, len(pb.Values)),
		primary:   pb.Values,
		columns:   make(map[ComponentName][]any, len(components)),
	}
	rowOf := make(map[Instance]int, len(pb.Values))
	for i := range pb.Values {
		inst := pb.InstanceAt(i)
		view.instances[i] = inst
		rowOf[inst] = i
	}

	for _, name := range components {
		if name == primary {
			continue
		}
		cb, err := s.LatestAt(path, q, name)
		if err != nil {
			return nil, fmt.Errorf("query %s.%s: %w", path, name, err)
		}
		if cb == nil {
			continue
		}
		if err := cb.Validate(name); err != nil {
			return nil, fmt.Errorf("query %s.%s: %w", path, name, err)
		}
		col := make([]any, len(view.primary))
		if cb.isSplat() {
			for i := range col {
				col[i] = cb.Values[0]
			}
		} else {
			for i, val := range cb.Values {
				if row, ok := rowOf[cb.InstanceAt(i)]; ok {
					col[row] = val
				}
			}
		}
		view.columns[name] = col
	}
	return view, nil
}

// ComponentAt returns the value of name in row. ok is false when the
// component has no value for the row.
func ComponentAt[T any](v *EntityView, name ComponentName, row int) (val T, ok bool, err error) {
	var raw any
	if name == v.Primary {
		raw = v.primary[row]
	} else {
		col, found := v.columns[name]
		if !found {
			return val, false, nil
		}
		raw = col[row]
	}
	if raw == nil {
		return val, false, nil
	}
	val, ok = raw.(T)
	if !ok {
		return val, false, fmt.Errorf("%w: %s.%s row %d holds %T", ErrComponentType, v.Path, name, row, raw)
	}
	return val, true, nil
}
