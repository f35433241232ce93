package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/banshee-data/sceneview/internal/viewer/entity"
)

// MemObjectStores is an in-memory ObjectStores and LegacyWriter.
type MemObjectStores struct {
	mu      sync.RWMutex
	objects map[entity.Path]*memObject
}

type fieldKey struct {
	timeline Timeline
	field    FieldName
}

type memObject struct {
	mu     *sync.RWMutex
	typ    ObjectType
	fields map[fieldKey][]FieldBatch
}

// NewMemObjectStores returns an empty store.
func NewMemObjectStores() *MemObjectStores {
	return &MemObjectStores{objects: make(map[entity.Path]*memObject)}
}

// SetObjectType implements LegacyWriter.
func (s *MemObjectStores) SetObjectType(path entity.Path, t ObjectType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj := s.objectLocked(path)
	if obj.typ != ObjectTypeUnknown && obj.typ != t {
		return fmt.Errorf("object %s already has type %s, cannot change to %s", path, obj.typ, t)
	}
	obj.typ = t
	return nil
}

// InsertField implements LegacyWriter. Batches at equal times keep
// insertion order, so the last one written wins a latest-at query.
func (s *MemObjectStores) InsertField(path entity.Path, timeline Timeline, field FieldName, batch FieldBatch) error {
	for _, v := range batch.Values {
		if err := CheckFieldValue(field, v.Value); err != nil {
			return fmt.Errorf("insert %s.%s: %w", path, field, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	obj := s.objectLocked(path)
	key := fieldKey{timeline: timeline, field: field}
	series := obj.fields[key]
	i := sort.Search(len(series), func(i int) bool { return series[i].Time > batch.Time })
	series = append(series, FieldBatch{})
	copy(series[i+1:], series[i:])
	series[i] = batch
	obj.fields[key] = series
	return nil
}

func (s *MemObjectStores) objectLocked(path entity.Path) *memObject {
	obj, ok := s.objects[path]
	if !ok {
		obj = &memObject{mu: &s.mu, fields: make(map[fieldKey][]FieldBatch)}
		s.objects[path] = obj
	}
	return obj
}

// ObjectStore implements ObjectStores.
func (s *MemObjectStores) ObjectStore(path entity.Path) (ObjectStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, path)
	}
	return obj, nil
}

// Paths returns every path with an object, sorted.
func (s *MemObjectStores) Paths() []entity.Path {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]entity.Path, 0, len(s.objects))
	for p := range s.objects {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	return paths
}

func (o *memObject) Type() ObjectType {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.typ
}

func (o *memObject) LatestAt(q LatestAtQuery, field FieldName) (*FieldBatch, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	series := o.fields[fieldKey{timeline: q.Timeline, field: field}]
	i := sort.Search(len(series), func(i int) bool { return series[i].Time > q.At })
	if i == 0 {
		return nil, nil
	}
	b := series[i-1]
	return &b, nil
}
