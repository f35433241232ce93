package scene

import (
	"fmt"
	"sync"
	"testing"

	"github.com/banshee-data/sceneview/internal/viewer"
	"github.com/banshee-data/sceneview/internal/viewer/entity"
	"github.com/banshee-data/sceneview/internal/viewer/store"
	"github.com/banshee-data/sceneview/internal/viewer/transform"
)

// testBox is one box written identically to both store kinds.
type testBox struct {
	index   uint64
	half    [3]float32
	rot     *[4]float32
	trans   *[3]float32
	color   *[4]uint8
	radius  *float32
	label   *string
	classID *uint16
}

func ptr[T any](v T) *T { return &v }

var identityXYZW = [4]float32{0, 0, 0, 1}

func writeLegacy(t *testing.T, s *store.MemObjectStores, path entity.Path, tm store.TimeInt, boxes []testBox) {
	t.Helper()
	if err := s.SetObjectType(path, store.ObjectTypeBox3D); err != nil {
		t.Fatalf("SetObjectType: %v", err)
	}
	fields := map[store.FieldName][]store.IndexedValue{}
	for _, b := range boxes {
		idx := store.IntIndex(b.index)
		box := store.Box3{HalfSize: b.half, Rotation: identityXYZW}
		if b.rot != nil {
			box.Rotation = *b.rot
		}
		if b.trans != nil {
			box.Translation = *b.trans
		}
		fields[store.FieldOBB] = append(fields[store.FieldOBB], store.IndexedValue{Index: &idx, Value: box})
		if b.color != nil {
			fields[store.FieldColor] = append(fields[store.FieldColor], store.IndexedValue{Index: &idx, Value: *b.color})
		}
		if b.radius != nil {
			fields[store.FieldStrokeWidth] = append(fields[store.FieldStrokeWidth], store.IndexedValue{Index: &idx, Value: *b.radius * 2})
		}
		if b.label != nil {
			fields[store.FieldLabel] = append(fields[store.FieldLabel], store.IndexedValue{Index: &idx, Value: *b.label})
		}
		if b.classID != nil {
			fields[store.FieldClassID] = append(fields[store.FieldClassID], store.IndexedValue{Index: &idx, Value: int32(*b.classID)})
		}
	}
	for field, values := range fields {
		if err := s.InsertField(path, store.TimelineFrame, field, store.FieldBatch{Time: tm, Values: values}); err != nil {
			t.Fatalf("InsertField %s: %v", field, err)
		}
	}
}

func writeColumnar(t *testing.T, s *store.MemComponentStore, path entity.Path, tm store.TimeInt, boxes []testBox) {
	t.Helper()
	batches := map[store.ComponentName]*store.ComponentBatch{}
	add := func(name store.ComponentName, inst uint64, v any) {
		b, ok := batches[name]
		if !ok {
			b = &store.ComponentBatch{Time: tm, Instances: []store.Instance{}}
			batches[name] = b
		}
		b.Instances = append(b.Instances, store.Instance(inst))
		b.Values = append(b.Values, v)
	}
	for _, b := range boxes {
		add(store.ComponentBox3D, b.index, store.Box3D(b.half))
		if b.rot != nil {
			add(store.ComponentQuaternion, b.index, store.Quaternion(*b.rot))
		}
		if b.trans != nil {
			add(store.ComponentVec3D, b.index, store.Vec3D(*b.trans))
		}
		if b.color != nil {
			c := *b.color
			add(store.ComponentColor, b.index, store.NewColorRGBA(c[0], c[1], c[2], c[3]))
		}
		if b.radius != nil {
			add(store.ComponentRadius, b.index, store.Radius(*b.radius))
		}
		if b.label != nil {
			add(store.ComponentLabel, b.index, store.Label(*b.label))
		}
		if b.classID != nil {
			add(store.ComponentClassID, b.index, store.ClassID(*b.classID))
		}
	}
	for name, b := range batches {
		if err := s.InsertComponent(path, store.TimelineFrame, name, *b); err != nil {
			t.Fatalf("InsertComponent %s: %v", name, err)
		}
	}
}

// recordingSink captures once-logged messages.
type recordingSink struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingSink) logf(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, fmt.Sprintf(format, args...))
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func newRecordingReporter() (*LogFailureReporter, *recordingSink) {
	sink := &recordingSink{}
	return NewLogFailureReporter(viewer.NewOnceLogger(sink.logf)), sink
}

// faultyComponentStore fails every query for one path.
type faultyComponentStore struct {
	store.ComponentStore
	failPath entity.Path
	err      error
}

func (f *faultyComponentStore) LatestAt(path entity.Path, q store.LatestAtQuery, name store.ComponentName) (*store.ComponentBatch, error) {
	if path == f.failPath {
		return nil, f.err
	}
	return f.ComponentStore.LatestAt(path, q, name)
}

func rootTransforms() *transform.Cache {
	return transform.NewCache(entity.Root)
}

func frameQuery(at store.TimeInt, paths ...entity.Path) *SceneQuery {
	return &SceneQuery{
		EntityPaths: paths,
		LatestAt:    store.NewLatestAtQuery(store.TimelineFrame, at),
	}
}
