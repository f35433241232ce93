package badger

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sceneview/internal/viewer/entity"
	"github.com/banshee-data/sceneview/internal/viewer/store"
)

func openInMemory(t *testing.T) *ObjectStores {
	t.Helper()
	s, err := Open(InMemoryConfig())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestObjectStores_LatestAt(t *testing.T) {
	s := openInMemory(t)
	path := entity.NewPath("world", "box")
	require.NoError(t, s.SetObjectType(path, store.ObjectTypeBox3D))

	for _, tm := range []store.TimeInt{-3, 7, 0} {
		box := store.Box3{HalfSize: [3]float32{float32(tm), 1, 1}, Rotation: [4]float32{0, 0, 0, 1}}
		require.NoError(t, s.InsertField(path, store.TimelineFrame, store.FieldOBB, store.NewMonoBatch(tm, box)))
	}

	obj, err := s.ObjectStore(path)
	require.NoError(t, err)
	assert.Equal(t, store.ObjectTypeBox3D, obj.Type())

	tests := []struct {
		at   store.TimeInt
		want float32
		none bool
	}{
		{at: -10, none: true},
		{at: -3, want: -3},
		{at: -1, want: -3},
		{at: 0, want: 0},
		{at: 6, want: 0},
		{at: 7, want: 7},
		{at: 1 << 40, want: 7},
	}
	for _, tt := range tests {
		b, err := obj.LatestAt(store.NewLatestAtQuery(store.TimelineFrame, tt.at), store.FieldOBB)
		require.NoError(t, err)
		if tt.none {
			assert.Nil(t, b, "at %d", tt.at)
			continue
		}
		require.NotNil(t, b, "at %d", tt.at)
		assert.Equal(t, tt.want, b.Values[0].Value.(store.Box3).HalfSize[0], "at %d", tt.at)
	}

	b, err := obj.LatestAt(store.NewLatestAtQuery(store.TimelineFrame, 100), store.FieldColor)
	require.NoError(t, err)
	assert.Nil(t, b, "field never logged")
}

func TestObjectStores_SameTimeLastWriteWins(t *testing.T) {
	s := openInMemory(t)
	path := entity.NewPath("a")
	require.NoError(t, s.InsertField(path, store.TimelineFrame, store.FieldStrokeWidth, store.NewMonoBatch(2, float32(1))))
	require.NoError(t, s.InsertField(path, store.TimelineFrame, store.FieldStrokeWidth, store.NewMonoBatch(2, float32(3))))

	obj, err := s.ObjectStore(path)
	require.NoError(t, err)
	assert.Equal(t, store.ObjectTypeUnknown, obj.Type())
	b, err := obj.LatestAt(store.NewLatestAtQuery(store.TimelineFrame, 2), store.FieldStrokeWidth)
	require.NoError(t, err)
	assert.Equal(t, float32(3), b.Values[0].Value)
}

func TestObjectStores_MatchesMemStore(t *testing.T) {
	s := openInMemory(t)
	mem := store.NewMemObjectStores()
	path := entity.NewPath("boxes")

	i0, i1, left := store.IntIndex(0), store.IntIndex(1), store.StringIndex("left")
	writes := []struct {
		field store.FieldName
		batch store.FieldBatch
	}{
		{store.FieldOBB, store.FieldBatch{Time: 1, Values: []store.IndexedValue{
			{Index: &i0, Value: store.Box3{HalfSize: [3]float32{1, 2, 3}, Rotation: [4]float32{0, 0, 0, 1}}},
			{Index: &left, Value: store.Box3{HalfSize: [3]float32{0, 0, 0}, Translation: [3]float32{-1, 0, 0}}},
		}}},
		{store.FieldColor, store.FieldBatch{Time: 1, Values: []store.IndexedValue{{Index: &i1, Value: [4]uint8{255, 0, 0, 255}}}}},
		{store.FieldLabel, store.NewMonoBatch(0, "")},
		{store.FieldClassID, store.NewMonoBatch(1, int32(0))},
	}
	for _, w := range writes {
		require.NoError(t, s.InsertField(path, store.TimelineLogTime, w.field, w.batch))
		require.NoError(t, mem.InsertField(path, store.TimelineLogTime, w.field, w.batch))
	}

	got, err := s.ObjectStore(path)
	require.NoError(t, err)
	want, err := mem.ObjectStore(path)
	require.NoError(t, err)

	q := store.NewLatestAtQuery(store.TimelineLogTime, 1)
	for _, field := range []store.FieldName{store.FieldOBB, store.FieldColor, store.FieldLabel, store.FieldClassID, store.FieldStrokeWidth} {
		wb, err := want.LatestAt(q, field)
		require.NoError(t, err)
		gb, err := got.LatestAt(q, field)
		require.NoError(t, err)
		if diff := cmp.Diff(wb, gb, cmp.Comparer(func(a, b store.Index) bool { return a == b })); diff != "" {
			t.Errorf("%s mismatch (-mem +badger):\n%s", field, diff)
		}
	}
}

func TestObjectStores_Errors(t *testing.T) {
	s := openInMemory(t)

	_, err := s.ObjectStore(entity.NewPath("nothing"))
	assert.True(t, errors.Is(err, store.ErrObjectNotFound))

	err = s.InsertField(entity.NewPath("a"), store.TimelineFrame, store.FieldClassID, store.NewMonoBatch(0, 7))
	assert.True(t, errors.Is(err, store.ErrComponentType), "int is not int32: %v", err)

	path := entity.NewPath("b")
	require.NoError(t, s.SetObjectType(path, store.ObjectTypeBox3D))
	assert.Error(t, s.SetObjectType(path, store.ObjectTypePoint3D))

	_, err = Open(Config{})
	assert.Error(t, err, "persistent config without path")
}

func TestDecodeBatch_Malformed(t *testing.T) {
	_, err := decodeBatch([]byte("not gob"))
	assert.True(t, errors.Is(err, store.ErrMalformedComponent))
}

func TestObjectStores_PersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "legacy")
	path := entity.NewPath("world", "car")

	s, err := Open(Config{Path: dir})
	require.NoError(t, err)
	require.NoError(t, s.SetObjectType(path, store.ObjectTypeBox3D))
	require.NoError(t, s.InsertField(path, store.TimelineFrame, store.FieldLabel, store.NewMonoBatch(4, "car")))
	require.NoError(t, s.Close())

	s, err = Open(Config{Path: dir})
	require.NoError(t, err)
	defer s.Close()

	paths, err := s.Paths()
	require.NoError(t, err)
	assert.Equal(t, []entity.Path{path}, paths)

	obj, err := s.ObjectStore(path)
	require.NoError(t, err)
	b, err := obj.LatestAt(store.NewLatestAtQuery(store.TimelineFrame, 10), store.FieldLabel)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "car", b.Values[0].Value)

	require.NoError(t, s.InsertField(path, store.TimelineFrame, store.FieldLabel, store.NewMonoBatch(4, "truck")))
	b, err = obj.LatestAt(store.NewLatestAtQuery(store.TimelineFrame, 10), store.FieldLabel)
	require.NoError(t, err)
	assert.Equal(t, "truck", b.Values[0].Value, "sequence must continue after reopen")
}
