package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sceneview/internal/viewer/entity"
)

var boxComponents = []ComponentName{
	ComponentVec3D, ComponentQuaternion, ComponentColor,
	ComponentRadius, ComponentLabel, ComponentClassID,
}

func TestQueryEntityWithPrimary_Join(t *testing.T) {
	s := NewMemComponentStore()
	path := entity.NewPath("boxes")
	ins := func(name ComponentName, b ComponentBatch) {
		t.Helper()
		require.NoError(t, s.InsertComponent(path, TimelineFrame, name, b))
	}

	ins(ComponentBox3D, ComponentBatch{Time: 1, Instances: []Instance{10, 20, 30},
		Values: []any{Box3D{1, 1, 1}, Box3D{2, 2, 2}, Box3D{3, 3, 3}}})
	ins(ComponentVec3D, ComponentBatch{Time: 1, Instances: []Instance{30, 10},
		Values: []any{Vec3D{3, 0, 0}, Vec3D{1, 0, 0}}})
	ins(ComponentLabel, ComponentBatch{Time: 1, Instances: []Instance{SplatInstance},
		Values: []any{Label("all")}})
	ins(ComponentClassID, ComponentBatch{Time: 0, Instances: []Instance{20, 99},
		Values: []any{ClassID(7), ClassID(8)}})

	view, err := QueryEntityWithPrimary(s, NewLatestAtQuery(TimelineFrame, 5), path, ComponentBox3D, boxComponents)
	require.NoError(t, err)
	require.Equal(t, 3, view.Len())
	assert.Equal(t, Instance(20), view.Instance(1))

	box, ok, err := ComponentAt[Box3D](view, ComponentBox3D, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Box3D{3, 3, 3}, box)

	pos, ok, err := ComponentAt[Vec3D](view, ComponentVec3D, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Vec3D{1, 0, 0}, pos)

	_, ok, err = ComponentAt[Vec3D](view, ComponentVec3D, 1)
	require.NoError(t, err)
	assert.False(t, ok, "instance 20 has no position")

	for row := 0; row < 3; row++ {
		lbl, ok, err := ComponentAt[Label](view, ComponentLabel, row)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, Label("all"), lbl)
	}

	cls, ok, err := ComponentAt[ClassID](view, ComponentClassID, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ClassID(7), cls)

	_, ok, err = ComponentAt[Radius](view, ComponentRadius, 0)
	require.NoError(t, err)
	assert.False(t, ok, "radius never logged")

	_, _, err = ComponentAt[Radius](view, ComponentClassID, 1)
	assert.True(t, errors.Is(err, ErrComponentType))
}

func TestQueryEntityWithPrimary_ImplicitKeys(t *testing.T) {
	s := NewMemComponentStore()
	path := entity.NewPath("boxes")
	require.NoError(t, s.InsertComponent(path, TimelineFrame, ComponentBox3D,
		ComponentBatch{Values: []any{Box3D{1, 1, 1}, Box3D{2, 2, 2}}}))
	require.NoError(t, s.InsertComponent(path, TimelineFrame, ComponentColor,
		ComponentBatch{Values: []any{NewColorRGBA(255, 0, 0, 255), NewColorRGBA(0, 255, 0, 255)}}))

	view, err := QueryEntityWithPrimary(s, NewLatestAtQuery(TimelineFrame, 0), path, ComponentBox3D, boxComponents)
	require.NoError(t, err)
	require.Equal(t, 2, view.Len())
	c, ok, err := ComponentAt[ColorRGBA](view, ComponentColor, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ColorRGBA(0x00ff00ff), c)
}

func TestQueryEntityWithPrimary_PrimaryNotFound(t *testing.T) {
	s := NewMemComponentStore()
	path := entity.NewPath("boxes")
	require.NoError(t, s.InsertComponent(path, TimelineFrame, ComponentBox3D,
		ComponentBatch{Time: 10, Values: []any{Box3D{1, 1, 1}}}))

	_, err := QueryEntityWithPrimary(s, NewLatestAtQuery(TimelineFrame, 9), path, ComponentBox3D, boxComponents)
	assert.True(t, errors.Is(err, ErrPrimaryNotFound), "before first write: %v", err)

	_, err = QueryEntityWithPrimary(s, NewLatestAtQuery(TimelineFrame, 10), entity.NewPath("other"), ComponentBox3D, nil)
	assert.True(t, errors.Is(err, ErrPrimaryNotFound), "unknown path: %v", err)
}

type faultyStore struct {
	fail ComponentName
	err  error
	*MemComponentStore
}

func (f *faultyStore) LatestAt(path entity.Path, q LatestAtQuery, name ComponentName) (*ComponentBatch, error) {
	if name == f.fail {
		return nil, f.err
	}
	return f.MemComponentStore.LatestAt(path, q, name)
}

func TestQueryEntityWithPrimary_Failures(t *testing.T) {
	path := entity.NewPath("boxes")
	boom := errors.New("disk on fire")

	f := &faultyStore{fail: ComponentColor, err: boom, MemComponentStore: NewMemComponentStore()}
	require.NoError(t, f.InsertComponent(path, TimelineFrame, ComponentBox3D, ComponentBatch{Values: []any{Box3D{1, 1, 1}}}))

	_, err := QueryEntityWithPrimary(f, NewLatestAtQuery(TimelineFrame, 0), path, ComponentBox3D, boxComponents)
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, ErrPrimaryNotFound))

	bad := &badBatchStore{batch: &ComponentBatch{Values: []any{"not a box"}}}
	_, err = QueryEntityWithPrimary(bad, NewLatestAtQuery(TimelineFrame, 0), path, ComponentBox3D, nil)
	assert.True(t, errors.Is(err, ErrComponentType), "%v", err)

	bad = &badBatchStore{batch: &ComponentBatch{Instances: []Instance{1}, Values: []any{Box3D{}, Box3D{}}}}
	_, err = QueryEntityWithPrimary(bad, NewLatestAtQuery(TimelineFrame, 0), path, ComponentBox3D, nil)
	assert.True(t, errors.Is(err, ErrMalformedComponent), "%v", err)
}

type badBatchStore struct {
	batch *ComponentBatch
}

func (b *badBatchStore) LatestAt(entity.Path, LatestAtQuery, ComponentName) (*ComponentBatch, error) {
	return b.batch, nil
}

func TestMemComponentStore_RejectsWrongType(t *testing.T) {
	s := NewMemComponentStore()
	err := s.InsertComponent(entity.NewPath("a"), TimelineFrame, ComponentRadius,
		ComponentBatch{Values: []any{float32(1)}})
	assert.True(t, errors.Is(err, ErrComponentType))

	err = s.InsertComponent(entity.NewPath("a"), TimelineFrame, "mesh", ComponentBatch{Values: []any{1}})
	assert.True(t, errors.Is(err, ErrUnknownComponent))
	assert.Empty(t, s.Paths())
}

func TestComponentCodec(t *testing.T) {
	tests := []struct {
		name ComponentName
		val  any
	}{
		{ComponentBox3D, Box3D{0.5, 1, 2}},
		{ComponentQuaternion, Quaternion{0, 0, 0.7071, 0.7071}},
		{ComponentColor, NewColorRGBA(1, 2, 3, 4)},
		{ComponentLabel, Label("car")},
		{ComponentClassID, ClassID(65535)},
	}
	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			data, err := EncodeComponent(tt.name, tt.val)
			require.NoError(t, err)
			got, err := DecodeComponent(tt.name, data)
			require.NoError(t, err)
			assert.Equal(t, tt.val, got)
		})
	}

	_, err := DecodeComponent(ComponentClassID, []byte(`-1`))
	assert.True(t, errors.Is(err, ErrMalformedComponent))
	_, err = DecodeComponent(ComponentBox3D, []byte(`{"x":1}`))
	assert.True(t, errors.Is(err, ErrMalformedComponent))
	_, err = EncodeComponent(ComponentRadius, Label("x"))
	assert.True(t, errors.Is(err, ErrComponentType))
}
