package scene

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/sceneview/internal/viewer/entity"
	"github.com/banshee-data/sceneview/internal/viewer/geom"
)

func TestLineBatchBuilder_StylesOnlyNewSegments(t *testing.T) {
	s := NewSceneSpatial()
	b := s.AddLineBatch("a", geom.Identity)

	first := geom.Segment{End: r3.Vec{X: 1}}
	second := geom.Segment{End: r3.Vec{Y: 1}}
	id := entity.NewInstanceIDHash(entity.NewPath("a"), entity.NoIndex)
	green := color.NRGBA{G: 255, A: 255}

	b.AddSegments(first).Radius(NewSceneSize(1)).Color(green).Identity(id)
	b.AddSegments(second)

	segs := b.Batch().Segments
	require.Len(t, segs, 2)
	assert.Equal(t, Size(1), segs[0].Radius)
	assert.Equal(t, green, segs[0].Color)
	assert.True(t, segs[0].Identity.Equal(id))

	assert.Equal(t, SizeAuto, segs[1].Radius)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, segs[1].Color)
	assert.False(t, segs[1].Identity.IsSome())
}

func TestSceneSpatial_MergeAndReset(t *testing.T) {
	a := NewSceneSpatial()
	a.AddLineBatch("a", geom.Identity).AddSegments(geom.Segment{}, geom.Segment{})
	a.AddLabel("a", r3.Vec{})
	a.IncObjectCount()

	b := NewSceneSpatial()
	b.AddLineBatch("b", geom.Identity).AddSegments(geom.Segment{})
	b.IncObjectCount()

	a.Merge(b)
	assert.Len(t, a.LineBatches, 2)
	assert.Equal(t, "b", a.LineBatches[1].Name)
	assert.Equal(t, 3, a.NumSegments())
	assert.Len(t, a.Labels3D, 1)
	assert.Equal(t, 2, a.NumLogged3DObjects)

	a.Reset()
	assert.Empty(t, a.LineBatches)
	assert.Empty(t, a.Labels3D)
	assert.Zero(t, a.NumSegments())
	assert.Zero(t, a.NumLogged3DObjects)
}
