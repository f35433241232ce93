package scene

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/sceneview/internal/viewer/entity"
	"github.com/banshee-data/sceneview/internal/viewer/geom"
)

// LineSegment is one renderable line.
type LineSegment struct {
	Start, End r3.Vec
	Radius     Size
	Color      color.NRGBA
	Identity   entity.InstanceIDHash
}

// LineBatch groups the segments of one entity. Segments are already in
// world space; WorldFromObj records the entity transform for reference.
type LineBatch struct {
	Name         string
	WorldFromObj geom.Affine
	Segments     []LineSegment
}

// Label3D is a text label anchored at a world-space point.
type Label3D struct {
	Text   string
	Origin r3.Vec
}

// SceneSpatial accumulates the 3D primitives of one frame. It is not safe
// for concurrent use; parallel extraction fills one per entity and merges.
type SceneSpatial struct {
	LineBatches        []*LineBatch
	Labels3D           []Label3D
	NumLogged3DObjects int
}

// NewSceneSpatial returns an empty accumulator.
func NewSceneSpatial() *SceneSpatial {
	return &SceneSpatial{}
}

// Reset empties the accumulator for the next frame.
func (s *SceneSpatial) Reset() {
	s.LineBatches = s.LineBatches[:0]
	s.Labels3D = s.Labels3D[:0]
	s.NumLogged3DObjects = 0
}

// AddLineBatch opens a new batch.
func (s *SceneSpatial) AddLineBatch(name string, worldFromObj geom.Affine) *LineBatchBuilder {
	b := &LineBatch{Name: name, WorldFromObj: worldFromObj}
	s.LineBatches = append(s.LineBatches, b)
	return &LineBatchBuilder{batch: b}
}

// AddLabel appends a label.
func (s *SceneSpatial) AddLabel(text string, origin r3.Vec) {
	s.Labels3D = append(s.Labels3D, Label3D{Text: text, Origin: origin})
}

// IncObjectCount counts one more logged object.
func (s *SceneSpatial) IncObjectCount() {
	s.NumLogged3DObjects++
}

// NumSegments returns the number of segments over all batches.
func (s *SceneSpatial) NumSegments() int {
	n := 0
	for _, b := range s.LineBatches {
		n += len(b.Segments)
	}
	return n
}

// Merge appends everything in o.
func (s *SceneSpatial) Merge(o *SceneSpatial) {
	s.LineBatches = append(s.LineBatches, o.LineBatches...)
	s.Labels3D = append(s.Labels3D, o.Labels3D...)
	s.NumLogged3DObjects += o.NumLogged3DObjects
}

// LineBatchBuilder appends segments to one batch.
type LineBatchBuilder struct {
	batch *LineBatch
}

// Batch returns the batch being built.
func (b *LineBatchBuilder) Batch() *LineBatch {
	return b.batch
}

// AddSegments appends segs with automatic radius, opaque white colour and
// no identity. The returned builder styles just these segments.
func (b *LineBatchBuilder) AddSegments(segs ...geom.Segment) *SegmentsBuilder {
	start := len(b.batch.Segments)
	for _, sg := range segs {
		b.batch.Segments = append(b.batch.Segments, LineSegment{
			Start:  sg.Start,
			End:    sg.End,
			Radius: SizeAuto,
			Color:  color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		})
	}
	return &SegmentsBuilder{segs: b.batch.Segments[start:]}
}

// SegmentsBuilder styles a run of segments.
type SegmentsBuilder struct {
	segs []LineSegment
}

// Radius sets the radius.
func (sb *SegmentsBuilder) Radius(r Size) *SegmentsBuilder {
	for i := range sb.segs {
		sb.segs[i].Radius = r
	}
	return sb
}

// Color sets the colour.
func (sb *SegmentsBuilder) Color(c color.NRGBA) *SegmentsBuilder {
	for i := range sb.segs {
		sb.segs[i].Color = c
	}
	return sb
}

// Identity sets the picking identity.
func (sb *SegmentsBuilder) Identity(id entity.InstanceIDHash) *SegmentsBuilder {
	for i := range sb.segs {
		sb.segs[i].Identity = id
	}
	return sb
}
