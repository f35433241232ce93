package geom

import "gonum.org/v1/gonum/spatial/r3"

// UnitCube holds the corners of the unit cube centred on the origin. Bit 2
// of the index selects +x, bit 1 selects +y and bit 0 selects +z.
var UnitCube = [8]r3.Vec{
	{X: -0.5, Y: -0.5, Z: -0.5},
	{X: -0.5, Y: -0.5, Z: 0.5},
	{X: -0.5, Y: 0.5, Z: -0.5},
	{X: -0.5, Y: 0.5, Z: 0.5},
	{X: 0.5, Y: -0.5, Z: -0.5},
	{X: 0.5, Y: -0.5, Z: 0.5},
	{X: 0.5, Y: 0.5, Z: -0.5},
	{X: 0.5, Y: 0.5, Z: 0.5},
}

// BoxEdges lists the corner index pairs of the twelve cube edges in
// emission order: four on the x=-0.5 face, four on the x=+0.5 face, then
// the four edges joining them.
var BoxEdges = [12][2]int{
	{0b000, 0b001},
	{0b000, 0b010},
	{0b011, 0b001},
	{0b011, 0b010},

	{0b100, 0b101},
	{0b100, 0b110},
	{0b111, 0b101},
	{0b111, 0b110},

	{0b000, 0b100},
	{0b001, 0b101},
	{0b010, 0b110},
	{0b011, 0b111},
}

// Segment is a line segment between two points.
type Segment struct {
	Start, End r3.Vec
}

// TransformedBoxSegments returns the twelve edges of the unit cube under
// transform, in BoxEdges order.
func TransformedBoxSegments(transform Affine) [12]Segment {
	var corners [8]r3.Vec
	for i, c := range UnitCube {
		corners[i] = transform.TransformPoint(c)
	}
	var segs [12]Segment
	for i, e := range BoxEdges {
		segs[i] = Segment{Start: corners[e[0]], End: corners[e[1]]}
	}
	return segs
}
