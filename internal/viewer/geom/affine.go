package geom

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrSingular is returned when an affine transform has no inverse.
var ErrSingular = errors.New("geom: singular transform")

// Affine is a 3D affine transform stored as the three columns of its
// linear part plus a translation.
type Affine struct {
	X, Y, Z r3.Vec
	T       r3.Vec
}

// Identity is the identity transform.
var Identity = Affine{
	X: r3.Vec{X: 1},
	Y: r3.Vec{Y: 1},
	Z: r3.Vec{Z: 1},
}

// FromScaleRotationTranslation composes scale, then rotation, then
// translation into a single transform.
func FromScaleRotationTranslation(scale r3.Vec, rot r3.Rotation, t r3.Vec) Affine {
	return Affine{
		X: r3.Scale(scale.X, rot.Rotate(r3.Vec{X: 1})),
		Y: r3.Scale(scale.Y, rot.Rotate(r3.Vec{Y: 1})),
		Z: r3.Scale(scale.Z, rot.Rotate(r3.Vec{Z: 1})),
		T: t,
	}
}

// FromTranslation returns a pure translation.
func FromTranslation(t r3.Vec) Affine {
	a := Identity
	a.T = t
	return a
}

// FromMat4 builds an Affine from a row-major 4x4 matrix. The bottom row is
// ignored.
func FromMat4(m [16]float64) Affine {
	return Affine{
		X: r3.Vec{X: m[0], Y: m[4], Z: m[8]},
		Y: r3.Vec{X: m[1], Y: m[5], Z: m[9]},
		Z: r3.Vec{X: m[2], Y: m[6], Z: m[10]},
		T: r3.Vec{X: m[3], Y: m[7], Z: m[11]},
	}
}

// TransformVector applies the linear part only.
func (a Affine) TransformVector(v r3.Vec) r3.Vec {
	return r3.Add(r3.Add(r3.Scale(v.X, a.X), r3.Scale(v.Y, a.Y)), r3.Scale(v.Z, a.Z))
}

// TransformPoint applies the full transform to a point.
func (a Affine) TransformPoint(p r3.Vec) r3.Vec {
	return r3.Add(a.TransformVector(p), a.T)
}

// Mul returns a·b, the transform that applies b first and then a.
func (a Affine) Mul(b Affine) Affine {
	return Affine{
		X: a.TransformVector(b.X),
		Y: a.TransformVector(b.Y),
		Z: a.TransformVector(b.Z),
		T: a.TransformPoint(b.T),
	}
}

// Linear returns the 3x3 linear part as an r3.Mat.
func (a Affine) Linear() *r3.Mat {
	return r3.NewMat([]float64{
		a.X.X, a.Y.X, a.Z.X,
		a.X.Y, a.Y.Y, a.Z.Y,
		a.X.Z, a.Y.Z, a.Z.Z,
	})
}

// Mat4 returns the transform as a homogeneous 4x4 matrix.
func (a Affine) Mat4() *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		a.X.X, a.Y.X, a.Z.X, a.T.X,
		a.X.Y, a.Y.Y, a.Z.Y, a.T.Y,
		a.X.Z, a.Y.Z, a.Z.Z, a.T.Z,
		0, 0, 0, 1,
	})
}

// Inverse returns the inverse transform, or ErrSingular when the linear
// part is not invertible.
func (a Affine) Inverse() (Affine, error) {
	if math.Abs(a.Linear().Det()) < 1e-12 {
		return Affine{}, ErrSingular
	}
	var inv mat.Dense
	if err := inv.Inverse(a.Mat4()); err != nil {
		return Affine{}, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	var m [16]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i*4+j] = inv.At(i, j)
		}
	}
	return FromMat4(m), nil
}

// ApproxEqual reports whether every coefficient of a and b differs by at
// most tol.
func (a Affine) ApproxEqual(b Affine, tol float64) bool {
	return vecApproxEqual(a.X, b.X, tol) &&
		vecApproxEqual(a.Y, b.Y, tol) &&
		vecApproxEqual(a.Z, b.Z, tol) &&
		vecApproxEqual(a.T, b.T, tol)
}

func vecApproxEqual(p, q r3.Vec, tol float64) bool {
	return math.Abs(p.X-q.X) <= tol && math.Abs(p.Y-q.Y) <= tol && math.Abs(p.Z-q.Z) <= tol
}
