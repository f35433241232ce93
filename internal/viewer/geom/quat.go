package geom

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateRotation is returned for a quaternion that cannot be
// normalised.
var ErrDegenerateRotation = errors.New("geom: degenerate rotation quaternion")

// ErrNonFinite is returned when a vector holds NaN or infinite components.
var ErrNonFinite = errors.New("geom: non-finite vector")

// quatEpsilon is the smallest quaternion norm accepted as a rotation.
const quatEpsilon = 1e-9

// IdentityRotation is the rotation that leaves every vector unchanged.
var IdentityRotation = r3.Rotation{Real: 1}

// RotationFromXYZW builds a rotation from a quaternion stored as
// (x, y, z, w). The quaternion is normalised.
func RotationFromXYZW(q [4]float32) (r3.Rotation, error) {
	n := quat.Number{
		Real: float64(q[3]),
		Imag: float64(q[0]),
		Jmag: float64(q[1]),
		Kmag: float64(q[2]),
	}
	if quat.IsNaN(n) || quat.IsInf(n) {
		return r3.Rotation{}, ErrDegenerateRotation
	}
	abs := quat.Abs(n)
	if abs < quatEpsilon {
		return r3.Rotation{}, ErrDegenerateRotation
	}
	if abs != 1 {
		n = quat.Scale(1/abs, n)
	}
	return r3.Rotation(n), nil
}

// YawXYZW returns the (x, y, z, w) quaternion of a rotation by headingRad
// around the Z axis.
func YawXYZW(headingRad float64) [4]float32 {
	sin, cos := math.Sincos(0.5 * headingRad)
	return [4]float32{0, 0, float32(sin), float32(cos)}
}

// Vec3 converts a float32 triple to an r3.Vec, rejecting non-finite input.
func Vec3(v [3]float32) (r3.Vec, error) {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return r3.Vec{}, ErrNonFinite
		}
	}
	return r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}, nil
}
