package scene

import (
	"fmt"
	"math"
)

// Size is a line radius. Positive finite values are scene units; the two
// infinities are renderer-chosen automatic sizes.
type Size float32

var (
	// SizeAuto lets the renderer pick a consistent default size.
	SizeAuto = Size(math.Inf(1))
	// SizeAutoLarge is a larger automatic size, used for highlights.
	SizeAutoLarge = Size(math.Inf(-1))
)

// NewSceneSize returns a size in scene units. Negative or non-finite
// input yields SizeAuto.
func NewSceneSize(v float32) Size {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) || v < 0 {
		return SizeAuto
	}
	return Size(v)
}

// IsAuto reports whether the size is one of the automatic sizes.
func (s Size) IsAuto() bool {
	return math.IsInf(float64(s), 0)
}

// SceneUnits returns the size in scene units, or false if automatic.
func (s Size) SceneUnits() (float32, bool) {
	if s.IsAuto() {
		return 0, false
	}
	return float32(s), true
}

// Boosted enlarges the size for highlighting: scene sizes are multiplied,
// automatic sizes become SizeAutoLarge.
func (s Size) Boosted(multiplier float32) Size {
	if s.IsAuto() {
		return SizeAutoLarge
	}
	return Size(float32(s) * multiplier)
}

func (s Size) String() string {
	switch {
	case s == SizeAuto:
		return "auto"
	case s == SizeAutoLarge:
		return "auto-large"
	default:
		return fmt.Sprintf("%g", float32(s))
	}
}
