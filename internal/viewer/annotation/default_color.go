package annotation

import (
	"image/color"
	"math"

	"github.com/banshee-data/sceneview/internal/viewer/entity"
)

type defaultColorKind int

const (
	defaultOpaqueWhite defaultColorKind = iota
	defaultTransparentBlack
	defaultEntityPath
)

// DefaultColor is the colour used when neither the instance nor its class
// provides one.
type DefaultColor struct {
	kind defaultColorKind
	path entity.Path
}

// OpaqueWhite always resolves to white.
func OpaqueWhite() DefaultColor { return DefaultColor{kind: defaultOpaqueWhite} }

// TransparentBlack always resolves to fully transparent black.
func TransparentBlack() DefaultColor { return DefaultColor{kind: defaultTransparentBlack} }

// ForPath derives a colour from the entity path, stable across frames.
func ForPath(p entity.Path) DefaultColor {
	return DefaultColor{kind: defaultEntityPath, path: p}
}

// Resolve returns the concrete colour.
func (d DefaultColor) Resolve() color.NRGBA {
	switch d.kind {
	case defaultTransparentBlack:
		return color.NRGBA{}
	case defaultEntityPath:
		return AutoColor(uint16(d.path.Hash() % math.MaxUint16))
	default:
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
}

// AutoColor spreads successive values around the hue circle using the
// golden ratio, at fixed saturation and value.
func AutoColor(val uint16) color.NRGBA {
	goldenRatio := (math.Sqrt(5) - 1) / 2
	_, h := math.Modf(float64(val) * goldenRatio)
	return hsvToNRGBA(h, 0.85, 0.5)
}

// hsvToNRGBA converts h, s, v in [0, 1] to an opaque colour.
func hsvToNRGBA(h, s, v float64) color.NRGBA {
	h6 := h * 6
	i := math.Floor(h6)
	f := h6 - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return color.NRGBA{R: to8(r), G: to8(g), B: to8(b), A: 255}
}

func to8(c float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, c)) * 255))
}
