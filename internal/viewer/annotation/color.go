package annotation

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"
)

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA" (the leading # is optional).
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: want 6 or 8 hex digits", s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	c := color.NRGBA{R: b[0], G: b[1], B: b[2], A: 255}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, nil
}

// FromPacked unpacks a 0xRRGGBBAA colour.
func FromPacked(v uint32) color.NRGBA {
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}

// Packed packs c as 0xRRGGBBAA.
func Packed(c color.NRGBA) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// FromArray converts an [r, g, b, a] array.
func FromArray(a [4]uint8) color.NRGBA {
	return color.NRGBA{R: a[0], G: a[1], B: a[2], A: a[3]}
}
