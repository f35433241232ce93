package store

import (
	"encoding/json"
	"fmt"
)

// ComponentName names a column of the columnar store.
type ComponentName string

// Box components and their Go value types.
const (
	ComponentBox3D      ComponentName = "box3d"      // Box3D
	ComponentVec3D      ComponentName = "vec3d"      // Vec3D
	ComponentQuaternion ComponentName = "quaternion" // Quaternion
	ComponentColor      ComponentName = "colorrgba"  // ColorRGBA
	ComponentRadius     ComponentName = "radius"     // Radius
	ComponentLabel      ComponentName = "label"      // Label
	ComponentClassID    ComponentName = "class_id"   // ClassID
)

// Box3D is a box half size.
type Box3D [3]float32

// Vec3D is a position.
type Vec3D [3]float32

// Quaternion is a rotation as (x, y, z, w).
type Quaternion [4]float32

// ColorRGBA is a colour packed as 0xRRGGBBAA.
type ColorRGBA uint32

// NewColorRGBA packs r, g, b, a.
func NewColorRGBA(r, g, b, a uint8) ColorRGBA {
	return ColorRGBA(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a))
}

// Radius is a line radius in scene units.
type Radius float32

// Label is display text.
type Label string

// ClassID keys an annotation context.
type ClassID uint16

type componentCodec struct {
	decode  func([]byte) (any, error)
	accepts func(any) bool
}

func jsonCodec[T any]() componentCodec {
	return componentCodec{
		decode: func(data []byte) (any, error) {
			var v T
			if err := json.Unmarshal(data, &v); err != nil {
				return nil, err
			}
			return v, nil
		},
		accepts: func(v any) bool {
			_, ok := v.(T)
			return ok
		},
	}
}

var codecs = map[ComponentName]componentCodec{
	ComponentBox3D:      jsonCodec[Box3D](),
	ComponentVec3D:      jsonCodec[Vec3D](),
	ComponentQuaternion: jsonCodec[Quaternion](),
	ComponentColor:      jsonCodec[ColorRGBA](),
	ComponentRadius:     jsonCodec[Radius](),
	ComponentLabel:      jsonCodec[Label](),
	ComponentClassID:    jsonCodec[ClassID](),
}

// CheckComponentValue reports whether v has the Go type registered for
// name.
func CheckComponentValue(name ComponentName, v any) error {
	c, ok := codecs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}
	if !c.accepts(v) {
		return fmt.Errorf("%w: component %s holds %T", ErrComponentType, name, v)
	}
	return nil
}

// EncodeComponent serialises one component value.
func EncodeComponent(name ComponentName, v any) ([]byte, error) {
	if err := CheckComponentValue(name, v); err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return data, nil
}

// DecodeComponent parses one component value.
func DecodeComponent(name ComponentName, data []byte) (any, error) {
	c, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}
	v, err := c.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrMalformedComponent, name, err)
	}
	return v, nil
}
