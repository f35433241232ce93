package scene

import (
	"image/color"

	"github.com/banshee-data/sceneview/internal/viewer/annotation"
	"github.com/banshee-data/sceneview/internal/viewer/entity"
)

// DefaultHighlightColor replaces the colour of the hovered instance.
var DefaultHighlightColor = color.NRGBA{R: 255, G: 200, B: 200, A: 255}

// DefaultHighlightSizeMultiplier enlarges explicit sizes of the hovered
// instance.
const DefaultHighlightSizeMultiplier = 1.5

// HighlightStyle is the visual override for the hovered instance.
type HighlightStyle struct {
	Color          color.NRGBA
	SizeMultiplier float32
}

// DefaultHighlightStyle returns the built-in highlight.
func DefaultHighlightStyle() HighlightStyle {
	return HighlightStyle{Color: DefaultHighlightColor, SizeMultiplier: DefaultHighlightSizeMultiplier}
}

// BoxInstance is one box row as read from either store. Optional fields
// are nil when not logged.
type BoxInstance struct {
	HalfExtent  [3]float32
	Rotation    *[4]float32 // (x, y, z, w); nil is identity
	Translation *[3]float32 // nil is the origin
	Color       *color.NRGBA
	StrokeWidth *float32 // legacy line width, radius is half of it
	Radius      *float32 // columnar line radius
	Label       *string
	ClassID     *annotation.ClassID
	Index       entity.IndexHash // NoIndex when the row has no instance key
}

// Attributes are the display attributes of one instance.
type Attributes struct {
	Color    color.NRGBA
	Radius   Size
	Label    string
	HasLabel bool
}

// ResolveAttributes applies the colour, radius and label precedence for
// inst, then the highlight override when id is the hovered instance.
func ResolveAttributes(
	inst *BoxInstance,
	annotations *annotation.Context,
	defaultColor annotation.DefaultColor,
	id, hovered entity.InstanceIDHash,
	highlight HighlightStyle,
) Attributes {
	info := annotations.ClassDescription(inst.ClassID).AnnotationInfo()

	attrs := Attributes{
		Color:  info.Color(inst.Color, defaultColor),
		Radius: resolveRadius(inst),
	}
	attrs.Label, attrs.HasLabel = info.Label(inst.Label)

	if id.Matches(hovered) {
		attrs.Color = highlight.Color
		attrs.Radius = attrs.Radius.Boosted(highlight.SizeMultiplier)
	}
	return attrs
}

func resolveRadius(inst *BoxInstance) Size {
	switch {
	case inst.Radius != nil:
		return NewSceneSize(*inst.Radius)
	case inst.StrokeWidth != nil:
		return NewSceneSize(*inst.StrokeWidth / 2)
	default:
		return SizeAuto
	}
}
