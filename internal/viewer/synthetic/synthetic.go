// Package synthetic generates deterministic box scenes for tests and demos.
// The same Dataset can be written to a legacy and a columnar store, which
// must then render identically.
package synthetic

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/sceneview/internal/viewer/annotation"
	"github.com/banshee-data/sceneview/internal/viewer/entity"
	"github.com/banshee-data/sceneview/internal/viewer/geom"
	"github.com/banshee-data/sceneview/internal/viewer/store"
	"github.com/banshee-data/sceneview/internal/viewer/transform"
)

// Root is the parent of every generated track entity.
var Root = entity.NewPath("world")

// Detached is an entity with data but no transform to the root.
var Detached = entity.NewPath("detached", "boxes")

// Generator generates synthetic box scenes.
type Generator struct {
	// Configuration
	EntityCount    int     // number of track entities
	FrameCount     int     // timestamps per entity
	BoxesPerEntity int     // box instances per entity and frame
	ClassCount     int     // annotation classes
	TrackRadius    float64 // metres, radius of track circular paths
	TrackSpeed     float64 // radians per frame around the circle
	WorldOffset    r3.Vec  // translation of Root from the reference

	rng *rand.Rand
}

// NewGenerator creates a generator with a fixed seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		EntityCount:    10,
		FrameCount:     5,
		BoxesPerEntity: 3,
		ClassCount:     4,
		TrackRadius:    20.0,
		TrackSpeed:     0.1,
		WorldOffset:    r3.Vec{X: 5, Y: -5},
		rng:            rand.New(rand.NewSource(seed)),
	}
}

// Box is one generated instance. Optional attributes are nil when absent.
type Box struct {
	Index       uint64
	HalfSize    [3]float32
	Rotation    [4]float32
	Translation [3]float32
	Color       *[4]uint8
	Radius      *float32
	Label       *string
	ClassID     *uint16
}

// Frame is the boxes of one entity at one time.
type Frame struct {
	Time  store.TimeInt
	Boxes []Box
}

// Dataset is a generated scene.
type Dataset struct {
	Paths       []entity.Path // includes Detached
	Frames      map[entity.Path][]Frame
	Annotations *annotation.Map
	Transforms  *transform.Cache
}

// Generate builds a dataset.
func (g *Generator) Generate() *Dataset {
	d := &Dataset{
		Frames:      make(map[entity.Path][]Frame),
		Annotations: annotation.NewMap(),
		Transforms:  transform.NewCache(entity.Root),
	}
	d.Transforms.SetLocal(Root, geom.FromTranslation(g.WorldOffset))
	detachedParent, _ := Detached.Parent()
	d.Transforms.SetDisconnected(detachedParent)

	classes := make([]annotation.ClassDescription, g.ClassCount)
	for i := range classes {
		c := annotation.AutoColor(uint16(i + 1))
		classes[i] = annotation.ClassDescription{Info: annotation.Info{
			ID:    annotation.ClassID(i + 1),
			Label: fmt.Sprintf("class-%d", i+1),
			Color: &c,
		}}
	}
	d.Annotations.Set(Root, annotation.NewContext(classes...))

	for e := 0; e < g.EntityCount; e++ {
		path := Root.Child(fmt.Sprintf("track-%03d", e+1))
		d.Paths = append(d.Paths, path)
		d.Frames[path] = g.generateFrames(e)
	}
	d.Paths = append(d.Paths, Detached)
	d.Frames[Detached] = g.generateFrames(g.EntityCount)
	return d
}

func (g *Generator) generateFrames(e int) []Frame {
	baseAngle := float64(e) * 2 * math.Pi / math.Max(1, float64(g.EntityCount))
	frames := make([]Frame, g.FrameCount)
	for f := range frames {
		angle := baseAngle + float64(f)*g.TrackSpeed
		frames[f] = Frame{Time: store.TimeInt(f), Boxes: make([]Box, g.BoxesPerEntity)}
		for b := range frames[f].Boxes {
			// Boxes of one track follow each other along the circle.
			a := angle - float64(b)*0.05
			x := g.TrackRadius * math.Cos(a)
			y := g.TrackRadius * math.Sin(a)
			heading := a + math.Pi/2

			box := Box{
				Index:       uint64(b),
				HalfSize:    [3]float32{2.2 + g.rng.Float32()*0.5, 0.9 + g.rng.Float32()*0.2, 0.8},
				Rotation:    geom.YawXYZW(heading),
				Translation: [3]float32{float32(x), float32(y), 0.8},
			}
			g.decorate(&box)
			frames[f].Boxes[b] = box
		}
	}
	return frames
}

// decorate sets a random subset of the optional attributes.
func (g *Generator) decorate(box *Box) {
	if g.rng.Float64() < 0.3 {
		box.Color = &[4]uint8{uint8(g.rng.Intn(256)), uint8(g.rng.Intn(256)), uint8(g.rng.Intn(256)), 255}
	}
	if g.rng.Float64() < 0.5 {
		r := float32(0.02 + 0.01*float64(g.rng.Intn(5)))
		box.Radius = &r
	}
	if g.rng.Float64() < 0.3 {
		l := fmt.Sprintf("box-%d", box.Index)
		box.Label = &l
	}
	if g.ClassCount > 0 && g.rng.Float64() < 0.7 {
		c := uint16(1 + g.rng.Intn(g.ClassCount))
		box.ClassID = &c
	}
}

// WriteLegacy writes every frame as Box3D objects. Radii become stroke
// widths of twice the radius.
func (d *Dataset) WriteLegacy(w store.LegacyWriter, timeline store.Timeline) error {
	for _, path := range d.Paths {
		if err := w.SetObjectType(path, store.ObjectTypeBox3D); err != nil {
			return err
		}
		for _, f := range d.Frames[path] {
			fields := make(map[store.FieldName][]store.IndexedValue)
			for _, b := range f.Boxes {
				idx := store.IntIndex(b.Index)
				add := func(field store.FieldName, v any) {
					fields[field] = append(fields[field], store.IndexedValue{Index: &idx, Value: v})
				}
				add(store.FieldOBB, store.Box3{HalfSize: b.HalfSize, Rotation: b.Rotation, Translation: b.Translation})
				if b.Color != nil {
					add(store.FieldColor, *b.Color)
				}
				if b.Radius != nil {
					add(store.FieldStrokeWidth, *b.Radius*2)
				}
				if b.Label != nil {
					add(store.FieldLabel, *b.Label)
				}
				if b.ClassID != nil {
					add(store.FieldClassID, int32(*b.ClassID))
				}
			}
			// Every field is written each frame so that stale values from
			// an earlier frame never leak into this one.
			for _, field := range []store.FieldName{store.FieldOBB, store.FieldColor, store.FieldStrokeWidth, store.FieldLabel, store.FieldClassID} {
				batch := store.FieldBatch{Time: f.Time, MsgID: uuid.New(), Values: fields[field]}
				if err := w.InsertField(path, timeline, field, batch); err != nil {
					return fmt.Errorf("write %s.%s at %d: %w", path, field, f.Time, err)
				}
			}
		}
	}
	return nil
}

// WriteColumnar writes every frame as box3d entities with explicit
// instance keys.
func (d *Dataset) WriteColumnar(w store.ColumnarWriter, timeline store.Timeline) error {
	names := []store.ComponentName{store.ComponentBox3D}
	names = append(names, boxComponents...)
	for _, path := range d.Paths {
		for _, f := range d.Frames[path] {
			batches := make(map[store.ComponentName]*store.ComponentBatch, len(names))
			for _, name := range names {
				batches[name] = &store.ComponentBatch{Time: f.Time, Instances: []store.Instance{}}
			}
			for _, b := range f.Boxes {
				add := func(name store.ComponentName, v any) {
					batch := batches[name]
					batch.Instances = append(batch.Instances, store.Instance(b.Index))
					batch.Values = append(batch.Values, v)
				}
				add(store.ComponentBox3D, store.Box3D(b.HalfSize))
				add(store.ComponentVec3D, store.Vec3D(b.Translation))
				add(store.ComponentQuaternion, store.Quaternion(b.Rotation))
				if b.Color != nil {
					c := *b.Color
					add(store.ComponentColor, store.NewColorRGBA(c[0], c[1], c[2], c[3]))
				}
				if b.Radius != nil {
					add(store.ComponentRadius, store.Radius(*b.Radius))
				}
				if b.Label != nil {
					add(store.ComponentLabel, store.Label(*b.Label))
				}
				if b.ClassID != nil {
					add(store.ComponentClassID, store.ClassID(*b.ClassID))
				}
			}
			for _, name := range names {
				if err := w.InsertComponent(path, timeline, name, *batches[name]); err != nil {
					return fmt.Errorf("write %s.%s at %d: %w", path, name, f.Time, err)
				}
			}
		}
	}
	return nil
}

var boxComponents = []store.ComponentName{
	store.ComponentVec3D,
	store.ComponentQuaternion,
	store.ComponentColor,
	store.ComponentRadius,
	store.ComponentLabel,
	store.ComponentClassID,
}

// InstanceCount returns the number of boxes at time t over all entities,
// excluding Detached.
func (d *Dataset) InstanceCount(t store.TimeInt) int {
	n := 0
	for _, path := range d.Paths {
		if path == Detached {
			continue
		}
		for _, f := range d.Frames[path] {
			if f.Time == t {
				n += len(f.Boxes)
			}
		}
	}
	return n
}
