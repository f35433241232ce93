package scene

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/sceneview/internal/viewer"
	"github.com/banshee-data/sceneview/internal/viewer/annotation"
	"github.com/banshee-data/sceneview/internal/viewer/entity"
	"github.com/banshee-data/sceneview/internal/viewer/geom"
	"github.com/banshee-data/sceneview/internal/viewer/store"
	"github.com/banshee-data/sceneview/internal/viewer/transform"
)

// FailureReporter receives query failures. Implementations must be safe
// for concurrent use when LoadParallel is used.
type FailureReporter interface {
	QueryFailed(path entity.Path, err error)
}

// LogFailureReporter logs each failing entity once on the ops stream.
type LogFailureReporter struct {
	once *viewer.OnceLogger
}

// NewLogFailureReporter reports through once, or a new ops-stream
// OnceLogger when once is nil.
func NewLogFailureReporter(once *viewer.OnceLogger) *LogFailureReporter {
	if once == nil {
		once = viewer.NewOnceLogger(nil)
	}
	return &LogFailureReporter{once: once}
}

// QueryFailed implements FailureReporter.
func (r *LogFailureReporter) QueryFailed(path entity.Path, err error) {
	r.once.Errorf("boxes3d query "+path.String(), err)
}

// Boxes3DPart turns box entities into line batches and labels.
type Boxes3DPart struct {
	Source      BoxSource
	Annotations *annotation.Map
	Highlight   HighlightStyle
	Failures    FailureReporter
	Metrics     *Metrics
}

// NewBoxes3DPart returns a part reading from source with the default
// highlight and a logging failure reporter.
func NewBoxes3DPart(source BoxSource, annotations *annotation.Map) *Boxes3DPart {
	return &Boxes3DPart{
		Source:      source,
		Annotations: annotations,
		Highlight:   DefaultHighlightStyle(),
		Failures:    NewLogFailureReporter(nil),
	}
}

// entityContext is everything processRow needs about the current entity.
type entityContext struct {
	path         entity.Path
	worldFromObj geom.Affine
	annotations  *annotation.Context
	defaultColor annotation.DefaultColor
	interactive  bool
	hovered      entity.InstanceIDHash
	highlight    HighlightStyle
}

// Load extracts every visible entity of q into scene. It never fails:
// unreachable entities and entities without box data are skipped, and
// query failures are reported and skipped.
func (p *Boxes3DPart) Load(scene *SceneSpatial, q *SceneQuery, transforms transform.Resolver, hovered entity.InstanceIDHash) {
	start := time.Now()
	defer p.Metrics.observeFrame(start)

	for path, props := range q.IterEntities() {
		p.loadEntity(scene, q.LatestAt, path, props, transforms, hovered)
	}
	viewer.Diagf("boxes3d: %d batches, %d segments, %d labels, %d objects",
		len(scene.LineBatches), scene.NumSegments(), len(scene.Labels3D), scene.NumLogged3DObjects)
}

// LoadParallel extracts entities on up to workers goroutines, each into
// its own accumulator, then merges them into scene in entity order. The
// result equals Load. Only a cancelled ctx produces an error, in which
// case scene is left unchanged.
func (p *Boxes3DPart) LoadParallel(ctx context.Context, scene *SceneSpatial, q *SceneQuery, transforms transform.Resolver, hovered entity.InstanceIDHash, workers int) error {
	start := time.Now()
	defer p.Metrics.observeFrame(start)

	type job struct {
		path  entity.Path
		props entity.Properties
	}
	var jobs []job
	for path, props := range q.IterEntities() {
		jobs = append(jobs, job{path: path, props: props})
	}

	parts := make([]*SceneSpatial, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			local := NewSceneSpatial()
			p.loadEntity(local, q.LatestAt, j.path, j.props, transforms, hovered)
			parts[i] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("parallel box extraction: %w", err)
	}
	for _, part := range parts {
		scene.Merge(part)
	}
	return nil
}

func (p *Boxes3DPart) loadEntity(scene *SceneSpatial, q store.LatestAtQuery, path entity.Path, props entity.Properties, transforms transform.Resolver, hovered entity.InstanceIDHash) {
	res := transforms.Resolve(path)
	if !res.Reachable {
		viewer.Tracef("boxes3d: %s unreachable, skipped", path)
		p.Metrics.skipped(SkipUnreachable)
		return
	}

	rows, err := p.Source.Rows(q, path)
	switch {
	case errors.Is(err, store.ErrPrimaryNotFound):
		p.Metrics.skipped(SkipNoData)
		return
	case err != nil:
		p.Metrics.skipped(SkipQueryError)
		if p.Failures != nil {
			p.Failures.QueryFailed(path, err)
		}
		return
	case rows.Len == 0:
		p.Metrics.skipped(SkipNoData)
		return
	}

	ctx := &entityContext{
		path:         path,
		worldFromObj: res.ReferenceFromEntity,
		annotations:  p.Annotations.Find(path),
		defaultColor: annotation.ForPath(path),
		interactive:  props.Interactive,
		hovered:      hovered,
		highlight:    p.Highlight,
	}
	batch := scene.AddLineBatch(path.String(), ctx.worldFromObj)
	scene.IncObjectCount()
	p.Metrics.processed()

	for inst, err := range rows.All {
		if err == nil {
			err = processRow(ctx, scene, batch, &inst)
		}
		if err != nil {
			viewer.Tracef("boxes3d: %s: dropped instance: %v", path, err)
			p.Metrics.dropped()
			continue
		}
		p.Metrics.emitted()
	}
}

// processRow appends the twelve edges of inst and its label, if any.
func processRow(ctx *entityContext, scene *SceneSpatial, batch *LineBatchBuilder, inst *BoxInstance) error {
	halfExtent, err := geom.Vec3(inst.HalfExtent)
	if err != nil {
		return fmt.Errorf("half extent: %w", err)
	}
	rotation := geom.IdentityRotation
	if inst.Rotation != nil {
		if rotation, err = geom.RotationFromXYZW(*inst.Rotation); err != nil {
			return fmt.Errorf("rotation: %w", err)
		}
	}
	var translation r3.Vec
	if inst.Translation != nil {
		if translation, err = geom.Vec3(*inst.Translation); err != nil {
			return fmt.Errorf("translation: %w", err)
		}
	}

	id := entity.IdentityIfInteractive(ctx.path, inst.Index, ctx.interactive)
	attrs := ResolveAttributes(inst, ctx.annotations, ctx.defaultColor, id, ctx.hovered, ctx.highlight)

	objFromBox := geom.FromScaleRotationTranslation(halfExtent, rotation, translation)
	segs := geom.TransformedBoxSegments(ctx.worldFromObj.Mul(objFromBox))
	batch.AddSegments(segs[:]...).
		Radius(attrs.Radius).
		Color(attrs.Color).
		Identity(id)

	if attrs.HasLabel {
		scene.AddLabel(attrs.Label, ctx.worldFromObj.TransformPoint(translation))
	}
	return nil
}
