// Command boxscene extracts the 3D box geometry of one frame from a legacy
// or columnar store and prints a summary of the resulting scene.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/banshee-data/sceneview/internal/config"
	"github.com/banshee-data/sceneview/internal/version"
	"github.com/banshee-data/sceneview/internal/viewer"
	"github.com/banshee-data/sceneview/internal/viewer/annotation"
	"github.com/banshee-data/sceneview/internal/viewer/entity"
	"github.com/banshee-data/sceneview/internal/viewer/scene"
	"github.com/banshee-data/sceneview/internal/viewer/store"
	"github.com/banshee-data/sceneview/internal/viewer/store/badger"
	"github.com/banshee-data/sceneview/internal/viewer/store/sqlite"
	"github.com/banshee-data/sceneview/internal/viewer/synthetic"
	"github.com/banshee-data/sceneview/internal/viewer/transform"
)

const (
	storeLegacy   = "legacy"
	storeColumnar = "columnar"
)

type options struct {
	configPath  string
	sqlitePath  string
	badgerPath  string
	storeKind   string
	synthetic   int
	seed        int64
	at          string
	timeline    string
	hover       string
	annotations string
	workers     int
	metrics     bool
	verbose     bool
	version     bool

	set map[string]bool // flags given on the command line
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("boxscene: %v", err)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("boxscene", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{set: make(map[string]bool)}
	fs.StringVar(&o.configPath, "config", "", "Path to a viewer JSON config (defaults apply when empty)")
	fs.StringVar(&o.sqlitePath, "sqlite", "", "SQLite columnar component store (implies -store columnar)")
	fs.StringVar(&o.badgerPath, "badger", "", "Badger legacy object store directory (implies -store legacy)")
	fs.StringVar(&o.storeKind, "store", storeColumnar, "In-memory store kind when no file is given: legacy or columnar")
	fs.IntVar(&o.synthetic, "synthetic", 0, "Seed the store with N synthetic box entities before extracting")
	fs.Int64Var(&o.seed, "seed", 1, "Random seed for -synthetic")
	fs.StringVar(&o.at, "time", "latest", "Query time on the timeline, or latest")
	fs.StringVar(&o.timeline, "timeline", "", "Timeline to query: frame_nr or log_time (overrides config)")
	fs.StringVar(&o.hover, "hover", "", `Hovered instance as path#index (integer, or string such as path#car or path#"7"), or path for the whole entity`)
	fs.StringVar(&o.annotations, "annotations", "", "Annotation context YAML file (overrides config)")
	fs.IntVar(&o.workers, "workers", 0, "Parallel extraction workers, 0 extracts sequentially (overrides config)")
	fs.BoolVar(&o.metrics, "metrics", false, "Print extraction metrics after the summary")
	fs.BoolVar(&o.verbose, "v", false, "Print every line batch and label")
	fs.BoolVar(&o.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if o.sqlitePath != "" && o.badgerPath != "" {
		return nil, errors.New("-sqlite and -badger are mutually exclusive")
	}
	switch {
	case o.sqlitePath != "":
		o.storeKind = storeColumnar
	case o.badgerPath != "":
		o.storeKind = storeLegacy
	}
	if o.storeKind != storeLegacy && o.storeKind != storeColumnar {
		return nil, fmt.Errorf("-store must be %s or %s, got %q", storeLegacy, storeColumnar, o.storeKind)
	}
	if o.synthetic < 0 {
		return nil, fmt.Errorf("-synthetic must be non-negative, got %d", o.synthetic)
	}
	return o, nil
}

// loadConfig loads the config file and applies command line overrides.
func loadConfig(o *options) (*config.ViewerConfig, error) {
	cfg := config.DefaultViewerConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadViewerConfig(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.set["timeline"] {
		cfg.Timeline = &o.timeline
	}
	if o.set["workers"] {
		cfg.ParallelWorkers = &o.workers
	}
	if o.set["annotations"] {
		cfg.AnnotationsPath = &o.annotations
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configureLogging enables the log streams up to level on w.
func configureLogging(level string, w io.Writer) {
	lw := viewer.LogWriters{Ops: w}
	switch level {
	case config.LogLevelDiag:
		lw.Diag = w
	case config.LogLevelTrace:
		lw.Diag = w
		lw.Trace = w
	}
	viewer.SetLogWriters(lw)
}

func parseTime(s string) (store.TimeInt, error) {
	if s == "" || s == "latest" {
		return store.TimeInt(math.MaxInt64), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid -time %q: %w", s, err)
	}
	return store.TimeInt(n), nil
}

// parseHover parses "path#index" into an instance identity. A numeric
// index is an integer instance key; a quoted or non-numeric index is a
// string key. A bare path hovers the entity as a whole.
func parseHover(s string) (entity.InstanceIDHash, error) {
	if s == "" {
		return entity.NoInstance, nil
	}
	pathPart, indexPart, hasIndex := strings.Cut(s, "#")
	path, err := entity.ParsePath(pathPart)
	if err != nil {
		return entity.NoInstance, fmt.Errorf("invalid -hover path: %w", err)
	}
	if !hasIndex {
		return entity.NewInstanceIDHash(path, entity.NoIndex), nil
	}
	if indexPart == "" {
		return entity.NoInstance, errors.New("invalid -hover: empty index after #")
	}
	if strings.HasPrefix(indexPart, `"`) {
		name, err := strconv.Unquote(indexPart)
		if err != nil {
			return entity.NoInstance, fmt.Errorf("invalid -hover index %s: %w", indexPart, err)
		}
		return entity.NewInstanceIDHash(path, entity.IndexHashFromString(name)), nil
	}
	if n, err := strconv.ParseUint(indexPart, 10, 64); err == nil {
		return entity.NewInstanceIDHash(path, entity.IndexHashFromUint(n)), nil
	}
	return entity.NewInstanceIDHash(path, entity.IndexHashFromString(indexPart)), nil
}

// boxStore is an opened store of either representation.
type boxStore struct {
	source   scene.BoxSource
	legacy   store.LegacyWriter
	columnar store.ColumnarWriter
	paths    func() ([]entity.Path, error)
	close    func() error
}

func openStore(o *options, cfg *config.ViewerConfig) (*boxStore, error) {
	noClose := func() error { return nil }
	switch {
	case o.sqlitePath != "":
		s, err := sqlite.Open(o.sqlitePath, sqlite.Options{BusyTimeout: cfg.GetSQLiteBusyTimeout()})
		if err != nil {
			return nil, err
		}
		return &boxStore{
			source:   scene.ColumnarSource{Store: s},
			columnar: s,
			paths:    s.Paths,
			close:    s.Close,
		}, nil
	case o.badgerPath != "":
		s, err := badger.Open(badger.Config{Path: o.badgerPath})
		if err != nil {
			return nil, err
		}
		return &boxStore{
			source: scene.LegacySource{Stores: s},
			legacy: s,
			paths:  s.Paths,
			close:  s.Close,
		}, nil
	case o.storeKind == storeLegacy:
		s := store.NewMemObjectStores()
		return &boxStore{
			source: scene.LegacySource{Stores: s},
			legacy: s,
			paths:  func() ([]entity.Path, error) { return s.Paths(), nil },
			close:  noClose,
		}, nil
	default:
		s := store.NewMemComponentStore()
		return &boxStore{
			source:   scene.ColumnarSource{Store: s},
			columnar: s,
			paths:    func() ([]entity.Path, error) { return s.Paths(), nil },
			close:    noClose,
		}, nil
	}
}

// frameInputs is everything an extraction needs besides the store.
type frameInputs struct {
	paths       []entity.Path
	annotations *annotation.Map
	transforms  transform.Resolver
}

func prepareFrame(o *options, cfg *config.ViewerConfig, bs *boxStore) (*frameInputs, error) {
	in := &frameInputs{
		annotations: annotation.NewMap(),
		transforms:  transform.NewCache(entity.Root),
	}

	if o.synthetic > 0 {
		gen := synthetic.NewGenerator(o.seed)
		gen.EntityCount = o.synthetic
		data := gen.Generate()
		var err error
		if bs.legacy != nil {
			err = data.WriteLegacy(bs.legacy, cfg.GetTimeline())
		} else {
			err = data.WriteColumnar(bs.columnar, cfg.GetTimeline())
		}
		if err != nil {
			return nil, fmt.Errorf("seed synthetic data: %w", err)
		}
		in.annotations = data.Annotations
		in.transforms = data.Transforms
		viewer.Diagf("seeded %d synthetic entities over %d frames", gen.EntityCount, gen.FrameCount)
	}

	paths, err := bs.paths()
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	in.paths = paths

	if p := cfg.GetAnnotationsPath(); p != "" {
		m, err := annotation.LoadMap(p)
		if err != nil {
			return nil, err
		}
		in.annotations = m
	}
	return in, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.version {
		fmt.Fprintln(stdout, version.String())
		return nil
	}

	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	configureLogging(cfg.GetLogLevel(), stderr)

	at, err := parseTime(o.at)
	if err != nil {
		return err
	}
	hovered, err := parseHover(o.hover)
	if err != nil {
		return err
	}

	bs, err := openStore(o, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := bs.close(); err != nil {
			viewer.Opsf("close store: %v", err)
		}
	}()

	in, err := prepareFrame(o, cfg, bs)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	part := scene.NewBoxes3DPart(bs.source, in.annotations)
	part.Highlight = scene.HighlightStyle{
		Color:          cfg.GetHoverColor(),
		SizeMultiplier: float32(cfg.GetHoverSizeMultiplier()),
	}
	part.Metrics = scene.NewMetrics(reg)

	q := &scene.SceneQuery{
		EntityPaths: in.paths,
		LatestAt:    store.NewLatestAtQuery(cfg.GetTimeline(), at),
		Properties:  entity.NewPropertyMap(entity.Properties{Visible: true, Interactive: cfg.GetDefaultInteractive()}),
	}

	out := scene.NewSceneSpatial()
	if workers := cfg.GetParallelWorkers(); workers > 0 {
		if err := part.LoadParallel(ctx, out, q, in.transforms, hovered, workers); err != nil {
			return err
		}
	} else {
		part.Load(out, q, in.transforms, hovered)
	}

	printSummary(stdout, q, out, o.verbose)
	if o.metrics {
		return printMetrics(stdout, reg)
	}
	return nil
}

func printSummary(w io.Writer, q *scene.SceneQuery, out *scene.SceneSpatial, verbose bool) {
	at := "latest"
	if q.LatestAt.At != store.TimeInt(math.MaxInt64) {
		at = humanize.Comma(int64(q.LatestAt.At))
	}
	fmt.Fprintf(w, "%s @ %s: %s entities queried\n", q.LatestAt.Timeline, at, humanize.Comma(int64(len(q.EntityPaths))))
	fmt.Fprintf(w, "  line batches: %s\n", humanize.Comma(int64(len(out.LineBatches))))
	fmt.Fprintf(w, "  segments:     %s\n", humanize.Comma(int64(out.NumSegments())))
	fmt.Fprintf(w, "  labels:       %s\n", humanize.Comma(int64(len(out.Labels3D))))
	fmt.Fprintf(w, "  3D objects:   %s\n", humanize.Comma(int64(out.NumLogged3DObjects)))

	if !verbose {
		return
	}
	for _, b := range out.LineBatches {
		fmt.Fprintf(w, "  batch %s: %s segments\n", b.Name, humanize.Comma(int64(len(b.Segments))))
	}
	for _, l := range out.Labels3D {
		fmt.Fprintf(w, "  label %q at (%.2f, %.2f, %.2f)\n", l.Text, l.Origin.X, l.Origin.Y, l.Origin.Z)
	}
}

func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Fprintf(w, "%s%s %s\n", mf.GetName(), formatLabels(m.GetLabel()), formatValue(mf.GetType(), m))
		}
	}
	return nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s=%q", p.GetName(), p.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func formatValue(t dto.MetricType, m *dto.Metric) string {
	switch t {
	case dto.MetricType_COUNTER:
		return strconv.FormatFloat(m.GetCounter().GetValue(), 'f', -1, 64)
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		return fmt.Sprintf("count=%d sum=%s", h.GetSampleCount(), humanize.FtoaWithDigits(h.GetSampleSum(), 6))
	default:
		return strconv.FormatFloat(m.GetGauge().GetValue(), 'f', -1, 64)
	}
}
