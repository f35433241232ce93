package config

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/sceneview/internal/viewer/annotation"
	"github.com/banshee-data/sceneview/internal/viewer/store"
)

// DefaultConfigPath is the path to the canonical viewer defaults file.
const DefaultConfigPath = "config/viewer.defaults.json"

// Log levels accepted by log_level.
const (
	LogLevelOps   = "ops"
	LogLevelDiag  = "diag"
	LogLevelTrace = "trace"
)

// ViewerConfig is the root configuration of the box scene viewer. Omitted
// fields fall back to the defaults returned by the Get* methods.
type ViewerConfig struct {
	// Query params
	Timeline *string `json:"timeline,omitempty"` // "frame_nr" or "log_time"

	// Highlight params
	HoverColor          *string  `json:"hover_color,omitempty"` // "#RRGGBB" or "#RRGGBBAA"
	HoverSizeMultiplier *float64 `json:"hover_size_multiplier,omitempty"`

	// Entity params
	DefaultInteractive *bool   `json:"default_interactive,omitempty"`
	AnnotationsPath    *string `json:"annotations_path,omitempty"`

	// Extraction params
	ParallelWorkers *int `json:"parallel_workers,omitempty"` // 0 extracts sequentially

	// Logging
	LogLevel *string `json:"log_level,omitempty"`

	// Storage params
	SQLiteBusyTimeout *string `json:"sqlite_busy_timeout,omitempty"` // duration string like "5s"
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyViewerConfig returns a ViewerConfig with all fields set to nil.
func EmptyViewerConfig() *ViewerConfig {
	return &ViewerConfig{}
}

// DefaultViewerConfig returns a ViewerConfig with every field set to its
// default.
func DefaultViewerConfig() *ViewerConfig {
	return &ViewerConfig{
		Timeline:            ptrString(string(store.TimelineFrame)),
		HoverColor:          ptrString("#ffc8c8ff"),
		HoverSizeMultiplier: ptrFloat64(1.5),
		DefaultInteractive:  ptrBool(true),
		AnnotationsPath:     ptrString(""),
		ParallelWorkers:     ptrInt(0),
		LogLevel:            ptrString(LogLevelOps),
		SQLiteBusyTimeout:   ptrString("5s"),
	}
}

// LoadViewerConfig loads a ViewerConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
func LoadViewerConfig(path string) (*ViewerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyViewerConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents. Panics if the file
// cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *ViewerConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/viewer/scene/
		"../../../../" + DefaultConfigPath, // from internal/viewer/store/sqlite/
	}
	for _, path := range candidates {
		if cfg, err := LoadViewerConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *ViewerConfig) Validate() error {
	if c.Timeline != nil {
		switch store.Timeline(*c.Timeline) {
		case store.TimelineFrame, store.TimelineLogTime:
		default:
			return fmt.Errorf("timeline must be %q or %q, got %q", store.TimelineFrame, store.TimelineLogTime, *c.Timeline)
		}
	}

	if c.HoverColor != nil && *c.HoverColor != "" {
		if _, err := annotation.ParseHexColor(*c.HoverColor); err != nil {
			return fmt.Errorf("invalid hover_color: %w", err)
		}
	}

	if c.HoverSizeMultiplier != nil {
		if *c.HoverSizeMultiplier < 1 {
			return fmt.Errorf("hover_size_multiplier must be at least 1, got %f", *c.HoverSizeMultiplier)
		}
	}

	if c.ParallelWorkers != nil {
		if *c.ParallelWorkers < 0 {
			return fmt.Errorf("parallel_workers must be non-negative, got %d", *c.ParallelWorkers)
		}
	}

	if c.LogLevel != nil {
		switch *c.LogLevel {
		case LogLevelOps, LogLevelDiag, LogLevelTrace:
		default:
			return fmt.Errorf("log_level must be ops, diag or trace, got %q", *c.LogLevel)
		}
	}

	if c.SQLiteBusyTimeout != nil && *c.SQLiteBusyTimeout != "" {
		if _, err := time.ParseDuration(*c.SQLiteBusyTimeout); err != nil {
			return fmt.Errorf("invalid sqlite_busy_timeout '%s': %w", *c.SQLiteBusyTimeout, err)
		}
	}

	return nil
}

// GetTimeline returns the timeline or the default.
func (c *ViewerConfig) GetTimeline() store.Timeline {
	if c.Timeline == nil || *c.Timeline == "" {
		return store.TimelineFrame
	}
	return store.Timeline(*c.Timeline)
}

// GetHoverColor parses and returns the hover colour.
func (c *ViewerConfig) GetHoverColor() color.NRGBA {
	def := color.NRGBA{R: 255, G: 200, B: 200, A: 255}
	if c.HoverColor == nil || *c.HoverColor == "" {
		return def
	}
	col, err := annotation.ParseHexColor(*c.HoverColor)
	if err != nil {
		return def // default on parse error
	}
	return col
}

// GetHoverSizeMultiplier returns the hover_size_multiplier value or the default.
func (c *ViewerConfig) GetHoverSizeMultiplier() float64 {
	if c.HoverSizeMultiplier == nil {
		return 1.5
	}
	return *c.HoverSizeMultiplier
}

// GetDefaultInteractive returns the default_interactive value or the default.
func (c *ViewerConfig) GetDefaultInteractive() bool {
	if c.DefaultInteractive == nil {
		return true
	}
	return *c.DefaultInteractive
}

// GetAnnotationsPath returns the annotations_path value, empty when unset.
func (c *ViewerConfig) GetAnnotationsPath() string {
	if c.AnnotationsPath == nil {
		return ""
	}
	return *c.AnnotationsPath
}

// GetParallelWorkers returns the parallel_workers value or the default.
func (c *ViewerConfig) GetParallelWorkers() int {
	if c.ParallelWorkers == nil {
		return 0 // default: sequential
	}
	return *c.ParallelWorkers
}

// GetLogLevel returns the log_level value or the default.
func (c *ViewerConfig) GetLogLevel() string {
	if c.LogLevel == nil || *c.LogLevel == "" {
		return LogLevelOps
	}
	return *c.LogLevel
}

// GetSQLiteBusyTimeout parses and returns the SQLite busy timeout.
func (c *ViewerConfig) GetSQLiteBusyTimeout() time.Duration {
	if c.SQLiteBusyTimeout == nil || *c.SQLiteBusyTimeout == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(*c.SQLiteBusyTimeout)
	if err != nil {
		return 5 * time.Second // default on parse error
	}
	return d
}
