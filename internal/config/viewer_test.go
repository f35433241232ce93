package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/banshee-data/sceneview/internal/viewer/store"
)

func TestDefaultViewerConfig(t *testing.T) {
	cfg := DefaultViewerConfig()

	if cfg.Timeline == nil || *cfg.Timeline != "frame_nr" {
		t.Errorf("Expected Timeline frame_nr, got %v", cfg.Timeline)
	}
	if cfg.HoverSizeMultiplier == nil || *cfg.HoverSizeMultiplier != 1.5 {
		t.Errorf("Expected HoverSizeMultiplier 1.5, got %v", cfg.HoverSizeMultiplier)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	if cfg.GetTimeline() != store.TimelineFrame {
		t.Errorf("GetTimeline() = %q, want frame_nr", cfg.GetTimeline())
	}
	if got, want := cfg.GetHoverColor(), (color.NRGBA{R: 255, G: 200, B: 200, A: 255}); got != want {
		t.Errorf("GetHoverColor() = %v, want %v", got, want)
	}
	if cfg.GetSQLiteBusyTimeout() != 5*time.Second {
		t.Errorf("GetSQLiteBusyTimeout() = %v, want 5s", cfg.GetSQLiteBusyTimeout())
	}
}

func TestEmptyViewerConfig_GetDefaults(t *testing.T) {
	cfg := EmptyViewerConfig()
	def := DefaultViewerConfig()

	if cfg.GetTimeline() != def.GetTimeline() {
		t.Errorf("GetTimeline() = %q, want %q", cfg.GetTimeline(), def.GetTimeline())
	}
	if cfg.GetHoverColor() != def.GetHoverColor() {
		t.Errorf("GetHoverColor() = %v, want %v", cfg.GetHoverColor(), def.GetHoverColor())
	}
	if cfg.GetHoverSizeMultiplier() != def.GetHoverSizeMultiplier() {
		t.Errorf("GetHoverSizeMultiplier() = %v, want %v", cfg.GetHoverSizeMultiplier(), def.GetHoverSizeMultiplier())
	}
	if cfg.GetDefaultInteractive() != true {
		t.Error("GetDefaultInteractive() should default to true")
	}
	if cfg.GetParallelWorkers() != 0 {
		t.Errorf("GetParallelWorkers() = %d, want 0", cfg.GetParallelWorkers())
	}
	if cfg.GetLogLevel() != LogLevelOps {
		t.Errorf("GetLogLevel() = %q, want ops", cfg.GetLogLevel())
	}
	if cfg.GetAnnotationsPath() != "" {
		t.Errorf("GetAnnotationsPath() = %q, want empty", cfg.GetAnnotationsPath())
	}
}

func TestLoadViewerConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "viewer.json")

	testJSON := `{
  "timeline": "log_time",
  "hover_color": "#00ff00",
  "hover_size_multiplier": 2,
  "default_interactive": false,
  "parallel_workers": 4,
  "log_level": "trace",
  "sqlite_busy_timeout": "250ms"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadViewerConfig(configPath)
	if err != nil {
		t.Fatalf("LoadViewerConfig failed: %v", err)
	}

	if cfg.GetTimeline() != store.TimelineLogTime {
		t.Errorf("GetTimeline() = %q, want log_time", cfg.GetTimeline())
	}
	if got := cfg.GetHoverColor(); got != (color.NRGBA{G: 255, A: 255}) {
		t.Errorf("GetHoverColor() = %v, want green", got)
	}
	if cfg.GetHoverSizeMultiplier() != 2 {
		t.Errorf("GetHoverSizeMultiplier() = %v, want 2", cfg.GetHoverSizeMultiplier())
	}
	if cfg.GetDefaultInteractive() {
		t.Error("GetDefaultInteractive() = true, want false")
	}
	if cfg.GetParallelWorkers() != 4 {
		t.Errorf("GetParallelWorkers() = %d, want 4", cfg.GetParallelWorkers())
	}
	if cfg.GetLogLevel() != LogLevelTrace {
		t.Errorf("GetLogLevel() = %q, want trace", cfg.GetLogLevel())
	}
	if cfg.GetSQLiteBusyTimeout() != 250*time.Millisecond {
		t.Errorf("GetSQLiteBusyTimeout() = %v, want 250ms", cfg.GetSQLiteBusyTimeout())
	}
	if cfg.AnnotationsPath != nil {
		t.Error("omitted annotations_path should stay nil")
	}
}

func TestLoadViewerConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		contents string
		wantErr  string
	}{
		{"wrong extension", "viewer.yaml", `{}`, ".json extension"},
		{"bad json", "bad.json", `{`, "failed to parse"},
		{"bad timeline", "tl.json", `{"timeline": "wall"}`, "timeline must be"},
		{"bad colour", "color.json", `{"hover_color": "red"}`, "hover_color"},
		{"small multiplier", "mult.json", `{"hover_size_multiplier": 0.5}`, "hover_size_multiplier"},
		{"negative workers", "workers.json", `{"parallel_workers": -1}`, "parallel_workers"},
		{"bad log level", "log.json", `{"log_level": "debug"}`, "log_level"},
		{"bad timeout", "timeout.json", `{"sqlite_busy_timeout": "soon"}`, "sqlite_busy_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.file)
			if err := os.WriteFile(path, []byte(tt.contents), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, err := LoadViewerConfig(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadViewerConfig(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	big := filepath.Join(tmpDir, "big.json")
	if err := os.WriteFile(big, make([]byte, 1024*1024+1), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadViewerConfig(big); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected too large error, got %v", err)
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	def := DefaultViewerConfig()
	if cfg.GetHoverColor() != def.GetHoverColor() {
		t.Errorf("defaults file hover colour %v differs from DefaultViewerConfig %v", cfg.GetHoverColor(), def.GetHoverColor())
	}
	if cfg.GetTimeline() != def.GetTimeline() || cfg.GetLogLevel() != def.GetLogLevel() {
		t.Error("defaults file differs from DefaultViewerConfig")
	}
}
