package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/reactive/internal/errors"
)

func errorCode(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Inspect.Addr != DefaultInspectAddr {
		t.Errorf("Inspect.Addr = %q, want %q", cfg.Inspect.Addr, DefaultInspectAddr)
	}
	if !cfg.Metrics.Enabled || cfg.Tracing.Enabled {
		t.Errorf("expected metrics on and tracing off, got %v and %v", cfg.Metrics.Enabled, cfg.Tracing.Enabled)
	}
	if cfg.Loop.TickInterval() != time.Second {
		t.Errorf("Loop.TickInterval() = %v, want 1s", cfg.Loop.TickInterval())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(tmpDir)
	if errorCode(err) != "R101" {
		t.Errorf("expected R101 for missing config, got %v", err)
	}

	configJSON := `{
  "log": {"level": "debug", "format": "json"},
  "metrics": {"enabled": false},
  "inspect": {"addr": ":9000"},
  "loop": {"tick": "250ms"}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, "reactive.json"), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want debug/json", cfg.Log)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false")
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want default", cfg.Metrics.Namespace)
	}
	if cfg.Inspect.Addr != ":9000" {
		t.Errorf("Inspect.Addr = %q, want %q", cfg.Inspect.Addr, ":9000")
	}
	if cfg.Inspect.EventBuffer != DefaultEventBuffer {
		t.Errorf("Inspect.EventBuffer = %d, want default", cfg.Inspect.EventBuffer)
	}
	if cfg.Loop.TickInterval() != 250*time.Millisecond {
		t.Errorf("Loop.TickInterval() = %v, want 250ms", cfg.Loop.TickInterval())
	}
	if cfg.Path() != filepath.Join(tmpDir, "reactive.json") {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configYAML := `
log:
  level: warn
tracing:
  enabled: true
  tracerName: checkout
inspect:
  eventBuffer: 16
loop:
  queueSize: 8
`
	path := filepath.Join(tmpDir, "reactive.yml")
	if err := os.WriteFile(path, []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.TracerName != "checkout" {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
	if cfg.Inspect.EventBuffer != 16 || cfg.Loop.QueueSize != 8 {
		t.Errorf("EventBuffer = %d, QueueSize = %d", cfg.Inspect.EventBuffer, cfg.Loop.QueueSize)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tmpDir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(tmpDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name string
		path string
		code string
	}{
		{"missing", filepath.Join(tmpDir, "nope.json"), "R101"},
		{"bad json", write("bad.json", "{"), "R100"},
		{"bad yaml", write("bad.yaml", "log: [unclosed"), "R100"},
		{"unknown key", write("unknown.json", `{"logging": {}}`), "R100"},
		{"wrong type", write("type.json", `{"inspect": {"eventBuffer": "many"}}`), "R100"},
		{"unsupported", write("reactive.toml", "x = 1"), "R100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(tt.path)
			if got := errorCode(err); got != tt.code {
				t.Errorf("LoadFile() code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"buffer", func(c *Config) { c.Inspect.EventBuffer = 0 }, "inspect.eventBuffer"},
		{"queue", func(c *Config) { c.Loop.QueueSize = -1 }, "loop.queueSize"},
		{"tick", func(c *Config) { c.Loop.Tick = "soon" }, "loop.tick"},
		{"zero tick", func(c *Config) { c.Loop.Tick = "0s" }, "loop.tick"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if errorCode(err) != "R102" {
				t.Fatalf("Validate() = %v, want R102", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err.Error(), tt.field)
			}
		})
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()

	for _, name := range []string{"reactive.json", "reactive.yaml"} {
		t.Run(name, func(t *testing.T) {
			cfg := New()
			cfg.Log.Level = "error"
			cfg.Inspect.Addr = ":8181"

			path := filepath.Join(tmpDir, name)
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo error: %v", err)
			}
			if cfg.Path() != path {
				t.Errorf("Path() = %q, want %q", cfg.Path(), path)
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile error: %v", err)
			}
			if loaded.Log.Level != "error" || loaded.Inspect.Addr != ":8181" {
				t.Errorf("loaded %+v %+v", loaded.Log, loaded.Inspect)
			}
		})
	}
}

func TestSaveWithoutPath(t *testing.T) {
	if err := New().Save(); err == nil {
		t.Error("expected error saving a config with no path")
	}
}
