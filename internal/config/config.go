package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/vango-dev/reactive/internal/errors"
	"gopkg.in/yaml.v3"
)

const (
	// FileBase is the configuration file name without extension. Load looks
	// for FileBase plus each of Extensions, in order.
	FileBase = "reactive"

	// DefaultLogLevel is the default slog level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log handler.
	DefaultLogFormat = "text"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "reactive"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "reactive"

	// DefaultInspectAddr is the default address of the inspect server.
	DefaultInspectAddr = "localhost:7070"

	// DefaultEventBuffer is the default per-client event buffer.
	DefaultEventBuffer = 256

	// DefaultQueueSize is the default deferred queue preallocation.
	DefaultQueueSize = 64

	// DefaultTick is the default interval of the serve demo's ticking cell.
	DefaultTick = "1s"
)

// Extensions are the configuration file extensions Load tries.
var Extensions = []string{".json", ".yaml", ".yml"}

// Config represents a reactive.json or reactive.yaml file.
type Config struct {
	// Log configures the slog logger.
	Log LogConfig `json:"log" yaml:"log"`

	// Metrics configures the Prometheus observer.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Tracing configures the OpenTelemetry observer.
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// Inspect configures the HTTP inspect server.
	Inspect InspectConfig `json:"inspect" yaml:"inspect"`

	// Loop configures the runtime and its event loop.
	Loop LoopConfig `json:"loop" yaml:"loop"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled attaches the Prometheus observer to the runtime.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`

	// Subsystem is the metrics subsystem.
	Subsystem string `json:"subsystem,omitempty" yaml:"subsystem,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled attaches the tracing observer to the runtime.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// TracerName is the tracer name.
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// InspectConfig contains inspect server settings.
type InspectConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// EventBuffer is the number of events buffered per websocket client
	// before events are dropped for that client.
	EventBuffer int `json:"eventBuffer,omitempty" yaml:"eventBuffer,omitempty"`
}

// LoopConfig contains runtime and loop settings.
type LoopConfig struct {
	// QueueSize preallocates the deferred queue.
	QueueSize int `json:"queueSize,omitempty" yaml:"queueSize,omitempty"`

	// Tick is the interval of the serve demo's ticking cell (e.g. "500ms").
	Tick string `json:"tick,omitempty" yaml:"tick,omitempty"`
}

// TickInterval returns Tick parsed as a duration, or zero if it is invalid.
func (l LoopConfig) TickInterval() time.Duration {
	d, err := time.ParseDuration(l.Tick)
	if err != nil {
		return 0
	}
	return d
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			Enabled:    false,
			TracerName: DefaultTracerName,
		},
		Inspect: InspectConfig{
			Addr:        DefaultInspectAddr,
			EventBuffer: DefaultEventBuffer,
		},
		Loop: LoopConfig{
			QueueSize: DefaultQueueSize,
			Tick:      DefaultTick,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for reactive.json, reactive.yaml and reactive.yml in that order.
func Load(dir string) (*Config, error) {
	for _, ext := range Extensions {
		path := filepath.Join(dir, FileBase+ext)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("R101").
		WithDetail("No " + FileBase + ".json or " + FileBase + ".yaml found in " + dir)
}

// LoadFile reads configuration from the specified file path. The format is
// chosen by extension. Keys missing from the file keep their defaults;
// unknown keys are an error.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("R101").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("R100").Wrap(err)
	}

	var raw map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, errors.New("R100").
			WithDetailf("Unsupported configuration format %q", ext).
			WithSuggestion("Use a .json, .yaml or .yml file")
	}
	if err != nil {
		return nil, errors.New("R100").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error())
	}

	cfg := New()
	if err := decode(raw, cfg); err != nil {
		return nil, errors.New("R100").
			WithDetail("Failed to decode " + filepath.Base(path) + ": " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// decode copies raw onto cfg, matching keys by their json tag names.
func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "json",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML for .yaml
// and .yml files and as JSON otherwise.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("R100").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("R100").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
	if c.Inspect.Addr == "" {
		c.Inspect.Addr = DefaultInspectAddr
	}
	if c.Inspect.EventBuffer == 0 {
		c.Inspect.EventBuffer = DefaultEventBuffer
	}
	if c.Loop.Tick == "" {
		c.Loop.Tick = DefaultTick
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("R102").
			WithDetailf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("R102").
			WithDetailf("log.format %q is not text or json", c.Log.Format)
	}
	if c.Inspect.EventBuffer < 1 {
		return errors.New("R102").
			WithDetail("inspect.eventBuffer must be at least 1")
	}
	if c.Loop.QueueSize < 0 {
		return errors.New("R102").
			WithDetail("loop.queueSize must not be negative")
	}
	if c.Loop.TickInterval() <= 0 {
		return errors.New("R102").
			WithDetailf("loop.tick %q is not a positive duration", c.Loop.Tick)
	}
	return nil
}
