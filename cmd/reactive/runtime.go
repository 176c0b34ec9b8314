package main

import (
	stderrors "errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vango-dev/reactive/internal/config"
	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/internal/logging"
	"github.com/vango-dev/reactive/pkg/metrics"
	"github.com/vango-dev/reactive/pkg/reactive"
	"github.com/vango-dev/reactive/pkg/tracing"
)

// loadConfig reads path, or reactive.{json,yaml,yml} in the working
// directory when path is empty. A missing default file yields the defaults.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(".")
		var e *errors.Error
		if stderrors.As(err, &e) && e.Code == "R101" {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, errors.New("R102").Wrap(err)
	}
	return logging.New(level, cfg.Log.Format, w), nil
}

// newRuntime builds a runtime with the observers cfg enables, plus extra.
// The returned registry holds the engine metrics when they are enabled.
func newRuntime(cfg *config.Config, logger *slog.Logger, extra ...reactive.Observer) (*reactive.Runtime, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	observers := append([]reactive.Observer(nil), extra...)
	if cfg.Metrics.Enabled {
		observers = append(observers, metrics.New(
			metrics.WithRegistry(reg),
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithSubsystem(cfg.Metrics.Subsystem),
		))
	}
	if cfg.Tracing.Enabled {
		observers = append(observers, tracing.New(tracing.WithTracerName(cfg.Tracing.TracerName)))
	}

	rt := reactive.NewRuntime(
		reactive.WithLogger(logger),
		reactive.WithObserver(reactive.Observers(observers...)),
		reactive.WithQueueSize(cfg.Loop.QueueSize),
	)
	return rt, reg
}
