package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/reactive/internal/inspect"
	"github.com/vango-dev/reactive/pkg/reactive"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a demo graph with metrics and a live event feed",
		Long: `Run a demo graph on an event loop and serve its telemetry.

A ticker increments a counter cell once per tick and records the tick's
remainder in a set cell, both inside one named batch. A computed summary
over the two is logged whenever it changes.

Endpoints:
  GET /healthz   JSON health and event-feed status
  GET /metrics   Prometheus metrics
  GET /events    WebSocket stream of engine events

Examples:
  reactive serve
  reactive serve --addr :9090
  reactive serve --config reactive.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Inspect.Addr = addr
			}
			logger, err := newLogger(cfg, os.Stderr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			printBanner(out)
			info(out, "Listening on http://%s", cfg.Inspect.Addr)
			info(out, "Press Ctrl+C to stop")
			fmt.Fprintln(out)

			return serve(ctx, serveOptions{
				buffer: cfg.Inspect.EventBuffer,
				tick:   cfg.Loop.TickInterval(),
				logger: logger,
				newGraph: func(hub *inspect.Hub) (*reactive.Runtime, *inspect.Server) {
					rt, reg := newRuntime(cfg, logger, hub)
					srv := inspect.New(inspect.Options{
						Addr:     cfg.Inspect.Addr,
						Gatherer: reg,
						Hub:      hub,
						Logger:   logger,
					})
					return rt, srv
				},
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a config file")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides config)")

	return cmd
}

type serveOptions struct {
	buffer   int
	tick     time.Duration
	logger   *slog.Logger
	newGraph func(hub *inspect.Hub) (*reactive.Runtime, *inspect.Server)
}

// demoGraph is the graph served by the serve command.
type demoGraph struct {
	owner   *reactive.Disposable
	ticks   *reactive.Counter[int]
	seen    *reactive.Set[int]
	summary *reactive.Computed[string]
}

func newDemoGraph(rt *reactive.Runtime, logger *slog.Logger) (*demoGraph, error) {
	ticks, err := reactive.NewCounter(rt, 0, reactive.Named("ticks"))
	if err != nil {
		return nil, err
	}
	seen, err := reactive.NewSet[int](rt, nil, reactive.Named("seen"))
	if err != nil {
		return nil, err
	}

	owner := rt.NewOwner()
	summary := reactive.Computed2(rt, owner, ticks, seen, func(n int, members reactive.Members[int]) string {
		keys := make([]int, 0, len(members))
		for k := range members {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		return fmt.Sprintf("%d ticks, remainders %v", n, keys)
	}).Named("summary")
	summary.Subscribe(func(s string) {
		logger.Info("summary changed", "summary", s)
	})

	return &demoGraph{owner: owner, ticks: ticks, seen: seen, summary: summary}, nil
}

// tick advances the graph by one step inside a single named batch.
func (g *demoGraph) tick(rt *reactive.Runtime) {
	rt.BatchedNamed("tick", func() {
		g.ticks.Inc()
		g.seen.Add(g.ticks.Get() % 7)
	})
}

func serve(ctx context.Context, opts serveOptions) error {
	hub := inspect.NewHub(opts.buffer, opts.logger)
	defer hub.Close()

	rt, srv := opts.newGraph(hub)
	loop := reactive.NewLoop(rt)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := loop.Run(ctx)
		if stderrors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return srv.ListenAndServe(ctx)
	})
	g.Go(func() error {
		defer loop.Close()

		var graph *demoGraph
		err := loop.Do(ctx, func() {
			var err error
			graph, err = newDemoGraph(rt, opts.logger)
			if err != nil {
				opts.logger.Error("demo graph", "error", err)
			}
		})
		if err != nil {
			return err
		}
		if graph == nil {
			return stderrors.New("demo graph could not be built")
		}

		ticker := time.NewTicker(opts.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := loop.Post(func() { graph.tick(rt) }); err != nil {
					return err
				}
			}
		}
	})

	return g.Wait()
}
