package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// scenario is a reference run of the engine with a checked outcome.
type scenario struct {
	Name  string
	Title string
	Run   func(rt *reactive.Runtime, w io.Writer) error
}

var scenarios = []scenario{
	{Name: "A", Title: "equal writes are suppressed", Run: scenarioA},
	{Name: "B", Title: "computed nodes recompute lazily", Run: scenarioB},
	{Name: "C", Title: "a batch delivers once", Run: scenarioC},
	{Name: "D", Title: "disposing an owner detaches its nodes", Run: scenarioD},
}

func findScenario(name string) (scenario, bool) {
	for _, s := range scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return scenario{}, false
}

func scenariosCmd() *cobra.Command {
	var (
		name       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "Run the reference scenarios",
		Long: `Run the engine's reference scenarios against a fresh runtime each
and check their outcomes.

Examples:
  reactive scenarios
  reactive scenarios --name C
  reactive scenarios --config reactive.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, os.Stderr)
			if err != nil {
				return err
			}

			selected := scenarios
			if name != "" {
				s, ok := findScenario(name)
				if !ok {
					return errors.New("R150").WithDetailf("No scenario named %q", name)
				}
				selected = []scenario{s}
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, s := range selected {
				rt, _ := newRuntime(cfg, logger)
				if err := s.Run(rt, out); err != nil {
					failed++
					errorMsg(out, "%s: %s (%v)", s.Name, s.Title, err)
					continue
				}
				success(out, "%s: %s", s.Name, s.Title)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, len(selected))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Run a single scenario (A, B, C or D)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a config file")

	return cmd
}

func scenarioA(rt *reactive.Runtime, w io.Writer) error {
	c, err := reactive.NewScalar(rt, 10, reactive.Named("c"))
	if err != nil {
		return err
	}
	var got []int
	c.Subscribe(func(v int) { got = append(got, v) })

	if err := c.Set(10); err != nil {
		return err
	}
	if len(got) != 0 {
		return fmt.Errorf("equal write notified %v", got)
	}
	if err := c.Set(20); err != nil {
		return err
	}
	info(w, "records: %v", got)
	if !slices.Equal(got, []int{20}) {
		return fmt.Errorf("expected [20], got %v", got)
	}
	return nil
}

func scenarioB(rt *reactive.Runtime, w io.Writer) error {
	owner := rt.NewOwner()
	defer owner.Dispose()

	a, err := reactive.NewScalar(rt, 2, reactive.Named("a"))
	if err != nil {
		return err
	}
	b, err := reactive.NewScalar(rt, 3, reactive.Named("b"))
	if err != nil {
		return err
	}
	runs := 0
	d := reactive.Computed2(rt, owner, a, b, func(x, y int) int {
		runs++
		return x + y
	}).Named("d")

	if v := d.Get(); v != 5 || runs != 1 {
		return fmt.Errorf("expected 5 after one run, got %d after %d", v, runs)
	}
	if err := a.Set(5); err != nil {
		return err
	}
	if runs != 1 {
		return fmt.Errorf("write recomputed eagerly (%d runs)", runs)
	}
	v := d.Get()
	info(w, "d = %d after %d runs", v, runs)
	if v != 8 || runs != 2 {
		return fmt.Errorf("expected 8 after two runs, got %d after %d", v, runs)
	}
	return nil
}

func scenarioC(rt *reactive.Runtime, w io.Writer) error {
	owner := rt.NewOwner()
	defer owner.Dispose()

	a, err := reactive.NewScalar(rt, 0, reactive.Named("a"))
	if err != nil {
		return err
	}
	b, err := reactive.NewScalar(rt, 0, reactive.Named("b"))
	if err != nil {
		return err
	}
	sum := reactive.Computed2(rt, owner, a, b, func(x, y int) int { return x + y }).Named("sum")
	var got []int
	sum.Subscribe(func(v int) { got = append(got, v) })

	rt.Run(func() {
		rt.Batched(func() {
			a.Set(1)
			b.Set(2)
		})
	})
	info(w, "deliveries: %v", got)
	if !slices.Equal(got, []int{3}) {
		return fmt.Errorf("expected [3], got %v", got)
	}
	return nil
}

func scenarioD(rt *reactive.Runtime, w io.Writer) error {
	a, err := reactive.NewScalar(rt, 1, reactive.Named("a"))
	if err != nil {
		return err
	}
	b, err := reactive.NewScalar(rt, 2, reactive.Named("b"))
	if err != nil {
		return err
	}
	beforeA, beforeB := a.Subscribers(), b.Subscribers()

	owner := rt.NewOwner()
	sum := reactive.Computed2(rt, owner, a, b, func(x, y int) int { return x + y })
	double := reactive.Computed1(rt, owner, a, func(x int) int { return 2 * x })
	sum.Get()
	double.Get()
	info(w, "attached: a=%d b=%d", a.Subscribers(), b.Subscribers())

	owner.Dispose()
	info(w, "disposed: a=%d b=%d", a.Subscribers(), b.Subscribers())
	if a.Subscribers() != beforeA || b.Subscribers() != beforeB {
		return fmt.Errorf("expected a=%d b=%d, got a=%d b=%d",
			beforeA, beforeB, a.Subscribers(), b.Subscribers())
	}
	return nil
}
