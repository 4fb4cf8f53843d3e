// Command infection-sim runs a scenario to completion from the command
// line and prints per-step statistics.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/JoshuaRadin37/Infection/internal/epidemic"
	"github.com/JoshuaRadin37/Infection/pkg/scenario"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		scenarioFile string
		steps        int
		ticksPerStep int
		logLevel     string
		jsonOut      bool
	)

	cmd := &cobra.Command{
		Use:   "infection-sim",
		Short: "Run an epidemic scenario to completion",
		Long: `infection-sim loads a scenario YAML file, seeds the configured
infections, and alternates clock updates with interaction passes until the
step budget is exhausted or no infections remain.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if scenarioFile == "" {
				return fmt.Errorf("--scenario is required")
			}
			return runScenario(scenarioFile, steps, ticksPerStep, logLevel, jsonOut)
		},
	}

	cmd.Flags().StringVar(&scenarioFile, "scenario", "", "path to scenario YAML file (required)")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps to run (0 uses the scenario's value, default 1000)")
	cmd.Flags().IntVar(&ticksPerStep, "ticks-per-step", 0, "simulated minutes per step (0 uses the scenario's value, default 20)")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit per-step stats as JSON lines")

	return cmd
}

func runScenario(path string, steps, ticksPerStep int, logLevel string, jsonOut bool) error {
	lvl, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", logLevel, err)
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zlog, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = zlog.Sync() }()
	sugar := zlog.Sugar()

	cfg, err := scenario.Load(path)
	if err != nil {
		return err
	}

	if steps <= 0 {
		steps = cfg.Steps
	}
	if steps <= 0 {
		steps = 1000
	}
	if ticksPerStep <= 0 {
		ticksPerStep = cfg.TicksPerStep
	}
	if ticksPerStep <= 0 {
		ticksPerStep = 20
	}

	factory := epidemic.NewPersonFactory()
	pop, pathogen, err := scenario.Build(cfg, factory)
	if err != nil {
		return err
	}
	pop.SetLogger(zapLogger{s: sugar})

	seeds := cfg.SeedInfections
	if seeds <= 0 {
		seeds = 1
	}
	for i := 0; i < seeds; i++ {
		pop.InfectOne(pathogen)
	}

	controller := epidemic.NewInteractionController(pop)
	controller.SetLogger(zapLogger{s: sugar})

	sugar.Infow("Simulation starting",
		"scenario", cfg.Name,
		"population", pop.Count(),
		"seeds", seeds,
		"steps", steps,
		"ticks_per_step", ticksPerStep,
	)

	enc := json.NewEncoder(os.Stdout)
	for i := 0; i < steps; i++ {
		pop.Update(ticksPerStep)
		controller.Run()

		stats := pop.CurrentStats()
		if jsonOut {
			if err := enc.Encode(stats); err != nil {
				return fmt.Errorf("encode stats: %w", err)
			}
		}

		if stats.Infected == 0 {
			sugar.Infow("Outbreak over", "step", i+1, "stats", stats)
			break
		}
	}

	printSummary(cfg.Name, pop)
	return nil
}

func printSummary(name string, pop *epidemic.Population) {
	stats := pop.CurrentStats()
	fmt.Printf("Simulation finished (scenario=%s, ticks=%d)\n", name, stats.Tick)
	fmt.Printf("  population:          %d\n", stats.Population)
	fmt.Printf("  currently infected:  %d\n", stats.Infected)
	fmt.Printf("  recovered:           %d\n", stats.Recovered)
	fmt.Printf("  dead:                %d\n", stats.Dead)
	fmt.Printf("  total ever infected: %d\n", stats.TotalEverInfected)
}

// zapLogger adapts a SugaredLogger to the simulation's Logger interface.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (z zapLogger) Debugf(format string, args ...interface{}) { z.s.Debugf(format, args...) }
func (z zapLogger) Infof(format string, args ...interface{})  { z.s.Infof(format, args...) }
func (z zapLogger) Warnf(format string, args ...interface{})  { z.s.Warnf(format, args...) }
func (z zapLogger) Errorf(format string, args ...interface{}) { z.s.Errorf(format, args...) }
