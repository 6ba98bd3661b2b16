package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/resource-sim/resource-sim/sim/workload"
)

var (
	logLevel     string // Log verbosity level
	scenarioPath string // Path to a scenario YAML file
	presetName   string // Name of a built-in scenario
	quantum      int64  // Round Robin time quantum; 0 falls back to the scenario's
	jsonOutput   bool   // Emit JSON instead of rendered tables
	seed         int64  // Seed for the random preset
	randomSize   int    // Number of processes in the random preset
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "resource-sim",
	Short: "Simulator for CPU scheduling, deadlock detection and deadlock avoidance",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

var errNoScenario = errors.New("one of --scenario or --preset is required")

// loadScenario resolves the --scenario / --preset pair. Exactly one must be
// set. The random preset is drawn from seed with size processes.
func loadScenario(path, preset string, seed int64, size int) (*workload.Scenario, error) {
	switch {
	case path != "" && preset != "":
		return nil, errors.New("--scenario and --preset are mutually exclusive")
	case path != "":
		return workload.LoadScenario(path)
	case strings.EqualFold(preset, "random"):
		return workload.ScenarioRandom(seed, size)
	case preset != "":
		return workload.Preset(preset)
	default:
		return nil, errNoScenario
	}
}

func mustLoadScenario() *workload.Scenario {
	sc, err := loadScenario(scenarioPath, presetName, seed, randomSize)
	if err != nil {
		logrus.Fatalf("Failed to load scenario: %v", err)
	}
	logrus.Infof("Loaded scenario %q", sc.Name)
	return sc
}

// resolveQuantum prefers an explicit flag over the scenario's quantum.
func resolveQuantum(flag int64, sc *workload.Scenario) int64 {
	if flag > 0 {
		return flag
	}
	return sc.Quantum
}

func addScenarioFlags(c *cobra.Command) {
	c.Flags().StringVar(&scenarioPath, "scenario", "", "Path to a scenario YAML file")
	c.Flags().StringVar(&presetName, "preset", "", "Built-in scenario (convoy, dining-philosophers, random, textbook)")
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	for _, c := range []*cobra.Command{scheduleCmd, compareCmd, deadlockCmd, bankerCmd} {
		addScenarioFlags(c)
		c.Flags().BoolVar(&jsonOutput, "json", false, "Write JSON instead of rendered tables")
	}
	for _, c := range []*cobra.Command{scheduleCmd, compareCmd} {
		c.Flags().Int64Var(&quantum, "quantum", 0, "Round Robin time quantum (overrides the scenario's)")
		c.Flags().Int64Var(&seed, "seed", workload.DefaultRandomSeed, "Seed for the random preset")
		c.Flags().IntVar(&randomSize, "processes", workload.DefaultRandomSize, "Number of processes in the random preset")
	}

	scheduleCmd.Flags().StringVar(&policyName, "policy", "fcfs", "Scheduling policy (fcfs, sjf, srtf, rr, priority, priority-preemptive)")
	scheduleCmd.Flags().BoolVar(&traceDecisions, "trace", false, "Record and summarize every dispatch decision")
	bankerCmd.Flags().BoolVar(&traceDecisions, "trace", false, "Record and summarize every request decision")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")

	rootCmd.AddCommand(scheduleCmd, compareCmd, deadlockCmd, bankerCmd, serveCmd)
}
