package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/resource-sim/resource-sim/sim"
	"github.com/resource-sim/resource-sim/sim/trace"
)

var (
	policyName     string // Scheduling policy name or alias
	traceDecisions bool   // Record decision traces
)

// scheduleCmd runs one policy over the scenario's processes
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Simulate one CPU scheduling policy and print its Gantt chart and metrics",
	Run: func(cmd *cobra.Command, args []string) {
		sc := mustLoadScenario()
		policy, err := sim.ParsePolicy(policyName)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		level := trace.TraceLevelNone
		if traceDecisions {
			level = trace.TraceLevelDecisions
		}
		st := trace.NewSimulationTrace(trace.TraceConfig{Level: level})

		res, err := sim.Run(policy, sc.ProcessSpecs(), sim.Params{
			TimeQuantum: resolveQuantum(quantum, sc),
			Trace:       st,
		})
		if err != nil {
			logrus.Fatalf("Schedule failed: %v", err)
		}

		if jsonOutput {
			if err := res.WriteJSON(os.Stdout); err != nil {
				logrus.Fatalf("%v", err)
			}
			return
		}
		renderSchedule(os.Stdout, res)
		if st != nil {
			renderTraceSummary(os.Stdout, trace.Summarize(st))
		}
		logrus.Info("Schedule complete.")
	},
}
