package cmd

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/resource-sim/resource-sim/sim/deadlock"
	"github.com/resource-sim/resource-sim/sim/workload"
)

// deadlockReport is what the deadlock command prints.
type deadlockReport struct {
	Scenario   string              `json:"scenario,omitempty"`
	Resources  []deadlock.Resource `json:"resources"`
	Edges      []deadlock.Edge     `json:"edges"`
	WaitFor    map[string][]string `json:"wait_for"`
	Deadlocked bool                `json:"deadlocked"`
	Cycle      []string            `json:"cycle"`
}

// analyzeGraph builds the scenario's resource graph and searches it for a cycle.
func analyzeGraph(sc *workload.Scenario) (*deadlockReport, error) {
	if sc.Graph == nil {
		return nil, errors.New("scenario has no graph section")
	}
	g, err := sc.Graph.Build()
	if err != nil {
		return nil, err
	}
	cycle := g.DetectDeadlock()
	return &deadlockReport{
		Scenario:   sc.Name,
		Resources:  g.Resources(),
		Edges:      g.Edges(),
		WaitFor:    g.WaitFor(),
		Deadlocked: len(cycle) > 0,
		Cycle:      cycle,
	}, nil
}

// deadlockCmd checks the scenario's resource-allocation graph for a deadlock
var deadlockCmd = &cobra.Command{
	Use:   "deadlock",
	Short: "Detect a deadlock in the scenario's resource-allocation graph",
	Run: func(cmd *cobra.Command, args []string) {
		report, err := analyzeGraph(mustLoadScenario())
		if err != nil {
			logrus.Fatalf("Deadlock detection failed: %v", err)
		}
		if jsonOutput {
			if err := writeJSON(os.Stdout, report); err != nil {
				logrus.Fatalf("%v", err)
			}
			return
		}
		renderDeadlock(os.Stdout, report)
	},
}
