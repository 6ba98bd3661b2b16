package cmd

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/resource-sim/resource-sim/sim/banker"
	"github.com/resource-sim/resource-sim/sim/trace"
	"github.com/resource-sim/resource-sim/sim/workload"
)

// bankerReport is what the banker command prints. Initial is the declared
// state; Final is the state after the requests were replayed.
type bankerReport struct {
	Scenario string                    `json:"scenario,omitempty"`
	Initial  banker.State              `json:"initial"`
	Safe     bool                      `json:"safe"`
	Order    []string                  `json:"order"`
	Outcomes []workload.RequestOutcome `json:"outcomes"`
	Final    banker.State              `json:"final"`
	Trace    *trace.TraceSummary       `json:"trace,omitempty"`
}

// analyzeBanker configures the safety engine from the scenario, checks the
// declared state and replays the scenario's requests.
func analyzeBanker(sc *workload.Scenario, st *trace.SimulationTrace) (*bankerReport, error) {
	if sc.Banker == nil {
		return nil, errors.New("scenario has no banker section")
	}
	e, err := sc.Banker.Build()
	if err != nil {
		return nil, err
	}
	e.WithTrace(st)

	report := &bankerReport{Scenario: sc.Name}
	if report.Initial, err = e.Snapshot(); err != nil {
		return nil, err
	}
	if report.Safe, report.Order, err = e.IsSafeState(); err != nil {
		return nil, err
	}
	if report.Outcomes, err = sc.Banker.Replay(e); err != nil {
		return nil, err
	}
	if report.Final, err = e.Snapshot(); err != nil {
		return nil, err
	}
	if st != nil {
		report.Trace = trace.Summarize(st)
	}
	return report, nil
}

// bankerCmd runs the Banker's safety algorithm over the scenario
var bankerCmd = &cobra.Command{
	Use:   "banker",
	Short: "Check the scenario's Banker's state for safety and replay its requests",
	Run: func(cmd *cobra.Command, args []string) {
		var st *trace.SimulationTrace
		if traceDecisions {
			st = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
		}
		report, err := analyzeBanker(mustLoadScenario(), st)
		if err != nil {
			logrus.Fatalf("Safety analysis failed: %v", err)
		}
		if jsonOutput {
			if err := writeJSON(os.Stdout, report); err != nil {
				logrus.Fatalf("%v", err)
			}
			return
		}
		renderBanker(os.Stdout, report)
	},
}
