package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/resource-sim/resource-sim/sim"
)

// compareCmd runs every policy over the same processes
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run all six scheduling policies concurrently and compare their metrics",
	Run: func(cmd *cobra.Command, args []string) {
		sc := mustLoadScenario()
		q := resolveQuantum(quantum, sc)
		if q <= 0 {
			logrus.Fatalf("compare runs Round Robin and needs a positive --quantum (scenario %q has none)", sc.Name)
		}

		cmp, err := sim.CompareAll(cmd.Context(), sc.ProcessSpecs(), sim.Params{TimeQuantum: q})
		if err != nil {
			logrus.Fatalf("Compare failed: %v", err)
		}

		if jsonOutput {
			if err := writeJSON(os.Stdout, cmp); err != nil {
				logrus.Fatalf("%v", err)
			}
			return
		}
		renderComparison(os.Stdout, cmp)
	},
}
