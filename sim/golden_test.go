package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	simtest "github.com/resource-sim/resource-sim/sim/internal/testutil"
)

// TestRun_GoldenDataset pins complete timelines and metrics for every policy.
func TestRun_GoldenDataset(t *testing.T) {
	dataset := simtest.LoadGoldenDataset(t)
	require.NotEmpty(t, dataset.Tests)

	for _, tc := range dataset.Tests {
		t.Run(tc.Workload+"/"+tc.Policy, func(t *testing.T) {
			policy, err := ParsePolicy(tc.Policy)
			require.NoError(t, err)
			in := make([]ProcessSpec, len(tc.Processes))
			for i, p := range tc.Processes {
				in[i] = ProcessSpec{PID: p.PID, ArrivalTime: p.Arrival, BurstTime: p.Burst, Priority: p.Priority}
			}

			res := mustRun(t, policy, in, tc.Quantum)

			assert.Equal(t, tc.Gantt, toSegments(res.Gantt))
			assert.Equal(t, tc.Metrics.Elapsed, res.Elapsed)
			assert.Equal(t, tc.Metrics.ContextSwitches, res.Metrics.ContextSwitches)
			simtest.AssertFloat64Equal(t, "avg_waiting_time", tc.Metrics.AvgWaitingTime, res.Metrics.AvgWaitingTime, 1e-9)
			simtest.AssertFloat64Equal(t, "avg_turnaround_time", tc.Metrics.AvgTurnaroundTime, res.Metrics.AvgTurnaroundTime, 1e-9)
			simtest.AssertFloat64Equal(t, "avg_response_time", tc.Metrics.AvgResponseTime, res.Metrics.AvgResponseTime, 1e-9)
			simtest.AssertFloat64Equal(t, "cpu_utilization", tc.Metrics.CPUUtilization, res.Metrics.CPUUtilization, 1e-9)
		})
	}
}
