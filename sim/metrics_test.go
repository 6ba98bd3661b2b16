package sim

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finished(pid int, arrival, burst, completion, response int64) Process {
	p := *newProcess(ProcessSpec{PID: pid, ArrivalTime: arrival, BurstTime: burst})
	p.RemainingTime = 0
	p.CompletionTime = completion
	p.ResponseTime = response
	return p
}

func TestComputeMetrics_DerivesPerProcessFields(t *testing.T) {
	// GIVEN two completed processes
	procs := []Process{finished(1, 0, 5, 5, 0), finished(2, 1, 3, 8, 5)}
	gantt := []GanttEntry{{1, 0, 5}, {2, 5, 8}}

	// WHEN metrics are computed
	m := ComputeMetrics(procs, gantt, 8)

	// THEN turnaround and waiting are filled in place
	assert.Equal(t, int64(5), procs[0].TurnaroundTime)
	assert.Equal(t, int64(0), procs[0].WaitingTime)
	assert.Equal(t, int64(7), procs[1].TurnaroundTime)
	assert.Equal(t, int64(4), procs[1].WaitingTime)

	// THEN the aggregate reflects them
	assert.Equal(t, 2, m.Processes)
	assert.InDelta(t, 2.0, m.AvgWaitingTime, 1e-9)
	assert.InDelta(t, 6.0, m.AvgTurnaroundTime, 1e-9)
	assert.InDelta(t, 2.0, m.AvgResponseTime, 1e-9)
	assert.InDelta(t, 0.25, m.Throughput, 1e-9)
	assert.InDelta(t, 1.0, m.CPUUtilization, 1e-9)
	assert.Equal(t, int64(8), m.BusyTime)
	assert.Equal(t, int64(0), m.IdleTime)
	assert.Equal(t, 1, m.ContextSwitches)
}

func TestComputeMetrics_UndispatchedProcess_ExcludedFromResponse(t *testing.T) {
	// GIVEN one process that ran and one whose response is still unset
	procs := []Process{finished(1, 0, 2, 2, 0), finished(2, 0, 2, 0, ResponseUnset)}
	procs[0].ResponseTime = 1

	m := ComputeMetrics(procs, []GanttEntry{{1, 1, 3}}, 3)

	// THEN the sentinel does not drag the response average down
	assert.InDelta(t, 1.0, m.AvgResponseTime, 1e-9)
}

func TestComputeMetrics_ZeroElapsed_ZeroRates(t *testing.T) {
	m := ComputeMetrics(nil, nil, 0)

	assert.Equal(t, Metrics{}, m)
}

func TestComputeMetrics_NoEntries_ZeroUtilization(t *testing.T) {
	m := ComputeMetrics(nil, nil, 10)

	assert.Zero(t, m.CPUUtilization)
	assert.Zero(t, m.Throughput)
}

func TestComputeMetrics_SamePIDAdjacentEntries_NoContextSwitch(t *testing.T) {
	gantt := []GanttEntry{{1, 0, 2}, {1, 2, 4}, {2, 4, 5}}

	m := ComputeMetrics(nil, gantt, 5)

	assert.Equal(t, 1, m.ContextSwitches)
}

func TestMetrics_Print(t *testing.T) {
	var buf bytes.Buffer
	Metrics{Processes: 3, AvgWaitingTime: 10.0 / 3.0, CPUUtilization: 0.5}.Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "=== Scheduling Metrics ===")
	assert.Contains(t, out, "Average Waiting      : 3.33 ticks")
	assert.Contains(t, out, "CPU Utilization      : 50.00%")
}

func TestResult_WriteJSON_OmitsRemainingTime(t *testing.T) {
	res := mustRun(t, PolicyFCFS, procSpecs([3]int64{1, 0, 2}), 0)
	var buf bytes.Buffer

	require.NoError(t, res.WriteJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "fcfs", decoded["policy"])
	assert.NotContains(t, decoded, "quantum")
	procs := decoded["processes"].([]any)
	require.Len(t, procs, 1)
	first := procs[0].(map[string]any)
	assert.NotContains(t, first, "RemainingTime")
	assert.Equal(t, float64(2), first["completion_time"])
}
