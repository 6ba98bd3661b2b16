// Computes the aggregate performance figures of a completed schedule:
// waiting, turnaround and response averages, throughput and CPU utilization.

package sim

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Metrics aggregates statistics about one scheduling run for final reporting.
type Metrics struct {
	Processes         int     `json:"processes"`
	AvgWaitingTime    float64 `json:"avg_waiting_time"`
	AvgTurnaroundTime float64 `json:"avg_turnaround_time"`
	AvgResponseTime   float64 `json:"avg_response_time"`
	Throughput        float64 `json:"throughput"`      // processes per tick
	CPUUtilization    float64 `json:"cpu_utilization"` // busy / elapsed, in [0, 1]
	BusyTime          int64   `json:"busy_time"`
	IdleTime          int64   `json:"idle_time"`
	Elapsed           int64   `json:"elapsed"`
	ContextSwitches   int     `json:"context_switches"`
}

// ComputeMetrics fills TurnaroundTime and WaitingTime on every element of
// procs in place and returns the aggregate record. procs must carry
// completion data; elapsed is the clock value at the end of the run.
//
// Response time is measured from arrival to first dispatch. Processes that
// were never dispatched are left out of that average instead of dragging it
// towards the sentinel.
func ComputeMetrics(procs []Process, gantt []GanttEntry, elapsed int64) Metrics {
	m := Metrics{Processes: len(procs), Elapsed: elapsed}

	waiting := make([]int64, 0, len(procs))
	turnaround := make([]int64, 0, len(procs))
	response := make([]int64, 0, len(procs))
	for i := range procs {
		p := &procs[i]
		p.TurnaroundTime = p.CompletionTime - p.ArrivalTime
		p.WaitingTime = p.TurnaroundTime - p.BurstTime
		waiting = append(waiting, p.WaitingTime)
		turnaround = append(turnaround, p.TurnaroundTime)
		if p.Dispatched() {
			response = append(response, p.ResponseTime-p.ArrivalTime)
		}
	}
	m.AvgWaitingTime = CalculateMean(waiting)
	m.AvgTurnaroundTime = CalculateMean(turnaround)
	m.AvgResponseTime = CalculateMean(response)

	for i, g := range gantt {
		m.BusyTime += g.Duration()
		if i > 0 && gantt[i-1].PID != g.PID {
			m.ContextSwitches++
		}
	}
	if elapsed > 0 {
		m.Throughput = float64(len(procs)) / float64(elapsed)
		m.IdleTime = elapsed - m.BusyTime
		if len(gantt) > 0 {
			m.CPUUtilization = float64(m.BusyTime) / float64(elapsed)
		}
	}
	return m
}

// Print writes a human-readable summary of the metrics.
func (m Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Scheduling Metrics ===")
	fmt.Fprintf(w, "Processes            : %d\n", m.Processes)
	fmt.Fprintf(w, "Elapsed              : %d ticks\n", m.Elapsed)
	fmt.Fprintf(w, "Average Waiting      : %.2f ticks\n", m.AvgWaitingTime)
	fmt.Fprintf(w, "Average Turnaround   : %.2f ticks\n", m.AvgTurnaroundTime)
	fmt.Fprintf(w, "Average Response     : %.2f ticks\n", m.AvgResponseTime)
	fmt.Fprintf(w, "Throughput           : %.4f processes/tick\n", m.Throughput)
	fmt.Fprintf(w, "CPU Utilization      : %.2f%%\n", m.CPUUtilization*100)
	fmt.Fprintf(w, "Context Switches     : %d\n", m.ContextSwitches)
}

// WriteJSON writes the full result as indented JSON.
func (r *Result) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling result: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	logrus.Debugf("Wrote %s result (%d bytes)", r.Policy, len(data))
	return nil
}
