// Defines the process records that every scheduling run operates on.
// A ProcessSpec is what the caller declares; a Process is the per-run copy
// carrying the mutable simulation state.

package sim

import (
	"errors"
	"fmt"
	"math"
)

// ResponseUnset marks a process that has not been dispatched yet.
const ResponseUnset int64 = -1

var (
	// ErrDuplicatePID is returned when two specs in the same set share a PID.
	ErrDuplicatePID = errors.New("duplicate pid")
	// ErrInvalidProcess is returned for negative arrivals or non-positive bursts.
	ErrInvalidProcess = errors.New("invalid process")
)

// ProcessSpec declares a process before a run. Specs are never mutated by the
// scheduler.
type ProcessSpec struct {
	PID         int   `json:"pid" yaml:"pid"`
	ArrivalTime int64 `json:"arrival" yaml:"arrival"`
	BurstTime   int64 `json:"burst" yaml:"burst"`
	Priority    int   `json:"priority" yaml:"priority"` // lower = more urgent
}

// Validate checks the spec's ranges.
func (s ProcessSpec) Validate() error {
	if s.ArrivalTime < 0 {
		return fmt.Errorf("pid %d: arrival must be non-negative, got %d: %w", s.PID, s.ArrivalTime, ErrInvalidProcess)
	}
	if s.BurstTime <= 0 {
		return fmt.Errorf("pid %d: burst must be positive, got %d: %w", s.PID, s.BurstTime, ErrInvalidProcess)
	}
	if s.ArrivalTime > math.MaxInt64-s.BurstTime {
		return fmt.Errorf("pid %d: arrival %d + burst %d overflows the clock: %w", s.PID, s.ArrivalTime, s.BurstTime, ErrInvalidProcess)
	}
	return nil
}

// Process is the simulation record of one ProcessSpec within a single run.
type Process struct {
	ProcessSpec

	RemainingTime  int64 `json:"-"`               // CPU units still owed; reaches 0 on completion
	CompletionTime int64 `json:"completion_time"` // 0 until finished
	WaitingTime    int64 `json:"waiting_time"`    // turnaround - burst, filled by ComputeMetrics
	TurnaroundTime int64 `json:"turnaround_time"` // completion - arrival, filled by ComputeMetrics
	ResponseTime   int64 `json:"response_time"`   // clock of first dispatch, ResponseUnset before that
}

// newProcess returns a record in its initial state.
func newProcess(spec ProcessSpec) *Process {
	return &Process{
		ProcessSpec:   spec,
		RemainingTime: spec.BurstTime,
		ResponseTime:  ResponseUnset,
	}
}

// Dispatched reports whether the process has been given the CPU at least once.
func (p *Process) Dispatched() bool {
	return p.ResponseTime != ResponseUnset
}

// markDispatched records the first dispatch. Later calls are no-ops.
func (p *Process) markDispatched(clock int64) {
	if !p.Dispatched() {
		p.ResponseTime = clock
	}
}

func (p Process) String() string {
	return fmt.Sprintf("Process: (PID: %d, Arrival: %d, Burst: %d, Priority: %d, Remaining: %d)",
		p.PID, p.ArrivalTime, p.BurstTime, p.Priority, p.RemainingTime)
}

// GanttEntry is a contiguous interval during which one process held the CPU.
type GanttEntry struct {
	PID   int   `json:"pid"`
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Duration returns End - Start.
func (g GanttEntry) Duration() int64 {
	return g.End - g.Start
}

// copySpecs builds a fresh set of records from specs, rejecting invalid or
// duplicate entries before anything runs. No schedule ends later than the
// latest arrival plus the total burst, so a set where that sum overflows
// int64 is rejected too.
func copySpecs(specs []ProcessSpec) ([]*Process, error) {
	seen := make(map[int]bool, len(specs))
	procs := make([]*Process, 0, len(specs))
	var latest, work int64
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if seen[s.PID] {
			return nil, fmt.Errorf("pid %d: %w", s.PID, ErrDuplicatePID)
		}
		if work > math.MaxInt64-s.BurstTime {
			return nil, fmt.Errorf("total burst overflows the clock at pid %d: %w", s.PID, ErrInvalidProcess)
		}
		work += s.BurstTime
		latest = max(latest, s.ArrivalTime)
		seen[s.PID] = true
		procs = append(procs, newProcess(s))
	}
	if latest > math.MaxInt64-work {
		return nil, fmt.Errorf("latest arrival %d + total burst %d overflows the clock: %w", latest, work, ErrInvalidProcess)
	}
	return procs, nil
}
