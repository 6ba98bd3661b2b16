// Package testutil provides shared test infrastructure for the scheduler.
// It holds the golden schedule dataset types and assertion helpers used by
// the sim test package and the api tests.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one policy run over one workload with its expected timeline.
type GoldenTestCase struct {
	Workload  string          `json:"workload"`
	Policy    string          `json:"policy"`
	Quantum   int64           `json:"quantum"`
	Processes []GoldenProcess `json:"processes"`
	Gantt     []GoldenSegment `json:"gantt"`
	Metrics   GoldenMetrics   `json:"metrics"`
}

// GoldenProcess mirrors a process spec without importing the sim package.
type GoldenProcess struct {
	PID      int   `json:"pid"`
	Arrival  int64 `json:"arrival"`
	Burst    int64 `json:"burst"`
	Priority int   `json:"priority"`
}

// GoldenSegment is one expected Gantt entry.
type GoldenSegment struct {
	PID   int   `json:"pid"`
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// GoldenMetrics represents the expected metrics from a golden test case.
type GoldenMetrics struct {
	// Exact match
	Elapsed         int64 `json:"elapsed"`
	ContextSwitches int   `json:"context_switches"`

	// Averages, compared with relative tolerance
	AvgWaitingTime    float64 `json:"avg_waiting_time"`
	AvgTurnaroundTime float64 `json:"avg_turnaround_time"`
	AvgResponseTime   float64 `json:"avg_response_time"`
	CPUUtilization    float64 `json:"cpu_utilization"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertTimeline checks the structural properties every schedule must have:
// entries are non-empty and appended in non-decreasing start order, no two
// entries overlap, and the CPU time given to each pid sums to its burst.
// bursts maps pid to burst time.
func AssertTimeline(t *testing.T, bursts map[int]int64, segments []GoldenSegment) {
	t.Helper()
	served := make(map[int]int64, len(bursts))
	for i, s := range segments {
		if s.End <= s.Start {
			t.Errorf("entry %d (pid %d): end %d <= start %d", i, s.PID, s.End, s.Start)
		}
		if i > 0 {
			prev := segments[i-1]
			if s.Start < prev.Start {
				t.Errorf("entry %d starts at %d before entry %d at %d", i, s.Start, i-1, prev.Start)
			}
			if s.Start < prev.End {
				t.Errorf("entry %d (pid %d) [%d,%d) overlaps entry %d (pid %d) [%d,%d)",
					i, s.PID, s.Start, s.End, i-1, prev.PID, prev.Start, prev.End)
			}
		}
		served[s.PID] += s.End - s.Start
	}
	for pid, burst := range bursts {
		if served[pid] != burst {
			t.Errorf("pid %d: served %d ticks, burst %d", pid, served[pid], burst)
		}
	}
	for pid := range served {
		if _, ok := bursts[pid]; !ok {
			t.Errorf("pid %d appears in the timeline but not in the input", pid)
		}
	}
}
