// Package trace provides decision-trace recording for scheduling and
// resource-request analysis.
// This package has no dependencies on sim/ or its engines — it stores pure data types.
package trace

// DispatchRecord captures a single CPU dispatch decision.
type DispatchRecord struct {
	PID       int
	Clock     int64 // dispatch time
	RunFor    int64 // ticks granted by this dispatch
	Remaining int64 // remaining burst before the dispatch
	Reason    string
}

// Preempted reports whether the dispatch ended before the process finished.
func (d DispatchRecord) Preempted() bool {
	return d.RunFor < d.Remaining
}

// RequestRecord captures a single resource-request decision of the safety engine.
type RequestRecord struct {
	ProcessID string
	Request   []int
	Granted   bool
	Reason    string
	SafeOrder []string // completion order witnessing the grant (nil when denied)
}
