package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDispatches      int
	Preemptions          int
	UniqueProcesses      int
	DispatchDistribution map[int]int // pid → number of dispatches
	TotalRequests        int
	GrantedCount         int
	DeniedCount          int
	DenialReasons        map[string]int // reason → count
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		DispatchDistribution: make(map[int]int),
		DenialReasons:        make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDispatches = len(st.Dispatches)
	for _, d := range st.Dispatches {
		summary.DispatchDistribution[d.PID]++
		if d.Preempted() {
			summary.Preemptions++
		}
	}
	summary.UniqueProcesses = len(summary.DispatchDistribution)

	summary.TotalRequests = len(st.Requests)
	for _, r := range st.Requests {
		if r.Granted {
			summary.GrantedCount++
		} else {
			summary.DeniedCount++
			summary.DenialReasons[r.Reason]++
		}
	}

	return summary
}
