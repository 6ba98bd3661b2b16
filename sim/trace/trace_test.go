package trace

import (
	"testing"
)

func TestSimulationTrace_RecordDispatch_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN a dispatch record is recorded
	st.RecordDispatch(DispatchRecord{
		PID:       1,
		Clock:     10,
		RunFor:    2,
		Remaining: 5,
		Reason:    "rr queue=[]",
	})

	// THEN the trace contains one dispatch record with correct data
	if len(st.Dispatches) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(st.Dispatches))
	}
	if st.Dispatches[0].PID != 1 {
		t.Errorf("expected pid 1, got %d", st.Dispatches[0].PID)
	}
	if !st.Dispatches[0].Preempted() {
		t.Error("expected a 2-tick slice of a 5-tick remainder to count as preempted")
	}
}

func TestSimulationTrace_RecordRequest_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN a request record is recorded
	st.RecordRequest(RequestRecord{
		ProcessID: "P1",
		Request:   []int{1, 0, 2},
		Granted:   true,
		Reason:    "granted",
		SafeOrder: []string{"P1", "P3", "P0", "P2", "P4"},
	})

	// THEN the trace contains one request record with correct data
	if len(st.Requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(st.Requests))
	}
	if st.Requests[0].ProcessID != "P1" || !st.Requests[0].Granted {
		t.Errorf("unexpected record %+v", st.Requests[0])
	}
}

func TestSimulationTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	// GIVEN a trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN multiple records are added
	st.RecordDispatch(DispatchRecord{PID: 1, Clock: 0, RunFor: 2, Remaining: 2})
	st.RecordDispatch(DispatchRecord{PID: 2, Clock: 2, RunFor: 3, Remaining: 3})
	st.RecordRequest(RequestRecord{ProcessID: "P0", Granted: false, Reason: "insufficient resources"})

	// THEN order is preserved
	if len(st.Dispatches) != 2 {
		t.Fatalf("expected 2 dispatches, got %d", len(st.Dispatches))
	}
	if st.Dispatches[0].PID != 1 || st.Dispatches[1].PID != 2 {
		t.Error("dispatch order not preserved")
	}
	if len(st.Requests) != 1 || st.Requests[0].ProcessID != "P0" {
		t.Error("request record mismatch")
	}
}

func TestNewSimulationTrace_LevelNone_ReturnsNil(t *testing.T) {
	for _, level := range []TraceLevel{"", TraceLevelNone} {
		if st := NewSimulationTrace(TraceConfig{Level: level}); st != nil {
			t.Errorf("level %q: expected nil trace, got %+v", level, st)
		}
	}
}

func TestIsValidTraceLevel_ValidLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"decisions", true},
		{"", true}, // empty defaults to none
		{"detailed", false},
		{"foobar", false},
		{"NONE", false}, // case-sensitive
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := IsValidTraceLevel(tt.level); got != tt.valid {
				t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
			}
		})
	}
}
