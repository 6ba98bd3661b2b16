package api

import (
	"github.com/resource-sim/resource-sim/sim"
	"github.com/resource-sim/resource-sim/sim/banker"
	"github.com/resource-sim/resource-sim/sim/deadlock"
	"github.com/resource-sim/resource-sim/sim/trace"
	"github.com/resource-sim/resource-sim/sim/workload"
)

// ScheduleRequest is the body of POST /v1/schedule.
type ScheduleRequest struct {
	Policy    string            `json:"policy" binding:"required"`
	Quantum   int64             `json:"quantum" binding:"gte=0"`
	Processes []sim.ProcessSpec `json:"processes"`
	Trace     bool              `json:"trace"`
}

// ScheduleResponse carries one scheduling run.
type ScheduleResponse struct {
	RequestID string              `json:"request_id"`
	Result    *sim.Result         `json:"result"`
	Trace     *trace.TraceSummary `json:"trace,omitempty"`
}

// CompareRequest is the body of POST /v1/compare.
type CompareRequest struct {
	Quantum   int64             `json:"quantum" binding:"required,gt=0"`
	Processes []sim.ProcessSpec `json:"processes"`
}

// CompareResponse carries one run per policy and the best of them.
type CompareResponse struct {
	RequestID  string          `json:"request_id"`
	Best       sim.Policy      `json:"best"`
	Comparison *sim.Comparison `json:"comparison"`
}

// DeadlockResponse is the answer to POST /v1/deadlock, whose body is a
// workload.GraphScenario.
type DeadlockResponse struct {
	RequestID  string              `json:"request_id"`
	Deadlocked bool                `json:"deadlocked"`
	Cycle      []string            `json:"cycle"`
	WaitFor    map[string][]string `json:"wait_for"`
	Edges      []deadlock.Edge     `json:"edges"`
}

// SafetyResponse is the answer to POST /v1/safety, whose body is a
// workload.BankerScenario. Safe and Order describe the declared state;
// Outcomes and State reflect it after the requests were replayed.
type SafetyResponse struct {
	RequestID string                    `json:"request_id"`
	Safe      bool                      `json:"safe"`
	Order     []string                  `json:"order"`
	Outcomes  []workload.RequestOutcome `json:"outcomes"`
	State     banker.State              `json:"state"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned with every 4xx and 5xx status.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code (optional).
	Code string `json:"code,omitempty"`
}
