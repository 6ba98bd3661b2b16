package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resource-sim/resource-sim/sim"
	"github.com/resource-sim/resource-sim/sim/banker"
	"github.com/resource-sim/resource-sim/sim/workload"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

func do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	NewRouter().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHandleSchedule_RoundRobin(t *testing.T) {
	// GIVEN the two-process round robin workload
	body := ScheduleRequest{
		Policy:    "round-robin",
		Quantum:   2,
		Processes: []sim.ProcessSpec{{PID: 1, ArrivalTime: 0, BurstTime: 5}, {PID: 2, ArrivalTime: 1, BurstTime: 3}},
		Trace:     true,
	}

	// WHEN it is posted
	w := do(t, http.MethodPost, "/v1/schedule", body)

	// THEN the timeline comes back with a request id and a trace summary
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[ScheduleResponse](t, w)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, resp.RequestID, w.Header().Get("X-Request-ID"))
	assert.Equal(t, sim.PolicyRoundRobin, resp.Result.Policy)
	assert.Equal(t, []sim.GanttEntry{
		{PID: 1, Start: 0, End: 2}, {PID: 2, Start: 2, End: 4}, {PID: 1, Start: 4, End: 6},
		{PID: 2, Start: 6, End: 7}, {PID: 1, Start: 7, End: 8},
	}, resp.Result.Gantt)
	require.NotNil(t, resp.Trace)
	assert.Equal(t, 5, resp.Trace.TotalDispatches)
}

func TestHandleSchedule_PropagatesRequestID(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(ScheduleRequest{Policy: "fcfs"}))
	req := httptest.NewRequest(http.MethodPost, "/v1/schedule", &buf)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()

	NewRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "abc-123", decode[ScheduleResponse](t, w).RequestID)
}

func TestHandleSchedule_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		wantCode string
	}{
		{"malformed json", "{", "INVALID_REQUEST"},
		{"missing policy", ScheduleRequest{}, "INVALID_REQUEST"},
		{"unknown policy", ScheduleRequest{Policy: "lottery"}, "INVALID_POLICY"},
		{"rr without quantum", ScheduleRequest{Policy: "rr", Processes: []sim.ProcessSpec{{PID: 1, BurstTime: 1}}}, "INVALID_QUANTUM"},
		{"duplicate pid", ScheduleRequest{Policy: "fcfs", Processes: []sim.ProcessSpec{{PID: 1, BurstTime: 1}, {PID: 1, BurstTime: 1}}}, "INVALID_PROCESS"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, http.MethodPost, "/v1/schedule", tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.wantCode, decode[ErrorResponse](t, w).Code)
		})
	}
}

func TestHandleCompare_TextbookWorkload(t *testing.T) {
	body := CompareRequest{Quantum: 4, Processes: workload.ScenarioTextbook().Processes}

	w := do(t, http.MethodPost, "/v1/compare", body)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[CompareResponse](t, w)
	assert.Equal(t, sim.PolicySRTF, resp.Best)
	assert.Len(t, resp.Comparison.Results, len(sim.AllPolicies))
	assert.NotEmpty(t, resp.Comparison.ID)
}

func TestHandleCompare_MissingQuantum(t *testing.T) {
	w := do(t, http.MethodPost, "/v1/compare", CompareRequest{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleDeadlock_CircularWait(t *testing.T) {
	w := do(t, http.MethodPost, "/v1/deadlock", workload.ScenarioTextbook().Graph)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[DeadlockResponse](t, w)
	assert.True(t, resp.Deadlocked)
	assert.Equal(t, []string{"P1", "P2"}, resp.Cycle)
	assert.Equal(t, map[string][]string{"P1": {"P2"}, "P2": {"P1"}}, resp.WaitFor)
	assert.Len(t, resp.Edges, 4)
	assert.True(t, strings.Contains(w.Body.String(), `"from":"R(R1)"`), w.Body.String())
}

func TestHandleDeadlock_NoCycle_EmptyArray(t *testing.T) {
	gs := workload.ScenarioTextbook().Graph
	gs.Requests = gs.Requests[:1]

	w := do(t, http.MethodPost, "/v1/deadlock", gs)

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[DeadlockResponse](t, w).Deadlocked)
	assert.Contains(t, w.Body.String(), `"cycle":[]`)
}

func TestHandleDeadlock_UnknownResource(t *testing.T) {
	gs := &workload.GraphScenario{
		Processes: []string{"P1"},
		Resources: []workload.ResourceDecl{{ID: "R1", Instances: 1}},
		Requests:  []workload.EdgeDecl{{Process: "P1", Resource: "R2", Count: 1}},
	}

	w := do(t, http.MethodPost, "/v1/deadlock", gs)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_SCENARIO", decode[ErrorResponse](t, w).Code)
}

func TestHandleSafety_TextbookReplay(t *testing.T) {
	w := do(t, http.MethodPost, "/v1/safety", workload.ScenarioTextbook().Banker)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[SafetyResponse](t, w)
	assert.True(t, resp.Safe)
	assert.Equal(t, []string{"P1", "P3", "P0", "P2", "P4"}, resp.Order)
	require.Len(t, resp.Outcomes, 3)
	assert.True(t, resp.Outcomes[0].Granted)
	assert.Equal(t, banker.ReasonUnsafe, resp.Outcomes[2].Message)
	assert.Equal(t, []int{2, 3, 0}, resp.State.Available)
}

func TestHandleSafety_UnsafeState(t *testing.T) {
	b := workload.ScenarioTextbook().Banker
	b.Available = []int{0, 0, 0}
	b.Requests = nil

	w := do(t, http.MethodPost, "/v1/safety", b)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[SafetyResponse](t, w)
	assert.False(t, resp.Safe)
	assert.Empty(t, resp.Order)
}

func TestHandleSafety_DimensionMismatch(t *testing.T) {
	b := workload.ScenarioTextbook().Banker
	b.Available = []int{1}

	w := do(t, http.MethodPost, "/v1/safety", b)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_SCENARIO", decode[ErrorResponse](t, w).Code)
}

func TestHandleHealth(t *testing.T) {
	w := do(t, http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, HealthResponse{Status: "healthy", Version: ServiceVersion}, decode[HealthResponse](t, w))
}

func TestMetricsEndpoint_ExposesEngineCounters(t *testing.T) {
	do(t, http.MethodPost, "/v1/schedule", ScheduleRequest{Policy: "fcfs", Processes: []sim.ProcessSpec{{PID: 1, BurstTime: 1}}})

	w := do(t, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `resource_sim_scheduler_runs_total{policy="fcfs"}`)
}
