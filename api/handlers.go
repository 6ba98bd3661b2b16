// Package api exposes the scheduling, deadlock-detection and safety engines
// over HTTP. Every request builds fresh engines, so handlers share no state.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/resource-sim/resource-sim/sim"
	"github.com/resource-sim/resource-sim/sim/trace"
	"github.com/resource-sim/resource-sim/sim/workload"
)

// ServiceVersion is reported by the health endpoint.
const ServiceVersion = "0.1.0"

// Handlers contains the HTTP handlers.
type Handlers struct{}

// NewHandlers creates the handler set.
func NewHandlers() *Handlers {
	return &Handlers{}
}

// HandleSchedule handles POST /v1/schedule.
//
// Response:
//
//	200 OK: ScheduleResponse
//	400 Bad Request: malformed body, unknown policy or invalid process set
func (h *Handlers) HandleSchedule(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := logrus.WithFields(logrus.Fields{"request_id": requestID, "handler": "HandleSchedule"})

	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warnf("Invalid request body: %v", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: "INVALID_REQUEST"})
		return
	}
	policy, err := sim.ParsePolicy(req.Policy)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_POLICY"})
		return
	}

	params := sim.Params{TimeQuantum: req.Quantum}
	if req.Trace {
		params.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	}
	res, err := sim.Run(policy, req.Processes, params)
	if err != nil {
		logger.Infof("Schedule rejected: %v", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: scheduleErrorCode(err)})
		return
	}

	resp := ScheduleResponse{RequestID: requestID, Result: res}
	if params.Trace != nil {
		resp.Trace = trace.Summarize(params.Trace)
	}
	logger.Debugf("Scheduled %d processes under %s", len(req.Processes), policy)
	c.JSON(http.StatusOK, resp)
}

// HandleCompare handles POST /v1/compare.
//
// Response:
//
//	200 OK: CompareResponse
//	400 Bad Request: malformed body or invalid process set
func (h *Handlers) HandleCompare(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := logrus.WithFields(logrus.Fields{"request_id": requestID, "handler": "HandleCompare"})

	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warnf("Invalid request body: %v", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	cmp, err := sim.CompareAll(c.Request.Context(), req.Processes, sim.Params{TimeQuantum: req.Quantum})
	if err != nil {
		logger.Infof("Comparison rejected: %v", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: scheduleErrorCode(err)})
		return
	}
	c.JSON(http.StatusOK, CompareResponse{RequestID: requestID, Best: cmp.Best(), Comparison: cmp})
}

// HandleDeadlock handles POST /v1/deadlock. The body is a graph scenario.
//
// Response:
//
//	200 OK: DeadlockResponse
//	400 Bad Request: malformed or inconsistent graph
func (h *Handlers) HandleDeadlock(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := logrus.WithFields(logrus.Fields{"request_id": requestID, "handler": "HandleDeadlock"})

	var req workload.GraphScenario
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warnf("Invalid request body: %v", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: "INVALID_REQUEST"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_SCENARIO"})
		return
	}
	g, err := req.Build()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_SCENARIO"})
		return
	}

	cycle := g.DetectDeadlock()
	if cycle == nil {
		cycle = []string{}
	}
	c.JSON(http.StatusOK, DeadlockResponse{
		RequestID:  requestID,
		Deadlocked: len(cycle) > 0,
		Cycle:      cycle,
		WaitFor:    g.WaitFor(),
		Edges:      g.Edges(),
	})
}

// HandleSafety handles POST /v1/safety. The body is a banker scenario; its
// requests, if any, are replayed in order after the initial safety check.
//
// Response:
//
//	200 OK: SafetyResponse
//	400 Bad Request: malformed or inconsistent matrices
func (h *Handlers) HandleSafety(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := logrus.WithFields(logrus.Fields{"request_id": requestID, "handler": "HandleSafety"})

	var req workload.BankerScenario
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warnf("Invalid request body: %v", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: "INVALID_REQUEST"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_SCENARIO"})
		return
	}
	e, err := req.Build()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_SCENARIO"})
		return
	}

	safe, order, err := e.IsSafeState()
	if err != nil {
		logger.Errorf("Safety check failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "SAFETY_FAILED"})
		return
	}
	outcomes, err := req.Replay(e)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_SCENARIO"})
		return
	}
	state, err := e.Snapshot()
	if err != nil {
		logger.Errorf("Snapshot failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "SAFETY_FAILED"})
		return
	}
	if order == nil {
		order = []string{}
	}
	c.JSON(http.StatusOK, SafetyResponse{
		RequestID: requestID,
		Safe:      safe,
		Order:     order,
		Outcomes:  outcomes,
		State:     state,
	})
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Version: ServiceVersion})
}

func scheduleErrorCode(err error) string {
	switch {
	case errors.Is(err, sim.ErrUnknownPolicy):
		return "INVALID_POLICY"
	case errors.Is(err, sim.ErrInvalidQuantum):
		return "INVALID_QUANTUM"
	case errors.Is(err, sim.ErrDuplicatePID), errors.Is(err, sim.ErrInvalidProcess):
		return "INVALID_PROCESS"
	default:
		return "SCHEDULE_FAILED"
	}
}

// getOrCreateRequestID gets or creates a request ID.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
