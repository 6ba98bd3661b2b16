package banker

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/resource-sim/resource-sim/sim/trace"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "resource_sim",
	Subsystem: "banker",
	Name:      "requests_total",
	Help:      "Resource requests evaluated by the safety engine, by outcome.",
}, []string{"outcome"})

// IsSafeState runs the safety algorithm. When the state is safe it returns
// a completion order witnessing it; the order picks the lowest-index
// finishable process at every step, so it is reproducible but not the only
// valid one. Unsafe states return a nil order.
func (e *Engine) IsSafeState() (bool, []string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.configured {
		return false, nil, ErrNotConfigured
	}
	safe, order := e.safeOrder()
	return safe, order, nil
}

// safeOrder is the safety algorithm proper. Callers hold e.mu.
func (e *Engine) safeOrder() (bool, []string) {
	work := append([]int(nil), e.available...)
	finished := make([]bool, len(e.processes))
	order := make([]string, 0, len(e.processes))

	for len(order) < len(e.processes) {
		progressed := false
		for i := range e.processes {
			if finished[i] || !leq(e.need[i], work) {
				continue
			}
			for j, a := range e.allocation[i] {
				work[j] += a
			}
			finished[i] = true
			order = append(order, e.processes[i])
			progressed = true
			break // restart the scan from the lowest index
		}
		if !progressed {
			return false, nil
		}
	}
	return true, order
}

// RequestResources evaluates a request by process p. The request is refused
// outright when it exceeds p's need or what is available. Otherwise it is
// applied tentatively and kept only if the resulting state is safe; an
// unsafe grant is undone by applying the inverse delta. The returned
// message explains the outcome.
func (e *Engine) RequestResources(p int, request []int) (bool, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkVector(p, request); err != nil {
		return false, "", err
	}
	pid := e.processes[p]

	if !leq(request, e.need[p]) {
		return e.deny(pid, request, ReasonExceedsNeed, "exceeds_need")
	}
	if !leq(request, e.available) {
		return e.deny(pid, request, ReasonInsufficient, "insufficient")
	}

	e.applyDelta(p, request, 1)
	safe, order := e.safeOrder()
	if !safe {
		e.applyDelta(p, request, -1)
		return e.deny(pid, request, ReasonUnsafe, "unsafe")
	}

	requestsTotal.WithLabelValues("granted").Inc()
	logrus.Debugf("Request %v by %s granted; safe order %v", request, pid, order)
	if e.trace != nil {
		e.trace.RecordRequest(trace.RequestRecord{
			ProcessID: pid,
			Request:   append([]int(nil), request...),
			Granted:   true,
			Reason:    ReasonGranted,
			SafeOrder: order,
		})
	}
	return true, fmt.Sprintf("%s; safe order: %v", ReasonGranted, order), nil
}

// applyDelta moves sign*delta from available into p's allocation and out of
// its need. applyDelta(p, d, -1) is the exact inverse of applyDelta(p, d, 1).
// Callers hold e.mu.
func (e *Engine) applyDelta(p int, delta []int, sign int) {
	for j, d := range delta {
		e.available[j] -= sign * d
		e.allocation[p][j] += sign * d
		e.need[p][j] -= sign * d
	}
}

func (e *Engine) deny(pid string, request []int, reason, outcome string) (bool, string, error) {
	requestsTotal.WithLabelValues(outcome).Inc()
	logrus.Debugf("Request %v by %s denied: %s", request, pid, reason)
	if e.trace != nil {
		e.trace.RecordRequest(trace.RequestRecord{
			ProcessID: pid,
			Request:   append([]int(nil), request...),
			Granted:   false,
			Reason:    reason,
		})
	}
	return false, reason, nil
}
