// Package banker implements deadlock avoidance with the Banker's algorithm.
//
// An Engine tracks, for n processes and m resource types, the available
// vector and the max-claim, allocation and need matrices, where
// need = max - allocation holds after every mutation. Operations other than
// Setup fail with ErrNotConfigured until Setup has been called.
//
// # Outcomes
//
// Invalid input (bad index, wrong vector length, negative amounts) is
// reported as an error. Refusals that are part of the model (not enough
// available, beyond the declared claim, unsafe) are reported as false with
// a nil error. Neither path mutates the engine.
//
// # Thread Safety
//
// Every operation holds the engine's mutex, so RequestResources' tentative
// grant is never visible to another caller.
package banker

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/resource-sim/resource-sim/sim/trace"
)

var (
	// ErrNotConfigured is returned by every operation before Setup.
	ErrNotConfigured = errors.New("engine not configured; call Setup first")
	// ErrProcessIndex is returned for a process index outside [0, n).
	ErrProcessIndex = errors.New("process index out of range")
	// ErrVectorLength is returned when a vector does not have one entry per resource type.
	ErrVectorLength = errors.New("vector length does not match resource type count")
	// ErrNegativeAmount is returned when a vector holds a negative component.
	ErrNegativeAmount = errors.New("amounts must be non-negative")
	// ErrClaimBelowAllocation is returned when a new max claim is lower than what the process already holds.
	ErrClaimBelowAllocation = errors.New("max claim below current allocation")
	// ErrDuplicateID is returned when Setup receives a repeated or empty id.
	ErrDuplicateID = errors.New("duplicate or empty id")
)

// Denial reasons reported by RequestResources.
const (
	ReasonExceedsNeed  = "exceeds declared maximum"
	ReasonInsufficient = "insufficient resources"
	ReasonUnsafe       = "request would leave the system in an unsafe state"
	ReasonGranted      = "granted"
)

// Engine is a Banker's-algorithm safety engine.
type Engine struct {
	mu sync.Mutex

	configured bool
	processes  []string
	resources  []string
	available  []int
	maxClaim   [][]int
	allocation [][]int
	need       [][]int

	trace *trace.SimulationTrace
}

// NewEngine returns an unconfigured engine.
func NewEngine() *Engine {
	return &Engine{}
}

// WithTrace records every RequestResources decision into st. A nil trace
// disables recording.
func (e *Engine) WithTrace(st *trace.SimulationTrace) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trace = st
	return e
}

// Setup (re)dimensions the engine for the given processes and resource
// types. Max claims, allocations and needs start at zero.
func (e *Engine) Setup(processIDs, resourceIDs []string, available []int) error {
	if err := uniqueIDs("process", processIDs); err != nil {
		return err
	}
	if err := uniqueIDs("resource", resourceIDs); err != nil {
		return err
	}
	if len(available) != len(resourceIDs) {
		return fmt.Errorf("available has %d entries for %d resource types: %w", len(available), len(resourceIDs), ErrVectorLength)
	}
	if err := nonNegative(available); err != nil {
		return fmt.Errorf("available: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	n, m := len(processIDs), len(resourceIDs)
	e.processes = append([]string(nil), processIDs...)
	e.resources = append([]string(nil), resourceIDs...)
	e.available = append([]int(nil), available...)
	e.maxClaim = zeroMatrix(n, m)
	e.allocation = zeroMatrix(n, m)
	e.need = zeroMatrix(n, m)
	e.configured = true

	logrus.Debugf("Banker configured: %d processes, %d resource types, available=%v", n, m, available)
	return nil
}

// SetMaxClaim declares the maximum demand of process p and recomputes its need.
func (e *Engine) SetMaxClaim(p int, claims []int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkVector(p, claims); err != nil {
		return err
	}
	for j, c := range claims {
		if c < e.allocation[p][j] {
			return fmt.Errorf("process %s resource %s: claim %d < allocation %d: %w",
				e.processes[p], e.resources[j], c, e.allocation[p][j], ErrClaimBelowAllocation)
		}
	}
	copy(e.maxClaim[p], claims)
	e.recomputeNeed(p)
	return nil
}

// AllocateResources grants amounts to process p without a safety check.
// Returns false, with no change, if any component exceeds what is available
// or would push the allocation past the declared max claim.
func (e *Engine) AllocateResources(p int, amounts []int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkVector(p, amounts); err != nil {
		return false, err
	}
	if !leq(amounts, e.available) {
		logrus.Debugf("Allocate %v to %s refused: available %v", amounts, e.processes[p], e.available)
		return false, nil
	}
	for j, a := range amounts {
		if e.allocation[p][j]+a > e.maxClaim[p][j] {
			logrus.Debugf("Allocate %v to %s refused: exceeds max claim %v", amounts, e.processes[p], e.maxClaim[p])
			return false, nil
		}
	}
	for j, a := range amounts {
		e.available[j] -= a
		e.allocation[p][j] += a
	}
	e.recomputeNeed(p)
	return true, nil
}

// ReleaseResources returns amounts held by process p to the pool.
// Returns false, with no change, if any component exceeds the allocation.
func (e *Engine) ReleaseResources(p int, amounts []int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkVector(p, amounts); err != nil {
		return false, err
	}
	if !leq(amounts, e.allocation[p]) {
		logrus.Debugf("Release %v from %s refused: holds %v", amounts, e.processes[p], e.allocation[p])
		return false, nil
	}
	for j, a := range amounts {
		e.available[j] += a
		e.allocation[p][j] -= a
	}
	e.recomputeNeed(p)
	return true, nil
}

// ProcessIndex returns the index of process id.
func (e *Engine) ProcessIndex(id string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.configured {
		return -1, ErrNotConfigured
	}
	for i, pid := range e.processes {
		if pid == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("process %q: %w", id, ErrProcessIndex)
}

// Configured reports whether Setup has been called.
func (e *Engine) Configured() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.configured
}

// checkVector validates a process index and a per-resource vector.
// Callers hold e.mu.
func (e *Engine) checkVector(p int, v []int) error {
	if !e.configured {
		return ErrNotConfigured
	}
	if p < 0 || p >= len(e.processes) {
		return fmt.Errorf("index %d with %d processes: %w", p, len(e.processes), ErrProcessIndex)
	}
	if len(v) != len(e.resources) {
		return fmt.Errorf("got %d entries for %d resource types: %w", len(v), len(e.resources), ErrVectorLength)
	}
	return nonNegative(v)
}

func (e *Engine) recomputeNeed(p int) {
	for j := range e.need[p] {
		e.need[p][j] = e.maxClaim[p][j] - e.allocation[p][j]
	}
}

func uniqueIDs(kind string, ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			return fmt.Errorf("%s id %q: %w", kind, id, ErrDuplicateID)
		}
		seen[id] = true
	}
	return nil
}

func nonNegative(v []int) error {
	for j, x := range v {
		if x < 0 {
			return fmt.Errorf("component %d is %d: %w", j, x, ErrNegativeAmount)
		}
	}
	return nil
}

// leq reports whether a ≤ b componentwise.
func leq(a, b []int) bool {
	for j := range a {
		if a[j] > b[j] {
			return false
		}
	}
	return true
}

func zeroMatrix(n, m int) [][]int {
	rows := make([][]int, n)
	for i := range rows {
		rows[i] = make([]int, m)
	}
	return rows
}
