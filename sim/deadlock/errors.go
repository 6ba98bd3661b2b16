// Package deadlock models a resource-allocation graph and detects deadlock
// through cycle search in the wait-for graph derived from it.
//
// # Model
//
// The graph is bipartite. Process and resource nodes live in separate
// namespaces (see NodeID), so "1" may name both a process and a resource.
// Edges are typed by direction:
//   - allocation: resource → process, weight = instances held
//   - request:    process → resource, weight = instances pending
//
// For every resource, Allocated equals the sum of its allocation-edge weights.
//
// # Thread Safety
//
// Graph is NOT safe for concurrent use. Callers serialise mutations.
package deadlock

import "errors"

// Sentinel errors for graph operations. Any operation returning one of these
// leaves the graph unchanged.
var (
	// ErrNodeNotFound is returned when an operation references a process or
	// resource that was never added.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateNode is returned when adding a node whose id is already
	// taken within its namespace.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrInvalidCount is returned for non-positive instance or edge counts.
	ErrInvalidCount = errors.New("count must be positive")

	// ErrEmptyID is returned when a node id is the empty string.
	ErrEmptyID = errors.New("node ID must not be empty")

	// ErrEdgeNotFound is returned when cancelling a request that does not exist.
	ErrEdgeNotFound = errors.New("edge not found")
)
