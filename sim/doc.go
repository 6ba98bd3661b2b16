// Package sim provides the CPU scheduling engine of resource-sim.
//
// # Reading Guide
//
// Start with these three files to understand the scheduler:
//   - process.go: ProcessSpec input, the per-run Process record and GanttEntry
//   - policy.go: the six policies and the Params each run consumes
//   - scheduler.go: Run, the single entry point, and the per-policy loops
//
// metrics.go derives waiting, turnaround and response averages, throughput
// and CPU utilization from a finished run. compare.go runs every policy over
// the same workload concurrently.
//
// # Architecture
//
// Every Run works on a fresh copy of its specs, so runs never share state and
// may execute in parallel. The other engines live in sub-packages:
//   - sim/deadlock/: resource-allocation graph and cycle detection
//   - sim/banker/: Banker's safety algorithm
//   - sim/trace/: decision trace recording
//   - sim/workload/: scenario files and built-in presets
//
// # Determinism
//
// Ready-queue ties break by arrival time, then by lower PID, so identical
// inputs always produce identical timelines. Random workloads come from
// PartitionedRNG, which keeps one stream per field.
package sim
