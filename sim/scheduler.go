package sim

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/resource-sim/resource-sim/sim/trace"
)

// Result is the outcome of one scheduling run. Processes are listed in the
// caller's input order; Gantt entries in non-decreasing start order.
type Result struct {
	Policy    Policy       `json:"policy"`
	Quantum   int64        `json:"quantum,omitempty"`
	Processes []Process    `json:"processes"`
	Gantt     []GanttEntry `json:"gantt"`
	Elapsed   int64        `json:"elapsed"`
	Metrics   Metrics      `json:"metrics"`
}

// Run simulates specs under policy and returns the timeline and metrics.
// Every call works on a fresh copy of specs, so runs never compose and the
// caller's slice is left untouched. An empty spec set yields an empty
// timeline with zero metrics.
func Run(policy Policy, specs []ProcessSpec, params Params) (*Result, error) {
	if !ValidPolicies[policy] {
		return nil, fmt.Errorf("%w %q; valid: %s", ErrUnknownPolicy, policy, validPolicyNames())
	}
	if err := params.Validate(policy); err != nil {
		return nil, err
	}
	procs, err := copySpecs(specs)
	if err != nil {
		return nil, err
	}

	s := &schedule{
		policy: policy,
		procs:  procs,
		trace:  params.Trace,
		gantt:  make([]GanttEntry, 0, len(procs)),
	}
	logrus.Debugf("Starting %s run over %d processes", policy, len(procs))

	switch policy {
	case PolicyFCFS:
		s.runFCFS()
	case PolicySJF:
		s.runShortestFirst(byRemaining, false)
	case PolicySRTF:
		s.runShortestFirst(byRemaining, true)
	case PolicyRoundRobin:
		s.runRoundRobin(params.TimeQuantum)
	case PolicyPriority:
		s.runShortestFirst(byPriority, false)
	case PolicyPriorityPreemptive:
		s.runShortestFirst(byPriority, true)
	default:
		panic(fmt.Sprintf("unhandled policy %q", policy))
	}

	res := &Result{
		Policy:    policy,
		Processes: make([]Process, len(procs)),
		Gantt:     s.gantt,
		Elapsed:   s.clock,
	}
	if policy == PolicyRoundRobin {
		res.Quantum = params.TimeQuantum
	}
	for i, p := range procs {
		res.Processes[i] = *p
	}
	res.Metrics = ComputeMetrics(res.Processes, res.Gantt, res.Elapsed)

	scheduleRunsTotal.WithLabelValues(string(policy)).Inc()
	logrus.Debugf("Finished %s run at %d ticks with %d gantt entries", policy, s.clock, len(s.gantt))
	return res, nil
}

// selectionKey orders ready processes for the shortest-first family.
// Lower keys win.
type selectionKey func(p *Process) int64

func byRemaining(p *Process) int64 { return p.RemainingTime }

func byPriority(p *Process) int64 { return int64(p.Priority) }

// schedule holds the mutable state of a single run.
type schedule struct {
	policy Policy
	procs  []*Process
	gantt  []GanttEntry
	clock  int64
	trace  *trace.SimulationTrace
}

// dispatch gives p the CPU for runFor ticks starting at the current clock.
// When merge is set, a segment that directly continues the previous entry of
// the same process extends it instead of opening a new one.
func (s *schedule) dispatch(p *Process, runFor int64, merge bool, reason string) {
	p.markDispatched(s.clock)
	start, end := s.clock, s.clock+runFor
	logrus.Debugf("<< Dispatch: pid=%d [%d, %d) %s", p.PID, start, end, reason)
	if s.trace != nil {
		s.trace.RecordDispatch(trace.DispatchRecord{
			PID:       p.PID,
			Clock:     start,
			RunFor:    runFor,
			Remaining: p.RemainingTime,
			Reason:    reason,
		})
	}
	scheduleDispatchesTotal.WithLabelValues(string(s.policy)).Inc()

	if n := len(s.gantt); merge && n > 0 && s.gantt[n-1].PID == p.PID && s.gantt[n-1].End == start {
		s.gantt[n-1].End = end
	} else {
		s.gantt = append(s.gantt, GanttEntry{PID: p.PID, Start: start, End: end})
	}

	s.clock = end
	p.RemainingTime -= runFor
	if p.RemainingTime == 0 {
		p.CompletionTime = s.clock
		logrus.Debugf("<< Completion: pid=%d at %d ticks", p.PID, s.clock)
	}
}

// idleUntil jumps the clock forward without recording a Gantt entry.
func (s *schedule) idleUntil(t int64) {
	if t > s.clock {
		logrus.Debugf("CPU idle [%d, %d)", s.clock, t)
		s.clock = t
	}
}

// byArrival returns the processes sorted by arrival, input order on ties.
func (s *schedule) byArrival() []*Process {
	sorted := make([]*Process, len(s.procs))
	copy(sorted, s.procs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ArrivalTime < sorted[j].ArrivalTime
	})
	return sorted
}

func (s *schedule) runFCFS() {
	for _, p := range s.byArrival() {
		s.idleUntil(p.ArrivalTime)
		s.dispatch(p, p.RemainingTime, false, "fcfs")
	}
}

// runShortestFirst drives SJF, SRTF and both Priority variants. The ready
// process with the lowest key runs either to completion or, when preemptive,
// until the next arrival gives the scheduler a chance to re-evaluate.
// Ties go to the earlier arrival, then the lower PID.
func (s *schedule) runShortestFirst(key selectionKey, preemptive bool) {
	pending := s.byArrival()
	for len(pending) > 0 {
		var best *Process
		for _, p := range pending {
			if p.ArrivalTime > s.clock {
				continue
			}
			if best == nil || less(p, best, key) {
				best = p
			}
		}
		if best == nil {
			s.idleUntil(nextArrival(pending, s.clock))
			continue
		}

		runFor := best.RemainingTime
		if preemptive {
			if next := nextArrival(pending, s.clock); next > s.clock && next-s.clock < runFor {
				runFor = next - s.clock
			}
		}
		s.dispatch(best, runFor, preemptive, fmt.Sprintf("%s key=%d", s.policy, key(best)))

		if best.RemainingTime == 0 {
			pending = remove(pending, best)
		}
	}
}

func (s *schedule) runRoundRobin(quantum int64) {
	pending := s.byArrival()
	var rq ReadyQueue
	admit := func() {
		for len(pending) > 0 && pending[0].ArrivalTime <= s.clock {
			rq.Enqueue(pending[0])
			pending = pending[1:]
		}
	}

	for rq.Len() > 0 || len(pending) > 0 {
		admit()
		if rq.Len() == 0 {
			s.idleUntil(pending[0].ArrivalTime)
			continue
		}
		p := rq.Dequeue()
		s.dispatch(p, min(quantum, p.RemainingTime), false, fmt.Sprintf("rr queue=%s", rq.String()))
		// Arrivals during the slice queue ahead of the preempted process.
		admit()
		if p.RemainingTime > 0 {
			rq.Enqueue(p)
		}
	}
}

func less(a, b *Process, key selectionKey) bool {
	if ka, kb := key(a), key(b); ka != kb {
		return ka < kb
	}
	if a.ArrivalTime != b.ArrivalTime {
		return a.ArrivalTime < b.ArrivalTime
	}
	return a.PID < b.PID
}

// nextArrival returns the earliest arrival strictly after clock among procs,
// or clock itself when nothing is left to arrive.
func nextArrival(procs []*Process, clock int64) int64 {
	next := clock
	for _, p := range procs {
		if p.ArrivalTime > clock && (next == clock || p.ArrivalTime < next) {
			next = p.ArrivalTime
		}
	}
	return next
}

func remove(procs []*Process, target *Process) []*Process {
	for i, p := range procs {
		if p == target {
			return append(procs[:i], procs[i+1:]...)
		}
	}
	return procs
}
