package deadlock

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var detectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "resource_sim",
	Subsystem: "deadlock",
	Name:      "detections_total",
	Help:      "Deadlock detection passes by result (deadlock, clear).",
}, []string{"result"})

// WaitFor derives the wait-for graph: P → Q for every resource R that P has
// requested and Q (≠ P) holds. Any holder counts as a blocker, even when R
// still has free instances, so multi-instance resources may over-report.
// Each adjacency list is sorted and free of duplicates.
func (g *Graph) WaitFor() map[string][]string {
	wf := make(map[string][]string, len(g.processes))
	for _, p := range g.Processes() {
		seen := make(map[string]bool)
		for to := range g.out[ProcessNode(p)] {
			for holder := range g.out[to] {
				if holder.ID != p && !seen[holder.ID] {
					seen[holder.ID] = true
					wf[p] = append(wf[p], holder.ID)
				}
			}
		}
		sort.Strings(wf[p])
	}
	return wf
}

// DetectDeadlock searches the wait-for graph for a cycle and returns its
// process ids in wait order (each waits for the next, the last for the
// first). Returns nil when there is no deadlock. Processes are explored in
// sorted order, so the witness is reproducible.
func (g *Graph) DetectDeadlock() []string {
	wf := g.WaitFor()

	const (
		unvisited = iota
		onStack
		done
	)
	state := make(map[string]int, len(wf))
	var path []string
	var cycle []string

	var visit func(p string) bool
	visit = func(p string) bool {
		state[p] = onStack
		path = append(path, p)
		for _, q := range wf[p] {
			switch state[q] {
			case onStack:
				// Back edge: the cycle is the path suffix starting at q.
				for i := len(path) - 1; i >= 0; i-- {
					if path[i] == q {
						cycle = append([]string(nil), path[i:]...)
						break
					}
				}
				return true
			case unvisited:
				if visit(q) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		state[p] = done
		return false
	}

	for _, p := range g.Processes() {
		if state[p] == unvisited && visit(p) {
			break
		}
	}

	if cycle == nil {
		detectionsTotal.WithLabelValues("clear").Inc()
		logrus.Debugf("No deadlock among %d processes", len(g.processes))
		return nil
	}
	detectionsTotal.WithLabelValues("deadlock").Inc()
	logrus.Infof("Deadlock detected: %v", cycle)
	return cycle
}
