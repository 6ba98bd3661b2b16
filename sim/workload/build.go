package workload

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/resource-sim/resource-sim/sim"
	"github.com/resource-sim/resource-sim/sim/banker"
	"github.com/resource-sim/resource-sim/sim/deadlock"
)

// ProcessSpecs returns a copy of the scenario's process set.
func (s *Scenario) ProcessSpecs() []sim.ProcessSpec {
	return append([]sim.ProcessSpec(nil), s.Processes...)
}

// Build constructs the resource-allocation graph. Allocations are applied in
// file order and fail if they exceed a resource's free instances.
func (g *GraphScenario) Build() (*deadlock.Graph, error) {
	graph := deadlock.NewGraph()
	for _, p := range g.Processes {
		if err := graph.AddProcess(p); err != nil {
			return nil, err
		}
	}
	for _, r := range g.Resources {
		if err := graph.AddResource(r.ID, r.Instances); err != nil {
			return nil, err
		}
	}
	for _, a := range g.Allocations {
		ok, err := graph.Allocate(a.Process, a.Resource, a.Count)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: allocating %d of %s to %s exceeds free instances",
				ErrInvalidScenario, a.Count, a.Resource, a.Process)
		}
	}
	for _, r := range g.Requests {
		if err := graph.Request(r.Process, r.Resource, r.Count); err != nil {
			return nil, err
		}
	}
	logrus.Debugf("Built resource graph: %d processes, %d resources, %d allocations, %d requests",
		len(g.Processes), len(g.Resources), len(g.Allocations), len(g.Requests))
	return graph, nil
}

// Build configures a safety engine so that, once every allocation row has
// been granted, the free vector equals Available.
func (b *BankerScenario) Build() (*banker.Engine, error) {
	total := append([]int(nil), b.Available...)
	for _, row := range b.Allocation {
		for j, a := range row {
			total[j] += a
		}
	}

	e := banker.NewEngine()
	if err := e.Setup(b.Processes, b.Resources, total); err != nil {
		return nil, err
	}
	for i := range b.Processes {
		if err := e.SetMaxClaim(i, b.Max[i]); err != nil {
			return nil, err
		}
		if b.Allocation == nil {
			continue
		}
		ok, err := e.AllocateResources(i, b.Allocation[i])
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: initial allocation of %s refused", ErrInvalidScenario, b.Processes[i])
		}
	}
	return e, nil
}

// RequestOutcome is the engine's answer to one replayed request.
type RequestOutcome struct {
	Process string `json:"process"`
	Amounts []int  `json:"amounts"`
	Granted bool   `json:"granted"`
	Message string `json:"message"`
}

// Replay submits the scenario's requests to e in order. Granted requests
// stay applied, so later requests see their effect.
func (b *BankerScenario) Replay(e *banker.Engine) ([]RequestOutcome, error) {
	outcomes := make([]RequestOutcome, 0, len(b.Requests))
	for _, r := range b.Requests {
		p, err := e.ProcessIndex(r.Process)
		if err != nil {
			return nil, err
		}
		granted, msg, err := e.RequestResources(p, r.Amounts)
		if err != nil {
			return nil, fmt.Errorf("request by %s: %w", r.Process, err)
		}
		outcomes = append(outcomes, RequestOutcome{
			Process: r.Process,
			Amounts: r.Amounts,
			Granted: granted,
			Message: msg,
		})
	}
	return outcomes, nil
}
