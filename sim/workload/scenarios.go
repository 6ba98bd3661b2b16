package workload

import (
	"fmt"
	"sort"
	"strings"

	"github.com/resource-sim/resource-sim/sim"
)

// Built-in scenario presets. Each returns a fresh, valid Scenario.

// ScenarioTextbook is the four-process scheduling workload used in most
// operating-systems courses, plus the classic five-process Banker's state
// and a two-process circular wait.
func ScenarioTextbook() *Scenario {
	return &Scenario{
		Name:    "textbook",
		Quantum: 4,
		Processes: []sim.ProcessSpec{
			{PID: 1, ArrivalTime: 0, BurstTime: 8, Priority: 3},
			{PID: 2, ArrivalTime: 1, BurstTime: 4, Priority: 1},
			{PID: 3, ArrivalTime: 2, BurstTime: 9, Priority: 4},
			{PID: 4, ArrivalTime: 3, BurstTime: 5, Priority: 2},
		},
		Graph: &GraphScenario{
			Processes:   []string{"P1", "P2"},
			Resources:   []ResourceDecl{{ID: "R1", Instances: 1}, {ID: "R2", Instances: 1}},
			Allocations: []EdgeDecl{{Process: "P1", Resource: "R1", Count: 1}, {Process: "P2", Resource: "R2", Count: 1}},
			Requests:    []EdgeDecl{{Process: "P1", Resource: "R2", Count: 1}, {Process: "P2", Resource: "R1", Count: 1}},
		},
		Banker: &BankerScenario{
			Processes:  []string{"P0", "P1", "P2", "P3", "P4"},
			Resources:  []string{"A", "B", "C"},
			Available:  []int{3, 3, 2},
			Max:        [][]int{{7, 5, 3}, {3, 2, 2}, {9, 0, 2}, {2, 2, 2}, {4, 3, 3}},
			Allocation: [][]int{{0, 1, 0}, {2, 0, 0}, {3, 0, 2}, {2, 1, 1}, {0, 0, 2}},
			Requests: []BankerRequest{
				{Process: "P1", Amounts: []int{1, 0, 2}},
				{Process: "P4", Amounts: []int{3, 3, 0}},
				{Process: "P0", Amounts: []int{0, 2, 0}},
			},
		},
	}
}

// ScenarioConvoy puts one long CPU-bound process ahead of many short ones,
// which FCFS handles worst.
func ScenarioConvoy(short int) *Scenario {
	procs := []sim.ProcessSpec{{PID: 1, ArrivalTime: 0, BurstTime: 40, Priority: 5}}
	for i := 0; i < short; i++ {
		procs = append(procs, sim.ProcessSpec{PID: i + 2, ArrivalTime: int64(i + 1), BurstTime: 2, Priority: 1})
	}
	return &Scenario{Name: "convoy", Quantum: 3, Processes: procs}
}

// ScenarioDiningPhilosophers seats n philosophers, each holding its left fork
// and requesting its right one. The wait-for graph is a single n-cycle.
func ScenarioDiningPhilosophers(n int) *Scenario {
	g := &GraphScenario{}
	for i := 0; i < n; i++ {
		p, left, right := fmt.Sprintf("phil%d", i), fmt.Sprintf("fork%d", i), fmt.Sprintf("fork%d", (i+1)%n)
		g.Processes = append(g.Processes, p)
		g.Resources = append(g.Resources, ResourceDecl{ID: left, Instances: 1})
		g.Allocations = append(g.Allocations, EdgeDecl{Process: p, Resource: left, Count: 1})
		g.Requests = append(g.Requests, EdgeDecl{Process: p, Resource: right, Count: 1})
	}
	return &Scenario{Name: "dining-philosophers", Graph: g}
}

// ScenarioRandom draws n processes from DefaultSpecBounds. The same seed
// always yields the same scenario.
func ScenarioRandom(seed int64, n int) (*Scenario, error) {
	procs, err := sim.GenerateSpecs(sim.NewPartitionedRNG(sim.NewSimulationKey(seed)), n, sim.DefaultSpecBounds)
	if err != nil {
		return nil, err
	}
	return &Scenario{Name: "random", Quantum: 3, Processes: procs}, nil
}

// DefaultRandomSeed and DefaultRandomSize back the "random" preset.
const (
	DefaultRandomSeed = 42
	DefaultRandomSize = 8
)

func randomPreset() *Scenario {
	s, err := ScenarioRandom(DefaultRandomSeed, DefaultRandomSize)
	if err != nil {
		panic(err)
	}
	return s
}

// presets maps preset names to constructors with default sizes.
var presets = map[string]func() *Scenario{
	"textbook":            ScenarioTextbook,
	"convoy":              func() *Scenario { return ScenarioConvoy(6) },
	"dining-philosophers": func() *Scenario { return ScenarioDiningPhilosophers(5) },
	"random":              randomPreset,
}

// Preset returns the named built-in scenario.
func Preset(name string) (*Scenario, error) {
	ctor, ok := presets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q; valid: %s", name, strings.Join(PresetNames(), ", "))
	}
	return ctor(), nil
}

// PresetNames returns the built-in preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
