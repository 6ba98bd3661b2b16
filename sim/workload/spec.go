// Package workload loads scenario files: the process set for the scheduler,
// the resource-allocation graph for deadlock detection and the matrices for
// the Banker's safety engine. Every section is optional.
package workload

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/resource-sim/resource-sim/sim"
)

// ErrInvalidScenario wraps every dimension or reference error found by Validate.
var ErrInvalidScenario = errors.New("invalid scenario")

// scenarioValidate checks the struct tags below.
var scenarioValidate = validator.New()

// Scenario is the top-level shape of a scenario file.
type Scenario struct {
	Name      string            `yaml:"name,omitempty" json:"name,omitempty"`
	Quantum   int64             `yaml:"quantum,omitempty" json:"quantum,omitempty" validate:"gte=0"`
	Processes []sim.ProcessSpec `yaml:"processes,omitempty" json:"processes,omitempty"`
	Graph     *GraphScenario    `yaml:"graph,omitempty" json:"graph,omitempty"`
	Banker    *BankerScenario   `yaml:"banker,omitempty" json:"banker,omitempty"`
}

// GraphScenario declares a resource-allocation graph.
type GraphScenario struct {
	Processes   []string       `yaml:"processes" json:"processes" validate:"dive,required"`
	Resources   []ResourceDecl `yaml:"resources" json:"resources" validate:"dive"`
	Allocations []EdgeDecl     `yaml:"allocations,omitempty" json:"allocations,omitempty" validate:"dive"`
	Requests    []EdgeDecl     `yaml:"requests,omitempty" json:"requests,omitempty" validate:"dive"`
}

// ResourceDecl is a resource type and its instance count.
type ResourceDecl struct {
	ID        string `yaml:"id" json:"id" validate:"required"`
	Instances int    `yaml:"instances" json:"instances" validate:"gte=1"`
}

// EdgeDecl is an allocation or request of Count instances.
type EdgeDecl struct {
	Process  string `yaml:"process" json:"process" validate:"required"`
	Resource string `yaml:"resource" json:"resource" validate:"required"`
	Count    int    `yaml:"count" json:"count" validate:"gte=1"`
}

// BankerScenario declares the safety engine's state. Available is the
// vector of currently free instances, i.e. after Allocation has been granted.
// An omitted Allocation means nothing is held yet.
type BankerScenario struct {
	Processes  []string        `yaml:"processes" json:"processes" validate:"dive,required"`
	Resources  []string        `yaml:"resources" json:"resources" validate:"min=1,dive,required"`
	Available  []int           `yaml:"available" json:"available" validate:"dive,gte=0"`
	Max        [][]int         `yaml:"max" json:"max" validate:"dive,dive,gte=0"`
	Allocation [][]int         `yaml:"allocation,omitempty" json:"allocation,omitempty" validate:"dive,dive,gte=0"`
	Requests   []BankerRequest `yaml:"requests,omitempty" json:"requests,omitempty" validate:"dive"`
}

// BankerRequest is one RequestResources call to replay.
type BankerRequest struct {
	Process string `yaml:"process" json:"process" validate:"required"`
	Amounts []int  `yaml:"amounts" json:"amounts" validate:"required,dive,gte=0"`
}

// LoadScenario reads and strictly parses a YAML scenario file.
// Unknown keys are rejected so typos surface instead of being ignored.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario strictly parses YAML scenario bytes and validates the result.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks field ranges and cross-references between sections.
func (s *Scenario) Validate() error {
	if err := scenarioValidate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	seen := make(map[int]bool, len(s.Processes))
	for _, p := range s.Processes {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: processes: %v", ErrInvalidScenario, err)
		}
		if seen[p.PID] {
			return fmt.Errorf("%w: processes: duplicate pid %d", ErrInvalidScenario, p.PID)
		}
		seen[p.PID] = true
	}
	if s.Graph != nil {
		if err := s.Graph.Validate(); err != nil {
			return err
		}
	}
	if s.Banker != nil {
		if err := s.Banker.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the graph section on its own.
func (g *GraphScenario) Validate() error {
	if err := scenarioValidate.Struct(g); err != nil {
		return fmt.Errorf("%w: graph: %v", ErrInvalidScenario, err)
	}
	if err := g.validateReferences(); err != nil {
		return fmt.Errorf("%w: graph: %v", ErrInvalidScenario, err)
	}
	return nil
}

func (g *GraphScenario) validateReferences() error {
	procs, err := idSet("process", g.Processes)
	if err != nil {
		return err
	}
	res := make(map[string]bool, len(g.Resources))
	for _, r := range g.Resources {
		if res[r.ID] {
			return fmt.Errorf("duplicate resource %q", r.ID)
		}
		res[r.ID] = true
	}
	for _, edges := range [][]EdgeDecl{g.Allocations, g.Requests} {
		for _, e := range edges {
			if !procs[e.Process] {
				return fmt.Errorf("edge references unknown process %q", e.Process)
			}
			if !res[e.Resource] {
				return fmt.Errorf("edge references unknown resource %q", e.Resource)
			}
		}
	}
	return nil
}

// Validate checks the banker section on its own, so API callers that send
// only this section get the same checks as scenario files.
func (b *BankerScenario) Validate() error {
	if err := scenarioValidate.Struct(b); err != nil {
		return fmt.Errorf("%w: banker: %v", ErrInvalidScenario, err)
	}
	if err := b.validateDimensions(); err != nil {
		return fmt.Errorf("%w: banker: %v", ErrInvalidScenario, err)
	}
	return nil
}

func (b *BankerScenario) validateDimensions() error {
	n, m := len(b.Processes), len(b.Resources)
	procs, err := idSet("process", b.Processes)
	if err != nil {
		return err
	}
	if _, err := idSet("resource", b.Resources); err != nil {
		return err
	}
	if len(b.Available) != m {
		return fmt.Errorf("available has %d entries for %d resources", len(b.Available), m)
	}
	if len(b.Max) != n {
		return fmt.Errorf("max has %d rows for %d processes", len(b.Max), n)
	}
	if b.Allocation != nil && len(b.Allocation) != n {
		return fmt.Errorf("allocation has %d rows for %d processes", len(b.Allocation), n)
	}
	for i := range b.Processes {
		if len(b.Max[i]) != m {
			return fmt.Errorf("max row %s has %d entries for %d resources", b.Processes[i], len(b.Max[i]), m)
		}
		if b.Allocation == nil {
			continue
		}
		if len(b.Allocation[i]) != m {
			return fmt.Errorf("allocation row %s has %d entries for %d resources", b.Processes[i], len(b.Allocation[i]), m)
		}
		for j := range b.Resources {
			if b.Allocation[i][j] > b.Max[i][j] {
				return fmt.Errorf("process %s holds %d of %s above its max %d",
					b.Processes[i], b.Allocation[i][j], b.Resources[j], b.Max[i][j])
			}
		}
	}
	for _, r := range b.Requests {
		if !procs[r.Process] {
			return fmt.Errorf("request references unknown process %q", r.Process)
		}
		if len(r.Amounts) != m {
			return fmt.Errorf("request by %s has %d entries for %d resources", r.Process, len(r.Amounts), m)
		}
	}
	return nil
}

func idSet(kind string, ids []string) (map[string]bool, error) {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		if set[id] {
			return nil, fmt.Errorf("duplicate %s %q", kind, id)
		}
		set[id] = true
	}
	return set, nil
}
