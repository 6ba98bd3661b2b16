package sim

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/resource-sim/resource-sim/sim/trace"
)

// Policy names a CPU scheduling algorithm. The set is closed; Run rejects
// anything not listed in ValidPolicies.
type Policy string

const (
	PolicyFCFS               Policy = "fcfs"
	PolicySJF                Policy = "sjf"
	PolicySRTF               Policy = "srtf"
	PolicyRoundRobin         Policy = "rr"
	PolicyPriority           Policy = "priority"
	PolicyPriorityPreemptive Policy = "priority-preemptive"
)

// AllPolicies lists every policy in presentation order.
var AllPolicies = []Policy{
	PolicyFCFS,
	PolicySJF,
	PolicySRTF,
	PolicyRoundRobin,
	PolicyPriority,
	PolicyPriorityPreemptive,
}

// ValidPolicies is the set of recognized policy names.
// Shared by ParsePolicy() and Run() to avoid duplication.
var ValidPolicies = map[Policy]bool{
	PolicyFCFS:               true,
	PolicySJF:                true,
	PolicySRTF:               true,
	PolicyRoundRobin:         true,
	PolicyPriority:           true,
	PolicyPriorityPreemptive: true,
}

// policyAliases maps the long names accepted on the command line.
var policyAliases = map[string]Policy{
	"first-come-first-served": PolicyFCFS,
	"shortest-job-first":      PolicySJF,
	"round-robin":             PolicyRoundRobin,
	"preemptive-sjf":          PolicySRTF,
	"preemptive-priority":     PolicyPriorityPreemptive,
}

var (
	// ErrUnknownPolicy is returned for names outside ValidPolicies.
	ErrUnknownPolicy = errors.New("unknown policy")
	// ErrInvalidQuantum is returned when Round Robin runs with a non-positive quantum.
	ErrInvalidQuantum = errors.New("time quantum must be positive")
)

// ParsePolicy resolves a case-insensitive policy name or alias.
func ParsePolicy(name string) (Policy, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if p, ok := policyAliases[n]; ok {
		return p, nil
	}
	if ValidPolicies[Policy(n)] {
		return Policy(n), nil
	}
	return "", fmt.Errorf("%w %q; valid: %s", ErrUnknownPolicy, name, validPolicyNames())
}

// Preemptive reports whether the policy may interrupt a running process.
func (p Policy) Preemptive() bool {
	return p == PolicySRTF || p == PolicyRoundRobin || p == PolicyPriorityPreemptive
}

func validPolicyNames() string {
	names := make([]string, 0, len(ValidPolicies))
	for p := range ValidPolicies {
		names = append(names, string(p))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Params carries per-run knobs. TimeQuantum is only read by Round Robin.
// Trace, when non-nil, receives one record per dispatch.
type Params struct {
	TimeQuantum int64
	Trace       *trace.SimulationTrace
}

// Validate checks params against the policy that will consume them.
func (p Params) Validate(policy Policy) error {
	if policy == PolicyRoundRobin && p.TimeQuantum <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidQuantum, p.TimeQuantum)
	}
	return nil
}
