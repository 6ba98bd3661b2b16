package banker

import (
	"fmt"
	"io"
	"strings"
)

// State is a deep copy of the engine's vectors and matrices.
type State struct {
	Processes  []string `json:"processes"`
	Resources  []string `json:"resources"`
	Available  []int    `json:"available"`
	Max        [][]int  `json:"max"`
	Allocation [][]int  `json:"allocation"`
	Need       [][]int  `json:"need"`
}

// Snapshot returns a copy of the current state. Later mutations of the
// engine do not affect it.
func (e *Engine) Snapshot() (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.configured {
		return State{}, ErrNotConfigured
	}
	return State{
		Processes:  append([]string(nil), e.processes...),
		Resources:  append([]string(nil), e.resources...),
		Available:  append([]int(nil), e.available...),
		Max:        copyMatrix(e.maxClaim),
		Allocation: copyMatrix(e.allocation),
		Need:       copyMatrix(e.need),
	}, nil
}

// Print writes the matrices as aligned text tables.
func (s State) Print(w io.Writer) {
	header := "          " + strings.Join(pad(s.Resources), "")
	fmt.Fprintf(w, "Available %s\n", strings.Join(pad(ints(s.Available)), ""))
	for _, section := range []struct {
		name string
		rows [][]int
	}{{"Max", s.Max}, {"Allocation", s.Allocation}, {"Need", s.Need}} {
		fmt.Fprintf(w, "%s\n%s\n", section.name, header)
		for i, row := range section.rows {
			fmt.Fprintf(w, "%-10s%s\n", s.Processes[i], strings.Join(pad(ints(row)), ""))
		}
	}
}

func copyMatrix(m [][]int) [][]int {
	out := make([][]int, len(m))
	for i, row := range m {
		out[i] = append([]int(nil), row...)
	}
	return out
}

func ints(v []int) []string {
	out := make([]string, len(v))
	for i, x := range v {
		out[i] = fmt.Sprint(x)
	}
	return out
}

func pad(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = fmt.Sprintf("%6s", c)
	}
	return out
}
