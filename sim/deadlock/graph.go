package deadlock

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// NodeKind separates the process and resource namespaces.
type NodeKind uint8

const (
	KindProcess NodeKind = iota + 1
	KindResource
)

func (k NodeKind) String() string {
	switch k {
	case KindProcess:
		return "process"
	case KindResource:
		return "resource"
	default:
		return fmt.Sprintf("NodeKind(%d)", uint8(k))
	}
}

// NodeID identifies a node by namespace and id.
type NodeID struct {
	Kind NodeKind
	ID   string
}

// ProcessNode returns the NodeID of process id.
func ProcessNode(id string) NodeID { return NodeID{Kind: KindProcess, ID: id} }

// ResourceNode returns the NodeID of resource id.
func ResourceNode(id string) NodeID { return NodeID{Kind: KindResource, ID: id} }

func (n NodeID) String() string {
	if n.Kind == KindResource {
		return "R(" + n.ID + ")"
	}
	return "P(" + n.ID + ")"
}

// MarshalText renders the node as P(id) or R(id).
func (n NodeID) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText parses the P(id) / R(id) form produced by MarshalText.
func (n *NodeID) UnmarshalText(text []byte) error {
	s := string(text)
	if len(s) < 4 || s[1] != '(' || s[len(s)-1] != ')' {
		return fmt.Errorf("node %q: want P(id) or R(id)", s)
	}
	switch s[0] {
	case 'P':
		n.Kind = KindProcess
	case 'R':
		n.Kind = KindResource
	default:
		return fmt.Errorf("node %q: unknown kind %q", s, s[0])
	}
	n.ID = s[2 : len(s)-1]
	return nil
}

// Resource is a resource type with a fixed number of interchangeable instances.
type Resource struct {
	ID        string `json:"id"`
	Total     int    `json:"total"`
	Allocated int    `json:"allocated"`
}

// Free returns the number of unallocated instances.
func (r Resource) Free() int {
	return r.Total - r.Allocated
}

// EdgeKind is derived from an edge's direction.
type EdgeKind string

const (
	EdgeAllocation EdgeKind = "allocation"
	EdgeRequest    EdgeKind = "request"
)

// Edge is a snapshot of one weighted graph edge.
type Edge struct {
	From   NodeID   `json:"from"`
	To     NodeID   `json:"to"`
	Kind   EdgeKind `json:"kind"`
	Weight int      `json:"weight"`
}

// Graph is a resource-allocation graph.
type Graph struct {
	processes map[string]bool
	resources map[string]*Resource
	// out[from][to] = weight. Allocation edges leave resource nodes,
	// request edges leave process nodes.
	out map[NodeID]map[NodeID]int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	g := &Graph{}
	g.Reset()
	return g
}

// Reset removes every node and edge.
func (g *Graph) Reset() {
	g.processes = make(map[string]bool)
	g.resources = make(map[string]*Resource)
	g.out = make(map[NodeID]map[NodeID]int)
}

// AddProcess adds a process node.
func (g *Graph) AddProcess(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if g.processes[id] {
		return fmt.Errorf("process %q: %w", id, ErrDuplicateNode)
	}
	g.processes[id] = true
	return nil
}

// AddResource adds a resource node with the given number of instances.
func (g *Graph) AddResource(id string, instances int) error {
	if id == "" {
		return ErrEmptyID
	}
	if instances < 1 {
		return fmt.Errorf("resource %q instances %d: %w", id, instances, ErrInvalidCount)
	}
	if _, ok := g.resources[id]; ok {
		return fmt.Errorf("resource %q: %w", id, ErrDuplicateNode)
	}
	g.resources[id] = &Resource{ID: id, Total: instances}
	return nil
}

// lookup validates that both endpoints exist and count is positive.
func (g *Graph) lookup(pid, rid string, count int) (*Resource, error) {
	if !g.processes[pid] {
		return nil, fmt.Errorf("process %q: %w", pid, ErrNodeNotFound)
	}
	r, ok := g.resources[rid]
	if !ok {
		return nil, fmt.Errorf("resource %q: %w", rid, ErrNodeNotFound)
	}
	if count < 1 {
		return nil, fmt.Errorf("count %d: %w", count, ErrInvalidCount)
	}
	return r, nil
}

// Allocate gives count instances of rid to pid. Returns false, with no
// change, when fewer than count instances are free.
func (g *Graph) Allocate(pid, rid string, count int) (bool, error) {
	r, err := g.lookup(pid, rid, count)
	if err != nil {
		return false, err
	}
	if count > r.Free() {
		logrus.Debugf("Allocate %s x%d to %s refused: %d free", rid, count, pid, r.Free())
		return false, nil
	}
	g.addWeight(ResourceNode(rid), ProcessNode(pid), count)
	r.Allocated += count
	return true, nil
}

// Request records that pid is waiting for count instances of rid. It is
// bookkeeping only and performs no feasibility check.
func (g *Graph) Request(pid, rid string, count int) error {
	if _, err := g.lookup(pid, rid, count); err != nil {
		return err
	}
	g.addWeight(ProcessNode(pid), ResourceNode(rid), count)
	return nil
}

// CancelRequest drops the pending request edge pid → rid.
func (g *Graph) CancelRequest(pid, rid string) error {
	if _, err := g.lookup(pid, rid, 1); err != nil {
		return err
	}
	from, to := ProcessNode(pid), ResourceNode(rid)
	if g.out[from][to] == 0 {
		return fmt.Errorf("request %s -> %s: %w", from, to, ErrEdgeNotFound)
	}
	g.setWeight(from, to, 0)
	return nil
}

// Release returns count instances of rid held by pid. Returns false, with no
// change, when pid holds fewer than count instances.
func (g *Graph) Release(pid, rid string, count int) (bool, error) {
	r, err := g.lookup(pid, rid, count)
	if err != nil {
		return false, err
	}
	from, to := ResourceNode(rid), ProcessNode(pid)
	held := g.out[from][to]
	if held < count {
		logrus.Debugf("Release %s x%d from %s refused: holds %d", rid, count, pid, held)
		return false, nil
	}
	g.setWeight(from, to, held-count)
	r.Allocated -= count
	return true, nil
}

// Held returns the number of instances of rid currently allocated to pid.
func (g *Graph) Held(pid, rid string) int {
	return g.out[ResourceNode(rid)][ProcessNode(pid)]
}

// Pending returns the number of instances of rid pid is waiting for.
func (g *Graph) Pending(pid, rid string) int {
	return g.out[ProcessNode(pid)][ResourceNode(rid)]
}

// Resource returns a copy of resource id.
func (g *Graph) Resource(id string) (Resource, bool) {
	r, ok := g.resources[id]
	if !ok {
		return Resource{}, false
	}
	return *r, true
}

// Processes returns the process ids in sorted order.
func (g *Graph) Processes() []string {
	ids := make([]string, 0, len(g.processes))
	for id := range g.processes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resources returns copies of all resources sorted by id.
func (g *Graph) Resources() []Resource {
	out := make([]Resource, 0, len(g.resources))
	for _, r := range g.resources {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns every edge, allocation edges first, each group sorted by
// source then target id.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for from, targets := range g.out {
		kind := EdgeRequest
		if from.Kind == KindResource {
			kind = EdgeAllocation
		}
		for to, w := range targets {
			edges = append(edges, Edge{From: from, To: to, Kind: kind, Weight: w})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Kind != b.Kind {
			return a.Kind == EdgeAllocation
		}
		if a.From.ID != b.From.ID {
			return a.From.ID < b.From.ID
		}
		return a.To.ID < b.To.ID
	})
	return edges
}

func (g *Graph) addWeight(from, to NodeID, delta int) {
	g.setWeight(from, to, g.out[from][to]+delta)
}

// setWeight stores w, deleting the edge when w reaches zero.
func (g *Graph) setWeight(from, to NodeID, w int) {
	if w <= 0 {
		delete(g.out[from], to)
		if len(g.out[from]) == 0 {
			delete(g.out, from)
		}
		return
	}
	if g.out[from] == nil {
		g.out[from] = make(map[NodeID]int)
	}
	g.out[from][to] = w
}
