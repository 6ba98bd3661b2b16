package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// SimulationKey identifies a reproducible random workload. The same key and
// bounds always generate the same process set.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

const (
	SubsystemArrivals   = "arrivals"
	SubsystemBursts     = "bursts"
	SubsystemPriorities = "priorities"
)

// PartitionedRNG provides deterministic, isolated RNG streams per subsystem.
// Each stream is seeded with key XOR fnv1a64(name), so drawing more values
// from one stream never shifts another.
//
// Not thread-safe.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the stream for name, creating it on first use.
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// SpecBounds limits generated specs: arrivals in [0, MaxArrival], bursts in
// [1, MaxBurst], priorities in [0, MaxPriority].
type SpecBounds struct {
	MaxArrival  int64
	MaxBurst    int64
	MaxPriority int
}

// DefaultSpecBounds produces small workloads with idle gaps, simultaneous
// arrivals and priority ties.
var DefaultSpecBounds = SpecBounds{MaxArrival: 20, MaxBurst: 10, MaxPriority: 4}

// GenerateSpecs draws n specs with PIDs 1..n. Arrivals, bursts and
// priorities each come from their own subsystem stream.
func GenerateSpecs(rng *PartitionedRNG, n int, b SpecBounds) ([]ProcessSpec, error) {
	if n < 0 {
		return nil, fmt.Errorf("process count must be non-negative, got %d: %w", n, ErrInvalidProcess)
	}
	if b.MaxArrival < 0 || b.MaxBurst < 1 || b.MaxPriority < 0 {
		return nil, fmt.Errorf("bounds %+v out of range: %w", b, ErrInvalidProcess)
	}
	arrivals := rng.ForSubsystem(SubsystemArrivals)
	burstRNG := rng.ForSubsystem(SubsystemBursts)
	priorities := rng.ForSubsystem(SubsystemPriorities)

	out := make([]ProcessSpec, n)
	for i := range out {
		out[i] = ProcessSpec{
			PID:         i + 1,
			ArrivalTime: arrivals.Int63n(b.MaxArrival + 1),
			BurstTime:   1 + burstRNG.Int63n(b.MaxBurst),
			Priority:    priorities.Intn(b.MaxPriority + 1),
		}
	}
	return out, nil
}
