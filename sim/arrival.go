package sim

import (
	"fmt"
	"math/rand"
	"time"
)

// Arrival process names accepted by NewArrivalSampler.
const (
	ArrivalConstant = "constant"
	ArrivalPoisson  = "poisson"
)

var validArrivalProcesses = map[string]bool{
	"":              true, // empty defaults to constant
	ArrivalConstant: true,
	ArrivalPoisson:  true,
}

// IsValidArrivalProcess returns true if name is a recognized arrival process.
func IsValidArrivalProcess(name string) bool {
	return validArrivalProcesses[name]
}

// ArrivalSampler produces the gap before the next customer arrives.
type ArrivalSampler interface {
	// NextGap returns the inter-arrival time given the configured mean.
	// Always returns at least MinCustomerArrivalRateMs.
	NextGap(mean time.Duration) time.Duration
}

// ConstantSampler spaces customers exactly one arrival period apart.
type ConstantSampler struct{}

func (ConstantSampler) NextGap(mean time.Duration) time.Duration {
	return max(mean, MinCustomerArrivalRateMs*time.Millisecond)
}

// PoissonSampler generates exponentially-distributed inter-arrival times.
//
// Thread-safety: NOT thread-safe. The engine calls it from its own goroutine only.
type PoissonSampler struct {
	rng *rand.Rand
}

// NewPoissonSampler creates a PoissonSampler drawing from the arrivals
// subsystem of the run identified by seed.
func NewPoissonSampler(seed int64) *PoissonSampler {
	rng := NewPartitionedRNG(NewSimulationKey(seed)).ForSubsystem(SubsystemArrivals)
	return &PoissonSampler{rng: rng}
}

func (s *PoissonSampler) NextGap(mean time.Duration) time.Duration {
	gap := time.Duration(s.rng.ExpFloat64() * float64(mean))
	return max(gap, MinCustomerArrivalRateMs*time.Millisecond)
}

// NewArrivalSampler creates an arrival sampler by name.
// An empty string defaults to ConstantSampler.
// Panics on unrecognized names.
func NewArrivalSampler(name string, seed int64) ArrivalSampler {
	if !IsValidArrivalProcess(name) {
		panic(fmt.Sprintf("unknown arrival process %q", name))
	}
	switch name {
	case "", ArrivalConstant:
		return ConstantSampler{}
	case ArrivalPoisson:
		return NewPoissonSampler(seed)
	default:
		panic(fmt.Sprintf("unhandled arrival process %q", name))
	}
}
