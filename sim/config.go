package sim

import (
	"fmt"
	"time"
)

// Domain bounds enforced by the configuration validator.
const (
	MinHaircutDurationMs     = 100
	MinCustomerArrivalRateMs = 100
	MinWaitingChairs         = 0
	MaxWaitingChairs         = 20
	MinBarbers               = 1
	MaxBarbers               = 5
	MinSimulationTimeLimitS  = 0
)

// Config holds the tunable shop parameters. Legal ranges: waiting chairs
// 0..20, arrival rate and haircut duration at least 100ms, barbers 1..5,
// time limit at least 0 (0 means unbounded).
type Config struct {
	NumWaitingChairs      int `json:"numWaitingChairs" yaml:"num_waiting_chairs"`
	CustomerArrivalRateMs int `json:"customerArrivalRateMs" yaml:"customer_arrival_rate_ms"`
	HaircutDurationMs     int `json:"haircutDurationMs" yaml:"haircut_duration_ms"`
	NumBarbers            int `json:"numBarbers" yaml:"num_barbers"`
	SimulationTimeLimitS  int `json:"simulationTimeLimitS" yaml:"simulation_time_limit_s"`
}

// DefaultConfig returns the configuration a freshly constructed engine uses.
func DefaultConfig() Config {
	return Config{
		NumWaitingChairs:      5,
		CustomerArrivalRateMs: 3000,
		HaircutDurationMs:     5000,
		NumBarbers:            1,
		SimulationTimeLimitS:  0,
	}
}

// ArrivalInterval is the customer arrival period.
func (c Config) ArrivalInterval() time.Duration {
	return time.Duration(c.CustomerArrivalRateMs) * time.Millisecond
}

// HaircutDuration is the time one haircut takes.
func (c Config) HaircutDuration() time.Duration {
	return time.Duration(c.HaircutDurationMs) * time.Millisecond
}

// ConfigUpdate is a partial Config. Nil fields are left untouched.
type ConfigUpdate struct {
	NumWaitingChairs      *int `json:"numWaitingChairs,omitempty" yaml:"num_waiting_chairs"`
	CustomerArrivalRateMs *int `json:"customerArrivalRateMs,omitempty" yaml:"customer_arrival_rate_ms"`
	HaircutDurationMs     *int `json:"haircutDurationMs,omitempty" yaml:"haircut_duration_ms"`
	NumBarbers            *int `json:"numBarbers,omitempty" yaml:"num_barbers"`
	SimulationTimeLimitS  *int `json:"simulationTimeLimitS,omitempty" yaml:"simulation_time_limit_s"`
}

// IntPtr is a convenience for building ConfigUpdate literals.
func IntPtr(v int) *int {
	return &v
}

// IsEmpty reports whether no field is set.
func (u ConfigUpdate) IsEmpty() bool {
	return u.NumWaitingChairs == nil && u.CustomerArrivalRateMs == nil && u.HaircutDurationMs == nil &&
		u.NumBarbers == nil && u.SimulationTimeLimitS == nil
}

// Merge overlays the fields set in other on top of u.
func (u ConfigUpdate) Merge(other ConfigUpdate) ConfigUpdate {
	if other.NumWaitingChairs != nil {
		u.NumWaitingChairs = other.NumWaitingChairs
	}
	if other.CustomerArrivalRateMs != nil {
		u.CustomerArrivalRateMs = other.CustomerArrivalRateMs
	}
	if other.HaircutDurationMs != nil {
		u.HaircutDurationMs = other.HaircutDurationMs
	}
	if other.NumBarbers != nil {
		u.NumBarbers = other.NumBarbers
	}
	if other.SimulationTimeLimitS != nil {
		u.SimulationTimeLimitS = other.SimulationTimeLimitS
	}
	return u
}

// FullUpdate returns an update that sets every field of c.
func FullUpdate(c Config) ConfigUpdate {
	return ConfigUpdate{
		NumWaitingChairs:      IntPtr(c.NumWaitingChairs),
		CustomerArrivalRateMs: IntPtr(c.CustomerArrivalRateMs),
		HaircutDurationMs:     IntPtr(c.HaircutDurationMs),
		NumBarbers:            IntPtr(c.NumBarbers),
		SimulationTimeLimitS:  IntPtr(c.SimulationTimeLimitS),
	}
}

// ClampUpdate validates each set field independently and clamps it into its
// legal range. It returns the clamped update plus one warning per corrected
// field, in a fixed field order.
func ClampUpdate(u ConfigUpdate) (ConfigUpdate, []string) {
	var warnings []string

	if u.HaircutDurationMs != nil && *u.HaircutDurationMs < MinHaircutDurationMs {
		warnings = append(warnings, fmt.Sprintf("Haircut duration (%dms) too low, adjusted to %dms.",
			*u.HaircutDurationMs, MinHaircutDurationMs))
		u.HaircutDurationMs = IntPtr(MinHaircutDurationMs)
	}
	if u.CustomerArrivalRateMs != nil && *u.CustomerArrivalRateMs < MinCustomerArrivalRateMs {
		warnings = append(warnings, fmt.Sprintf("Customer arrival rate (%dms) too low, adjusted to %dms.",
			*u.CustomerArrivalRateMs, MinCustomerArrivalRateMs))
		u.CustomerArrivalRateMs = IntPtr(MinCustomerArrivalRateMs)
	}
	if u.NumWaitingChairs != nil {
		switch n := *u.NumWaitingChairs; {
		case n > MaxWaitingChairs:
			warnings = append(warnings, fmt.Sprintf("Max waiting chairs (%d) too high, adjusted to %d.", n, MaxWaitingChairs))
			u.NumWaitingChairs = IntPtr(MaxWaitingChairs)
		case n < MinWaitingChairs:
			warnings = append(warnings, fmt.Sprintf("Max waiting chairs (%d) invalid, adjusted to %d.", n, MinWaitingChairs))
			u.NumWaitingChairs = IntPtr(MinWaitingChairs)
		}
	}
	if u.SimulationTimeLimitS != nil && *u.SimulationTimeLimitS < MinSimulationTimeLimitS {
		warnings = append(warnings, fmt.Sprintf("Simulation time limit (%ds) invalid, adjusted to %d.",
			*u.SimulationTimeLimitS, MinSimulationTimeLimitS))
		u.SimulationTimeLimitS = IntPtr(MinSimulationTimeLimitS)
	}
	if u.NumBarbers != nil {
		n := *u.NumBarbers
		clamped := min(MaxBarbers, max(MinBarbers, n))
		if clamped != n {
			warnings = append(warnings, fmt.Sprintf("Number of barbers (%d) adjusted to %d. Min %d, Max %d.",
				n, clamped, MinBarbers, MaxBarbers))
			u.NumBarbers = IntPtr(clamped)
		}
	}
	return u, warnings
}

// apply writes the set fields of u into c. u must already be clamped.
func (c Config) apply(u ConfigUpdate) Config {
	if u.NumWaitingChairs != nil {
		c.NumWaitingChairs = *u.NumWaitingChairs
	}
	if u.CustomerArrivalRateMs != nil {
		c.CustomerArrivalRateMs = *u.CustomerArrivalRateMs
	}
	if u.HaircutDurationMs != nil {
		c.HaircutDurationMs = *u.HaircutDurationMs
	}
	if u.NumBarbers != nil {
		c.NumBarbers = *u.NumBarbers
	}
	if u.SimulationTimeLimitS != nil {
		c.SimulationTimeLimitS = *u.SimulationTimeLimitS
	}
	return c
}

// NormalizeConfig clamps every field of c. Used at construction time.
func NormalizeConfig(c Config) (Config, []string) {
	u, warnings := ClampUpdate(FullUpdate(c))
	return c.apply(u), warnings
}
