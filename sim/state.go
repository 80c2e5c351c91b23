package sim

import (
	"errors"
	"fmt"
)

// SimulationState is an immutable snapshot of the whole shop, handed to views
// and observers. It never aliases engine-owned memory.
type SimulationState struct {
	Barbers                  []Barber          `json:"barbers"`
	WaitingQueue             []Customer        `json:"waitingQueue"`
	CustomersServed          int               `json:"customersServed"`
	CustomersTurnedAway      int               `json:"customersTurnedAway"`
	NextCustomerID           int               `json:"nextCustomerId"`
	Events                   []SimulationEvent `json:"events"` // newest first
	IsSimulating             bool              `json:"isSimulating"`
	SimulationElapsedSeconds int               `json:"simulationElapsedSeconds"`
	Config                   Config            `json:"config"`
}

// BusyBarbers returns the number of barbers cutting hair.
func (s SimulationState) BusyBarbers() int {
	n := 0
	for i := range s.Barbers {
		if s.Barbers[i].IsCutting() {
			n++
		}
	}
	return n
}

// CustomersArrived returns the number of customers created so far.
func (s SimulationState) CustomersArrived() int {
	return s.NextCustomerID - 1
}

// EventMessages returns the log messages, newest first.
func (s SimulationState) EventMessages() []string {
	out := make([]string, len(s.Events))
	for i, ev := range s.Events {
		out[i] = ev.Message
	}
	return out
}

// CheckInvariants verifies the structural invariants every reachable state
// must satisfy. It returns nil for a consistent snapshot.
func (s SimulationState) CheckInvariants() error {
	var errs []error
	if len(s.WaitingQueue) > s.Config.NumWaitingChairs {
		errs = append(errs, fmt.Errorf("waiting queue holds %d customers but only %d chairs exist",
			len(s.WaitingQueue), s.Config.NumWaitingChairs))
	}
	if len(s.Barbers) != s.Config.NumBarbers {
		errs = append(errs, fmt.Errorf("roster has %d barbers, config says %d", len(s.Barbers), s.Config.NumBarbers))
	}
	if len(s.Events) > MaxEvents {
		errs = append(errs, fmt.Errorf("event log holds %d entries, limit is %d", len(s.Events), MaxEvents))
	}
	for i := 1; i < len(s.Events); i++ {
		if s.Events[i].Timestamp.After(s.Events[i-1].Timestamp) {
			errs = append(errs, fmt.Errorf("event log not newest-first at index %d", i))
			break
		}
	}
	for _, b := range s.Barbers {
		cutting := b.Status == CuttingHair
		if cutting != (b.CustomerInChair != nil) || cutting != (b.HaircutStartTime != nil) {
			errs = append(errs, fmt.Errorf("%s: status %s, customer present %t, start time present %t",
				b.Name, b.Status, b.CustomerInChair != nil, b.HaircutStartTime != nil))
		}
		if !cutting && b.HaircutProgress != 0 {
			errs = append(errs, fmt.Errorf("%s: sleeping with progress %.1f", b.Name, b.HaircutProgress))
		}
		if b.HaircutProgress < 0 || b.HaircutProgress > 100 {
			errs = append(errs, fmt.Errorf("%s: progress %.1f outside [0, 100]", b.Name, b.HaircutProgress))
		}
	}
	return errors.Join(errs...)
}
