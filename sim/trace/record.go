// Package trace provides decision-trace recording for barbershop runs.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// Outcome is what happened to an arriving customer.
type Outcome string

const (
	OutcomeSeated     Outcome = "seated"
	OutcomeWaiting    Outcome = "waiting"
	OutcomeTurnedAway Outcome = "turned-away"
)

// AdmissionRecord captures a single arrival decision. BarberID is -1 unless
// the customer was seated; QueueLength counts waiting customers after the decision.
type AdmissionRecord struct {
	CustomerID  int
	ElapsedS    int
	Outcome     Outcome
	BarberID    int
	QueueLength int
}

// HandoffRecord captures a finished haircut and what the barber did next.
// NextCustomer is 0 when the barber went to sleep.
type HandoffRecord struct {
	BarberID         int
	FinishedCustomer int
	NextCustomer     int
	HaircutMs        int64
}
