package sim

import (
	"fmt"
	"time"
)

// BarberStatus is the lifecycle state of a barber.
type BarberStatus string

const (
	// Sleeping barbers are idle and take the next arriving customer.
	Sleeping BarberStatus = "SLEEPING"
	// CuttingHair barbers hold exactly one customer in their chair.
	CuttingHair BarberStatus = "CUTTING_HAIR"
)

// Customer is an arriving client. IDs start at 1 and increase monotonically.
type Customer struct {
	ID int `json:"id"`
}

// Barber is a single service unit.
//
// Invariant: Status == CuttingHair iff CustomerInChair != nil iff
// HaircutStartTime != nil. HaircutProgress is 0 whenever the barber sleeps.
type Barber struct {
	ID               int          `json:"id"`
	Name             string       `json:"name"`
	Status           BarberStatus `json:"status"`
	CustomerInChair  *Customer    `json:"customerInChair,omitempty"`
	HaircutProgress  float64      `json:"haircutProgress"` // 0-100
	HaircutStartTime *time.Time   `json:"haircutStartTime,omitempty"`
}

// barberName returns the display name for roster index i.
func barberName(i int) string {
	return fmt.Sprintf("Barber %d", i+1)
}

// newBarbers builds a roster of n sleeping barbers.
func newBarbers(n int) []Barber {
	barbers := make([]Barber, n)
	for i := range barbers {
		barbers[i] = Barber{ID: i, Name: barberName(i), Status: Sleeping}
	}
	return barbers
}

// IsCutting reports whether the barber currently serves a customer.
func (b *Barber) IsCutting() bool {
	return b.Status == CuttingHair
}

// seat puts c in the barber's chair and starts a fresh haircut at now.
func (b *Barber) seat(c Customer, now time.Time) {
	start := now
	b.Status = CuttingHair
	b.CustomerInChair = &c
	b.HaircutProgress = 0
	b.HaircutStartTime = &start
}

// sleep empties the chair and clears all haircut bookkeeping.
func (b *Barber) sleep() {
	b.Status = Sleeping
	b.CustomerInChair = nil
	b.HaircutProgress = 0
	b.HaircutStartTime = nil
}

// progressAt computes haircut completion percentage at now, clamped to [0, 100].
func (b *Barber) progressAt(now time.Time, duration time.Duration) float64 {
	if !b.IsCutting() || b.HaircutStartTime == nil {
		return 0
	}
	if duration <= 0 {
		duration = time.Millisecond
	}
	p := float64(now.Sub(*b.HaircutStartTime)) / float64(duration) * 100
	return min(100, max(0, p))
}

// clone returns a deep copy safe to hand outside the engine goroutine.
func (b Barber) clone() Barber {
	out := b
	if b.CustomerInChair != nil {
		c := *b.CustomerInChair
		out.CustomerInChair = &c
	}
	if b.HaircutStartTime != nil {
		ts := *b.HaircutStartTime
		out.HaircutStartTime = &ts
	}
	return out
}
