// Summarizes a simulation snapshot into shop-level statistics such as:
// customers served, turned away, throughput and turn-away ratio.

package sim

import (
	"fmt"
	"io"
)

// Stats aggregates statistics about a simulation snapshot
// for final reporting.
type Stats struct {
	Arrived          int     // customers created so far
	Served           int     // finished haircuts
	TurnedAway       int     // customers who found no free chair
	Waiting          int     // customers still in the waiting line
	InChair          int     // customers currently being served
	ElapsedS         int     // simulated seconds
	ThroughputPerMin float64 // served per simulated minute
	TurnAwayRatio    float64 // turned away / arrived
}

// ComputeStats derives Stats from a snapshot.
func ComputeStats(s SimulationState) Stats {
	st := Stats{
		Arrived:    s.CustomersArrived(),
		Served:     s.CustomersServed,
		TurnedAway: s.CustomersTurnedAway,
		Waiting:    len(s.WaitingQueue),
		InChair:    s.BusyBarbers(),
		ElapsedS:   s.SimulationElapsedSeconds,
	}
	if st.ElapsedS > 0 {
		st.ThroughputPerMin = float64(st.Served) / float64(st.ElapsedS) * 60
	}
	if st.Arrived > 0 {
		st.TurnAwayRatio = float64(st.TurnedAway) / float64(st.Arrived)
	}
	return st
}

// Print writes the statistics in a human-readable block.
func (st Stats) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Barbershop Statistics ===")
	fmt.Fprintf(w, "Elapsed              : %ds\n", st.ElapsedS)
	fmt.Fprintf(w, "Customers Arrived    : %d\n", st.Arrived)
	fmt.Fprintf(w, "Customers Served     : %d\n", st.Served)
	fmt.Fprintf(w, "Customers Turned Away: %d\n", st.TurnedAway)
	fmt.Fprintf(w, "Still Waiting        : %d\n", st.Waiting)
	fmt.Fprintf(w, "In Chair             : %d\n", st.InChair)
	if st.ElapsedS > 0 {
		fmt.Fprintf(w, "Throughput           : %.2f customers/min\n", st.ThroughputPerMin)
	}
	if st.Arrived > 0 {
		fmt.Fprintf(w, "Turn-Away Ratio      : %.1f%%\n", st.TurnAwayRatio*100)
	}
}
