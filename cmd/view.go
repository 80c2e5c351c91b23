package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/inference-sim/barbershop-sim/sim"
	"github.com/inference-sim/barbershop-sim/sim/trace"
)

// consoleView is the terminal rendition of the passive view: it echoes new
// event log entries as they are committed and prints a status line at most
// once per interval of simulated time.
type consoleView struct {
	w        io.Writer
	interval time.Duration

	mu          sync.Mutex
	lastEventID string
	lastStatus  time.Time
}

func newConsoleView(w io.Writer, interval time.Duration) *consoleView {
	return &consoleView{w: w, interval: interval}
}

// Observe implements sim.Observer.
func (v *consoleView) Observe(t sim.Transition) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fresh := eventsSince(t.State.Events, v.lastEventID)
	for i := len(fresh) - 1; i >= 0; i-- {
		fmt.Fprintf(v.w, "[%3ds] %s\n", t.State.SimulationElapsedSeconds, fresh[i].Message)
	}
	if len(t.State.Events) > 0 {
		v.lastEventID = t.State.Events[0].ID
	}

	if t.Name == "tick" && v.interval > 0 && t.At.Sub(v.lastStatus) >= v.interval {
		fmt.Fprintln(v.w, renderShop(t.State))
		v.lastStatus = t.At
	}
}

// eventsSince returns the newest-first prefix of events up to, not including,
// the entry with id lastID. If lastID is gone (log cleared or rotated) every
// entry is new.
func eventsSince(events []sim.SimulationEvent, lastID string) []sim.SimulationEvent {
	for i, ev := range events {
		if ev.ID == lastID {
			return events[:i]
		}
	}
	return events
}

// renderShop draws a one-line summary of a snapshot.
func renderShop(s sim.SimulationState) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%3ds]", s.SimulationElapsedSeconds)
	for _, b := range s.Barbers {
		if b.IsCutting() && b.CustomerInChair != nil {
			fmt.Fprintf(&sb, " %s: #%d %3.0f%% |", b.Name, b.CustomerInChair.ID, b.HaircutProgress)
		} else {
			fmt.Fprintf(&sb, " %s: zzz |", b.Name)
		}
	}
	ids := make([]string, len(s.WaitingQueue))
	for i, c := range s.WaitingQueue {
		ids[i] = fmt.Sprintf("#%d", c.ID)
	}
	fmt.Fprintf(&sb, " chairs %d/%d [%s] | served %d | turned away %d",
		len(s.WaitingQueue), s.Config.NumWaitingChairs, strings.Join(ids, " "),
		s.CustomersServed, s.CustomersTurnedAway)
	return sb.String()
}

// printTraceSummary writes the decision trace summary after the statistics block.
func printTraceSummary(w io.Writer, ts *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Decision Trace Summary ===")
	fmt.Fprintf(w, "Admission Decisions  : %d\n", ts.TotalDecisions)
	fmt.Fprintf(w, "  Seated             : %d\n", ts.SeatedCount)
	fmt.Fprintf(w, "  Waiting            : %d\n", ts.WaitingCount)
	fmt.Fprintf(w, "  Turned Away        : %d\n", ts.TurnedAwayCount)
	fmt.Fprintf(w, "Max Queue Length     : %d\n", ts.MaxQueueLength)
	fmt.Fprintf(w, "Haircuts Finished    : %d (%d handed straight to a waiting customer)\n", ts.Handoffs, ts.DirectHandoffs)
	if ts.Handoffs > 0 {
		fmt.Fprintf(w, "Mean Haircut         : %.0fms\n", ts.MeanHaircutMs)
	}
	if len(ts.BarberDistribution) > 0 {
		ids := make([]int, 0, len(ts.BarberDistribution))
		for id := range ts.BarberDistribution {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		fmt.Fprintln(w, "Customers Seated on Arrival:")
		for _, id := range ids {
			fmt.Fprintf(w, "  Barber %d: %d\n", id+1, ts.BarberDistribution[id])
		}
	}
}
