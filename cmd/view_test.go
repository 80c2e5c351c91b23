package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/inference-sim/barbershop-sim/sim"
	"github.com/inference-sim/barbershop-sim/sim/trace"
)

var viewStart = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func stateWithEvents(msgs ...string) sim.SimulationState {
	// msgs are given oldest first; the log is newest first
	events := make([]sim.SimulationEvent, len(msgs))
	for i, m := range msgs {
		events[len(msgs)-1-i] = sim.SimulationEvent{ID: m, Timestamp: viewStart, Message: m}
	}
	return sim.SimulationState{Events: events, Config: sim.DefaultConfig()}
}

func TestConsoleView_PrintsOnlyNewEventsInOrder(t *testing.T) {
	// GIVEN a view that has already seen one event
	var buf bytes.Buffer
	v := newConsoleView(&buf, 0)
	v.Observe(sim.Transition{Name: "start", State: stateWithEvents("a")})
	buf.Reset()

	// WHEN a transition adds two more
	v.Observe(sim.Transition{Name: "arrival", State: stateWithEvents("a", "b", "c")})

	// THEN only those two print, oldest first
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "b"))
	assert.True(t, strings.HasSuffix(lines[1], "c"))
}

func TestConsoleView_ClearedLogPrintsEverything(t *testing.T) {
	var buf bytes.Buffer
	v := newConsoleView(&buf, 0)
	v.Observe(sim.Transition{Name: "arrival", State: stateWithEvents("a", "b")})
	buf.Reset()

	v.Observe(sim.Transition{Name: "reset", State: stateWithEvents("Simulation reset.")})

	assert.Contains(t, buf.String(), "Simulation reset.")
}

func TestConsoleView_StatusLineRateLimited(t *testing.T) {
	var buf bytes.Buffer
	v := newConsoleView(&buf, 2*time.Second)
	s := stateWithEvents()

	for i := 1; i <= 4; i++ {
		v.Observe(sim.Transition{Name: "tick", At: viewStart.Add(time.Duration(i) * time.Second), State: s})
	}

	assert.Equal(t, 2, strings.Count(buf.String(), "served"))
}

func TestRenderShop(t *testing.T) {
	start := viewStart
	s := sim.SimulationState{
		Barbers: []sim.Barber{
			{ID: 0, Name: "Barber 1", Status: sim.CuttingHair, CustomerInChair: &sim.Customer{ID: 3}, HaircutProgress: 42, HaircutStartTime: &start},
			{ID: 1, Name: "Barber 2", Status: sim.Sleeping},
		},
		WaitingQueue:        []sim.Customer{{ID: 4}, {ID: 5}},
		CustomersServed:     2,
		CustomersTurnedAway: 1,
		Config:              sim.DefaultConfig(),
	}

	got := renderShop(s)

	assert.Contains(t, got, "Barber 1: #3  42%")
	assert.Contains(t, got, "Barber 2: zzz")
	assert.Contains(t, got, "chairs 2/5 [#4 #5]")
	assert.Contains(t, got, "served 2 | turned away 1")
}

func TestPrintTraceSummary(t *testing.T) {
	var buf bytes.Buffer
	ts := &trace.TraceSummary{
		TotalDecisions:     3,
		SeatedCount:        2,
		TurnedAwayCount:    1,
		Handoffs:           1,
		MeanHaircutMs:      5000,
		BarberDistribution: map[int]int{1: 1, 0: 1},
	}

	printTraceSummary(&buf, ts)

	out := buf.String()
	assert.Contains(t, out, "Admission Decisions  : 3")
	assert.Contains(t, out, "Mean Haircut         : 5000ms")
	assert.Less(t, strings.Index(out, "Barber 1: 1"), strings.Index(out, "Barber 2: 1"))
}
