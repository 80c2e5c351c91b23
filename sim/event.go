package sim

import "time"

// Event defines the interface for everything delivered to the engine's mailbox.
// Each event has a Timestamp (the wall-clock instant it was raised) and an
// Execute method that performs one atomic state transition on the engine goroutine.
type Event interface {
	Timestamp() time.Time
	Execute(*Engine)
}

// timerEvent carries the fields shared by scheduler-raised events.
// epoch pins the event to the scheduling generation that armed it; events from
// an older generation are discarded unexecuted.
type timerEvent struct {
	time  time.Time
	epoch uint64
}

func (e timerEvent) Timestamp() time.Time {
	return e.time
}

func (e timerEvent) stale(eng *Engine) bool {
	return e.epoch != eng.sched.epoch
}

// ArrivalEvent is raised by the arrival timer when a customer walks in.
type ArrivalEvent struct {
	timerEvent
}

// Execute runs the arrival transition and re-arms the arrival timer.
func (e *ArrivalEvent) Execute(eng *Engine) {
	if e.stale(eng) {
		return
	}
	eng.onCustomerArrival(e.time)
	if eng.simulating {
		eng.sched.armArrival(e.time, eng.cfg.ArrivalInterval())
	}
}

// CompletionEvent is raised by a barber's haircut timer. Seating identifies
// the specific haircut the timer was armed for.
type CompletionEvent struct {
	timerEvent
	Barber  int
	Seating uint64
}

// Execute completes the haircut if the barber is still on the same seating.
func (e *CompletionEvent) Execute(eng *Engine) {
	if e.stale(eng) || !eng.sched.isCurrentSeating(e.Barber, e.Seating) {
		return
	}
	eng.onHaircutCompletion(e.Barber, e.time)
}

// ProgressEvent is raised by a barber's progress ticker.
type ProgressEvent struct {
	timerEvent
	Barber  int
	Seating uint64
}

// Execute refreshes the barber's haircut progress. It never completes a haircut.
func (e *ProgressEvent) Execute(eng *Engine) {
	if e.stale(eng) || !eng.sched.isCurrentSeating(e.Barber, e.Seating) {
		return
	}
	if eng.onProgress(e.Barber, e.time) < 100 {
		eng.sched.armProgress(e.Barber, e.time)
	}
}

// TickEvent is raised once per second by the simulation clock.
type TickEvent struct {
	timerEvent
}

// Execute advances elapsed simulation time and re-arms the clock while running.
func (e *TickEvent) Execute(eng *Engine) {
	if e.stale(eng) {
		return
	}
	if eng.onTick(e.time) {
		eng.sched.armTick(e.time)
	}
}

// commandEvent runs a caller-supplied transition.
// Commands are never stale: they always act on the latest committed state.
type commandEvent struct {
	time     time.Time
	name     string
	fn       func(*Engine)
	readOnly bool
}

func (e *commandEvent) Timestamp() time.Time {
	return e.time
}

func (e *commandEvent) Execute(eng *Engine) {
	e.fn(eng)
}
