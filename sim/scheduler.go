package sim

import (
	"fmt"
	"time"

	"github.com/inference-sim/barbershop-sim/sim/clock"
)

const (
	// ProgressInterval is the cadence of haircut progress refreshes.
	ProgressInterval = 100 * time.Millisecond
	// TickInterval is one second of simulated elapsed time.
	TickInterval = time.Second
)

// barberTimers holds the timers armed for one barber's current seating.
// seating is 0 while the barber sleeps.
type barberTimers struct {
	seating    uint64
	completion clock.Timer
	progress   clock.Timer
}

// scheduler owns every timer of a simulation run. Timer callbacks only deliver
// events to the engine; all arming and cancelling happens on the engine
// goroutine, inside the transition that changes the state the timer depends on.
//
// Thread-safety: NOT thread-safe. Only the engine goroutine may call it.
type scheduler struct {
	clock   clock.Clock
	deliver func(Event)
	sampler ArrivalSampler

	// epoch is bumped by cancelAll. Events armed under an older epoch are stale.
	epoch      uint64
	seatingSeq uint64

	arrival clock.Timer
	tick    clock.Timer
	barbers []barberTimers
}

func newScheduler(clk clock.Clock, deliver func(Event), sampler ArrivalSampler, numBarbers int) *scheduler {
	return &scheduler{
		clock:   clk,
		deliver: deliver,
		sampler: sampler,
		epoch:   1,
		barbers: make([]barberTimers, numBarbers),
	}
}

// at arms fn for the absolute instant deadline so periodic chains do not drift.
func (s *scheduler) at(deadline time.Time, fn func()) clock.Timer {
	return s.clock.AfterFunc(deadline.Sub(s.clock.Now()), fn)
}

// armArrival schedules the next customer one sampled gap after from.
func (s *scheduler) armArrival(from time.Time, mean time.Duration) {
	stopTimer(&s.arrival)
	epoch := s.epoch
	s.arrival = s.at(from.Add(s.sampler.NextGap(mean)), func() {
		s.deliver(&ArrivalEvent{timerEvent{time: s.clock.Now(), epoch: epoch}})
	})
}

// armTick schedules the next simulation-clock tick one second after from.
func (s *scheduler) armTick(from time.Time) {
	stopTimer(&s.tick)
	epoch := s.epoch
	s.tick = s.at(from.Add(TickInterval), func() {
		s.deliver(&TickEvent{timerEvent{time: s.clock.Now(), epoch: epoch}})
	})
}

// seat cancels barber i's timers and arms completion and progress timers for a
// new haircut starting at start.
func (s *scheduler) seat(i int, start time.Time, duration time.Duration) {
	s.release(i)
	s.seatingSeq++
	seating := s.seatingSeq
	epoch := s.epoch
	bt := &s.barbers[i]
	bt.seating = seating
	bt.completion = s.at(start.Add(duration), func() {
		s.deliver(&CompletionEvent{timerEvent: timerEvent{time: s.clock.Now(), epoch: epoch}, Barber: i, Seating: seating})
	})
	s.armProgress(i, start)
}

// armProgress schedules the next progress refresh for barber i's current seating.
func (s *scheduler) armProgress(i int, from time.Time) {
	bt := s.barber(i)
	stopTimer(&bt.progress)
	seating := bt.seating
	epoch := s.epoch
	bt.progress = s.at(from.Add(ProgressInterval), func() {
		s.deliver(&ProgressEvent{timerEvent: timerEvent{time: s.clock.Now(), epoch: epoch}, Barber: i, Seating: seating})
	})
}

// release cancels barber i's timers and forgets its seating.
func (s *scheduler) release(i int) {
	bt := s.barber(i)
	stopTimer(&bt.completion)
	stopTimer(&bt.progress)
	bt.seating = 0
}

// isCurrentSeating reports whether seating is the live haircut of barber i.
func (s *scheduler) isCurrentSeating(i int, seating uint64) bool {
	return i >= 0 && i < len(s.barbers) && seating != 0 && s.barbers[i].seating == seating
}

// resize cancels every barber timer and tracks a roster of n barbers.
func (s *scheduler) resize(n int) {
	for i := range s.barbers {
		s.release(i)
	}
	s.barbers = make([]barberTimers, n)
}

// cancelAll stops every timer and invalidates events already in flight.
func (s *scheduler) cancelAll() {
	stopTimer(&s.arrival)
	stopTimer(&s.tick)
	for i := range s.barbers {
		s.release(i)
	}
	s.epoch++
}

// armed returns the number of live timers.
func (s *scheduler) armed() int {
	n := 0
	if s.arrival != nil {
		n++
	}
	if s.tick != nil {
		n++
	}
	for _, bt := range s.barbers {
		if bt.completion != nil {
			n++
		}
		if bt.progress != nil {
			n++
		}
	}
	return n
}

func (s *scheduler) barber(i int) *barberTimers {
	if i < 0 || i >= len(s.barbers) {
		panic(fmt.Sprintf("scheduler: barber index %d out of range [0, %d)", i, len(s.barbers)))
	}
	return &s.barbers[i]
}

func stopTimer(t *clock.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
