// Package sim provides the sleeping-barber simulation engine.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - barber.go: Barber lifecycle (SLEEPING ⇄ CUTTING_HAIR) and its invariants
//   - event.go: Events that drive the simulation (Arrival, Completion, Progress, Tick, commands)
//   - engine.go: The event loop and every state transition
//
// # Architecture
//
// The Engine owns all mutable state and runs a single goroutine that consumes
// a mailbox of events. Timers armed by the scheduler (scheduler.go) never touch
// state; they only deliver events. Commands from a view (Start, Stop, Reset,
// UpdateConfig, State) travel through the same mailbox, so every transition is
// atomic and fully serialized with timer-driven ones.
//
// Timers are re-armed imperatively inside the transition that changes the
// state they depend on. Stop, Reset and roster changes cancel outstanding
// timers and bump a scheduling epoch, so an event raised by an old timer is
// discarded even if it was already queued.
//
// Sub-packages:
//   - sim/clock/: wall clock abstraction, with a manually advanced Fake for tests
//   - sim/trace/: decision trace recording (admissions and completion handoffs)
//   - sim/telemetry/: Prometheus metrics and OpenTelemetry tracing setup
package sim
