package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/inference-sim/barbershop-sim/sim/clock"
	"github.com/inference-sim/barbershop-sim/sim/trace"
)

const tracerName = "github.com/inference-sim/barbershop-sim/sim"

// mailboxSize bounds the number of undelivered events. Senders block when full.
const mailboxSize = 64

// Transition describes one committed state change, delivered to observers.
// Name is one of "arrival", "completion", "progress", "tick", "start", "stop",
// "reset", "config" or "close". Took is the wall-clock
// time the transition spent executing.
type Transition struct {
	Name  string
	At    time.Time
	Took  time.Duration
	State SimulationState
}

// Observer receives a snapshot after every committed transition. Observers
// run on the engine goroutine and MUST NOT call back into the Engine.
type Observer interface {
	Observe(t Transition)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Transition)

func (f ObserverFunc) Observe(t Transition) { f(t) }

// EngineConfig groups everything needed to construct an Engine.
type EngineConfig struct {
	Shop           Config                 // initial shop configuration (clamped on construction)
	Clock          clock.Clock            // nil = wall clock
	ArrivalProcess string                 // "constant" (default) or "poisson"
	Seed           int64                  // seed for the poisson arrival process
	Trace          *trace.SimulationTrace // optional decision trace
	Tracer         oteltrace.Tracer       // nil = global otel tracer
	Observers      []Observer
}

// Engine owns the simulation state and serializes every transition through a
// single goroutine. Timers and callers only enqueue events; nothing outside the
// engine goroutine touches the state.
type Engine struct {
	clock   clock.Clock
	tracer  oteltrace.Tracer
	mailbox chan envelope
	closing chan struct{}
	exited  chan struct{}
	once    sync.Once

	// Everything below is owned by the engine goroutine.
	cfg            Config
	barbers        []Barber
	queue          *WaitingQueue
	log            *EventLog
	served         int
	turnedAway     int
	nextCustomerID int
	elapsedS       int
	simulating     bool
	sched          *scheduler
	trace          *trace.SimulationTrace
	observers      []Observer
}

type envelope struct {
	ev   Event
	done chan struct{}
}

// NewEngine creates a stopped engine with the given configuration and starts
// its event loop. Call Close to release it.
func NewEngine(cfg EngineConfig) *Engine {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	shop, warnings := NormalizeConfig(cfg.Shop)
	for _, w := range warnings {
		logrus.Warnf("[config] %s", w)
	}

	e := &Engine{
		clock:          clk,
		tracer:         tracer,
		mailbox:        make(chan envelope, mailboxSize),
		closing:        make(chan struct{}),
		exited:         make(chan struct{}),
		cfg:            shop,
		barbers:        newBarbers(shop.NumBarbers),
		queue:          NewWaitingQueue(shop.NumWaitingChairs),
		log:            NewEventLog(MaxEvents),
		nextCustomerID: 1,
		trace:          cfg.Trace,
		observers:      append([]Observer(nil), cfg.Observers...),
	}
	e.sched = newScheduler(clk, e.deliver, NewArrivalSampler(cfg.ArrivalProcess, cfg.Seed), shop.NumBarbers)
	go e.run()
	return e
}

func (e *Engine) run() {
	defer close(e.exited)
	for {
		select {
		case env := <-e.mailbox:
			e.dispatch(env.ev)
			close(env.done)
		case <-e.closing:
			return
		}
	}
}

// dispatch executes one event inside a span and notifies observers.
func (e *Engine) dispatch(ev Event) {
	name := eventName(ev)
	_, span := e.tracer.Start(context.Background(), "barbershop."+name)
	defer span.End()

	began := time.Now()
	ev.Execute(e)
	took := time.Since(began)

	span.SetAttributes(
		attribute.Bool("barbershop.simulating", e.simulating),
		attribute.Int("barbershop.queue_length", e.queue.Len()),
		attribute.Int("barbershop.customers_served", e.served),
		attribute.Int("barbershop.customers_turned_away", e.turnedAway),
	)
	if cmd, ok := ev.(*commandEvent); len(e.observers) == 0 || (ok && cmd.readOnly) {
		return
	}
	t := Transition{Name: name, At: ev.Timestamp(), Took: took, State: e.snapshot()}
	for _, o := range e.observers {
		o.Observe(t)
	}
}

func eventName(ev Event) string {
	switch ev := ev.(type) {
	case *ArrivalEvent:
		return "arrival"
	case *CompletionEvent:
		return "completion"
	case *ProgressEvent:
		return "progress"
	case *TickEvent:
		return "tick"
	case *commandEvent:
		return ev.name
	default:
		return fmt.Sprintf("%T", ev)
	}
}

// deliver hands a timer-raised event to the loop and waits until it has been
// executed, so a timer callback returns only after its transition committed.
// Returns immediately once the engine is closing.
func (e *Engine) deliver(ev Event) {
	env := envelope{ev: ev, done: make(chan struct{})}
	select {
	case e.mailbox <- env:
	case <-e.closing:
		return
	}
	select {
	case <-env.done:
	case <-e.closing:
	}
}

// do runs fn as a command transition and waits for it. Calling any command
// after Close is a contract violation.
func (e *Engine) do(name string, fn func(*Engine)) {
	e.submit(&commandEvent{name: name, fn: fn})
}

// query runs a read-only fn on the engine goroutine. Observers are not notified.
func (e *Engine) query(name string, fn func(*Engine)) {
	e.submit(&commandEvent{name: name, fn: fn, readOnly: true})
}

func (e *Engine) submit(cmd *commandEvent) {
	name := cmd.name
	if e == nil {
		panic("sim: command " + name + " on nil Engine")
	}
	select {
	case <-e.closing:
		panic("sim: command " + name + " on closed Engine")
	default:
	}
	cmd.time = e.clock.Now()
	env := envelope{ev: cmd, done: make(chan struct{})}
	select {
	case e.mailbox <- env:
	case <-e.closing:
		panic("sim: command " + name + " on closed Engine")
	}
	select {
	case <-env.done:
	case <-e.exited:
		select {
		case <-env.done:
		default:
			panic("sim: engine closed before running command " + name)
		}
	}
}

// Close halts scheduling and stops the event loop. It is idempotent.
func (e *Engine) Close() {
	e.once.Do(func() {
		e.do("close", func(e *Engine) {
			e.sched.cancelAll()
			e.simulating = false
		})
		close(e.closing)
		<-e.exited
	})
}

// State returns a read-only snapshot of the current state.
func (e *Engine) State() SimulationState {
	var s SimulationState
	e.query("state", func(e *Engine) { s = e.snapshot() })
	return s
}

// Start begins a fresh run under the current configuration. No-op if already running.
func (e *Engine) Start() {
	e.do("start", func(e *Engine) { e.start(e.clock.Now()) })
}

// Stop halts all scheduling. Barbers keep their current customers until the
// next Start or Reset.
func (e *Engine) Stop() {
	e.do("stop", func(e *Engine) { e.stop(e.clock.Now()) })
}

// Reset stops the run and restores every counter, the queue and the roster to
// defaults under the current configuration. Safe to call while running.
func (e *Engine) Reset() {
	e.do("reset", func(e *Engine) { e.reset(e.clock.Now()) })
}

// UpdateConfig validates and applies a partial configuration. Out-of-range
// values are clamped with a warning event. Updates are rejected while the
// simulation runs; the return value reports whether the update was applied.
func (e *Engine) UpdateConfig(u ConfigUpdate) bool {
	var applied bool
	e.do("config", func(e *Engine) { applied = e.updateConfig(u, e.clock.Now()) })
	return applied
}

// InjectArrival runs the arrival transition immediately, outside the arrival cadence.
func (e *Engine) InjectArrival() {
	e.do("arrival", func(e *Engine) { e.onCustomerArrival(e.clock.Now()) })
}

// InjectCompletion runs the haircut completion transition for barber i immediately.
func (e *Engine) InjectCompletion(i int) {
	e.do("completion", func(e *Engine) { e.onHaircutCompletion(i, e.clock.Now()) })
}

// InjectTick runs the one-second clock transition immediately.
func (e *Engine) InjectTick() {
	e.do("tick", func(e *Engine) { e.onTick(e.clock.Now()) })
}

// PendingTimers returns the number of armed timers. Intended for tests and diagnostics.
func (e *Engine) PendingTimers() int {
	var n int
	e.query("timers", func(e *Engine) { n = e.sched.armed() })
	return n
}

// --- transitions; engine goroutine only ---

func (e *Engine) addEvent(now time.Time, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	e.log.Append(now, msg)
	logrus.Debugf("[%3ds] %s", e.elapsedS, msg)
}

// resetShop restores queue, counters and roster under the current config.
func (e *Engine) resetShop() {
	e.barbers = newBarbers(e.cfg.NumBarbers)
	e.queue = NewWaitingQueue(e.cfg.NumWaitingChairs)
	e.served = 0
	e.turnedAway = 0
	e.nextCustomerID = 1
	e.elapsedS = 0
	e.sched.resize(e.cfg.NumBarbers)
	if e.trace != nil {
		e.trace.Reset()
	}
}

// halt stops every scheduled activity.
func (e *Engine) halt() {
	e.simulating = false
	e.sched.cancelAll()
}

func (e *Engine) start(now time.Time) {
	if e.simulating {
		logrus.Debugf("[start] already running")
		return
	}
	e.sched.cancelAll()
	e.resetShop()
	e.log.Clear()
	e.simulating = true
	e.addEvent(now, "Simulation started.")
	e.sched.armArrival(now, e.cfg.ArrivalInterval())
	e.sched.armTick(now)
	logrus.Infof("Simulation started: barbers=%d chairs=%d arrival=%dms haircut=%dms limit=%ds",
		e.cfg.NumBarbers, e.cfg.NumWaitingChairs, e.cfg.CustomerArrivalRateMs, e.cfg.HaircutDurationMs, e.cfg.SimulationTimeLimitS)
}

func (e *Engine) stop(now time.Time) {
	e.halt()
	e.addEvent(now, "Simulation stopped.")
	logrus.Infof("Simulation stopped after %ds: served=%d turnedAway=%d", e.elapsedS, e.served, e.turnedAway)
}

func (e *Engine) reset(now time.Time) {
	e.halt()
	e.resetShop()
	e.log.Clear()
	e.addEvent(now, "Simulation reset.")
	logrus.Infof("Simulation reset")
}

// firstSleeping returns the lowest index of a sleeping barber, or -1.
func (e *Engine) firstSleeping() int {
	for i := range e.barbers {
		if e.barbers[i].Status == Sleeping {
			return i
		}
	}
	return -1
}

// seat puts c in barber i's chair and arms that barber's timers.
func (e *Engine) seat(i int, c Customer, now time.Time) {
	e.barbers[i].seat(c, now)
	e.sched.seat(i, now, e.cfg.HaircutDuration())
}

func (e *Engine) onCustomerArrival(now time.Time) {
	if !e.simulating {
		return
	}
	c := Customer{ID: e.nextCustomerID}
	e.nextCustomerID++

	record := trace.AdmissionRecord{CustomerID: c.ID, ElapsedS: e.elapsedS, BarberID: -1}
	if i := e.firstSleeping(); i >= 0 {
		e.addEvent(now, "Customer %d arrived. %s is taking them.", c.ID, e.barbers[i].Name)
		e.seat(i, c, now)
		record.Outcome, record.BarberID = trace.OutcomeSeated, i
	} else if e.queue.Enqueue(c) {
		e.addEvent(now, "Customer %d arrived and is waiting. All barbers busy.", c.ID)
		record.Outcome = trace.OutcomeWaiting
	} else {
		e.turnedAway++
		e.addEvent(now, "Customer %d arrived, but all barbers busy and no chairs. Customer left.", c.ID)
		record.Outcome = trace.OutcomeTurnedAway
	}
	if e.trace.Enabled() {
		record.QueueLength = e.queue.Len()
		e.trace.RecordAdmission(record)
	}
}

func (e *Engine) onHaircutCompletion(i int, now time.Time) {
	if !e.simulating || i < 0 || i >= len(e.barbers) {
		logrus.Debugf("[completion] ignoring trigger for barber %d", i)
		return
	}
	b := &e.barbers[i]
	if !b.IsCutting() || b.CustomerInChair == nil {
		logrus.Debugf("[completion] %s is not cutting; stale trigger ignored", b.Name)
		return
	}

	finished := *b.CustomerInChair
	haircut := now.Sub(*b.HaircutStartTime)
	e.addEvent(now, "%s finished haircut for Customer %d.", b.Name, finished.ID)
	e.served++

	record := trace.HandoffRecord{BarberID: i, FinishedCustomer: finished.ID, HaircutMs: haircut.Milliseconds()}
	if next, ok := e.queue.Dequeue(); ok {
		e.seat(i, next, now)
		e.addEvent(now, "%s is taking next Customer %d from waiting line.", b.Name, next.ID)
		record.NextCustomer = next.ID
	} else {
		b.sleep()
		e.sched.release(i)
		e.addEvent(now, "%s has no customers waiting and is now SLEEPING.", b.Name)
	}
	if e.trace.Enabled() {
		e.trace.RecordHandoff(record)
	}
}

// onProgress refreshes barber i's progress and returns it.
func (e *Engine) onProgress(i int, now time.Time) float64 {
	if !e.simulating || i < 0 || i >= len(e.barbers) {
		return 100
	}
	b := &e.barbers[i]
	b.HaircutProgress = b.progressAt(now, e.cfg.HaircutDuration())
	return b.HaircutProgress
}

// onTick advances elapsed time and reports whether the run continues.
func (e *Engine) onTick(now time.Time) bool {
	if !e.simulating {
		return false
	}
	e.elapsedS++
	if limit := e.cfg.SimulationTimeLimitS; limit > 0 && e.elapsedS >= limit {
		e.addEvent(now, "Simulation time limit of %ds reached. Stopping.", limit)
		e.halt()
		logrus.Infof("Simulation time limit of %ds reached: served=%d turnedAway=%d", limit, e.served, e.turnedAway)
		return false
	}
	return true
}

func (e *Engine) updateConfig(u ConfigUpdate, now time.Time) bool {
	clamped, warnings := ClampUpdate(u)
	for _, w := range warnings {
		logrus.Warnf("[config] %s", w)
		e.addEvent(now, "Warning: %s", w)
	}
	if clamped.IsEmpty() {
		return false
	}
	if e.simulating {
		logrus.Warnf("[config] update rejected while simulation is running")
		e.addEvent(now, "Configuration update ignored while simulation is running.")
		return false
	}

	old := e.cfg
	e.cfg = old.apply(clamped)
	if e.cfg.NumBarbers != old.NumBarbers {
		// in-progress haircuts of the old roster are discarded, not migrated
		e.barbers = newBarbers(e.cfg.NumBarbers)
		e.sched.resize(e.cfg.NumBarbers)
	}
	if e.cfg.NumWaitingChairs != old.NumWaitingChairs {
		for _, c := range e.queue.Resize(e.cfg.NumWaitingChairs) {
			e.turnedAway++
			e.addEvent(now, "Customer %d left the waiting line: only %d chairs remain.", c.ID, e.cfg.NumWaitingChairs)
		}
	}
	e.addEvent(now, "Configuration update applied.")
	logrus.Infof("[config] applied: %+v", e.cfg)
	return true
}

// snapshot deep-copies the state for use outside the engine goroutine.
func (e *Engine) snapshot() SimulationState {
	barbers := make([]Barber, len(e.barbers))
	for i := range e.barbers {
		barbers[i] = e.barbers[i].clone()
	}
	return SimulationState{
		Barbers:                  barbers,
		WaitingQueue:             e.queue.Items(),
		CustomersServed:          e.served,
		CustomersTurnedAway:      e.turnedAway,
		NextCustomerID:           e.nextCustomerID,
		Events:                   e.log.Entries(),
		IsSimulating:             e.simulating,
		SimulationElapsedSeconds: e.elapsedS,
		Config:                   e.cfg,
	}
}
