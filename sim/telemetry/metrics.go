// Package telemetry exports barbershop engine activity to Prometheus and
// OpenTelemetry.
package telemetry

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inference-sim/barbershop-sim/sim"
)

// Collector bundles the Prometheus metrics of one engine. It implements
// sim.Observer and derives every value from the snapshots it is handed.
type Collector struct {
	gatherer prometheus.Gatherer

	CustomersArrived    prometheus.Counter
	CustomersServed     prometheus.Counter
	CustomersTurnedAway prometheus.Counter
	QueueLength         prometheus.Gauge
	BusyBarbers         prometheus.Gauge
	ElapsedSeconds      prometheus.Gauge
	Simulating          prometheus.Gauge
	Transitions         *prometheus.CounterVec
	TransitionDurations *prometheus.HistogramVec

	mu   sync.Mutex
	last sim.SimulationState
}

// NewCollector registers barbershop metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	arrived, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "barbershop_customers_arrived_total",
		Help: "Customers that walked into the shop.",
	}), "barbershop_customers_arrived_total")
	if err != nil {
		return nil, err
	}
	served, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "barbershop_customers_served_total",
		Help: "Finished haircuts.",
	}), "barbershop_customers_served_total")
	if err != nil {
		return nil, err
	}
	turnedAway, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "barbershop_customers_turned_away_total",
		Help: "Customers that left because every barber was busy and no chair was free.",
	}), "barbershop_customers_turned_away_total")
	if err != nil {
		return nil, err
	}
	queue, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "barbershop_waiting_queue_length",
		Help: "Customers currently waiting in chairs.",
	}), "barbershop_waiting_queue_length")
	if err != nil {
		return nil, err
	}
	busy, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "barbershop_busy_barbers",
		Help: "Barbers currently cutting hair.",
	}), "barbershop_busy_barbers")
	if err != nil {
		return nil, err
	}
	elapsed, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "barbershop_simulation_elapsed_seconds",
		Help: "Elapsed simulation time of the current run.",
	}), "barbershop_simulation_elapsed_seconds")
	if err != nil {
		return nil, err
	}
	simulating, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "barbershop_simulating",
		Help: "1 while the simulation is running, 0 otherwise.",
	}), "barbershop_simulating")
	if err != nil {
		return nil, err
	}
	transitions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "barbershop_transitions_total",
		Help: "Committed engine transitions, labeled by transition name.",
	}, []string{"transition"}), "barbershop_transitions_total")
	if err != nil {
		return nil, err
	}
	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "barbershop_transition_duration_seconds",
		Help:    "Time spent executing a transition on the engine goroutine.",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	}, []string{"transition"}), "barbershop_transition_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:            gatherer,
		CustomersArrived:    arrived,
		CustomersServed:     served,
		CustomersTurnedAway: turnedAway,
		QueueLength:         queue,
		BusyBarbers:         busy,
		ElapsedSeconds:      elapsed,
		Simulating:          simulating,
		Transitions:         transitions,
		TransitionDurations: durations,
		last:                sim.SimulationState{NextCustomerID: 1},
	}, nil
}

// Observe implements sim.Observer. Counters advance by the delta against the
// previous snapshot; a counter that went backwards marks a new run, whose
// values are counted from zero.
func (c *Collector) Observe(t sim.Transition) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	s := t.State
	c.CustomersArrived.Add(delta(c.last.CustomersArrived(), s.CustomersArrived()))
	c.CustomersServed.Add(delta(c.last.CustomersServed, s.CustomersServed))
	c.CustomersTurnedAway.Add(delta(c.last.CustomersTurnedAway, s.CustomersTurnedAway))
	c.QueueLength.Set(float64(len(s.WaitingQueue)))
	c.BusyBarbers.Set(float64(s.BusyBarbers()))
	c.ElapsedSeconds.Set(float64(s.SimulationElapsedSeconds))
	if s.IsSimulating {
		c.Simulating.Set(1)
	} else {
		c.Simulating.Set(0)
	}
	c.Transitions.WithLabelValues(t.Name).Inc()
	c.TransitionDurations.WithLabelValues(t.Name).Observe(t.Took.Seconds())
	c.last = s
}

func delta(prev, cur int) float64 {
	if cur < prev {
		return float64(cur)
	}
	return float64(cur - prev)
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.Gatherer()
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// register adds col to reg, reusing an identical collector that is already registered.
func register[T prometheus.Collector](reg prometheus.Registerer, col T, name string) (T, error) {
	if err := reg.Register(col); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return col, nil
}
