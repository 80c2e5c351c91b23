package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/barbershop-sim/sim"
	"github.com/inference-sim/barbershop-sim/sim/telemetry"
	"github.com/inference-sim/barbershop-sim/sim/trace"
)

var (
	// Shop configuration flags; only explicitly set flags override presets and config files
	numChairs      int    // Waiting chairs
	arrivalRateMs  int    // Customer arrival period in ms
	haircutMs      int    // Haircut duration in ms
	numBarbers     int    // Barbers on shift
	timeLimitS     int    // Simulation time limit in seconds (0 = unbounded)
	presetName     string // Named preset from the defaults file
	defaultsPath   string // Path to defaults.yaml
	configPath     string // Single shop configuration file
	arrivalProcess string // constant | poisson
	seed           int64  // Seed for the poisson arrival process

	// Run flags
	runDuration  time.Duration // Wall-clock cap for the run (0 = until limit or interrupt)
	viewInterval time.Duration // How often the console view prints a status line
	logLevel     string        // Log verbosity level
	traceLevel   string        // Decision trace level

	// Telemetry flags
	metricsAddr     string // Address for the Prometheus /metrics listener (run only)
	tracingEnabled  bool   // Export one span per engine transition
	tracingExporter string // stdout | otlp
	otlpEndpoint    string // OTLP gRPC collector endpoint
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "barbershop-sim",
	Short: "Real-time sleeping barber simulation",
}

// runCmd executes a headless simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the barbershop simulation in the terminal",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		update, err := resolveShopUpdate(cmd)
		if err != nil {
			logrus.Fatalf("Invalid shop configuration: %v", err)
		}
		validateEngineFlags()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdown := setupTracing(ctx)
		defer telemetry.ShutdownWithTimeout(context.Background(), shutdown)

		observers := []sim.Observer{newConsoleView(os.Stdout, viewInterval)}
		if metricsAddr != "" {
			collector, err := telemetry.NewCollector(prometheus.NewRegistry())
			if err != nil {
				logrus.Fatalf("Failed to register metrics: %v", err)
			}
			observers = append(observers, collector)
			srv := startMetricsServer(metricsAddr, collector.Handler())
			defer shutdownServer(srv)
		}

		st := newDecisionTrace()
		e := sim.NewEngine(sim.EngineConfig{
			Shop:           sim.DefaultConfig(),
			ArrivalProcess: arrivalProcess,
			Seed:           seed,
			Trace:          st,
			Observers:      observers,
		})
		defer e.Close()

		if !update.IsEmpty() {
			e.UpdateConfig(update)
		}
		e.Start()
		waitForRun(ctx, e, runDuration)
		if e.State().IsSimulating {
			e.Stop()
		}

		final := e.State()
		fmt.Println()
		sim.ComputeStats(final).Print(os.Stdout)
		if st.Enabled() {
			printTraceSummary(os.Stdout, trace.Summarize(st))
		}
		logrus.Info("Simulation complete.")
	},
}

// waitForRun blocks until ctx is cancelled, d elapses (when positive), or the
// engine stops on its own.
func waitForRun(ctx context.Context, e *sim.Engine, d time.Duration) {
	var deadline <-chan time.Time
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		deadline = timer.C
	}
	poll := time.NewTicker(100 * time.Millisecond)
	defer poll.Stop()
	for {
		select {
		case <-ctx.Done():
			logrus.Info("Interrupted, stopping simulation")
			return
		case <-deadline:
			logrus.Infof("Run duration of %v elapsed", d)
			return
		case <-poll.C:
			if !e.State().IsSimulating {
				return
			}
		}
	}
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

func validateEngineFlags() {
	if !sim.IsValidArrivalProcess(arrivalProcess) {
		logrus.Fatalf("Unknown arrival process %q (valid: constant, poisson)", arrivalProcess)
	}
	if !trace.IsValidTraceLevel(traceLevel) {
		logrus.Fatalf("Unknown trace level %q (valid: none, decisions)", traceLevel)
	}
}

func newDecisionTrace() *trace.SimulationTrace {
	if trace.TraceLevel(traceLevel) != trace.TraceLevelDecisions {
		return nil
	}
	return trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
}

func setupTracing(ctx context.Context) func(context.Context) error {
	cfg := telemetry.DefaultTracingConfig()
	cfg.Enabled = tracingEnabled
	cfg.Exporter = tracingExporter
	cfg.Endpoint = otlpEndpoint
	cfg.Writer = os.Stderr
	shutdown, err := telemetry.InitTracing(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialise tracing: %v", err)
	}
	return shutdown
}

func startMetricsServer(addr string, h http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("metrics listener on %s failed: %v", addr, err)
		}
	}()
	logrus.Infof("Serving Prometheus metrics on %s/metrics", addr)
	return srv
}

func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Warnf("server shutdown: %v", err)
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addShopFlags registers the shop configuration flags shared by run and serve.
func addShopFlags(cmd *cobra.Command) {
	d := sim.DefaultConfig()
	cmd.Flags().IntVar(&numChairs, "chairs", d.NumWaitingChairs, "Number of waiting chairs (0-20)")
	cmd.Flags().IntVar(&arrivalRateMs, "arrival-ms", d.CustomerArrivalRateMs, "Customer arrival period in ms (min 100)")
	cmd.Flags().IntVar(&haircutMs, "haircut-ms", d.HaircutDurationMs, "Haircut duration in ms (min 100)")
	cmd.Flags().IntVar(&numBarbers, "barbers", d.NumBarbers, "Number of barbers (1-5)")
	cmd.Flags().IntVar(&timeLimitS, "limit-s", d.SimulationTimeLimitS, "Simulation time limit in seconds (0 = unbounded)")
	cmd.Flags().StringVar(&presetName, "preset", "", "Named shop preset from the defaults file")
	cmd.Flags().StringVar(&defaultsPath, "defaults", "defaults.yaml", "Path to the presets file")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file with a single shop configuration")
	cmd.Flags().StringVar(&arrivalProcess, "arrival-process", sim.ArrivalConstant, "Arrival process (constant, poisson)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the poisson arrival process")
	cmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
}

// addTelemetryFlags registers the OpenTelemetry flags shared by run and serve.
func addTelemetryFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&tracingEnabled, "tracing", false, "Export one span per engine transition")
	cmd.Flags().StringVar(&tracingExporter, "tracing-exporter", "stdout", "Span exporter (stdout, otlp)")
	cmd.Flags().StringVar(&otlpEndpoint, "otlp-endpoint", "localhost:4317", "OTLP gRPC collector endpoint")
}

// init sets up CLI flags and subcommands
func init() {
	addShopFlags(runCmd)
	addTelemetryFlags(runCmd)
	runCmd.Flags().DurationVar(&runDuration, "duration", 0, "Wall-clock cap for the run (0 = until time limit or Ctrl-C)")
	runCmd.Flags().DurationVar(&viewInterval, "view-interval", time.Second, "Interval between status lines")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Decision trace level (none, decisions)")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Listen address for Prometheus metrics (empty = disabled)")

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
}
