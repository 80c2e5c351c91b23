package cmd

import (
	"context"
	"encoding/json"
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
)

var listenAddr string // HTTP listen address for serve

// serveCmd exposes the engine's command surface over HTTP
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulation command surface over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		update, err := resolveShopUpdate(cmd)
		if err != nil {
			logrus.Fatalf("Invalid shop configuration: %v", err)
		}
		if !sim.IsValidArrivalProcess(arrivalProcess) {
			logrus.Fatalf("Unknown arrival process %q (valid: constant, poisson)", arrivalProcess)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdown := setupTracing(ctx)
		defer telemetry.ShutdownWithTimeout(context.Background(), shutdown)

		collector, err := telemetry.NewCollector(prometheus.NewRegistry())
		if err != nil {
			logrus.Fatalf("Failed to register metrics: %v", err)
		}
		e := sim.NewEngine(sim.EngineConfig{
			Shop:           sim.DefaultConfig(),
			ArrivalProcess: arrivalProcess,
			Seed:           seed,
			Observers:      []sim.Observer{collector},
		})
		defer e.Close()
		if !update.IsEmpty() {
			e.UpdateConfig(update)
		}

		srv := &http.Server{
			Addr:              listenAddr,
			Handler:           newServeMux(e, collector.Handler()),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			<-ctx.Done()
			shutdownServer(srv)
		}()
		logrus.Infof("Barbershop command surface listening on %s", listenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
		logrus.Info("Server stopped.")
	},
}

// configResponse is the body returned by PATCH /config.
type configResponse struct {
	Applied bool                `json:"applied"`
	State   sim.SimulationState `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// newServeMux routes the command surface onto e. Every handler returns the
// snapshot taken after its command committed.
func newServeMux(e *sim.Engine, metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, e.State())
	})
	mux.HandleFunc("POST /start", command(e, (*sim.Engine).Start))
	mux.HandleFunc("POST /stop", command(e, (*sim.Engine).Stop))
	mux.HandleFunc("POST /reset", command(e, (*sim.Engine).Reset))
	mux.HandleFunc("PATCH /config", func(w http.ResponseWriter, r *http.Request) {
		u, err := decodeConfigUpdate(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		applied := e.UpdateConfig(u)
		s := e.State()
		status := http.StatusOK
		if !applied && s.IsSimulating {
			status = http.StatusConflict
		}
		writeJSON(w, status, configResponse{Applied: applied, State: s})
	})
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
	return mux
}

func command(e *sim.Engine, fn func(*sim.Engine)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(e)
		writeJSON(w, http.StatusOK, e.State())
	}
}

func decodeConfigUpdate(r *http.Request) (sim.ConfigUpdate, error) {
	var u sim.ConfigUpdate
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&u); err != nil {
		return sim.ConfigUpdate{}, fmt.Errorf("decode config update: %w", err)
	}
	if u.IsEmpty() {
		return sim.ConfigUpdate{}, errors.New("config update sets no field")
	}
	return u, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("write response: %v", err)
	}
}

func init() {
	addShopFlags(serveCmd)
	addTelemetryFlags(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "listen", ":8080", "HTTP listen address")
}
