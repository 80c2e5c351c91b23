package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/barbershop-sim/sim"
)

// ShopClient drives a remote `serve` instance over its HTTP command surface.
type ShopClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewShopClient creates a client for the server at baseURL.
func NewShopClient(baseURL string) *ShopClient {
	return &ShopClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// State fetches the current snapshot.
func (c *ShopClient) State(ctx context.Context) (sim.SimulationState, error) {
	var s sim.SimulationState
	err := c.do(ctx, http.MethodGet, "/state", nil, &s)
	return s, err
}

// Command posts one of start, stop or reset and returns the resulting snapshot.
func (c *ShopClient) Command(ctx context.Context, name string) (sim.SimulationState, error) {
	switch name {
	case "start", "stop", "reset":
	default:
		return sim.SimulationState{}, fmt.Errorf("unknown command %q", name)
	}
	var s sim.SimulationState
	err := c.do(ctx, http.MethodPost, "/"+name, nil, &s)
	return s, err
}

// UpdateConfig submits a partial configuration. A rejected update while the
// simulation runs is reported through applied=false, not as an error.
func (c *ShopClient) UpdateConfig(ctx context.Context, u sim.ConfigUpdate) (bool, sim.SimulationState, error) {
	body, err := json.Marshal(u)
	if err != nil {
		return false, sim.SimulationState{}, fmt.Errorf("marshal config update: %w", err)
	}
	var resp configResponse
	if err := c.do(ctx, http.MethodPatch, "/config", body, &resp); err != nil {
		return false, sim.SimulationState{}, err
	}
	return resp.Applied, resp.State, nil
}

func (c *ShopClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	// 409 carries a normal config response: the update was rejected while running
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusConflict {
		return fmt.Errorf("%s %s: HTTP %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var (
	watchURL      string        // Base URL of the serve instance
	watchInterval time.Duration // Poll interval
	watchStart    bool          // Issue start before watching
)

// watchCmd polls a running `serve` instance and prints its state
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a served simulation from another terminal",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client := NewShopClient(watchURL)
		if watchStart {
			if _, err := client.Command(ctx, "start"); err != nil {
				logrus.Fatalf("Failed to start remote simulation: %v", err)
			}
		}
		if err := watchShop(ctx, client, os.Stdout, watchInterval); err != nil {
			logrus.Fatalf("Watch failed: %v", err)
		}
	},
}

// watchShop prints new events and a status line every interval until ctx is
// done or the remote simulation stops.
func watchShop(ctx context.Context, client *ShopClient, w io.Writer, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var lastID string
	for {
		s, err := client.State(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		fresh := eventsSince(s.Events, lastID)
		for i := len(fresh) - 1; i >= 0; i-- {
			fmt.Fprintf(w, "[%3ds] %s\n", s.SimulationElapsedSeconds, fresh[i].Message)
		}
		if len(s.Events) > 0 {
			lastID = s.Events[0].ID
		}
		fmt.Fprintln(w, renderShop(s))
		if !s.IsSimulating {
			sim.ComputeStats(s).Print(w)
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func init() {
	watchCmd.Flags().StringVar(&watchURL, "url", "http://localhost:8080", "Base URL of a running serve instance")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Second, "Poll interval")
	watchCmd.Flags().BoolVar(&watchStart, "start", false, "Start the remote simulation before watching")
	watchCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
}
