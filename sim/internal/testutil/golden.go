// Package testutil provides shared test infrastructure for the barbershop
// simulator: the golden scenario dataset and assertion helpers used across
// sim/ and its sub-package tests.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/golden_scenarios.json.
type GoldenDataset struct {
	Scenarios []GoldenScenario `json:"scenarios"`
}

// GoldenScenario is one scripted run: a shop configuration started on a fake
// clock and advanced by RunMs milliseconds.
type GoldenScenario struct {
	Name     string        `json:"name"`
	Shop     GoldenShop    `json:"shop"`
	RunMs    int           `json:"run_ms"`
	Expected GoldenOutcome `json:"expected"`
}

// GoldenShop mirrors the tunable shop parameters.
type GoldenShop struct {
	NumWaitingChairs      int `json:"num_waiting_chairs"`
	CustomerArrivalRateMs int `json:"customer_arrival_rate_ms"`
	HaircutDurationMs     int `json:"haircut_duration_ms"`
	NumBarbers            int `json:"num_barbers"`
	SimulationTimeLimitS  int `json:"simulation_time_limit_s"`
}

// GoldenOutcome represents the expected state at the end of a scenario.
type GoldenOutcome struct {
	// Exact match counters
	Arrived     int  `json:"arrived"`
	Served      int  `json:"served"`
	TurnedAway  int  `json:"turned_away"`
	Waiting     int  `json:"waiting"`
	BusyBarbers int  `json:"busy_barbers"`
	ElapsedS    int  `json:"elapsed_s"`
	Simulating  bool `json:"simulating"`

	LatestEvent string `json:"latest_event"`

	// Derived from the counters above
	ThroughputPerMin float64 `json:"throughput_per_min"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "golden_scenarios.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
