package sim

import (
	"fmt"
	"testing"
	"time"
)

func TestNewArrivalSampler_ValidNames(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "", want: "sim.ConstantSampler"},
		{name: ArrivalConstant, want: "sim.ConstantSampler"},
		{name: ArrivalPoisson, want: "*sim.PoissonSampler"},
	}
	for _, tt := range tests {
		s := NewArrivalSampler(tt.name, 1)
		if got := fmt.Sprintf("%T", s); got != tt.want {
			t.Errorf("NewArrivalSampler(%q): got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestNewArrivalSampler_UnknownName_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown arrival process")
		}
	}()
	NewArrivalSampler("bursty", 1)
}

func TestIsValidArrivalProcess(t *testing.T) {
	for _, name := range []string{"", "constant", "poisson"} {
		if !IsValidArrivalProcess(name) {
			t.Errorf("IsValidArrivalProcess(%q) = false, want true", name)
		}
	}
	if IsValidArrivalProcess("gamma") {
		t.Error("IsValidArrivalProcess(gamma) = true, want false")
	}
}

func TestConstantSampler_ReturnsMean(t *testing.T) {
	if got := (ConstantSampler{}).NextGap(3 * time.Second); got != 3*time.Second {
		t.Errorf("NextGap = %v, want 3s", got)
	}
}

func TestPoissonSampler_SameSeedSameGaps(t *testing.T) {
	// GIVEN two samplers with the same seed
	a := NewPoissonSampler(7)
	b := NewPoissonSampler(7)

	// THEN they produce identical sequences, never below the floor
	for i := range 100 {
		ga, gb := a.NextGap(time.Second), b.NextGap(time.Second)
		if ga != gb {
			t.Fatalf("gap %d differs: %v vs %v", i, ga, gb)
		}
		if ga < MinCustomerArrivalRateMs*time.Millisecond {
			t.Fatalf("gap %d = %v, below floor", i, ga)
		}
	}
}

func TestPoissonSampler_MeanApproximatesConfigured(t *testing.T) {
	s := NewPoissonSampler(42)
	const n = 20000
	var total time.Duration
	for range n {
		total += s.NextGap(2 * time.Second)
	}
	mean := total / n
	// the 100ms floor nudges the mean slightly above 2s
	if mean < 1900*time.Millisecond || mean > 2200*time.Millisecond {
		t.Errorf("mean gap = %v, want about 2s", mean)
	}
}
