package trace

import "testing"

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalDecisions != 0 {
		t.Errorf("expected 0 total decisions, got %d", summary.TotalDecisions)
	}
	if summary.SeatedCount != 0 || summary.WaitingCount != 0 || summary.TurnedAwayCount != 0 {
		t.Error("expected 0 seated, waiting and turned away")
	}
	if summary.MeanHaircutMs != 0 {
		t.Errorf("expected 0 mean haircut, got %f", summary.MeanHaircutMs)
	}
	if len(summary.BarberDistribution) != 0 {
		t.Error("expected empty barber distribution")
	}
}

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalDecisions != 0 || summary.BarberDistribution == nil {
		t.Errorf("expected zero summary with initialized map, got %+v", summary)
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with one of each outcome and two handoffs
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})
	st.RecordAdmission(AdmissionRecord{CustomerID: 1, Outcome: OutcomeSeated, BarberID: 0})
	st.RecordAdmission(AdmissionRecord{CustomerID: 2, Outcome: OutcomeWaiting, BarberID: -1, QueueLength: 1})
	st.RecordAdmission(AdmissionRecord{CustomerID: 3, Outcome: OutcomeTurnedAway, BarberID: -1, QueueLength: 1})
	st.RecordHandoff(HandoffRecord{BarberID: 0, FinishedCustomer: 1, NextCustomer: 2, HaircutMs: 4000})
	st.RecordHandoff(HandoffRecord{BarberID: 0, FinishedCustomer: 2, NextCustomer: 0, HaircutMs: 6000})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	if summary.TotalDecisions != 3 {
		t.Errorf("expected 3 total decisions, got %d", summary.TotalDecisions)
	}
	if summary.SeatedCount != 1 || summary.WaitingCount != 1 || summary.TurnedAwayCount != 1 {
		t.Errorf("expected 1/1/1 outcomes, got %d/%d/%d",
			summary.SeatedCount, summary.WaitingCount, summary.TurnedAwayCount)
	}
	if summary.MaxQueueLength != 1 {
		t.Errorf("expected max queue length 1, got %d", summary.MaxQueueLength)
	}

	// THEN barber 0 started two haircuts: one on arrival, one from the line
	if summary.BarberDistribution[0] != 2 {
		t.Errorf("expected barber 0 to start 2 haircuts, got %d", summary.BarberDistribution[0])
	}
	if summary.Handoffs != 2 || summary.DirectHandoffs != 1 {
		t.Errorf("expected 2 handoffs with 1 direct, got %d/%d", summary.Handoffs, summary.DirectHandoffs)
	}

	// THEN mean haircut = (4000 + 6000) / 2
	if summary.MeanHaircutMs != 5000 {
		t.Errorf("expected mean haircut 5000ms, got %.1f", summary.MeanHaircutMs)
	}
}
