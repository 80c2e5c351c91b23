package trace

// TraceSummary aggregates statistics from a SimulationTrace. DirectHandoffs
// counts completions that went straight to a waiting customer; BarberDistribution
// maps barber ID to customers started.
type TraceSummary struct {
	TotalDecisions     int
	SeatedCount        int
	WaitingCount       int
	TurnedAwayCount    int
	Handoffs           int
	DirectHandoffs     int
	MeanHaircutMs      float64
	MaxQueueLength     int
	BarberDistribution map[int]int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		BarberDistribution: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Admissions)
	for _, a := range st.Admissions {
		switch a.Outcome {
		case OutcomeSeated:
			summary.SeatedCount++
			summary.BarberDistribution[a.BarberID]++
		case OutcomeWaiting:
			summary.WaitingCount++
		case OutcomeTurnedAway:
			summary.TurnedAwayCount++
		}
		summary.MaxQueueLength = max(summary.MaxQueueLength, a.QueueLength)
	}

	if len(st.Handoffs) > 0 {
		var total int64
		for _, h := range st.Handoffs {
			total += h.HaircutMs
			if h.NextCustomer != 0 {
				summary.DirectHandoffs++
				summary.BarberDistribution[h.BarberID]++
			}
		}
		summary.Handoffs = len(st.Handoffs)
		summary.MeanHaircutMs = float64(total) / float64(len(st.Handoffs))
	}

	return summary
}
