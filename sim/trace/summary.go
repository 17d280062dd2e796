package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions  int
	DispatchedCount int
	DeferredCount   int
	ResumedCount    int
	PendingCount    int
	MaxBacklogDepth int
	// DeferredByDevice maps device id to the number of traps that had to wait for it.
	DeferredByDevice map[int]int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		DeferredByDevice: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Dispatches)
	for _, r := range st.Dispatches {
		switch r.Action {
		case ActionDispatched:
			summary.DispatchedCount++
		case ActionDeferred:
			summary.DeferredCount++
			summary.DeferredByDevice[r.Device]++
		case ActionResumed:
			summary.ResumedCount++
		case ActionPending:
			summary.PendingCount++
		}
		if r.BacklogDepth > summary.MaxBacklogDepth {
			summary.MaxBacklogDepth = r.BacklogDepth
		}
	}
	return summary
}
