package trace

import "testing"

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceLevelDecisions)

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalDecisions != 0 {
		t.Errorf("expected 0 total decisions, got %d", summary.TotalDecisions)
	}
	if summary.DeferredCount != 0 || summary.PendingCount != 0 {
		t.Error("expected 0 deferred and pending")
	}
	if len(summary.DeferredByDevice) != 0 {
		t.Error("expected empty per-device distribution")
	}
}

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalDecisions != 0 || summary.DeferredByDevice == nil {
		t.Errorf("unexpected summary for nil trace: %+v", summary)
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with every kind of decision
	st := NewSimulationTrace(TraceLevelDecisions)
	st.RecordDispatch(DispatchRecord{RequestID: "r1", Device: 0, Action: ActionDispatched})
	st.RecordDispatch(DispatchRecord{RequestID: "r2", Device: 0, Action: ActionDeferred, BacklogDepth: 1})
	st.RecordDispatch(DispatchRecord{RequestID: "r3", Device: 0, Action: ActionDeferred, BacklogDepth: 2})
	st.RecordDispatch(DispatchRecord{RequestID: "r4", Device: 1, Action: ActionDeferred, BacklogDepth: 1})
	st.RecordDispatch(DispatchRecord{RequestID: "r2", Device: 0, Action: ActionResumed, BacklogDepth: 1})
	st.RecordDispatch(DispatchRecord{RequestID: "r3", Device: 0, Action: ActionPending, BacklogDepth: 1})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	if summary.TotalDecisions != 6 {
		t.Errorf("expected 6 total decisions, got %d", summary.TotalDecisions)
	}
	if summary.DispatchedCount != 1 || summary.ResumedCount != 1 || summary.PendingCount != 1 {
		t.Errorf("unexpected counts: %+v", summary)
	}
	if summary.DeferredCount != 3 {
		t.Errorf("expected 3 deferred, got %d", summary.DeferredCount)
	}
	if summary.DeferredByDevice[0] != 2 || summary.DeferredByDevice[1] != 1 {
		t.Errorf("unexpected per-device deferrals: %v", summary.DeferredByDevice)
	}
	if summary.MaxBacklogDepth != 2 {
		t.Errorf("expected max backlog depth 2, got %d", summary.MaxBacklogDepth)
	}
}
