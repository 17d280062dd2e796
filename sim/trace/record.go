// Package trace provides dispatch-decision recording for device queue analysis.
// This package has no dependencies on sim/ — it stores pure data types.
package trace

// Action is what the dispatcher did with a trace activity.
type Action string

const (
	// ActionDispatched: the activity ran as soon as it was read.
	ActionDispatched Action = "dispatched"
	// ActionDeferred: the trap found its device busy and joined the backlog.
	ActionDeferred Action = "deferred"
	// ActionResumed: a deferred trap ran after its device was released.
	ActionResumed Action = "resumed"
	// ActionPending: the trap was still in a backlog when the trace ended.
	ActionPending Action = "pending"
)

// DispatchRecord captures a single dispatch decision.
type DispatchRecord struct {
	RequestID    string
	Line         int    // 1-based trace line, 0 if unknown
	Kind         string // "CPU", "SYSCALL", "END_IO"
	Device       int    // -1 for CPU bursts
	Clock        int64  // simulation time when the decision was taken
	Action       Action
	BacklogDepth int // backlog length of the device right after the decision
	Reason       string
}
