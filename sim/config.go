package sim

import "fmt"

// TimingConfig groups the fixed costs of the interrupt scaffold (ticks).
type TimingConfig struct {
	Save       int64 // save context
	Restore    int64 // restore context
	FindVector int64 // vector table lookup
	GetISR     int64 // load ISR address into the PC
	IRET       int64 // return from interrupt
	// LoadISRPhase emits a GET_ISR phase after the vector lookup.
	// Off by default: the trap then costs exactly Save+FindVector+Restore+IRET on top of its body.
	LoadISRPhase bool
}

// DefaultTimingConfig returns the stock constants.
func DefaultTimingConfig() TimingConfig {
	return TimingConfig{
		Save:       10,
		Restore:    10,
		FindVector: 10,
		GetISR:     1,
		IRET:       1,
	}
}

// Overhead returns the fixed cost a single trap adds on top of its body.
func (tc TimingConfig) Overhead() int64 {
	total := tc.Save + tc.FindVector + tc.Restore + tc.IRET
	if tc.LoadISRPhase {
		total += tc.GetISR
	}
	return total
}

// Validate rejects negative constants.
func (tc TimingConfig) Validate() error {
	for _, c := range []struct {
		name string
		v    int64
	}{
		{"save", tc.Save},
		{"restore", tc.Restore},
		{"find_vector", tc.FindVector},
		{"get_isr", tc.GetISR},
		{"iret", tc.IRET},
	} {
		if c.v < 0 {
			return fmt.Errorf("timing.%s must be >= 0, got %d", c.name, c.v)
		}
	}
	return nil
}

// QueuePolicy selects how traps to a busy device are handled.
type QueuePolicy string

const (
	// QueuePolicyDefer parks a SYSCALL to a busy device in the device backlog
	// and runs it right after the END_IO that frees the device.
	QueuePolicyDefer QueuePolicy = "defer"
	// QueuePolicyNone dispatches every activity immediately.
	QueuePolicyNone QueuePolicy = "none"
)

// validQueuePolicies maps accepted policy strings.
var validQueuePolicies = map[QueuePolicy]bool{
	QueuePolicyDefer: true,
	QueuePolicyNone:  true,
	"":               true, // empty defaults to defer
}

// IsValidQueuePolicy returns true if the given string is a recognized queue policy.
func IsValidQueuePolicy(p string) bool {
	return validQueuePolicies[QueuePolicy(p)]
}

// SimConfig bundles everything a Simulator needs besides the trace.
type SimConfig struct {
	Timing           TimingConfig
	QueuePolicy      QueuePolicy
	KeepZeroDuration bool  // record zero-length phases in the log
	Seed             int64 // master seed for label and split choices
}

// DefaultSimConfig returns the stock configuration with seed 42.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Timing:      DefaultTimingConfig(),
		QueuePolicy: QueuePolicyDefer,
		Seed:        42,
	}
}

// Validate checks timing constants and the queue policy.
func (c SimConfig) Validate() error {
	if err := c.Timing.Validate(); err != nil {
		return err
	}
	if !IsValidQueuePolicy(string(c.QueuePolicy)) {
		return fmt.Errorf("unknown queue policy %q (valid: defer, none)", c.QueuePolicy)
	}
	return nil
}
