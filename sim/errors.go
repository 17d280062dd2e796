package sim

import "fmt"

// UnknownDeviceError reports a trap that names a device outside the vector table.
// Fatal for the run: a trace that references a missing device cannot be simulated further.
type UnknownDeviceError struct {
	Device int // device id named by the trace
	Count  int // number of configured devices
	Line   int // 1-based trace line, 0 if unknown
}

func (e *UnknownDeviceError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: unknown device %d (vector table has %d devices)", e.Line, e.Device, e.Count)
	}
	return fmt.Sprintf("unknown device %d (vector table has %d devices)", e.Device, e.Count)
}

// UnknownActivityKindError reports a trace record whose kind is not CPU, SYSCALL or END_IO.
type UnknownActivityKindError struct {
	Kind string
	Line int
}

func (e *UnknownActivityKindError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: unknown activity kind %q", e.Line, e.Kind)
	}
	return fmt.Sprintf("unknown activity kind %q", e.Kind)
}

// InvalidDurationError reports a negative duration reaching the Timeline.
// It always indicates a logic defect upstream of the logger.
type InvalidDurationError struct {
	Duration int64
	Text     string
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid duration %d for %q", e.Duration, e.Text)
}
