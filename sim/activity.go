package sim

import (
	"fmt"
	"strings"
)

// ActivityKind is the closed set of trace activity kinds.
type ActivityKind int

const (
	KindCPU ActivityKind = iota
	KindSyscall
	KindEndIO
)

func (k ActivityKind) String() string {
	switch k {
	case KindCPU:
		return "CPU"
	case KindSyscall:
		return "SYSCALL"
	case KindEndIO:
		return "END_IO"
	default:
		return fmt.Sprintf("ActivityKind(%d)", int(k))
	}
}

// ParseActivityKind maps a trace token to its kind. Matching is case-insensitive
// and accepts both END_IO and ENDIO.
func ParseActivityKind(s string) (ActivityKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CPU":
		return KindCPU, nil
	case "SYSCALL":
		return KindSyscall, nil
	case "END_IO", "ENDIO":
		return KindEndIO, nil
	}
	return 0, &UnknownActivityKindError{Kind: s}
}

// TraceActivity is one parsed trace record. Immutable once parsed.
type TraceActivity struct {
	Kind     ActivityKind
	Device   int   // device id; meaningful for SYSCALL and END_IO only
	Duration int64 // CPU burst length or trap body length (ticks)
	// UseServiceDelay is set when the trace line omitted the duration of a trap;
	// the dispatcher then takes the device's service delay from the vector table.
	UseServiceDelay bool
	Line            int // 1-based source line, 0 when built programmatically
}

// IsTrap reports whether the activity enters the interrupt path.
func (a TraceActivity) IsTrap() bool {
	return a.Kind == KindSyscall || a.Kind == KindEndIO
}

func (a TraceActivity) String() string {
	if a.Kind == KindCPU {
		return fmt.Sprintf("CPU(%d)", a.Duration)
	}
	if a.UseServiceDelay {
		return fmt.Sprintf("%s(dev=%d)", a.Kind, a.Device)
	}
	return fmt.Sprintf("%s(dev=%d, %d)", a.Kind, a.Device, a.Duration)
}
