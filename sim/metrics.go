// Tracks run-wide counters: activities by kind, queue decisions, and where time went.

package sim

import (
	"fmt"
	"io"
)

// Metrics aggregates statistics about the simulation
// for final reporting.
type Metrics struct {
	CPUBursts int // CPU activities executed
	Syscalls  int // SYSCALL traps serviced (including resumed ones)
	EndIOs    int // END_IO interrupts serviced
	Deferred  int // traps parked because their device was busy
	Resumed   int // parked traps later serviced
	Pending   int // traps still parked at end of trace

	CPUTime      int64 // ticks spent in CPU bursts
	OverheadTime int64 // ticks spent in the fixed-cost interrupt scaffold
	BodyTime     int64 // ticks spent in ISR bodies

	SimEndedTime int64 // clock at the end of the run
}

// NewMetrics returns zeroed metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// TotalTime is the sum of all accounted ticks. Equals SimEndedTime after a complete run.
func (m *Metrics) TotalTime() int64 {
	return m.CPUTime + m.OverheadTime + m.BodyTime
}

// Print writes a human-readable summary of the run.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "CPU bursts           : %d\n", m.CPUBursts)
	fmt.Fprintf(w, "Syscalls             : %d\n", m.Syscalls)
	fmt.Fprintf(w, "End of I/O           : %d\n", m.EndIOs)
	fmt.Fprintf(w, "Deferred / resumed   : %d / %d\n", m.Deferred, m.Resumed)
	if m.Pending > 0 {
		fmt.Fprintf(w, "Pending at end       : %d\n", m.Pending)
	}
	fmt.Fprintf(w, "Simulated time       : %d ticks\n", m.SimEndedTime)
	if total := m.TotalTime(); total > 0 {
		fmt.Fprintf(w, "CPU time             : %d ticks (%.1f%%)\n", m.CPUTime, 100*float64(m.CPUTime)/float64(total))
		fmt.Fprintf(w, "Interrupt overhead   : %d ticks (%.1f%%)\n", m.OverheadTime, 100*float64(m.OverheadTime)/float64(total))
		fmt.Fprintf(w, "ISR body time        : %d ticks (%.1f%%)\n", m.BodyTime, 100*float64(m.BodyTime)/float64(total))
	}
}
