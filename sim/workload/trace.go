// Package workload reads and writes the simulator's inputs: activity traces
// and the vector/device tables that configure the interrupt vector table.
package workload

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/inference-sim/isr-sim/sim"
)

// ErrMalformedLine is wrapped by every trace syntax error other than an unknown kind.
var ErrMalformedLine = errors.New("malformed trace line")

// ParseTraceLine parses one trace line. Blank lines and lines starting with
// '#' yield ok=false and no error. Fields may be separated by commas,
// whitespace, or both:
//
//	CPU, 50
//	SYSCALL, 2, 120
//	SYSCALL 2, 120
//	END_IO, 1         (duration taken from the device's service delay)
func ParseTraceLine(line string, lineNo int) (act sim.TraceActivity, ok bool, err error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(fields) == 0 {
		return sim.TraceActivity{}, false, nil
	}

	kind, err := sim.ParseActivityKind(fields[0])
	if err != nil {
		return sim.TraceActivity{}, false, &sim.UnknownActivityKindError{Kind: fields[0], Line: lineNo}
	}
	nums := make([]int64, 0, 2)
	for _, f := range fields[1:] {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return sim.TraceActivity{}, false, fmt.Errorf("line %d: %w: %q is not an integer", lineNo, ErrMalformedLine, f)
		}
		if v < 0 {
			return sim.TraceActivity{}, false, fmt.Errorf("line %d: %w: negative value %d", lineNo, ErrMalformedLine, v)
		}
		nums = append(nums, v)
	}

	act = sim.TraceActivity{Kind: kind, Line: lineNo}
	switch kind {
	case sim.KindCPU:
		if len(nums) != 1 {
			return sim.TraceActivity{}, false, fmt.Errorf("line %d: %w: CPU takes one duration, got %d values", lineNo, ErrMalformedLine, len(nums))
		}
		act.Duration = nums[0]
	default:
		switch len(nums) {
		case 1:
			act.Device = int(nums[0])
			act.UseServiceDelay = true
		case 2:
			act.Device = int(nums[0])
			act.Duration = nums[1]
		default:
			return sim.TraceActivity{}, false, fmt.Errorf("line %d: %w: %s takes a device and an optional duration, got %d values",
				lineNo, ErrMalformedLine, kind, len(nums))
		}
	}
	return act, true, nil
}

// Scanner streams activities from a trace. It implements sim.ActivitySource,
// so a run consumes the trace one line at a time.
type Scanner struct {
	sc   *bufio.Scanner
	line int
}

// NewScanner reads a trace from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{sc: bufio.NewScanner(r)}
}

// Next returns the next activity, or io.EOF at the end of the trace.
func (s *Scanner) Next() (sim.TraceActivity, error) {
	for s.sc.Scan() {
		s.line++
		act, ok, err := ParseTraceLine(s.sc.Text(), s.line)
		if err != nil {
			return sim.TraceActivity{}, err
		}
		if ok {
			return act, nil
		}
	}
	if err := s.sc.Err(); err != nil {
		return sim.TraceActivity{}, fmt.Errorf("reading trace: %w", err)
	}
	return sim.TraceActivity{}, io.EOF
}

// LoadTrace reads a whole trace from r.
func LoadTrace(r io.Reader) ([]sim.TraceActivity, error) {
	sc := NewScanner(r)
	var acts []sim.TraceActivity
	for {
		a, err := sc.Next()
		if errors.Is(err, io.EOF) {
			return acts, nil
		}
		if err != nil {
			return nil, err
		}
		acts = append(acts, a)
	}
}

// ReadTraceFile reads a whole trace file.
func ReadTraceFile(path string) ([]sim.TraceActivity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadTrace(f)
}

// FormatActivity renders a in the canonical trace syntax accepted by ParseTraceLine.
func FormatActivity(a sim.TraceActivity) string {
	switch {
	case a.Kind == sim.KindCPU:
		return fmt.Sprintf("CPU, %d", a.Duration)
	case a.UseServiceDelay:
		return fmt.Sprintf("%s, %d", a.Kind, a.Device)
	default:
		return fmt.Sprintf("%s, %d, %d", a.Kind, a.Device, a.Duration)
	}
}

// WriteTrace writes acts one per line.
func WriteTrace(w io.Writer, acts []sim.TraceActivity) error {
	bw := bufio.NewWriter(w)
	for _, a := range acts {
		if _, err := fmt.Fprintln(bw, FormatActivity(a)); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
	}
	return bw.Flush()
}
