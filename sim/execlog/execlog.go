// Package execlog renders the execution log as "<start>, <duration>, <text>"
// lines and parses such files back for analysis.
package execlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/isr-sim/sim"
)

// Write renders lines in order. The writer performs no reordering or validation.
func Write(w io.Writer, lines []sim.LogLine) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := fmt.Fprintf(bw, "%d, %d, %s\n", l.Start, l.Duration, l.Text); err != nil {
			return fmt.Errorf("writing execution log: %w", err)
		}
	}
	return bw.Flush()
}

// WriteFile writes lines to path, replacing any existing file.
func WriteFile(path string, lines []sim.LogLine) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating execution log: %w", err)
	}
	if err := Write(f, lines); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Read parses an execution log. Blank lines and lines that do not have an
// integer start and duration followed by text are skipped.
func Read(r io.Reader) ([]sim.LogLine, error) {
	var lines []sim.LogLine
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		l, ok := parseLine(raw)
		if !ok {
			logrus.Debugf("execution log line %d skipped: %q", n, raw)
			continue
		}
		lines = append(lines, l)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading execution log: %w", err)
	}
	return lines, nil
}

// ReadFile parses the execution log at path.
func ReadFile(path string) ([]sim.LogLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening execution log: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

func parseLine(raw string) (sim.LogLine, bool) {
	parts := strings.SplitN(raw, ",", 3)
	if len(parts) != 3 {
		return sim.LogLine{}, false
	}
	start, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return sim.LogLine{}, false
	}
	dur, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return sim.LogLine{}, false
	}
	return sim.LogLine{Start: start, Duration: dur, Text: strings.TrimSpace(parts[2])}, true
}

// CheckContiguous returns an error naming the first line that does not start
// where its predecessor ended, or whose first line does not start at 0.
func CheckContiguous(lines []sim.LogLine) error {
	var want int64
	for i, l := range lines {
		if l.Start != want {
			return fmt.Errorf("line %d starts at %d, expected %d", i+1, l.Start, want)
		}
		want = l.Start + l.Duration
	}
	return nil
}
