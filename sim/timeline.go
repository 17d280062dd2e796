package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// LogLine is one timed phase of the execution log.
type LogLine struct {
	Start    int64  `json:"start"`
	Duration int64  `json:"duration"`
	Text     string `json:"text"`
}

func (l LogLine) String() string {
	return fmt.Sprintf("%d, %d, %s", l.Start, l.Duration, l.Text)
}

// Timeline is the append-only execution log. It exclusively owns the
// simulation clock: Append is the only place the clock moves, and it moves
// by exactly the appended duration, so consecutive lines are contiguous.
type Timeline struct {
	clock      int64
	lines      []LogLine
	keepZero   bool // record zero-duration phases instead of dropping them
	suppressed int  // zero-duration phases dropped so far
}

// NewTimeline returns an empty timeline at clock 0.
// When keepZero is false, zero-duration phases advance nothing and are not recorded.
func NewTimeline(keepZero bool) *Timeline {
	return &Timeline{
		lines:    make([]LogLine, 0),
		keepZero: keepZero,
	}
}

// Append records a phase starting at the current clock and advances the clock.
func (tl *Timeline) Append(duration int64, text string) error {
	if duration < 0 {
		return &InvalidDurationError{Duration: duration, Text: text}
	}
	if duration == 0 && !tl.keepZero {
		tl.suppressed++
		logrus.Debugf("[tick %07d] dropped zero-length phase %q", tl.clock, text)
		return nil
	}
	tl.lines = append(tl.lines, LogLine{Start: tl.clock, Duration: duration, Text: text})
	logrus.Debugf("[tick %07d] %4d %s", tl.clock, duration, text)
	tl.clock += duration
	return nil
}

// Clock returns the current simulation time.
func (tl *Timeline) Clock() int64 {
	return tl.clock
}

// Lines returns the log. Callers MUST NOT modify the returned slice.
func (tl *Timeline) Lines() []LogLine {
	return tl.lines
}

// Len returns the number of recorded lines.
func (tl *Timeline) Len() int {
	return len(tl.lines)
}

// Suppressed returns how many zero-duration phases were dropped.
func (tl *Timeline) Suppressed() int {
	return tl.suppressed
}
