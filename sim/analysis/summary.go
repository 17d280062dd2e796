package analysis

import (
	"sort"

	"github.com/inference-sim/isr-sim/sim"
)

// Totals splits a log's time by category.
type Totals struct {
	Total    int64 `json:"total"`
	CPU      int64 `json:"cpu"`
	Overhead int64 `json:"overhead"`
	Body     int64 `json:"body"`
}

// ComponentTime is the time spent in one overhead component.
type ComponentTime struct {
	Component string
	Time      int64
}

// Summary is the baseline breakdown of one execution log.
type Summary struct {
	Totals
	Lines int
	// Interrupts counts save-context phases.
	Interrupts int
	// Breakdown is the overhead per component, sorted by component name.
	Breakdown []ComponentTime
}

// Summarize computes the baseline breakdown. Safe for empty logs.
func Summarize(lines []sim.LogLine) *Summary {
	s := &Summary{Totals: totals(lines), Lines: len(lines)}
	byComp := make(map[string]int64)
	for _, l := range lines {
		cat, comp := Classify(l.Text)
		if cat == CategoryOverhead {
			byComp[comp] += l.Duration
		}
		if isSave(l.Text) {
			s.Interrupts++
		}
	}
	for comp, d := range byComp {
		s.Breakdown = append(s.Breakdown, ComponentTime{Component: comp, Time: d})
	}
	sort.Slice(s.Breakdown, func(i, j int) bool { return s.Breakdown[i].Component < s.Breakdown[j].Component })
	return s
}

func totals(lines []sim.LogLine) Totals {
	var t Totals
	for _, l := range lines {
		t.Total += l.Duration
		switch cat, _ := Classify(l.Text); cat {
		case CategoryCPU:
			t.CPU += l.Duration
		case CategoryOverhead:
			t.Overhead += l.Duration
		default:
			t.Body += l.Duration
		}
	}
	return t
}
