package analysis

import (
	"errors"
	"math"

	"github.com/inference-sim/isr-sim/sim"
)

// WhatIfSave re-costs every save-context phase at save ticks.
func WhatIfSave(lines []sim.LogLine, save int64) Totals {
	out := clone(lines)
	for i := range out {
		if isSave(out[i].Text) {
			out[i].Duration = save
		}
	}
	return totals(out)
}

// WhatIfScaleBody multiplies every body phase by factor, rounding half to
// even and keeping each phase at least one tick.
func WhatIfScaleBody(lines []sim.LogLine, factor float64) Totals {
	out := clone(lines)
	for i := range out {
		if cat, _ := Classify(out[i].Text); cat == CategoryBody {
			out[i].Duration = max(1, int64(math.RoundToEven(float64(out[i].Duration)*factor)))
		}
	}
	return totals(out)
}

// ErrTargetTooSmall is returned when a per-interrupt body target cannot give every phase a tick.
var ErrTargetTooSmall = errors.New("target body smaller than the number of body phases")

// WhatIfTargetBody rescales the body phases of each interrupt (from its
// save-context phase to its return-from-interrupt phase) so they sum to
// exactly target, keeping every phase at least one tick. Bodies with no time
// are split evenly.
func WhatIfTargetBody(lines []sim.LogLine, target int64) (Totals, error) {
	out := clone(lines)
	inside := false
	var body []int
	for i, l := range out {
		if isInterruptStart(l.Text) && !inside {
			inside = true
			body = body[:0]
		}
		if !inside {
			continue
		}
		if cat, _ := Classify(l.Text); cat == CategoryBody {
			body = append(body, i)
		}
		if isInterruptEnd(l.Text) {
			if len(body) > 0 {
				if err := retarget(out, body, target); err != nil {
					return Totals{}, err
				}
			}
			inside = false
		}
	}
	return totals(out), nil
}

func retarget(out []sim.LogLine, idx []int, target int64) error {
	k := int64(len(idx))
	if target < k {
		return ErrTargetTooSmall
	}
	var sum int64
	for _, i := range idx {
		sum += out[i].Duration
	}
	if sum == 0 {
		base, rem := target/k, target%k
		for j, i := range idx {
			out[i].Duration = base
			if int64(j) < rem {
				out[i].Duration++
			}
		}
		return nil
	}

	factor := float64(target) / float64(sum)
	vals := make([]int64, len(idx))
	var got int64
	for j, i := range idx {
		vals[j] = max(1, int64(math.RoundToEven(float64(out[i].Duration)*factor)))
		got += vals[j]
	}
	// Walk the phases one tick at a time until the rounding error is absorbed.
	for diff, j := target-got, 0; diff != 0; j = (j + 1) % len(vals) {
		step := int64(1)
		if diff < 0 {
			step = -1
		}
		if vals[j]+step >= 1 {
			vals[j] += step
			diff -= step
		}
	}
	for j, i := range idx {
		out[i].Duration = vals[j]
	}
	return nil
}

func clone(lines []sim.LogLine) []sim.LogLine {
	out := make([]sim.LogLine, len(lines))
	copy(out, lines)
	return out
}
