package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/inference-sim/isr-sim/sim"
)

// Scenario is one row of the scenario table.
type Scenario struct {
	Source string // file path or run id
	Name   string // "baseline", "SAVE=4", "scale_body=0.5", "target_body=40"
	Totals
}

// Options selects which what-if scenarios to evaluate.
type Options struct {
	Saves      []int64
	ScaleBody  *float64
	TargetBody *int64
}

// Scenarios evaluates the requested what-ifs followed by the baseline, in that order.
func Scenarios(source string, lines []sim.LogLine, opts Options) ([]Scenario, error) {
	var rows []Scenario
	for _, sv := range opts.Saves {
		rows = append(rows, Scenario{Source: source, Name: fmt.Sprintf("SAVE=%d", sv), Totals: WhatIfSave(lines, sv)})
	}
	if opts.ScaleBody != nil {
		f := *opts.ScaleBody
		rows = append(rows, Scenario{Source: source, Name: "scale_body=" + strconv.FormatFloat(f, 'g', -1, 64), Totals: WhatIfScaleBody(lines, f)})
	}
	if opts.TargetBody != nil {
		t, err := WhatIfTargetBody(lines, *opts.TargetBody)
		if err != nil {
			return nil, fmt.Errorf("%s: target_body=%d: %w", source, *opts.TargetBody, err)
		}
		rows = append(rows, Scenario{Source: source, Name: fmt.Sprintf("target_body=%d", *opts.TargetBody), Totals: t})
	}
	rows = append(rows, Scenario{Source: source, Name: "baseline", Totals: totals(lines)})
	return rows, nil
}

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// WriteSummary renders the baseline breakdown of one log.
func WriteSummary(w io.Writer, source string, s *Summary) {
	p := printer()
	p.Fprintf(w, "=== %s ===\n", source)
	p.Fprintf(w, "%-14s %12s\n", "metric", "ticks")
	p.Fprintf(w, "%-14s %12d\n", "total_time", s.Total)
	p.Fprintf(w, "%-14s %12d\n", "cpu_time", s.CPU)
	p.Fprintf(w, "%-14s %12d\n", "overhead_time", s.Overhead)
	p.Fprintf(w, "%-14s %12d\n", "body_time", s.Body)
	p.Fprintf(w, "\nOverhead breakdown (%d interrupts):\n", s.Interrupts)
	for _, c := range s.Breakdown {
		p.Fprintf(w, "%-16s %12d\n", c.Component, c.Time)
	}
}

// WriteScenarios renders the scenario table.
func WriteScenarios(w io.Writer, rows []Scenario) {
	p := printer()
	p.Fprintf(w, "=== Scenario summary ===\n")
	p.Fprintf(w, "%-24s %-18s %10s %10s %10s %10s\n", "source", "scenario", "total", "cpu", "overhead", "body")
	for _, r := range rows {
		p.Fprintf(w, "%-24s %-18s %10d %10d %10d %10d\n", r.Source, r.Name, r.Total, r.CPU, r.Overhead, r.Body)
	}
}

// WriteCSV writes the scenario table as CSV with a header row.
func WriteCSV(w io.Writer, rows []Scenario) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"file", "scenario", "total", "cpu", "overhead", "body"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.Source,
			r.Name,
			strconv.FormatInt(r.Total, 10),
			strconv.FormatInt(r.CPU, 10),
			strconv.FormatInt(r.Overhead, 10),
			strconv.FormatInt(r.Body, 10),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
