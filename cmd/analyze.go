package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/isr-sim/sim"
	"github.com/inference-sim/isr-sim/sim/analysis"
	"github.com/inference-sim/isr-sim/sim/execlog"
	"github.com/inference-sim/isr-sim/sim/store"
)

var (
	analyzeDBPath     string
	analyzeRunIDs     []string
	analyzeSaves      []int64
	analyzeScaleBody  float64
	analyzeTargetBody int64
	analyzeCSVPath    string
)

// logSource is one execution log to analyze.
type logSource struct {
	name  string
	lines []sim.LogLine
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [execution-log ...]",
	Short: "Break execution logs down into CPU, overhead and ISR body time",
	Long: "Summarize one or more execution logs (files, or runs archived with --db/--run) " +
		"and re-cost them under what-if scenarios: --save, --scale-body, --target-body.",
	Run: func(cmd *cobra.Command, args []string) {
		sources, err := collectLogs(cmd.Context(), args, analyzeDBPath, analyzeRunIDs)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if len(sources) == 0 {
			logrus.Fatalf("nothing to analyze: pass execution log files or --db with --run")
		}

		opts := analysis.Options{Saves: analyzeSaves}
		if cmd.Flags().Changed("scale-body") {
			f := analyzeScaleBody
			opts.ScaleBody = &f
		}
		if cmd.Flags().Changed("target-body") {
			t := analyzeTargetBody
			opts.TargetBody = &t
		}

		rows, err := analyzeLogs(os.Stdout, sources, opts)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if analyzeCSVPath != "" {
			if err := writeCSVFile(analyzeCSVPath, rows); err != nil {
				logrus.Fatalf("%v", err)
			}
			logrus.Infof("Scenario table written to %s", analyzeCSVPath)
		}
	},
}

// collectLogs reads log files first, then archived runs, in argument order.
func collectLogs(ctx context.Context, paths []string, db string, runIDs []string) ([]logSource, error) {
	var out []logSource
	for _, p := range paths {
		lines, err := execlog.ReadFile(p)
		if err != nil {
			return nil, err
		}
		if len(lines) == 0 {
			logrus.Warnf("%s: no execution log lines found", p)
		}
		out = append(out, logSource{name: p, lines: lines})
	}
	if len(runIDs) == 0 {
		return out, nil
	}
	if db == "" {
		return nil, fmt.Errorf("--run requires --db")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(db)
	if err != nil {
		return nil, err
	}
	defer func() { _ = st.Close() }()
	for _, id := range runIDs {
		_, lines, err := st.LoadRun(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, logSource{name: id, lines: lines})
	}
	return out, nil
}

// analyzeLogs prints a summary per log followed by the combined scenario table.
func analyzeLogs(w io.Writer, sources []logSource, opts analysis.Options) ([]analysis.Scenario, error) {
	var rows []analysis.Scenario
	for _, src := range sources {
		analysis.WriteSummary(w, src.name, analysis.Summarize(src.lines))
		fmt.Fprintln(w)
		r, err := analysis.Scenarios(src.name, src.lines, opts)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r...)
	}
	analysis.WriteScenarios(w, rows)
	return rows, nil
}

func writeCSVFile(path string, rows []analysis.Scenario) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV: %w", err)
	}
	if err := analysis.WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDBPath, "db", "", "SQLite run archive")
	analyzeCmd.Flags().StringSliceVar(&analyzeRunIDs, "run", nil, "Archived run id to analyze (can be repeated)")
	analyzeCmd.Flags().Int64SliceVar(&analyzeSaves, "save", nil, "What-if save-context cost in ticks (comma-separated)")
	analyzeCmd.Flags().Float64Var(&analyzeScaleBody, "scale-body", 1.0, "What-if factor applied to every ISR body phase")
	analyzeCmd.Flags().Int64Var(&analyzeTargetBody, "target-body", 0, "What-if body length per interrupt in ticks")
	analyzeCmd.Flags().StringVar(&analyzeCSVPath, "csv", "", "Write the scenario table as CSV to this path")

	rootCmd.AddCommand(analyzeCmd)
}
