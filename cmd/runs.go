package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/isr-sim/sim/store"
)

var runsDBPath string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List runs archived in a SQLite file",
	Run: func(cmd *cobra.Command, args []string) {
		if runsDBPath == "" {
			logrus.Fatalf("--db is required")
		}
		if err := listRuns(cmd.Context(), os.Stdout, runsDBPath); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func listRuns(ctx context.Context, w io.Writer, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%-36s  %-20s  %6s  %-6s  %10s\n", "id", "created", "seed", "policy", "total")
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-20s  %6d  %-6s  %10d\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.Seed, r.QueuePolicy, r.TotalTime)
	}
	return nil
}

func init() {
	runsCmd.Flags().StringVar(&runsDBPath, "db", "", "SQLite run archive")
	rootCmd.AddCommand(runsCmd)
}
