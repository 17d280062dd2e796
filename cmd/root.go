package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/isr-sim/sim"
	"github.com/inference-sim/isr-sim/sim/execlog"
	"github.com/inference-sim/isr-sim/sim/store"
	"github.com/inference-sim/isr-sim/sim/trace"
	"github.com/inference-sim/isr-sim/sim/workload"
)

var (
	// CLI flags shared by run and validate
	seed            int64  // Master seed for label and split choices
	logLevel        string // Log verbosity level
	configPath      string // Machine YAML file
	vectorTablePath string // Plain-text ISR address table
	deviceTablePath string // Plain-text service delay table
	queuePolicy     string // defer | none

	// CLI flags for run only
	outputPath string // Execution log destination
	dbPath     string // Optional SQLite run archive

	// Timing overrides, applied only when set on the command line
	saveTicks       int64
	restoreTicks    int64
	findVectorTicks int64
	getISRTicks     int64
	iretTicks       int64
	loadISRPhase    bool
	keepZero        bool
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "isr-sim",
	Short: "Discrete-event simulator of CPU interrupt and system call handling",
}

// runCmd simulates a trace and writes its execution log
var runCmd = &cobra.Command{
	Use:   "run <trace-file>",
	Short: "Simulate a trace and write the execution log",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		machine, err := loadMachine()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		cfg, err := buildSimConfig(cmd, machine)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		vectors, err := machine.VectorTable()
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		logrus.Infof("Starting simulation: %d devices, seed=%d, queue policy=%s, timing=%+v",
			vectors.Len(), cfg.Seed, cfg.QueuePolicy, cfg.Timing)
		startTime := time.Now()

		s, err := simulateFile(cfg, vectors, args[0])
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		if err := execlog.WriteFile(outputPath, s.Lines()); err != nil {
			logrus.Fatalf("%v", err)
		}

		s.Metrics.Print(os.Stdout)
		if ts := trace.Summarize(s.Trace); ts.DeferredCount > 0 {
			fmt.Printf("Max backlog depth    : %d\n", ts.MaxBacklogDepth)
		}
		if dbPath != "" {
			id, err := archiveRun(cmd.Context(), dbPath, cfg, s)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			fmt.Printf("Run id               : %s\n", id)
		}
		logrus.Infof("Simulation complete in %v, log written to %s", time.Since(startTime), outputPath)
	},
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// loadMachine reads --config, or else the --vector-table/--device-table pair.
func loadMachine() (MachineConfig, error) {
	switch {
	case configPath != "":
		return LoadMachineConfig(configPath)
	case vectorTablePath != "" && deviceTablePath != "":
		return MachineFromTables(vectorTablePath, deviceTablePath)
	default:
		return MachineConfig{}, fmt.Errorf("no machine configured: pass --config, or both --vector-table and --device-table")
	}
}

// buildSimConfig layers explicitly set flags over the machine file.
// Flags left at their defaults never override file values.
func buildSimConfig(cmd *cobra.Command, machine MachineConfig) (sim.SimConfig, error) {
	cfg := machine.SimConfig(seed)
	flags := cmd.Flags()
	if flags.Changed("queue-policy") {
		cfg.QueuePolicy = sim.QueuePolicy(queuePolicy)
	}
	if flags.Changed("save") {
		cfg.Timing.Save = saveTicks
	}
	if flags.Changed("restore") {
		cfg.Timing.Restore = restoreTicks
	}
	if flags.Changed("find-vector") {
		cfg.Timing.FindVector = findVectorTicks
	}
	if flags.Changed("get-isr") {
		cfg.Timing.GetISR = getISRTicks
	}
	if flags.Changed("iret") {
		cfg.Timing.IRET = iretTicks
	}
	if flags.Changed("load-isr-phase") {
		cfg.Timing.LoadISRPhase = loadISRPhase
	}
	if flags.Changed("keep-zero") {
		cfg.KeepZeroDuration = keepZero
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// simulateFile streams the trace at path through a fresh simulator.
func simulateFile(cfg sim.SimConfig, vectors *sim.VectorTable, path string) (*sim.Simulator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}
	defer func() { _ = f.Close() }()
	return simulate(cfg, vectors, f)
}

func simulate(cfg sim.SimConfig, vectors *sim.VectorTable, r io.Reader) (*sim.Simulator, error) {
	s, err := sim.NewSimulator(cfg, vectors)
	if err != nil {
		return nil, err
	}
	if err := s.RunSource(workload.NewScanner(r)); err != nil {
		return nil, err
	}
	return s, nil
}

// archiveRun stores a finished run and returns its id.
func archiveRun(ctx context.Context, path string, cfg sim.SimConfig, s *sim.Simulator) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = st.Close() }()

	run, err := st.SaveRun(ctx, store.Run{
		Seed:        cfg.Seed,
		QueuePolicy: string(cfg.QueuePolicy),
		TotalTime:   s.Timeline.Clock(),
	}, s.Lines())
	if err != nil {
		return "", err
	}
	logrus.Infof("Run %s archived in %s", run.ID, path)
	return run.ID, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addMachineFlags registers the flags that describe the simulated machine.
func addMachineFlags(c *cobra.Command) {
	c.Flags().Int64Var(&seed, "seed", 42, "Seed for ISR body labels and split points")
	c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	c.Flags().StringVar(&configPath, "config", "", "Machine YAML file (devices, timing, queue policy)")
	c.Flags().StringVar(&vectorTablePath, "vector-table", "", "ISR address table, one address per line")
	c.Flags().StringVar(&deviceTablePath, "device-table", "", "Device service delay table, one delay per line")
	c.Flags().StringVar(&queuePolicy, "queue-policy", string(sim.QueuePolicyDefer), "Handling of SYSCALLs to a busy device (defer, none)")

	// Interrupt scaffold costs
	c.Flags().Int64Var(&saveTicks, "save", 10, "Ticks to save context")
	c.Flags().Int64Var(&restoreTicks, "restore", 10, "Ticks to restore context")
	c.Flags().Int64Var(&findVectorTicks, "find-vector", 10, "Ticks for the vector table lookup")
	c.Flags().Int64Var(&getISRTicks, "get-isr", 1, "Ticks to load the ISR address (with --load-isr-phase)")
	c.Flags().Int64Var(&iretTicks, "iret", 1, "Ticks to return from interrupt")
	c.Flags().BoolVar(&loadISRPhase, "load-isr-phase", false, "Emit a load ISR address phase after the vector lookup")
	c.Flags().BoolVar(&keepZero, "keep-zero", false, "Keep zero-duration phases in the log")
}

// init sets up CLI flags and subcommands
func init() {
	addMachineFlags(runCmd)
	runCmd.Flags().StringVar(&outputPath, "output", "execution.txt", "Execution log path")
	runCmd.Flags().StringVar(&dbPath, "db", "", "SQLite file to archive the run in")

	rootCmd.AddCommand(runCmd)
}
