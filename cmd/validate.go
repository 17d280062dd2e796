package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/isr-sim/sim"
	"github.com/inference-sim/isr-sim/sim/workload"
)

var validateCmd = &cobra.Command{
	Use:   "validate <trace-file>",
	Short: "Check a machine configuration and trace without simulating",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		machine, err := loadMachine()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if _, err := buildSimConfig(cmd, machine); err != nil {
			logrus.Fatalf("%v", err)
		}
		vectors, err := machine.VectorTable()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		acts, err := workload.ReadTraceFile(args[0])
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := validateTrace(os.Stdout, acts, vectors); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// validateTrace checks that every trap names a configured device and
// prints a one-line count per activity kind.
func validateTrace(w io.Writer, acts []sim.TraceActivity, vectors *sim.VectorTable) error {
	counts := map[sim.ActivityKind]int{}
	for _, a := range acts {
		counts[a.Kind]++
		if !a.IsTrap() {
			continue
		}
		if _, err := vectors.Lookup(a.Device); err != nil {
			var ude *sim.UnknownDeviceError
			if errors.As(err, &ude) {
				ude.Line = a.Line
			}
			return err
		}
	}
	fmt.Fprintf(w, "OK: %d activities (%d CPU, %d SYSCALL, %d END_IO) over %d devices\n",
		len(acts), counts[sim.KindCPU], counts[sim.KindSyscall], counts[sim.KindEndIO], vectors.Len())
	return nil
}

func init() {
	addMachineFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}
