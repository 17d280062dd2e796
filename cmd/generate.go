package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/isr-sim/sim/workload"
)

var (
	genSpecPath   string
	genActivities int
	genDevices    int
	genSeed       int64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic trace",
	Long:  "Generate a synthetic trace of CPU bursts, SYSCALLs and END_IOs. Output is written to stdout for piping.",
	Run: func(cmd *cobra.Command, args []string) {
		spec := workload.DefaultGenSpec()
		if genSpecPath != "" {
			var err error
			if spec, err = workload.LoadGenSpec(genSpecPath); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
		// Flags only override the spec file when set explicitly.
		if cmd.Flags().Changed("activities") {
			spec.Activities = genActivities
		}
		if cmd.Flags().Changed("devices") {
			spec.Devices = genDevices
		}
		if cmd.Flags().Changed("seed") {
			spec.Seed = genSeed
		}

		acts, err := workload.GenerateTrace(spec)
		if err != nil {
			logrus.Fatalf("Trace generation failed: %v", err)
		}
		if err := workload.WriteTrace(os.Stdout, acts); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func init() {
	generateCmd.Flags().StringVar(&genSpecPath, "spec", "", "Generator YAML spec")
	generateCmd.Flags().IntVar(&genActivities, "activities", 20, "Number of trap activities")
	generateCmd.Flags().IntVar(&genDevices, "devices", 4, "Number of devices")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 42, "Generator seed")

	rootCmd.AddCommand(generateCmd)
}
