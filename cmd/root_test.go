package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/isr-sim/sim"
	"github.com/inference-sim/isr-sim/sim/execlog"
	"github.com/inference-sim/isr-sim/sim/store"
)

func testMachine() MachineConfig {
	m := DefaultMachineConfig()
	m.Devices = []DeviceConfig{
		{ISRAddress: "0X01E3", ServiceDelay: 110},
		{ISRAddress: "0X029C", ServiceDelay: 40},
	}
	return m
}

// newFlagCmd returns a throwaway command carrying the machine flags at their defaults.
func newFlagCmd() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	addMachineFlags(c)
	return c
}

func TestBuildSimConfig_DefaultFlagsKeepFileValues(t *testing.T) {
	// GIVEN a machine file with a non-default save cost and queue policy
	m := testMachine()
	m.Timing.Save = 4
	m.QueuePolicy = "none"

	// WHEN no flag is set
	cfg, err := buildSimConfig(newFlagCmd(), m)
	require.NoError(t, err)

	// THEN file values survive and the seed comes from the flag default
	assert.Equal(t, int64(4), cfg.Timing.Save)
	assert.Equal(t, sim.QueuePolicyNone, cfg.QueuePolicy)
	assert.Equal(t, int64(42), cfg.Seed)
}

func TestBuildSimConfig_ChangedFlagsOverride(t *testing.T) {
	c := newFlagCmd()
	require.NoError(t, c.Flags().Set("save", "2"))
	require.NoError(t, c.Flags().Set("iret", "3"))
	require.NoError(t, c.Flags().Set("queue-policy", "none"))
	require.NoError(t, c.Flags().Set("load-isr-phase", "true"))

	cfg, err := buildSimConfig(c, testMachine())
	require.NoError(t, err)

	assert.Equal(t, int64(2), cfg.Timing.Save)
	assert.Equal(t, int64(3), cfg.Timing.IRET)
	assert.Equal(t, int64(10), cfg.Timing.Restore, "unset flags keep the file value")
	assert.Equal(t, sim.QueuePolicyNone, cfg.QueuePolicy)
	assert.True(t, cfg.Timing.LoadISRPhase)
}

func TestBuildSimConfig_RejectsBadOverride(t *testing.T) {
	c := newFlagCmd()
	require.NoError(t, c.Flags().Set("restore", "-1"))
	_, err := buildSimConfig(c, testMachine())
	assert.Error(t, err)

	c = newFlagCmd()
	require.NoError(t, c.Flags().Set("queue-policy", "fifo"))
	_, err = buildSimConfig(c, testMachine())
	assert.Error(t, err)
}

func TestSimulate_ClockCoversEveryActivity(t *testing.T) {
	// GIVEN a CPU burst and a 120-tick SYSCALL
	vectors, err := testMachine().VectorTable()
	require.NoError(t, err)
	trace := "CPU, 50\nSYSCALL, 0, 120\n"

	// WHEN simulated
	s, err := simulate(sim.DefaultSimConfig(), vectors, strings.NewReader(trace))
	require.NoError(t, err)

	// THEN the log is contiguous and the trap added the 31-tick scaffold
	assert.Equal(t, int64(50+120+31), s.Timeline.Clock())
	assert.NoError(t, execlog.CheckContiguous(s.Lines()))
}

func TestSimulate_UnknownDeviceFails(t *testing.T) {
	vectors, err := testMachine().VectorTable()
	require.NoError(t, err)

	_, err = simulate(sim.DefaultSimConfig(), vectors, strings.NewReader("CPU, 5\nEND_IO, 7, 3\n"))

	var ude *sim.UnknownDeviceError
	require.ErrorAs(t, err, &ude)
	assert.Equal(t, 7, ude.Device)
	assert.Equal(t, 2, ude.Line)
}

func TestSimulateFile_MissingTrace(t *testing.T) {
	vectors, err := testMachine().VectorTable()
	require.NoError(t, err)
	_, err = simulateFile(sim.DefaultSimConfig(), vectors, filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestArchiveRun_ThenListAndAnalyze(t *testing.T) {
	// GIVEN a finished run
	vectors, err := testMachine().VectorTable()
	require.NoError(t, err)
	cfg := sim.DefaultSimConfig()
	s, err := simulate(cfg, vectors, strings.NewReader("CPU, 50\nSYSCALL, 1\nEND_IO, 1, 30\n"))
	require.NoError(t, err)

	// WHEN it is archived
	db := filepath.Join(t.TempDir(), "runs.db")
	id, err := archiveRun(context.Background(), db, cfg, s)
	require.NoError(t, err)

	// THEN it is listed
	var buf bytes.Buffer
	require.NoError(t, listRuns(context.Background(), &buf, db))
	assert.Contains(t, buf.String(), id)

	// AND it reloads with the same lines
	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	run, lines, err := st.LoadRun(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, s.Lines(), lines)
	assert.Equal(t, s.Timeline.Clock(), run.TotalTime)
	assert.Equal(t, "defer", run.QueuePolicy)
}

func TestLoadMachine_RequiresASource(t *testing.T) {
	configPath, vectorTablePath, deviceTablePath = "", "", ""
	_, err := loadMachine()
	assert.Error(t, err)
}

func TestLoadMachine_FromTables(t *testing.T) {
	dir := t.TempDir()
	vectorTablePath = filepath.Join(dir, "vector_table.txt")
	deviceTablePath = filepath.Join(dir, "device_table.txt")
	configPath = ""
	t.Cleanup(func() { vectorTablePath, deviceTablePath = "", "" })
	require.NoError(t, os.WriteFile(vectorTablePath, []byte("0X01E3\n0X029C\n"), 0o644))
	require.NoError(t, os.WriteFile(deviceTablePath, []byte("110\n40\n"), 0o644))

	m, err := loadMachine()
	require.NoError(t, err)
	assert.Equal(t, testMachine().Devices, m.Devices)
	assert.Equal(t, "defer", m.QueuePolicy)
}
