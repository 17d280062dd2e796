package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/isr-sim/sim"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "machine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMachineConfig_FullFile(t *testing.T) {
	path := writeYAML(t, `
devices:
  - isr_address: "0X01E3"
    service_delay: 110
  - isr_address: "0X029C"
    service_delay: 40
timing:
  save: 4
  restore: 6
  find_vector: 2
  get_isr: 3
  iret: 1
  load_isr_phase: true
queue_policy: none
keep_zero_duration: true
`)

	cfg, err := LoadMachineConfig(path)
	require.NoError(t, err)

	assert.Len(t, cfg.Devices, 2)
	assert.Equal(t, int64(40), cfg.Devices[1].ServiceDelay)

	sc := cfg.SimConfig(7)
	assert.Equal(t, sim.TimingConfig{Save: 4, Restore: 6, FindVector: 2, GetISR: 3, IRET: 1, LoadISRPhase: true}, sc.Timing)
	assert.Equal(t, sim.QueuePolicyNone, sc.QueuePolicy)
	assert.True(t, sc.KeepZeroDuration)
	assert.Equal(t, int64(7), sc.Seed)
}

func TestLoadMachineConfig_PartialTimingKeepsDefaults(t *testing.T) {
	// GIVEN a file that only overrides the save cost
	path := writeYAML(t, "devices:\n  - isr_address: \"0X0100\"\n    service_delay: 5\ntiming:\n  save: 3\n")

	// WHEN loaded
	cfg, err := LoadMachineConfig(path)
	require.NoError(t, err)

	// THEN every other constant keeps its default
	want := sim.DefaultTimingConfig()
	want.Save = 3
	assert.Equal(t, want, cfg.SimConfig(0).Timing)
	assert.Equal(t, "defer", cfg.QueuePolicy)
}

func TestLoadMachineConfig_UnknownKey_ReturnsError(t *testing.T) {
	// GIVEN a typo in a timing key
	path := writeYAML(t, "devices:\n  - isr_address: \"0X0100\"\n    service_delay: 5\ntiming:\n  sav: 3\n")

	// THEN strict parsing rejects it
	_, err := LoadMachineConfig(path)
	assert.Error(t, err)
}

func TestMachineConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MachineConfig)
	}{
		{"no devices", func(m *MachineConfig) { m.Devices = nil }},
		{"negative delay", func(m *MachineConfig) { m.Devices[0].ServiceDelay = -1 }},
		{"empty address", func(m *MachineConfig) { m.Devices[1].ISRAddress = "" }},
		{"negative save", func(m *MachineConfig) { m.Timing.Save = -1 }},
		{"unknown policy", func(m *MachineConfig) { m.QueuePolicy = "lifo" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := testMachine()
			tc.mutate(&m)
			assert.Error(t, m.Validate())
		})
	}
	assert.NoError(t, testMachine().Validate())
}

func TestMachineConfig_VectorTable(t *testing.T) {
	vt, err := testMachine().VectorTable()
	require.NoError(t, err)
	assert.Equal(t, 2, vt.Len())

	e, err := vt.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, sim.DeviceEntry{ISRAddress: "0X029C", ServiceDelay: 40}, e)
}
