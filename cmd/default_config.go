package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/isr-sim/sim"
	"github.com/inference-sim/isr-sim/sim/workload"
)

// DeviceConfig is one row of the machine's device list; its index is the device id.
type DeviceConfig struct {
	ISRAddress   string `yaml:"isr_address"`
	ServiceDelay int64  `yaml:"service_delay"`
}

// TimingYAML mirrors sim.TimingConfig with YAML keys.
type TimingYAML struct {
	Save         int64 `yaml:"save"`
	Restore      int64 `yaml:"restore"`
	FindVector   int64 `yaml:"find_vector"`
	GetISR       int64 `yaml:"get_isr"`
	IRET         int64 `yaml:"iret"`
	LoadISRPhase bool  `yaml:"load_isr_phase"`
}

// MachineConfig represents the full machine YAML file.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type MachineConfig struct {
	Devices          []DeviceConfig `yaml:"devices"`
	Timing           TimingYAML     `yaml:"timing"`
	QueuePolicy      string         `yaml:"queue_policy"`
	KeepZeroDuration bool           `yaml:"keep_zero_duration"`
}

// DefaultMachineConfig returns stock timing and queue policy with no devices.
func DefaultMachineConfig() MachineConfig {
	t := sim.DefaultTimingConfig()
	return MachineConfig{
		Timing: TimingYAML{
			Save:         t.Save,
			Restore:      t.Restore,
			FindVector:   t.FindVector,
			GetISR:       t.GetISR,
			IRET:         t.IRET,
			LoadISRPhase: t.LoadISRPhase,
		},
		QueuePolicy: string(sim.QueuePolicyDefer),
	}
}

// LoadMachineConfig parses a machine YAML file. Keys left out keep their
// DefaultMachineConfig values; typos are errors.
func LoadMachineConfig(path string) (MachineConfig, error) {
	cfg := DefaultMachineConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading machine config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing machine config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// MachineFromTables builds a machine config from the plain-text vector and device tables.
func MachineFromTables(vectorPath, devicePath string) (MachineConfig, error) {
	cfg := DefaultMachineConfig()
	vt, err := workload.LoadTableFiles(vectorPath, devicePath)
	if err != nil {
		return cfg, err
	}
	for i := 0; i < vt.Len(); i++ {
		e, _ := vt.Lookup(i)
		cfg.Devices = append(cfg.Devices, DeviceConfig{ISRAddress: e.ISRAddress, ServiceDelay: e.ServiceDelay})
	}
	return cfg, nil
}

// Validate checks devices, timing constants and queue policy.
func (c MachineConfig) Validate() error {
	if len(c.Devices) == 0 {
		return fmt.Errorf("machine config: no devices configured")
	}
	if _, err := c.VectorTable(); err != nil {
		return fmt.Errorf("machine config: %w", err)
	}
	if err := c.SimConfig(0).Validate(); err != nil {
		return fmt.Errorf("machine config: %w", err)
	}
	return nil
}

// VectorTable builds the run's vector table from the device list.
func (c MachineConfig) VectorTable() (*sim.VectorTable, error) {
	entries := make([]sim.DeviceEntry, len(c.Devices))
	for i, d := range c.Devices {
		entries[i] = sim.DeviceEntry{ISRAddress: d.ISRAddress, ServiceDelay: d.ServiceDelay}
	}
	return sim.NewVectorTable(entries)
}

// SimConfig converts to the simulator's configuration.
func (c MachineConfig) SimConfig(seed int64) sim.SimConfig {
	return sim.SimConfig{
		Timing: sim.TimingConfig{
			Save:         c.Timing.Save,
			Restore:      c.Timing.Restore,
			FindVector:   c.Timing.FindVector,
			GetISR:       c.Timing.GetISR,
			IRET:         c.Timing.IRET,
			LoadISRPhase: c.Timing.LoadISRPhase,
		},
		QueuePolicy:      sim.QueuePolicy(c.QueuePolicy),
		KeepZeroDuration: c.KeepZeroDuration,
		Seed:             seed,
	}
}
