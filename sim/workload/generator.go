package workload

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/isr-sim/sim"
)

// GenSpec describes a synthetic trace: CPU bursts interleaved with SYSCALLs
// and the END_IOs that complete them.
type GenSpec struct {
	// Activities is the number of trap activities (SYSCALL or END_IO) drawn
	// before outstanding I/O is closed out.
	Activities int   `yaml:"activities"`
	Devices    int   `yaml:"devices"`
	CPUMin     int64 `yaml:"cpu_min"`
	CPUMax     int64 `yaml:"cpu_max"`
	TrapMin    int64 `yaml:"trap_min"`
	TrapMax    int64 `yaml:"trap_max"`
	// EndIOChance is the probability that the oldest outstanding I/O
	// completes at a given step instead of a new SYSCALL being issued.
	EndIOChance float64 `yaml:"end_io_chance"`
	Seed        int64   `yaml:"seed"`
}

// DefaultGenSpec returns a small, balanced spec.
func DefaultGenSpec() GenSpec {
	return GenSpec{
		Activities:  20,
		Devices:     4,
		CPUMin:      10,
		CPUMax:      100,
		TrapMin:     20,
		TrapMax:     300,
		EndIOChance: 0.5,
		Seed:        42,
	}
}

// LoadGenSpec reads a YAML generator spec. Unset fields keep their
// DefaultGenSpec values; unknown keys are rejected.
func LoadGenSpec(path string) (GenSpec, error) {
	spec := DefaultGenSpec()
	data, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("reading generator spec: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return spec, fmt.Errorf("parsing generator spec: %w", err)
	}
	return spec, spec.Validate()
}

// Validate checks bounds.
func (g GenSpec) Validate() error {
	switch {
	case g.Activities < 0:
		return fmt.Errorf("activities must be >= 0, got %d", g.Activities)
	case g.Devices <= 0:
		return fmt.Errorf("devices must be > 0, got %d", g.Devices)
	case g.CPUMin < 0 || g.CPUMax < g.CPUMin:
		return fmt.Errorf("invalid CPU range [%d, %d]", g.CPUMin, g.CPUMax)
	case g.TrapMin < 0 || g.TrapMax < g.TrapMin:
		return fmt.Errorf("invalid trap range [%d, %d]", g.TrapMin, g.TrapMax)
	case g.EndIOChance < 0 || g.EndIOChance > 1:
		return fmt.Errorf("end_io_chance must be in [0, 1], got %v", g.EndIOChance)
	}
	return nil
}

// GenerateTrace builds a trace from spec. Deterministic given the same spec.
// Every activity is preceded by a CPU burst, and every SYSCALL is eventually
// followed by an END_IO on the same device, so a generated trace leaves
// nothing pending under the defer queue policy.
func GenerateTrace(spec GenSpec) ([]sim.TraceActivity, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator spec: %w", err)
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(spec.Seed)).ForSubsystem(sim.SubsystemWorkloadGen)

	var open []int // devices with outstanding I/O, in completion order
	var acts []sim.TraceActivity

	emit := func(a sim.TraceActivity) {
		acts = append(acts, sim.TraceActivity{Kind: sim.KindCPU, Duration: between(rng, spec.CPUMin, spec.CPUMax)})
		acts = append(acts, a)
	}

	for i := 0; i < spec.Activities; i++ {
		if len(open) > 0 && rng.Float64() < spec.EndIOChance {
			dev := open[0]
			open = open[1:]
			emit(sim.TraceActivity{Kind: sim.KindEndIO, Device: dev, Duration: between(rng, spec.TrapMin, spec.TrapMax)})
			continue
		}
		dev := rng.Intn(spec.Devices)
		open = append(open, dev)
		emit(sim.TraceActivity{Kind: sim.KindSyscall, Device: dev, Duration: between(rng, spec.TrapMin, spec.TrapMax)})
	}
	for _, dev := range open {
		emit(sim.TraceActivity{Kind: sim.KindEndIO, Device: dev, Duration: between(rng, spec.TrapMin, spec.TrapMax)})
	}
	return acts, nil
}

// between draws uniformly from [lo, hi].
func between(rng *rand.Rand, lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Int63n(hi-lo+1)
}
