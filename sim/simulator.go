// sim/simulator.go
package sim

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/isr-sim/sim/trace"
)

// ActivitySource yields trace activities in file order.
// Next returns io.EOF once the trace is exhausted.
type ActivitySource interface {
	Next() (TraceActivity, error)
}

// SliceSource serves activities from memory.
type SliceSource struct {
	acts []TraceActivity
	pos  int
}

// NewSliceSource wraps acts as an ActivitySource.
func NewSliceSource(acts []TraceActivity) *SliceSource {
	return &SliceSource{acts: acts}
}

// Next returns the next activity or io.EOF.
func (s *SliceSource) Next() (TraceActivity, error) {
	if s.pos >= len(s.acts) {
		return TraceActivity{}, io.EOF
	}
	a := s.acts[s.pos]
	s.pos++
	return a, nil
}

// Simulator is the core object that holds the run state: the timeline
// (and with it the clock), device queues, the dispatcher, and run metrics.
// It is single-threaded: activities are dispatched strictly in trace order.
type Simulator struct {
	Config   SimConfig
	Vectors  *VectorTable
	Timeline *Timeline
	Queues   *DeviceQueues
	Trace    *trace.SimulationTrace
	Metrics  *Metrics
	// Pending holds traps still parked in a backlog after the last activity.
	Pending []PendingRequest

	dispatcher *Dispatcher
	processed  int
}

// NewSimulator builds a simulator whose label and split choices derive from cfg.Seed.
func NewSimulator(cfg SimConfig, vectors *VectorTable) (*Simulator, error) {
	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	return NewSimulatorWithSplitter(cfg, vectors,
		NewSplitter(rng.ForSubsystem(SubsystemLabels), rng.ForSubsystem(SubsystemSplit)))
}

// NewSimulatorWithSplitter builds a simulator around a caller-supplied splitter.
// Tests use it to script label and split choices.
func NewSimulatorWithSplitter(cfg SimConfig, vectors *VectorTable, splitter *Splitter) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	if vectors == nil {
		return nil, errors.New("vector table is required")
	}
	if cfg.QueuePolicy == "" {
		cfg.QueuePolicy = QueuePolicyDefer
	}
	s := &Simulator{
		Config:   cfg,
		Vectors:  vectors,
		Timeline: NewTimeline(cfg.KeepZeroDuration),
		Queues:   NewDeviceQueues(vectors.Len()),
		Trace:    trace.NewSimulationTrace(trace.TraceLevelDecisions),
		Metrics:  NewMetrics(),
	}
	s.dispatcher = NewDispatcher(s.Vectors, s.Timeline, s.Queues, splitter,
		cfg.Timing, cfg.QueuePolicy, s.Trace, s.Metrics)
	return s, nil
}

// Step dispatches a single activity to completion.
func (sim *Simulator) Step(a TraceActivity) error {
	if err := sim.dispatcher.Dispatch(a); err != nil {
		return err
	}
	sim.processed++
	return nil
}

// RunSource dispatches every activity from src, in order, then records
// requests left in device backlogs. The first error aborts the run; lines
// already in the timeline stay there but nothing further is appended.
func (sim *Simulator) RunSource(src ActivitySource) error {
	for {
		a, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logrus.Errorf("[tick %07d] trace read failed: %v", sim.Timeline.Clock(), err)
			return err
		}
		if err := sim.Step(a); err != nil {
			logrus.Errorf("[tick %07d] aborting run: %v", sim.Timeline.Clock(), err)
			return err
		}
	}
	sim.Pending = sim.dispatcher.Drain()
	sim.Metrics.SimEndedTime = sim.Timeline.Clock()
	logrus.Infof("[tick %07d] Simulation ended after %d activities", sim.Timeline.Clock(), sim.processed)
	return nil
}

// Run dispatches acts in order. See RunSource.
func (sim *Simulator) Run(acts []TraceActivity) error {
	return sim.RunSource(NewSliceSource(acts))
}

// Lines returns the execution log produced so far.
func (sim *Simulator) Lines() []LogLine {
	return sim.Timeline.Lines()
}

// Processed returns the number of activities dispatched.
func (sim *Simulator) Processed() int {
	return sim.processed
}
