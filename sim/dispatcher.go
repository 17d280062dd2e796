package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/isr-sim/sim/trace"
)

// Fixed phase texts of the interrupt scaffold.
const (
	TextCPU     = "CPU execution"
	TextSave    = "save context"
	TextRestore = "restore context"
	TextIRET    = "return from interrupt"
)

// FindVectorText is the vector lookup phase for device; it always starts with "find vector".
func FindVectorText(device int, isr string) string {
	return fmt.Sprintf("find vector %d: ISR at %s", device, isr)
}

// LoadISRText is the optional GET_ISR phase.
func LoadISRText(isr string) string {
	return fmt.Sprintf("load ISR address %s into the PC", isr)
}

// Dispatcher drives one trace activity at a time from classification to
// completion, appending its phases to the Timeline. Activities never
// overlap: Dispatch returns only once the activity, and any backlog entry
// it released, has been fully expanded.
type Dispatcher struct {
	vectors  *VectorTable
	timeline *Timeline
	queues   *DeviceQueues
	splitter *Splitter
	timing   TimingConfig
	policy   QueuePolicy
	trace    *trace.SimulationTrace // may be nil
	metrics  *Metrics
	seq      int // activities seen, for ids of programmatic activities
}

// NewDispatcher wires a dispatcher over shared run state.
func NewDispatcher(vectors *VectorTable, timeline *Timeline, queues *DeviceQueues, splitter *Splitter,
	timing TimingConfig, policy QueuePolicy, st *trace.SimulationTrace, metrics *Metrics) *Dispatcher {
	if policy == "" {
		policy = QueuePolicyDefer
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Dispatcher{
		vectors:  vectors,
		timeline: timeline,
		queues:   queues,
		splitter: splitter,
		timing:   timing,
		policy:   policy,
		trace:    st,
		metrics:  metrics,
	}
}

// Dispatch classifies a and runs its path.
func (d *Dispatcher) Dispatch(a TraceActivity) error {
	d.seq++
	id := d.requestID(a)
	logrus.Infof("[tick %07d] %s %s", d.timeline.Clock(), id, a)

	switch a.Kind {
	case KindCPU:
		return d.cpuPath(id, a)
	case KindSyscall:
		return d.syscallPath(id, a)
	case KindEndIO:
		return d.endIOPath(id, a)
	default:
		return &UnknownActivityKindError{Kind: a.Kind.String(), Line: a.Line}
	}
}

func (d *Dispatcher) requestID(a TraceActivity) string {
	if a.Line > 0 {
		return fmt.Sprintf("req_%d", a.Line)
	}
	return fmt.Sprintf("req_%d", d.seq)
}

func (d *Dispatcher) cpuPath(id string, a TraceActivity) error {
	d.record(id, a, trace.ActionDispatched, "")
	if err := d.timeline.Append(a.Duration, TextCPU); err != nil {
		return err
	}
	d.metrics.CPUBursts++
	d.metrics.CPUTime += a.Duration
	return nil
}

func (d *Dispatcher) syscallPath(id string, a TraceActivity) error {
	entry, err := d.lookup(a)
	if err != nil {
		return err
	}
	if d.policy == QueuePolicyDefer && d.queues.IsBusy(a.Device) {
		d.queues.Defer(a.Device, PendingRequest{ID: id, Activity: a})
		d.metrics.Deferred++
		logrus.Debugf("[tick %07d] device %d busy, %s deferred (backlog %d)",
			d.timeline.Clock(), a.Device, id, d.queues.BacklogLen(a.Device))
		d.record(id, a, trace.ActionDeferred, "device busy")
		return nil
	}
	d.record(id, a, trace.ActionDispatched, "")
	return d.runSyscall(a, entry)
}

// runSyscall expands a SYSCALL and leaves its device busy: the I/O it
// started completes with a later END_IO.
func (d *Dispatcher) runSyscall(a TraceActivity, entry DeviceEntry) error {
	if err := d.trap(a, entry, SyscallBody); err != nil {
		return err
	}
	d.queues.MarkBusy(a.Device)
	d.metrics.Syscalls++
	return nil
}

func (d *Dispatcher) endIOPath(id string, a TraceActivity) error {
	entry, err := d.lookup(a)
	if err != nil {
		return err
	}
	d.record(id, a, trace.ActionDispatched, "")
	if err := d.trap(a, entry, EndIOBody); err != nil {
		return err
	}
	d.metrics.EndIOs++

	next, ok := d.queues.Release(a.Device)
	if !ok {
		return nil
	}
	d.metrics.Resumed++
	logrus.Debugf("[tick %07d] device %d released, resuming %s", d.timeline.Clock(), a.Device, next.ID)
	d.record(next.ID, next.Activity, trace.ActionResumed, "device released by "+id)
	return d.runSyscall(next.Activity, entry)
}

// lookup resolves the trap's device before any phase is emitted, so an
// unknown device aborts the run without a partial interrupt in the log.
func (d *Dispatcher) lookup(a TraceActivity) (DeviceEntry, error) {
	entry, err := d.vectors.Lookup(a.Device)
	if err != nil {
		var ude *UnknownDeviceError
		if errors.As(err, &ude) {
			ude.Line = a.Line
		}
		return DeviceEntry{}, err
	}
	return entry, nil
}

// trap emits the full interrupt sequence around one body.
func (d *Dispatcher) trap(a TraceActivity, entry DeviceEntry, body BodyProfile) error {
	delay := a.Duration
	if a.UseServiceDelay {
		delay = entry.ServiceDelay
	}
	if delay < 0 {
		return &InvalidDurationError{Duration: delay, Text: body.Head}
	}

	begin := d.timeline.Clock()
	prologue := []Phase{
		{Duration: d.timing.Save, Text: TextSave},
		{Duration: d.timing.FindVector, Text: FindVectorText(a.Device, entry.ISRAddress)},
	}
	if d.timing.LoadISRPhase {
		prologue = append(prologue, Phase{Duration: d.timing.GetISR, Text: LoadISRText(entry.ISRAddress)})
	}
	for _, ph := range prologue {
		if err := d.timeline.Append(ph.Duration, ph.Text); err != nil {
			return err
		}
	}

	bodyStart := d.timeline.Clock()
	if err := d.splitter.Expand(d.timeline, delay, body); err != nil {
		return err
	}
	bodyTime := d.timeline.Clock() - bodyStart

	if err := d.timeline.Append(d.timing.Restore, TextRestore); err != nil {
		return err
	}
	if err := d.timeline.Append(d.timing.IRET, TextIRET); err != nil {
		return err
	}

	d.metrics.BodyTime += bodyTime
	d.metrics.OverheadTime += d.timeline.Clock() - begin - bodyTime
	return nil
}

func (d *Dispatcher) record(id string, a TraceActivity, action trace.Action, reason string) {
	if !d.trace.Enabled() {
		return
	}
	dev, depth := -1, 0
	if a.IsTrap() {
		dev = a.Device
		depth = d.queues.BacklogLen(a.Device)
	}
	d.trace.RecordDispatch(trace.DispatchRecord{
		RequestID:    id,
		Line:         a.Line,
		Kind:         a.Kind.String(),
		Device:       dev,
		Clock:        d.timeline.Clock(),
		Action:       action,
		BacklogDepth: depth,
		Reason:       reason,
	})
}

// Drain records every request still parked in a backlog as pending.
func (d *Dispatcher) Drain() []PendingRequest {
	pending := d.queues.Pending()
	for _, p := range pending {
		logrus.Warnf("[tick %07d] %s still waiting on device %d at end of trace", d.timeline.Clock(), p.ID, p.Activity.Device)
		d.record(p.ID, p.Activity, trace.ActionPending, "trace ended")
	}
	d.metrics.Pending = len(pending)
	return pending
}
