// Implements the per-device backlog of traps waiting for a busy device.
// Requests are enqueued when their device is busy and dequeued when it frees.

package sim

import (
	"fmt"
	"strings"
)

// PendingRequest is a trap parked in a device backlog.
type PendingRequest struct {
	ID       string        // stable request id, "req_<line>" or "req_<seq>"
	Activity TraceActivity // the trap as it appeared in the trace
}

func (p PendingRequest) String() string {
	return p.ID
}

// Backlog is a FIFO queue of requests waiting for one device.
type Backlog struct {
	queue []PendingRequest
}

// Enqueue adds a request to the back of the backlog.
func (b *Backlog) Enqueue(r PendingRequest) {
	b.queue = append(b.queue, r)
}

func (b *Backlog) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, val := range b.queue {
		sb.WriteString(val.String())
		if i < len(b.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of waiting requests.
func (b *Backlog) Len() int {
	return len(b.queue)
}

// Peek returns the head of the backlog without removing it.
func (b *Backlog) Peek() (PendingRequest, bool) {
	if len(b.queue) == 0 {
		return PendingRequest{}, false
	}
	return b.queue[0], true
}

// Dequeue removes and returns the head of the backlog.
func (b *Backlog) Dequeue() (PendingRequest, bool) {
	if len(b.queue) == 0 {
		return PendingRequest{}, false
	}
	head := b.queue[0]
	b.queue = b.queue[1:]
	return head, true
}

// Items returns the backlog contents in service order.
// Callers MUST NOT append to or reslice it.
func (b *Backlog) Items() []PendingRequest {
	return b.queue
}

// DeviceState is the queue state of one device.
type DeviceState struct {
	Busy    bool
	Backlog Backlog
}

// DeviceQueues tracks busy flags and backlogs for every configured device.
// State is created empty at the start of a run and lives until its end.
type DeviceQueues struct {
	devices []DeviceState
}

// NewDeviceQueues creates idle, empty state for n devices.
func NewDeviceQueues(n int) *DeviceQueues {
	return &DeviceQueues{devices: make([]DeviceState, n)}
}

func (dq *DeviceQueues) state(device int) *DeviceState {
	if device < 0 || device >= len(dq.devices) {
		panic(fmt.Sprintf("DeviceQueues: device %d out of range [0,%d)", device, len(dq.devices)))
	}
	return &dq.devices[device]
}

// IsBusy reports whether device has an I/O in flight.
func (dq *DeviceQueues) IsBusy(device int) bool {
	return dq.state(device).Busy
}

// MarkBusy records that device started servicing a request.
func (dq *DeviceQueues) MarkBusy(device int) {
	dq.state(device).Busy = true
}

// Release marks device idle and returns the next backlog entry, if any.
// The returned request is removed from the backlog; the caller runs it.
func (dq *DeviceQueues) Release(device int) (PendingRequest, bool) {
	st := dq.state(device)
	st.Busy = false
	return st.Backlog.Dequeue()
}

// Defer parks r in device's backlog.
func (dq *DeviceQueues) Defer(device int, r PendingRequest) {
	dq.state(device).Backlog.Enqueue(r)
}

// BacklogLen returns the number of requests waiting on device.
func (dq *DeviceQueues) BacklogLen(device int) int {
	return dq.state(device).Backlog.Len()
}

// Pending returns every request still waiting, ordered by device then arrival.
func (dq *DeviceQueues) Pending() []PendingRequest {
	var out []PendingRequest
	for i := range dq.devices {
		out = append(out, dq.devices[i].Backlog.Items()...)
	}
	return out
}

// Len returns the number of tracked devices.
func (dq *DeviceQueues) Len() int {
	return len(dq.devices)
}
