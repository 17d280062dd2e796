package sim

import "fmt"

// DeviceEntry is one row of the interrupt vector table.
type DeviceEntry struct {
	ISRAddress   string // entry address of the device's ISR, e.g. "0X01E3"
	ServiceDelay int64  // default service time of the device (ticks)
}

// VectorTable maps a device id (its index) to its DeviceEntry.
// Read-only after construction.
type VectorTable struct {
	entries []DeviceEntry
}

// NewVectorTable builds a table from entries ordered by device id.
// The slice is copied so later mutation by the caller cannot leak in.
func NewVectorTable(entries []DeviceEntry) (*VectorTable, error) {
	for i, e := range entries {
		if e.ServiceDelay < 0 {
			return nil, fmt.Errorf("device %d: negative service delay %d", i, e.ServiceDelay)
		}
		if e.ISRAddress == "" {
			return nil, fmt.Errorf("device %d: empty ISR address", i)
		}
	}
	cp := make([]DeviceEntry, len(entries))
	copy(cp, entries)
	return &VectorTable{entries: cp}, nil
}

// Lookup returns the entry for device, or *UnknownDeviceError when the id is out of range.
func (vt *VectorTable) Lookup(device int) (DeviceEntry, error) {
	if device < 0 || device >= len(vt.entries) {
		return DeviceEntry{}, &UnknownDeviceError{Device: device, Count: len(vt.entries)}
	}
	return vt.entries[device], nil
}

// Len returns the number of configured devices.
func (vt *VectorTable) Len() int {
	return len(vt.entries)
}
