package workload

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/inference-sim/isr-sim/sim"
)

// ReadVectorTable reads ISR addresses, one per line; line i is device i.
// Blank lines and '#' comments are skipped.
func ReadVectorTable(r io.Reader) ([]string, error) {
	var addrs []string
	err := eachTableLine(r, func(lineNo int, field string) error {
		addrs = append(addrs, field)
		return nil
	})
	return addrs, err
}

// ReadDeviceTable reads device service delays, one per line; line i is device i.
func ReadDeviceTable(r io.Reader) ([]int64, error) {
	var delays []int64
	err := eachTableLine(r, func(lineNo int, field string) error {
		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil || v < 0 {
			return fmt.Errorf("device table line %d: %q is not a non-negative integer", lineNo, field)
		}
		delays = append(delays, v)
		return nil
	})
	return delays, err
}

func eachTableLine(r io.Reader, fn func(lineNo int, field string) error) error {
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := fn(lineNo, line); err != nil {
			return err
		}
	}
	return sc.Err()
}

// BuildVectorTable pairs addresses and delays by index.
func BuildVectorTable(addrs []string, delays []int64) (*sim.VectorTable, error) {
	if len(addrs) != len(delays) {
		return nil, fmt.Errorf("vector table has %d entries but device table has %d", len(addrs), len(delays))
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no devices configured")
	}
	entries := make([]sim.DeviceEntry, len(addrs))
	for i := range addrs {
		entries[i] = sim.DeviceEntry{ISRAddress: addrs[i], ServiceDelay: delays[i]}
	}
	return sim.NewVectorTable(entries)
}

// LoadTableFiles reads a vector table file and a device table file into a VectorTable.
func LoadTableFiles(vectorPath, devicePath string) (*sim.VectorTable, error) {
	vf, err := os.Open(vectorPath)
	if err != nil {
		return nil, fmt.Errorf("opening vector table: %w", err)
	}
	defer func() { _ = vf.Close() }()
	addrs, err := ReadVectorTable(vf)
	if err != nil {
		return nil, fmt.Errorf("reading vector table: %w", err)
	}

	df, err := os.Open(devicePath)
	if err != nil {
		return nil, fmt.Errorf("opening device table: %w", err)
	}
	defer func() { _ = df.Close() }()
	delays, err := ReadDeviceTable(df)
	if err != nil {
		return nil, fmt.Errorf("reading device table: %w", err)
	}
	return BuildVectorTable(addrs, delays)
}
