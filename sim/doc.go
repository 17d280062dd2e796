// Package sim provides the discrete-event engine of the interrupt simulator.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - activity.go: the closed set of trace activity kinds (CPU, SYSCALL, END_IO)
//   - dispatcher.go: the per-activity state machine that expands a trap into
//     save context, find vector, ISR body, restore context and IRET phases
//   - splitter.go: how an ISR body is cut into head, middle and tail phases
//   - simulator.go: the sequential driver loop
//
// # Time
//
// The Timeline owns the only clock. Every phase is appended at the current
// clock and advances it by exactly its duration, so the execution log is
// contiguous: line i+1 starts where line i ends, and the first line starts at 0.
//
// # Randomness
//
// Label picks and split points are the only non-deterministic choices. They
// come from a PartitionedRNG seeded by SimConfig.Seed, one stream per
// subsystem, so a fixed seed reproduces a run exactly.
//
// # Sub-packages
//   - sim/workload/: trace and vector/device table parsing, synthetic traces
//   - sim/execlog/: execution log rendering and parsing
//   - sim/analysis/: post-run breakdown and what-if scenarios
//   - sim/trace/: dispatch decision records (deferred, resumed, pending)
//   - sim/store/: SQLite persistence of runs
package sim
