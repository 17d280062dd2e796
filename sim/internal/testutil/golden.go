// Package testutil provides shared test infrastructure for the interrupt simulator:
// golden execution-log assertions and scripted randomness.
package testutil

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGolden compares data against testdata/golden/{name}.golden of the
// calling package.
//
// To regenerate golden files, run:
//
//	go test ./sim/... -update
func AssertGolden(t *testing.T, name string, data []byte) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
