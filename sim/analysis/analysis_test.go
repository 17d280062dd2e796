package analysis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/isr-sim/sim"
)

// twoInterrupts is a SYSCALL with a three-phase body followed by a
// single-phase END_IO, each preceded by a CPU burst.
// CPU 90, overhead 62, body 140, total 292.
var twoInterrupts = []sim.LogLine{
	{Start: 0, Duration: 50, Text: "CPU execution"},
	{Start: 50, Duration: 10, Text: "save context"},
	{Start: 60, Duration: 10, Text: "find vector 0: ISR at 0X01E3"},
	{Start: 70, Duration: 20, Text: "call device driver"},
	{Start: 90, Duration: 60, Text: "validate parameters"},
	{Start: 150, Duration: 20, Text: "update PCB"},
	{Start: 170, Duration: 10, Text: "restore context"},
	{Start: 180, Duration: 1, Text: "return from interrupt"},
	{Start: 181, Duration: 40, Text: "CPU execution"},
	{Start: 221, Duration: 10, Text: "save context"},
	{Start: 231, Duration: 10, Text: "find vector 1: ISR at 0X029C"},
	{Start: 241, Duration: 40, Text: "acknowledge device"},
	{Start: 281, Duration: 10, Text: "restore context"},
	{Start: 291, Duration: 1, Text: "return from interrupt"},
}

func TestClassify(t *testing.T) {
	tests := []struct {
		text      string
		cat       Category
		component string
	}{
		{"CPU execution", CategoryCPU, ""},
		{"CPU burst", CategoryCPU, ""},
		{"save context", CategoryOverhead, "save_context"},
		{"context saved", CategoryOverhead, "save_context"},
		{"find vector 3: ISR at 0X0100", CategoryOverhead, "find_vector"},
		{"load ISR address 0X0100 into the PC", CategoryOverhead, "load_isr"},
		{"switch to kernel mode", CategoryOverhead, "mode_switch"},
		{"restore context", CategoryOverhead, "restore_context"},
		{"return from interrupt", CategoryOverhead, "iret"},
		{"IRET", CategoryOverhead, "iret"},
		{"run the ISR", CategoryBody, ""},
		{"update PCB", CategoryBody, ""},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			cat, comp := Classify(tc.text)
			assert.Equal(t, tc.cat, cat)
			assert.Equal(t, tc.component, comp)
		})
	}
}

func TestSummarize_Breakdown(t *testing.T) {
	s := Summarize(twoInterrupts)

	assert.Equal(t, Totals{Total: 292, CPU: 90, Overhead: 62, Body: 140}, s.Totals)
	assert.Equal(t, 14, s.Lines)
	assert.Equal(t, 2, s.Interrupts)
	assert.Equal(t, []ComponentTime{
		{Component: "find_vector", Time: 20},
		{Component: "iret", Time: 2},
		{Component: "restore_context", Time: 20},
		{Component: "save_context", Time: 20},
	}, s.Breakdown)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, Totals{}, s.Totals)
	assert.Zero(t, s.Interrupts)
	assert.Empty(t, s.Breakdown)
}

func TestSummarize_CategoriesSumToTotal(t *testing.T) {
	s := Summarize(twoInterrupts)
	assert.Equal(t, s.Total, s.CPU+s.Overhead+s.Body)
}

func TestWhatIfSave(t *testing.T) {
	// GIVEN two interrupts with 10-tick saves
	// WHEN each save is re-costed at 4 ticks
	got := WhatIfSave(twoInterrupts, 4)

	// THEN only overhead shrinks, by 2*6 ticks
	assert.Equal(t, Totals{Total: 280, CPU: 90, Overhead: 50, Body: 140}, got)

	// AND the input log is untouched
	assert.Equal(t, int64(10), twoInterrupts[1].Duration)
}

func TestWhatIfScaleBody(t *testing.T) {
	got := WhatIfScaleBody(twoInterrupts, 0.5)
	assert.Equal(t, Totals{Total: 222, CPU: 90, Overhead: 62, Body: 70}, got)
}

func TestWhatIfScaleBody_KeepsOneTickPerPhase(t *testing.T) {
	got := WhatIfScaleBody(twoInterrupts, 0.01)
	assert.Equal(t, int64(4), got.Body, "four body phases, one tick each")
}

func TestWhatIfTargetBody_ExactProportional(t *testing.T) {
	// GIVEN bodies of 100 and 40 ticks
	// WHEN each interrupt body is retargeted to 40 ticks
	got, err := WhatIfTargetBody(twoInterrupts, 40)
	require.NoError(t, err)

	// THEN every interrupt body sums to exactly the target
	assert.Equal(t, int64(80), got.Body)
	assert.Equal(t, int64(90+62+80), got.Total)
}

func TestWhatIfTargetBody_AbsorbsRoundingError(t *testing.T) {
	// 20/60/20 scaled by 0.07 rounds to 1/4/1; one tick is added back.
	got, err := WhatIfTargetBody(twoInterrupts, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(14), got.Body)
}

func TestWhatIfTargetBody_TooSmall(t *testing.T) {
	_, err := WhatIfTargetBody(twoInterrupts, 2)
	assert.ErrorIs(t, err, ErrTargetTooSmall)
}

func TestWhatIfTargetBody_ZeroBodySplitsEvenly(t *testing.T) {
	lines := []sim.LogLine{
		{Start: 0, Duration: 10, Text: "save context"},
		{Start: 10, Duration: 0, Text: "call device driver"},
		{Start: 10, Duration: 0, Text: "update PCB"},
		{Start: 10, Duration: 10, Text: "restore context"},
		{Start: 20, Duration: 1, Text: "return from interrupt"},
	}
	got, err := WhatIfTargetBody(lines, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Body)
	assert.Equal(t, int64(26), got.Total)
}

func TestWhatIfTargetBody_IgnoresBodyOutsideInterrupts(t *testing.T) {
	lines := append([]sim.LogLine{{Start: 0, Duration: 7, Text: "stray text"}}, twoInterrupts...)
	got, err := WhatIfTargetBody(lines, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(7+80), got.Body)
}

func TestScenarios_Order(t *testing.T) {
	scale := 0.5
	target := int64(40)
	rows, err := Scenarios("a.txt", twoInterrupts, Options{
		Saves:      []int64{4, 6},
		ScaleBody:  &scale,
		TargetBody: &target,
	})
	require.NoError(t, err)

	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
		assert.Equal(t, "a.txt", r.Source)
	}
	assert.Equal(t, []string{"SAVE=4", "SAVE=6", "scale_body=0.5", "target_body=40", "baseline"}, names)
	assert.Equal(t, int64(292), rows[len(rows)-1].Total)
}

func TestScenarios_BaselineOnly(t *testing.T) {
	rows, err := Scenarios("a.txt", twoInterrupts, Options{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "baseline", rows[0].Name)
}

func TestScenarios_TargetError(t *testing.T) {
	target := int64(1)
	_, err := Scenarios("a.txt", twoInterrupts, Options{TargetBody: &target})
	assert.ErrorIs(t, err, ErrTargetTooSmall)
}

func TestWriteCSV(t *testing.T) {
	rows, err := Scenarios("a.txt", twoInterrupts, Options{Saves: []int64{4}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))
	assert.Equal(t,
		"file,scenario,total,cpu,overhead,body\n"+
			"a.txt,SAVE=4,280,90,50,140\n"+
			"a.txt,baseline,292,90,62,140\n",
		buf.String())
}

func TestWriteSummary_GroupsThousands(t *testing.T) {
	s := &Summary{Totals: Totals{Total: 1234567, CPU: 1234567}}

	var buf bytes.Buffer
	WriteSummary(&buf, "big.txt", s)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "=== big.txt ===\n"))
	assert.Contains(t, out, "1,234,567")
}

func TestWriteScenarios_ListsEveryRow(t *testing.T) {
	rows, err := Scenarios("a.txt", twoInterrupts, Options{Saves: []int64{4}})
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteScenarios(&buf, rows)

	out := buf.String()
	assert.Contains(t, out, "SAVE=4")
	assert.Contains(t, out, "baseline")
	assert.Equal(t, 4, strings.Count(out, "\n"), "title, header and two rows")
}
