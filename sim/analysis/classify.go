// Package analysis breaks an execution log down into CPU, interrupt
// overhead and ISR body time, and re-costs it under what-if scenarios.
package analysis

import "strings"

// Category is the coarse class of an execution log line.
type Category string

const (
	CategoryCPU      Category = "cpu"
	CategoryOverhead Category = "overhead"
	CategoryBody     Category = "body"
)

// overheadComponents maps a phase-text prefix to its overhead component.
// The second group keeps logs of the older kernel-mode wording readable.
var overheadComponents = []struct {
	prefix    string
	component string
}{
	{"save context", "save_context"},
	{"find vector", "find_vector"},
	{"load ISR address", "load_isr"},
	{"restore context", "restore_context"},
	{"return from interrupt", "iret"},

	{"switch to kernel mode", "mode_switch"},
	{"context saved", "save_context"},
	{"load address", "load_isr"},
	{"IRET", "iret"},
	{"context restored", "restore_context"},
}

var cpuTexts = map[string]bool{
	"CPU execution": true,
	"CPU burst":     true,
}

// Classify returns the category of a phase text and, for overhead, its component.
func Classify(text string) (Category, string) {
	if cpuTexts[text] {
		return CategoryCPU, ""
	}
	for _, oc := range overheadComponents {
		if strings.HasPrefix(text, oc.prefix) {
			return CategoryOverhead, oc.component
		}
	}
	return CategoryBody, ""
}

func isSave(text string) bool {
	_, comp := Classify(text)
	return comp == "save_context"
}

func isInterruptStart(text string) bool {
	return isSave(text) || strings.HasPrefix(text, "switch to kernel mode")
}

func isInterruptEnd(text string) bool {
	_, comp := Classify(text)
	return comp == "iret"
}
