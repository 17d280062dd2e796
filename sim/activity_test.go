package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseActivityKind(t *testing.T) {
	tests := []struct {
		in   string
		want ActivityKind
		ok   bool
	}{
		{"CPU", KindCPU, true},
		{"cpu", KindCPU, true},
		{" SYSCALL ", KindSyscall, true},
		{"END_IO", KindEndIO, true},
		{"ENDIO", KindEndIO, true},
		{"endio", KindEndIO, true},
		{"IRQ", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseActivityKind(tt.in)
			if !tt.ok {
				var uke *UnknownActivityKindError
				assert.True(t, errors.As(err, &uke))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTraceActivity_String(t *testing.T) {
	assert.Equal(t, "CPU(50)", TraceActivity{Kind: KindCPU, Duration: 50}.String())
	assert.Equal(t, "SYSCALL(dev=2, 120)", TraceActivity{Kind: KindSyscall, Device: 2, Duration: 120}.String())
	assert.Equal(t, "END_IO(dev=1)", TraceActivity{Kind: KindEndIO, Device: 1, UseServiceDelay: true}.String())
	assert.Equal(t, "ActivityKind(7)", ActivityKind(7).String())
}
