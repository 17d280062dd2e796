package sim

// Middle-phase label pools.
var (
	SyscallPool = []string{
		"validate parameters",
		"copy user buffer",
		"set up DMA",
		"enqueue request",
		"update file table",
	}
	EndIOPool = []string{
		"read status register",
		"copy data to kernel buffer",
		"clear device flag",
		"record completion",
	}
)

// BodyProfile names the phases of one kind of ISR body.
type BodyProfile struct {
	Head string   // first phase, e.g. "call device driver"
	Tail string   // last phase, e.g. "update PCB"
	Pool []string // labels for the middle phase(s)
}

var (
	// SyscallBody is the body of a SYSCALL trap: the driver is called and the PCB updated.
	SyscallBody = BodyProfile{Head: "call device driver", Tail: "update PCB", Pool: SyscallPool}
	// EndIOBody is the body of an END_IO interrupt.
	EndIOBody = BodyProfile{Head: "acknowledge device", Tail: "unblock waiting process", Pool: EndIOPool}
)

const (
	longBodyThreshold = 80 // bodies at least this long get two middle phases
	edgeSharePct      = 15 // head and tail each take this percentage of the body
)

// Phase is one planned sub-activity of a body.
type Phase struct {
	Duration int64
	Text     string
}

// Splitter decomposes an ISR body into a head phase, one or two middle
// phases and a tail phase whose durations sum to the body length.
type Splitter struct {
	labels Rand
	split  Rand
}

// NewSplitter builds a Splitter. labels picks middle-phase labels and split
// picks the boundary between two middle phases.
func NewSplitter(labels, split Rand) *Splitter {
	if labels == nil || split == nil {
		panic("NewSplitter: rng sources must not be nil")
	}
	return &Splitter{labels: labels, split: split}
}

// Plan returns the phases for a body of the given length.
// A non-positive delay has no phases. The durations always sum to delay.
func (s *Splitter) Plan(delay int64, p BodyProfile) []Phase {
	if delay <= 0 {
		return nil
	}

	k := int64(3)
	if delay >= longBodyThreshold {
		k = 4
	}
	k = min(k, delay)

	start := max(1, delay*edgeSharePct/100)
	end := max(1, delay*edgeSharePct/100)
	if start+end > delay {
		start = max(1, delay-1)
		end = delay - start
	}

	middle := max(1, k-2)
	rest := delay - start - end
	if middle == 2 && rest < 2 {
		// The split point would be drawn from an empty range.
		middle = 1
	}

	phases := make([]Phase, 0, 4)
	phases = append(phases, Phase{Duration: start, Text: p.Head})
	if middle == 1 {
		phases = append(phases, Phase{Duration: rest, Text: s.pickLabel(p.Pool)})
	} else {
		a := 1 + int64(s.split.Intn(int(rest-1)))
		phases = append(phases,
			Phase{Duration: a, Text: s.pickLabel(p.Pool)},
			Phase{Duration: rest - a, Text: s.pickLabel(p.Pool)},
		)
	}
	phases = append(phases, Phase{Duration: end, Text: p.Tail})
	return phases
}

// Expand plans a body and appends its phases to tl in order.
func (s *Splitter) Expand(tl *Timeline, delay int64, p BodyProfile) error {
	for _, ph := range s.Plan(delay, p) {
		if err := tl.Append(ph.Duration, ph.Text); err != nil {
			return err
		}
	}
	return nil
}

func (s *Splitter) pickLabel(pool []string) string {
	if len(pool) == 0 {
		return "ISR body"
	}
	return pool[s.labels.Intn(len(pool))]
}
