package testutil

// ScriptedRand replays a fixed sequence of draws, cycling when exhausted.
// Each draw is reduced modulo n, so a script of zeros always picks the first
// label and the smallest split point. Calls records every n requested.
type ScriptedRand struct {
	Script []int
	Calls  []int
	pos    int
}

// NewScriptedRand returns a ScriptedRand over script.
func NewScriptedRand(script ...int) *ScriptedRand {
	return &ScriptedRand{Script: script}
}

// Intn returns the next scripted value modulo n. Panics on n <= 0 like math/rand.
func (r *ScriptedRand) Intn(n int) int {
	if n <= 0 {
		panic("ScriptedRand.Intn: invalid argument to Intn")
	}
	r.Calls = append(r.Calls, n)
	if len(r.Script) == 0 {
		return 0
	}
	v := r.Script[r.pos%len(r.Script)]
	r.pos++
	return v % n
}
