// Package modulea is the demo module whose initializer toggles a flag.
//
// Nothing in the demo program calls it; reachability tooling is expected to
// report Module.Init as unreachable from cmd/demo.
package modulea

// Smth is the threshold the initializer compares its counter against.
const Smth = 10

// Module owns the flag toggled by Init.
type Module struct {
	changeme bool
}

// New returns a Module with the flag cleared.
func New() *Module {
	return &Module{}
}

// Init negates the flag and advances a local counter that is never read.
func (m *Module) Init() {
	m.changeme = !m.changeme

	someValue := uint32(1)
	_ = step(someValue)
}

// Flag reports the current state of the flag.
func (m *Module) Flag() bool {
	return m.changeme
}

// step increments v once when it is below Smth.
func step(v uint32) uint32 {
	if v < Smth {
		v++
	}
	return v
}
