// Package modulea toggles a flag when initialized. main never calls it.
package modulea

// Smth is the counter threshold.
const Smth = 10

var changeme bool

// Init negates the flag.
func Init() {
	someValue := uint32(1)
	changeme = !changeme

	if someValue < Smth {
		someValue++
	}
	_ = someValue
}
