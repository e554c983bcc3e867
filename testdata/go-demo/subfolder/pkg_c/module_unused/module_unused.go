// Package moduleunused has no callers.
package moduleunused

// Smth is never read.
const Smth = 0x0

// Init does nothing.
func Init() {}
