// Package moduleunused is a placeholder module of the demo tree.
//
// It has no call site. Its presence must not change what cmd/demo does.
package moduleunused

// Smth is declared for parity with the other demo modules and never read.
const Smth = 0x0

// Init does nothing.
func Init() {}
