// Package lib declares functions but no program uses them.
package lib

// Init does nothing.
func Init() {}
