// Package modulec is a collaborator initialized by main.
package modulec

// Init does nothing.
func Init() {}
