// Package moduleb is a collaborator initialized by main.
package moduleb

// Init does nothing.
func Init() {}
