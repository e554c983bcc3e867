// Package lib is not imported by any program, so its init never runs.
package lib

var registered []string

func init() {
	helper()
}

func helper() {
	registered = append(registered, "lib")
}
