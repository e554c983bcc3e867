// Package linked is blank-imported by the program, so its init runs.
package linked

var registered []string

func init() {
	register()
}

func register() {
	registered = append(registered, "linked")
}
