// Package project implements the demo program's entry point logic.
package project

import "log/slog"

// Initializer is an opaque collaborator module invoked on start.
type Initializer interface {
	Init()
}

// InitFunc adapts a plain function to an Initializer.
type InitFunc func()

// Init calls f.
func (f InitFunc) Init() { f() }

type nop struct {
	name   string
	logger *slog.Logger
}

func (n nop) Init() {
	n.logger.Debug("collaborator initialized", "module", n.name)
}

// Nop returns a collaborator that only logs its name at debug level.
func Nop(name string, logger *slog.Logger) Initializer {
	if logger == nil {
		logger = slog.Default()
	}
	return nop{name: name, logger: logger}
}

// Buffer is the program's fixed-size byte sequence.
type Buffer [3]uint8

// initial is the literal the buffer starts from.
var initial = Buffer{1, 2, 3}

// Program is the demo entry point with its collaborators and buffer.
type Program struct {
	moduleB Initializer
	moduleC Initializer
	data    Buffer
}

// New creates a Program calling moduleB and moduleC on Run.
func New(moduleB, moduleC Initializer) *Program {
	return &Program{
		moduleB: moduleB,
		moduleC: moduleC,
		data:    initial,
	}
}

// Run executes the entry point. Arguments are ignored.
func (p *Program) Run(_ []string) Buffer {
	p.moduleB.Init()
	p.moduleC.Init()

	p.data[0] = 123 //nolint:mnd
	p.data[0] = 2

	return p.data
}

// Data returns the current buffer.
func (p *Program) Data() Buffer {
	return p.data
}
