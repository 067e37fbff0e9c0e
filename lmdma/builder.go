package lmdma

import (
	"github.com/sarchlab/lmdma/intc"
	"github.com/sarchlab/lmdma/regs"
)

// A Builder can build LMDMA engines.
type Builder struct {
	port regs.Port
	ic   intc.Controller
	line intc.Line
}

// MakeBuilder creates a new Builder with the default interrupt line.
func MakeBuilder() Builder {
	return Builder{
		line: intc.LineLDMA,
	}
}

// WithRegisterPort sets the port the engine reaches its registers through.
func (b Builder) WithRegisterPort(port regs.Port) Builder {
	b.port = port
	return b
}

// WithInterruptController sets the interrupt controller of the core.
func (b Builder) WithInterruptController(ic intc.Controller) Builder {
	b.ic = ic
	return b
}

// WithLine sets the interrupt line of the engine.
func (b Builder) WithLine(line intc.Line) Builder {
	b.line = line
	return b
}

// Build creates the engine and installs its completion handler on the
// interrupt line. The line stays masked until Initialize.
func (b Builder) Build(name string) *Engine {
	if b.port == nil {
		panic("lmdma: register port is required")
	}

	if b.ic == nil {
		panic("lmdma: interrupt controller is required")
	}

	e := &Engine{
		name: name,
		port: b.port,
		ic:   b.ic,
		line: b.line,
	}

	b.ic.Install(b.line, e.HandleCompletion)

	return e
}
