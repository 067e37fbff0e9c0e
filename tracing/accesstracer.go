package tracing

import (
	"github.com/sarchlab/lmdma/regs"
	"github.com/sarchlab/lmdma/sim"
)

// An AccessEntry is one register access as stored by a TraceWriter.
type AccessEntry struct {
	Time     float64
	Location string
	Kind     string
	Register string
	Value    uint32
	Ordered  bool
}

// AccessTracer is a hook for a register file that writes every access to a
// TraceWriter.
type AccessTracer struct {
	timeTeller sim.TimeTeller
	writer     TraceWriter
}

// NewAccessTracer creates an AccessTracer.
func NewAccessTracer(
	timeTeller sim.TimeTeller,
	writer TraceWriter,
) *AccessTracer {
	return &AccessTracer{timeTeller: timeTeller, writer: writer}
}

// Func writes the access carried by the hook context.
func (t *AccessTracer) Func(ctx sim.HookCtx) {
	access, ok := ctx.Item.(regs.Access)
	if !ok {
		return
	}

	entry := AccessEntry{
		Time:     float64(t.timeTeller.CurrentTime()),
		Kind:     "write",
		Register: access.Reg.String(),
		Value:    access.Value,
		Ordered:  access.Ordered,
	}

	if access.Kind == regs.AccessRead {
		entry.Kind = "read"
	}

	if named, ok := ctx.Domain.(sim.Named); ok {
		entry.Location = named.Name()
	}

	t.writer.WriteAccess(entry)
}
