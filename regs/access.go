package regs

import (
	"fmt"
	"sync"

	"github.com/sarchlab/lmdma/sim"
)

// Hook positions invoked by a File on every register access.
var (
	HookPosRead  = &sim.HookPos{Name: "RegRead"}
	HookPosWrite = &sim.HookPos{Name: "RegWrite"}
)

// AccessKind tells reads from writes.
type AccessKind int

// Access kinds.
const (
	AccessRead AccessKind = iota
	AccessWrite
)

// An Access is a single register read or write observed on a File.
type Access struct {
	Kind    AccessKind
	Reg     Name
	Value   uint32
	Ordered bool
}

func (a Access) String() string {
	switch {
	case a.Kind == AccessRead:
		return fmt.Sprintf("read  %-11s -> 0x%08x", a.Reg, a.Value)
	case a.Ordered:
		return fmt.Sprintf("write %-11s <- 0x%08x (ordered)", a.Reg, a.Value)
	default:
		return fmt.Sprintf("write %-11s <- 0x%08x", a.Reg, a.Value)
	}
}

// A Recorder is a hook that keeps every access it sees.
type Recorder struct {
	mu       sync.Mutex
	accesses []Access
}

// NewRecorder creates a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Func records the access carried by the hook context.
func (r *Recorder) Func(ctx sim.HookCtx) {
	access, ok := ctx.Item.(Access)
	if !ok {
		return
	}

	r.mu.Lock()
	r.accesses = append(r.accesses, access)
	r.mu.Unlock()
}

// Accesses returns a copy of all the recorded accesses.
func (r *Recorder) Accesses() []Access {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Access, len(r.accesses))
	copy(out, r.accesses)

	return out
}

// Writes returns only the recorded writes, in order.
func (r *Recorder) Writes() []Access {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Access
	for _, a := range r.accesses {
		if a.Kind == AccessWrite {
			out = append(out, a)
		}
	}

	return out
}

// Reset forgets all the recorded accesses.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.accesses = nil
	r.mu.Unlock()
}
