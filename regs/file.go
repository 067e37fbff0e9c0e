package regs

import (
	"sync"

	"github.com/sarchlab/lmdma/sim"
)

// A Register is a backing store with side effects. Simulated hardware binds
// Registers into a File to react to the driver's accesses.
type Register interface {
	Read() uint32
	Write(value uint32, ordered bool)
}

// File is an in-memory register file. Registers without a binding behave as
// plain storage. Every access is reported to the hooks at HookPosRead and
// HookPosWrite.
type File struct {
	sim.HookableBase

	name string

	mu       sync.Mutex
	values   map[Name]uint32
	bindings map[Name]Register
}

// NewFile creates a File where all registers read as zero.
func NewFile(name string) *File {
	return &File{
		name:     name,
		values:   make(map[Name]uint32),
		bindings: make(map[Name]Register),
	}
}

// Name returns the name of the register file.
func (f *File) Name() string {
	return f.name
}

// Bind routes all accesses of a register to r.
func (f *File) Bind(name Name, r Register) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, found := f.bindings[name]; found {
		panic("register " + name.String() + " already bound")
	}

	f.bindings[name] = r
}

// Set stores a value without side effects and without invoking hooks. It is
// meant for reset values and test setup. Bound registers cannot be Set.
func (f *File) Set(name Name, value uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, found := f.bindings[name]; found {
		panic("cannot set bound register " + name.String())
	}

	f.values[name] = value
}

// Peek returns the current value without invoking hooks.
func (f *File) Peek(name Name) uint32 {
	r, value := f.lookup(name)
	if r != nil {
		return r.Read()
	}

	return value
}

// Read returns the value of a register.
func (f *File) Read(name Name) uint32 {
	value := f.Peek(name)

	f.InvokeHook(sim.HookCtx{
		Domain: f,
		Pos:    HookPosRead,
		Item:   Access{Kind: AccessRead, Reg: name, Value: value},
	})

	return value
}

// Write stores a value into a register.
func (f *File) Write(name Name, value uint32) {
	f.write(name, value, false)
}

// WriteOrdered stores a value into a register. In a File every access is
// already sequential, so the ordering only shows in the reported Access.
func (f *File) WriteOrdered(name Name, value uint32) {
	f.write(name, value, true)
}

func (f *File) write(name Name, value uint32, ordered bool) {
	f.InvokeHook(sim.HookCtx{
		Domain: f,
		Pos:    HookPosWrite,
		Item: Access{
			Kind:    AccessWrite,
			Reg:     name,
			Value:   value,
			Ordered: ordered,
		},
	})

	f.mu.Lock()
	r, found := f.bindings[name]
	if !found {
		f.values[name] = value
	}
	f.mu.Unlock()

	if found {
		r.Write(value, ordered)
	}
}

func (f *File) lookup(name Name) (Register, uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r, found := f.bindings[name]; found {
		return r, 0
	}

	return nil, f.values[name]
}

// Snapshot returns the current value of every register, keyed by register
// name.
func (f *File) Snapshot() map[string]uint32 {
	snapshot := make(map[string]uint32)
	for _, n := range All() {
		snapshot[n.String()] = f.Peek(n)
	}

	return snapshot
}
