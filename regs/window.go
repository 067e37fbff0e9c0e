package regs

import (
	"fmt"
	"sync/atomic"
)

// A Layout maps registers to word offsets inside a mapped window.
type Layout map[Name]int

// Window is a Port over a memory-mapped register block, such as a region
// mapped from /dev/mem. Every access goes through sync/atomic so that the
// compiler neither caches nor drops it.
type Window struct {
	words  []uint32
	layout Layout
}

// NewWindow creates a Window over words. Every offset of the layout must fall
// inside words.
func NewWindow(words []uint32, layout Layout) (*Window, error) {
	for name, offset := range layout {
		if offset < 0 || offset >= len(words) {
			return nil, fmt.Errorf(
				"register %s at word %d is outside a window of %d words",
				name, offset, len(words))
		}
	}

	return &Window{words: words, layout: layout}, nil
}

func (w *Window) word(name Name) *uint32 {
	offset, found := w.layout[name]
	if !found {
		panic("register " + name.String() + " is not mapped")
	}

	return &w.words[offset]
}

// Read loads a register.
func (w *Window) Read(name Name) uint32 {
	return atomic.LoadUint32(w.word(name))
}

// Write stores into a register. The store is not promised to reach the
// device before later accesses.
func (w *Window) Write(name Name, value uint32) {
	atomic.StoreUint32(w.word(name), value)
}

// WriteOrdered stores into a register and lands before any later access.
func (w *Window) WriteOrdered(name Name, value uint32) {
	atomic.StoreUint32(w.word(name), value)
}
