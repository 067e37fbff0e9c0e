package intc

import (
	"log"
	"sort"
	"sync"
)

// Sim is a simulated interrupt controller. A raised line is dispatched to
// its ISR when the line is enabled and global interrupts are on. Otherwise
// the line stays pending until both conditions hold.
type Sim struct {
	mu         sync.Mutex
	isrs       map[Line]ISR
	enabled    map[Line]bool
	priorities map[Line]Priority
	pending    map[Line]bool
	global     bool
	dispatched map[Line]int
}

// NewSim creates a controller with every line masked and global interrupts
// off.
func NewSim() *Sim {
	return &Sim{
		isrs:       make(map[Line]ISR),
		enabled:    make(map[Line]bool),
		priorities: make(map[Line]Priority),
		pending:    make(map[Line]bool),
		dispatched: make(map[Line]int),
	}
}

// Install sets the service routine of a line.
func (s *Sim) Install(line Line, isr ISR) {
	s.mu.Lock()
	s.isrs[line] = isr
	s.mu.Unlock()
}

// Enable unmasks a line. A pending interrupt on it is dispatched at once.
func (s *Sim) Enable(line Line) {
	s.mu.Lock()
	s.enabled[line] = true
	s.mu.Unlock()

	s.drain()
}

// Disable masks a line.
func (s *Sim) Disable(line Line) {
	s.mu.Lock()
	s.enabled[line] = false
	s.mu.Unlock()
}

// SetPriority sets the priority of a line.
func (s *Sim) SetPriority(line Line, level Priority) {
	if level < PriorityHighest || level > PriorityLowest {
		log.Panicf("priority %d of line %d out of range", level, line)
	}

	s.mu.Lock()
	s.priorities[line] = level
	s.mu.Unlock()
}

// EnableGlobal turns global interrupts on and dispatches what is pending.
func (s *Sim) EnableGlobal() {
	s.mu.Lock()
	s.global = true
	s.mu.Unlock()

	s.drain()
}

// DisableGlobal turns global interrupts off.
func (s *Sim) DisableGlobal() {
	s.mu.Lock()
	s.global = false
	s.mu.Unlock()
}

// Raise signals an interrupt on a line.
func (s *Sim) Raise(line Line) {
	s.mu.Lock()
	s.pending[line] = true
	s.mu.Unlock()

	s.drain()
}

// drain dispatches deliverable pending lines, most urgent first. ISRs run
// without the lock held so that they may touch the controller.
func (s *Sim) drain() {
	for {
		isr, ok := s.nextDeliverable()
		if !ok {
			return
		}

		isr()
	}
}

func (s *Sim) nextDeliverable() (ISR, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.global {
		return nil, false
	}

	var ready []Line
	for line := range s.pending {
		if s.enabled[line] && s.isrs[line] != nil {
			ready = append(ready, line)
		}
	}

	if len(ready) == 0 {
		return nil, false
	}

	sort.Slice(ready, func(i, j int) bool {
		pi, pj := s.priorities[ready[i]], s.priorities[ready[j]]
		if pi != pj {
			return pi < pj
		}

		return ready[i] < ready[j]
	})

	line := ready[0]
	delete(s.pending, line)
	s.dispatched[line]++

	return s.isrs[line], true
}

// Enabled tells if a line is unmasked.
func (s *Sim) Enabled(line Line) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enabled[line]
}

// PriorityOf returns the priority of a line. Lines never configured are at
// the highest priority level, matching a controller reset value of zero.
func (s *Sim) PriorityOf(line Line) Priority {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.priorities[line]
}

// GlobalEnabled tells if global interrupts are on.
func (s *Sim) GlobalEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.global
}

// Pending tells if a line has an undelivered interrupt.
func (s *Sim) Pending(line Line) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pending[line]
}

// Dispatched returns how many times the ISR of a line has run.
func (s *Sim) Dispatched(line Line) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dispatched[line]
}
