// Package intc defines the interrupt controller capability the drivers need
// and a simulated controller.
package intc

// Line identifies a hardware interrupt line.
type Line int

// LineLDMA is the interrupt line of the LMDMA engine.
const LineLDMA Line = 10

// Priority is an interrupt priority level. Lower values are more urgent.
type Priority int

// The priority levels supported by the controller.
const (
	PriorityHighest Priority = 0
	PriorityLowest  Priority = 3
)

// An ISR is an interrupt service routine.
type ISR func()

// A Controller enables, masks and prioritises interrupt lines.
type Controller interface {
	// Install sets the service routine of a line.
	Install(line Line, isr ISR)

	Enable(line Line)
	Disable(line Line)
	SetPriority(line Line, level Priority)

	// EnableGlobal sets the global interrupt enable flag.
	EnableGlobal()
}
