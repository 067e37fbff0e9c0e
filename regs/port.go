package regs

// A Port gives access to the system registers.
//
// WriteOrdered behaves like Write and additionally guarantees that the write
// is observed before any later instruction executes.
type Port interface {
	Read(name Name) uint32
	Write(name Name, value uint32)
	WriteOrdered(name Name, value uint32)
}
