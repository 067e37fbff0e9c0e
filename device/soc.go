package device

import (
	"github.com/sarchlab/lmdma/intc"
	"github.com/sarchlab/lmdma/memory"
	"github.com/sarchlab/lmdma/regs"
	"github.com/sarchlab/lmdma/sim"
)

// A SoC is a simulated core with its registers, interrupt controller,
// memories and DMA engine.
type SoC struct {
	Engine sim.Engine
	Regs   *regs.File
	IC     *intc.Sim
	DMA    *DMA

	ILM *LocalMemory
	DLM *LocalMemory
	DDR *memory.Region
}
