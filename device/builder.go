// Package device simulates the parts of an NDS32 system-on-chip the drivers
// talk to: the configuration registers, the local memories, DDR and the
// LMDMA engine.
package device

import (
	"github.com/sarchlab/lmdma/intc"
	"github.com/sarchlab/lmdma/memory"
	"github.com/sarchlab/lmdma/regs"
	"github.com/sarchlab/lmdma/sim"
)

// A Builder can build simulated SoCs.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq
	irq    InterruptSink
	line   intc.Line

	bytesPerCycle uint32
	version       uint32
	numChannels   int
	withLMDMA     bool

	withLM      bool
	baseScheme  uint32
	ilmSizeCode uint32
	dlmSizeCode uint32
	cacheSize   uint32

	ddrBase uint64
	ddrSize uint64
}

// MakeBuilder creates a builder with default parameters: a version 1 engine
// with two channels moving 4 bytes per cycle at 100MHz, two 64KB local
// memories and 16MB of DDR at 0x80000000.
func MakeBuilder() Builder {
	return Builder{
		freq:          100 * sim.MHz,
		line:          intc.LineLDMA,
		bytesPerCycle: 4,
		version:       1,
		numChannels:   2,
		withLMDMA:     true,
		withLM:        true,
		baseScheme:    1,
		ilmSizeCode:   4,
		dlmSizeCode:   4,
		ddrBase:       0x80000000,
		ddrSize:       16 << 20,
	}
}

// WithEngine sets the engine that schedules the transfer completions.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the DMA engine.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithBytesPerCycle sets the throughput of the DMA engine.
func (b Builder) WithBytesPerCycle(n uint32) Builder {
	b.bytesPerCycle = n
	return b
}

// WithVersion sets the engine version reported in DMA_CFG.
func (b Builder) WithVersion(v uint32) Builder {
	b.version = v
	return b
}

// WithNumChannels sets the channel count reported in DMA_CFG.
func (b Builder) WithNumChannels(n int) Builder {
	b.numChannels = n
	return b
}

// WithoutLMDMA builds a core without the DMA engine.
func (b Builder) WithoutLMDMA() Builder {
	b.withLMDMA = false
	return b
}

// WithoutLocalMemory builds a core without local memories.
func (b Builder) WithoutLocalMemory() Builder {
	b.withLM = false
	return b
}

// WithBaseScheme sets the base alignment version reported in the cache
// configuration registers.
func (b Builder) WithBaseScheme(v uint32) Builder {
	b.baseScheme = v
	return b
}

// WithLMSizeCodes sets the size codes of the ILM and the DLM.
func (b Builder) WithLMSizeCodes(ilm, dlm uint32) Builder {
	b.ilmSizeCode = ilm
	b.dlmSizeCode = dlm
	return b
}

// WithCacheSize sets the cache size field of the cache configuration
// registers. A non-zero value means the core has caches, enabled at reset.
func (b Builder) WithCacheSize(code uint32) Builder {
	b.cacheSize = code
	return b
}

// WithDDR sets where DDR is and how large it is.
func (b Builder) WithDDR(base, size uint64) Builder {
	b.ddrBase = base
	b.ddrSize = size
	return b
}

// WithInterruptSink routes the DMA interrupt somewhere else than the
// interrupt controller of the SoC.
func (b Builder) WithInterruptSink(irq InterruptSink) Builder {
	b.irq = irq
	return b
}

// Build creates a SoC.
func (b Builder) Build(name string) *SoC {
	if b.engine == nil {
		panic("device: engine is required")
	}

	s := &SoC{
		Engine: b.engine,
		Regs:   regs.NewFile(name + ".Regs"),
		IC:     intc.NewSim(),
		DDR:    memory.NewRegion(b.ddrBase, b.ddrSize),
		ILM:    newLocalMemory(b.ilmSizeCode),
		DLM:    newLocalMemory(b.dlmSizeCode),
	}

	b.buildConfig(s)

	irq := b.irq
	if irq == nil {
		irq = s.IC
	}

	s.DMA = &DMA{
		name:          name + ".DMA",
		engine:        b.engine,
		freq:          b.freq,
		bytesPerCycle: max(b.bytesPerCycle, 1),
		version:       b.version,
		irq:           irq,
		line:          b.line,
		ilm:           s.ILM,
		dlm:           s.DLM,
		ddr:           s.DDR,
	}
	s.DMA.Bind(s.Regs)

	return s
}

func (b Builder) buildConfig(s *SoC) {
	msc := uint32(0)
	if b.withLMDMA {
		msc |= regs.MSCCfgLMDMA.Mask()
	}
	s.Regs.Set(regs.MSCCfg, msc)

	cmCfg := regs.CMCfgBSAV.Bits(b.baseScheme) | regs.CMCfgSize.Bits(b.cacheSize)
	if b.withLM {
		cmCfg |= regs.CMCfgLMB.Bits(1)
	}
	s.Regs.Set(regs.ICMCfg, cmCfg)
	s.Regs.Set(regs.DCMCfg, cmCfg)

	if b.cacheSize != 0 {
		s.Regs.Set(regs.CacheCtl,
			regs.CacheCtlICEnable.Mask()|regs.CacheCtlDCEnable.Mask())
	}

	s.Regs.Bind(regs.ILMB, baseRegister{s.ILM})
	s.Regs.Bind(regs.DLMB, baseRegister{s.DLM})

	dmaCfg := regs.DMACfgVersion.Bits(b.version) |
		regs.DMACfgUnaligned.Mask() |
		regs.DMACfg2D.Mask()
	if b.numChannels > 1 {
		dmaCfg |= regs.DMACfgNumChannels.Bits(1)
	}
	s.Regs.Set(regs.DMACfg, dmaCfg)
}
