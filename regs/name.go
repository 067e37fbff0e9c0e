// Package regs describes the NDS32 system registers used by the local memory
// and LMDMA drivers, and provides the ways to reach them.
package regs

import "fmt"

// Name identifies a system register.
type Name int

// The system registers touched by the drivers.
const (
	MSCCfg Name = iota // misc configuration (R)
	ICMCfg             // instruction cache/memory configuration (R)
	DCMCfg             // data cache/memory configuration (R)
	ILMB               // instruction local memory base (RW)
	DLMB               // data local memory base (RW)
	CacheCtl           // cache control (RW)

	DMACfg     // LMDMA configuration (R)
	DMAGCSW    // global control and status word (RW)
	DMAChnSel  // channel select (RW)
	DMAAct     // action command (W)
	DMASetup   // per-channel setup (RW, shadowed)
	DMAISAddr  // internal start address, LM side (RW, shadowed)
	DMAESAddr  // external start address, DDR side (RW, shadowed)
	DMATCnt    // live transfer count (RW, shadowed)
	DMAStatus  // per-channel status (R, shadowed)
	DMA2DSet   // 2D setup (RW, shadowed)
	DMA2DSCtl  // 2D startup control (RW, shadowed)
	DMARCnt    // refill element count (RW, shadowed)
	DMAHStatus // head channel status, any write dequeues (RW)

	numNames
)

var names = [numNames]string{
	MSCCfg:     "MSC_CFG",
	ICMCfg:     "ICM_CFG",
	DCMCfg:     "DCM_CFG",
	ILMB:       "ILMB",
	DLMB:       "DLMB",
	CacheCtl:   "CACHE_CTL",
	DMACfg:     "DMA_CFG",
	DMAGCSW:    "DMA_GCSW",
	DMAChnSel:  "DMA_CHNSEL",
	DMAAct:     "DMA_ACT",
	DMASetup:   "DMA_SETUP",
	DMAISAddr:  "DMA_ISADDR",
	DMAESAddr:  "DMA_ESADDR",
	DMATCnt:    "DMA_TCNT",
	DMAStatus:  "DMA_STATUS",
	DMA2DSet:   "DMA_2DSET",
	DMA2DSCtl:  "DMA_2DSCTL",
	DMARCnt:    "DMA_RCNT",
	DMAHStatus: "DMA_HSTATUS",
}

// All returns every register name in declaration order.
func All() []Name {
	all := make([]Name, 0, numNames)
	for n := Name(0); n < numNames; n++ {
		all = append(all, n)
	}

	return all
}

// Valid tells if the name refers to a known register.
func (n Name) Valid() bool {
	return n >= 0 && n < numNames
}

func (n Name) String() string {
	if !n.Valid() {
		return fmt.Sprintf("Name(%d)", int(n))
	}

	return names[n]
}
