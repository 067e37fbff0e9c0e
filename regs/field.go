package regs

// A Field is a contiguous group of bits inside a 32-bit register.
type Field struct {
	Offset uint
	Width  uint
}

// Mask returns the in-place mask of the field.
func (f Field) Mask() uint32 {
	return uint32((uint64(1)<<f.Width)-1) << f.Offset
}

// Get extracts the field from a register value.
func (f Field) Get(v uint32) uint32 {
	return (v & f.Mask()) >> f.Offset
}

// Bits places x into the field position. Bits of x that do not fit are
// dropped.
func (f Field) Bits(x uint32) uint32 {
	return (x << f.Offset) & f.Mask()
}

// Put returns v with the field replaced by x.
func (f Field) Put(v, x uint32) uint32 {
	return (v &^ f.Mask()) | f.Bits(x)
}

// IsSet tells if any bit of the field is set in v.
func (f Field) IsSet(v uint32) bool {
	return v&f.Mask() != 0
}

// MSC_CFG
var (
	MSCCfgLMDMA = Field{Offset: 1, Width: 1}
)

// ICM_CFG and DCM_CFG share a layout.
var (
	CMCfgSet  = Field{Offset: 0, Width: 3}
	CMCfgWay  = Field{Offset: 3, Width: 3}
	CMCfgSize = Field{Offset: 6, Width: 3}
	CMCfgLock = Field{Offset: 9, Width: 1}
	CMCfgLMB  = Field{Offset: 10, Width: 3}
	CMCfgBSAV = Field{Offset: 13, Width: 2}
)

// ILMB and DLMB share a layout.
var (
	LMBEnable = Field{Offset: 0, Width: 1}
	LMBSize   = Field{Offset: 1, Width: 4}
	LMBBase   = Field{Offset: 10, Width: 22}
)

// CACHE_CTL
var (
	CacheCtlICEnable = Field{Offset: 0, Width: 1}
	CacheCtlDCEnable = Field{Offset: 1, Width: 1}
)

// DMA_CFG
var (
	DMACfgNumChannels = Field{Offset: 0, Width: 2}
	DMACfgUnaligned   = Field{Offset: 2, Width: 1}
	DMACfg2D          = Field{Offset: 3, Width: 1}
	DMACfgVersion     = Field{Offset: 24, Width: 8}
)

// DMA_GCSW
var (
	GCSWC0Status = Field{Offset: 0, Width: 3}
	GCSWC1Status = Field{Offset: 3, Width: 3}
	GCSWHeadChan = Field{Offset: 16, Width: 1}
	GCSWFSM      = Field{Offset: 18, Width: 2}
	GCSWSubCmd   = Field{Offset: 20, Width: 2}
	GCSWEnable   = Field{Offset: 31, Width: 1}
)

// GCSWChannelStatus returns the per-channel status field of the GCSW.
func GCSWChannelStatus(ch int) Field {
	if ch == 0 {
		return GCSWC0Status
	}

	return GCSWC1Status
}

// DMA_ACT
var (
	ActCommand    = Field{Offset: 0, Width: 2}
	ActSubCommand = Field{Offset: 2, Width: 2}
)

// Action commands.
const (
	ActNOP   uint32 = 0x0
	ActStart uint32 = 0x1
	ActStop  uint32 = 0x2
	ActReset uint32 = 0x3
)

// DMA_SETUP
var (
	SetupLM        = Field{Offset: 0, Width: 1}
	SetupDirection = Field{Offset: 1, Width: 1}
	SetupElemSize  = Field{Offset: 2, Width: 2}
	SetupStride    = Field{Offset: 4, Width: 12}
	SetupCIE       = Field{Offset: 16, Width: 1}
	SetupSIE       = Field{Offset: 17, Width: 1}
	SetupEIE       = Field{Offset: 18, Width: 1}
	SetupUE        = Field{Offset: 19, Width: 1}
	Setup2DE       = Field{Offset: 20, Width: 1}
	SetupCacheAttr = Field{Offset: 21, Width: 3}
)

// DMA_SETUP direction encodings.
const (
	DirDDRToLM uint32 = 0x0
	DirLMToDDR uint32 = 0x1
)

// DMA_2DSET
var (
	TwoDSetRowElems = Field{Offset: 0, Width: 16}
	TwoDSetStride   = Field{Offset: 16, Width: 16}
)

// DMA_2DSCTL
var (
	TwoDSCtlStartElems = Field{Offset: 0, Width: 16}
)

// DMA_HSTATUS and DMA_STATUS
var (
	StatusChannel = Field{Offset: 0, Width: 3}
)

// Channel status codes.
const (
	ChanIdle     uint32 = 0x0
	ChanQueued   uint32 = 0x1
	ChanWaiting  uint32 = 0x2
	ChanActive   uint32 = 0x3
	ChanComplete uint32 = 0x4
	ChanError    uint32 = 0x5
)

// Live transfer count masks per engine version.
const (
	TCntMaskV1 uint32 = 0x3FFFF
	TCntMaskV2 uint32 = 0x7FFFFF
)
