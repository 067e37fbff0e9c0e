package lmdma

import (
	"fmt"

	"github.com/sarchlab/lmdma/regs"
)

// NumChannels is the number of channels the driver manages.
const NumChannels = 2

// TriggerMode selects which register write starts a transfer.
type TriggerMode uint32

// Trigger modes, encoded as in GCSW.FSM.
const (
	ActionCommand TriggerMode = iota
	FastStartOnCount
	FastStartOnInternalAddr
	FastStartOnExternalAddr
)

var triggerModeNames = map[TriggerMode]string{
	ActionCommand:           "ActionCommand",
	FastStartOnCount:        "FastStartOnCount",
	FastStartOnInternalAddr: "FastStartOnInternalAddr",
	FastStartOnExternalAddr: "FastStartOnExternalAddr",
}

func (m TriggerMode) String() string {
	if name, ok := triggerModeNames[m]; ok {
		return name
	}

	return fmt.Sprintf("TriggerMode(%d)", uint32(m))
}

// TriggerModes lists the valid trigger modes.
func TriggerModes() []TriggerMode {
	return []TriggerMode{
		ActionCommand,
		FastStartOnCount,
		FastStartOnInternalAddr,
		FastStartOnExternalAddr,
	}
}

// SubCommand is the queuing discipline applied by a start when the engine is
// already busy.
type SubCommand uint32

// Sub-commands, encoded as in GCSW.SCMD.
const (
	NoCondition SubCommand = iota
	Enqueue
	WaitDrainBeforeStart
	EnqueueThenWait
)

// Direction tells which side a transfer reads from.
type Direction uint32

// Directions, encoded as in SETUP.TDIR.
const (
	DDRToLM Direction = Direction(regs.DirDDRToLM)
	LMToDDR Direction = Direction(regs.DirLMToDDR)
)

func (d Direction) String() string {
	if d == LMToDDR {
		return "LM->DDR"
	}

	return "DDR->LM"
}

// LocalMemory selects the local memory a channel works on.
type LocalMemory uint32

// Local memories, encoded as in SETUP.LM.
const (
	ILM LocalMemory = iota
	DLM
)

// ElementSize is the unit of the transfer count.
type ElementSize uint32

// Element sizes, encoded as in SETUP.TES.
const (
	Byte ElementSize = iota
	HalfWord
	Word
	DoubleWord
)

// Bytes returns the width of an element in bytes.
func (s ElementSize) Bytes() uint32 {
	return 1 << (uint32(s) & 0x3)
}

// CacheAttr is the cacheability of the external accesses.
type CacheAttr uint32

// Cache attributes, encoded as in SETUP.COA.
const (
	CacheDefault CacheAttr = 0
	NonCacheable CacheAttr = 2
)

// Setup holds the per-channel setup register fields.
type Setup struct {
	Memory      LocalMemory
	Direction   Direction
	ElementSize ElementSize

	// Stride is the external address stride in elements.
	Stride uint16

	CompletionIRQ bool
	StopIRQ       bool
	ErrorIRQ      bool
	Unaligned     bool
	CacheAttr     CacheAttr
}

// Value encodes the setup register. twoD sets the 2D enable bit.
func (s Setup) Value(twoD bool) uint32 {
	v := regs.SetupLM.Bits(uint32(s.Memory)) |
		regs.SetupDirection.Bits(uint32(s.Direction)) |
		regs.SetupElemSize.Bits(uint32(s.ElementSize)) |
		regs.SetupStride.Bits(uint32(s.Stride)) |
		regs.SetupCacheAttr.Bits(uint32(s.CacheAttr))

	for _, flag := range []struct {
		on    bool
		field regs.Field
	}{
		{s.CompletionIRQ, regs.SetupCIE},
		{s.StopIRQ, regs.SetupSIE},
		{s.ErrorIRQ, regs.SetupEIE},
		{s.Unaligned, regs.SetupUE},
		{twoD, regs.Setup2DE},
	} {
		if flag.on {
			v |= flag.field.Mask()
		}
	}

	return v
}

// TwoD describes a 2D transfer: rows of RowElements elements whose external
// start addresses are RowStride elements apart.
type TwoD struct {
	RowElements      uint16
	RowStride        uint16
	StartRowElements uint16
}

// SetValue encodes the 2D setup register.
func (t TwoD) SetValue() uint32 {
	return regs.TwoDSetRowElems.Bits(uint32(t.RowElements)) |
		regs.TwoDSetStride.Bits(uint32(t.RowStride))
}

// StartValue encodes the 2D startup control register.
func (t TwoD) StartValue() uint32 {
	return regs.TwoDSCtlStartElems.Bits(uint32(t.StartRowElements))
}

// A TransferRequest asks a channel to move Size elements between local memory
// and DDR. The Setup direction decides which of SrcAddr and DstAddr is the
// local memory address.
type TransferRequest struct {
	Channel    uint8
	SrcAddr    uint32
	DstAddr    uint32
	Size       uint32
	Trigger    TriggerMode
	SubCommand SubCommand
	Setup      Setup

	// TwoD is nil for 1D transfers.
	TwoD *TwoD
}

// InternalAddr returns the local memory side address.
func (r TransferRequest) InternalAddr() uint32 {
	if r.Setup.Direction == LMToDDR {
		return r.SrcAddr
	}

	return r.DstAddr
}

// ExternalAddr returns the DDR side address.
func (r TransferRequest) ExternalAddr() uint32 {
	if r.Setup.Direction == LMToDDR {
		return r.DstAddr
	}

	return r.SrcAddr
}
