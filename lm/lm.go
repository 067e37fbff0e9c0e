// Package lm brings up the local memories (ILM and DLM) of an NDS32 core.
package lm

import (
	"errors"
	"fmt"

	"github.com/sarchlab/lmdma/regs"
)

// Errors returned by Initialize.
var (
	ErrNotPresent  = errors.New("lm: local memory not present")
	ErrUnsupported = errors.New("lm: 1MB-aligned base scheme not supported")
	ErrReserved    = errors.New("lm: reserved base alignment version")
)

// Kind selects one of the two local memories.
type Kind int

// The local memories.
const (
	ILM Kind = iota
	DLM
)

func (k Kind) String() string {
	switch k {
	case ILM:
		return "ILM"
	case DLM:
		return "DLM"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) cfgReg() regs.Name {
	if k == ILM {
		return regs.ICMCfg
	}

	return regs.DCMCfg
}

func (k Kind) baseReg() regs.Name {
	if k == ILM {
		return regs.ILMB
	}

	return regs.DLMB
}

// Driver initializes and sizes the local memories through a register port.
type Driver struct {
	port regs.Port
}

// New creates a Driver.
func New(port regs.Port) *Driver {
	return &Driver{port: port}
}

// Initialize enables a local memory at base. A memory that is already
// enabled keeps its base. When the core has a data cache, instruction and
// data caching are turned off.
func (d *Driver) Initialize(kind Kind, base uint32) error {
	cfg := d.port.Read(kind.cfgReg())

	if regs.CMCfgLMB.Get(cfg) == 0 {
		return fmt.Errorf("%w: %s", ErrNotPresent, kind)
	}

	switch regs.CMCfgBSAV.Get(cfg) {
	case 0:
		return fmt.Errorf("%w: %s", ErrUnsupported, kind)
	case 1:
	default:
		return fmt.Errorf("%w: %s", ErrReserved, kind)
	}

	if !d.Enabled(kind) {
		d.port.Write(kind.baseReg(), base|regs.LMBEnable.Mask())
	}

	if regs.CMCfgSize.IsSet(cfg) {
		ctl := d.port.Read(regs.CacheCtl)
		ctl &^= regs.CacheCtlICEnable.Mask() | regs.CacheCtlDCEnable.Mask()
		d.port.Write(regs.CacheCtl, ctl)
	}

	return nil
}

// Enabled tells if a local memory is enabled.
func (d *Driver) Enabled(kind Kind) bool {
	return regs.LMBEnable.IsSet(d.port.Read(kind.baseReg()))
}

// Size returns the size in bytes of a local memory, or 0 if the size code
// is reserved.
//
//	code  0..8   4KB .. 1MB
//	code  9..10  1KB .. 2KB
//	code 11..12  2MB .. 4MB
func (d *Driver) Size(kind Kind) uint32 {
	return SizeOfCode(regs.LMBSize.Get(d.port.Read(kind.baseReg())))
}

// SizeOfCode decodes a local memory size code.
func SizeOfCode(code uint32) uint32 {
	switch {
	case code > 12:
		return 0
	case code > 10:
		return 1 << (10 + code)
	case code > 8:
		return 1 << (1 + code)
	default:
		return 1 << (12 + code)
	}
}
