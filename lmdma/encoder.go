package lmdma

import (
	"fmt"

	"github.com/sarchlab/lmdma/regs"
)

// A Write is one step of a register program. A non-zero Mask makes the write
// a read-modify-write that only changes the masked bits.
type Write struct {
	Reg     regs.Name
	Value   uint32
	Mask    uint32
	Ordered bool
}

func (w Write) String() string {
	s := fmt.Sprintf("%s <- 0x%08x", w.Reg, w.Value)
	if w.Mask != 0 {
		s += fmt.Sprintf(" mask 0x%08x", w.Mask)
	}

	if w.Ordered {
		s += " (ordered)"
	}

	return s
}

// A Program is the ordered register writes that configure and start one
// transfer.
type Program []Write

// Apply performs the writes on a port, in order.
func (p Program) Apply(port regs.Port) {
	for _, w := range p {
		v := w.Value
		if w.Mask != 0 {
			v = (port.Read(w.Reg) &^ w.Mask) | (w.Value & w.Mask)
		}

		if w.Ordered {
			port.WriteOrdered(w.Reg, v)
		} else {
			port.Write(w.Reg, v)
		}
	}
}

// Trigger returns the write that starts the transfer.
func (p Program) Trigger() Write {
	return p[len(p)-1]
}

type operand int

const (
	internalAddr operand = iota
	externalAddr
	transferSize
	startCommand
)

type step struct {
	reg     regs.Name
	operand operand
	ordered bool
}

// triggerSequences are the writes that follow the refill count, per trigger
// mode. The last step starts the transfer. The external address is always
// written ordered so that it lands before whatever follows it.
var triggerSequences = map[TriggerMode][]step{
	ActionCommand: {
		{regs.DMAISAddr, internalAddr, false},
		{regs.DMAESAddr, externalAddr, true},
		{regs.DMAAct, startCommand, true},
	},
	FastStartOnCount: {
		{regs.DMAISAddr, internalAddr, false},
		{regs.DMAESAddr, externalAddr, true},
		{regs.DMATCnt, transferSize, true},
	},
	FastStartOnInternalAddr: {
		{regs.DMAESAddr, externalAddr, true},
		{regs.DMAISAddr, internalAddr, true},
	},
	FastStartOnExternalAddr: {
		{regs.DMAISAddr, internalAddr, false},
		{regs.DMAESAddr, externalAddr, true},
	},
}

func (o operand) value(req TransferRequest) uint32 {
	switch o {
	case internalAddr:
		return req.InternalAddr()
	case externalAddr:
		return req.ExternalAddr()
	case transferSize:
		return req.Size
	default:
		return regs.ActCommand.Bits(regs.ActStart)
	}
}

// Validate checks the parts of a request the driver depends on. Field
// encodings are not checked; out-of-range values reach the hardware as is.
func (r TransferRequest) Validate() error {
	if r.Channel >= NumChannels {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, r.Channel)
	}

	if r.Size == 0 {
		return ErrZeroSize
	}

	if _, ok := triggerSequences[r.Trigger]; !ok {
		return fmt.Errorf("%w: %s", ErrInvalidTrigger, r.Trigger)
	}

	return nil
}

// Encode turns a request into the register program that configures the
// channel and starts the transfer.
func Encode(req TransferRequest) (Program, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	gcswMask := regs.GCSWFSM.Mask() |
		regs.GCSWSubCmd.Mask() |
		regs.GCSWEnable.Mask()
	gcsw := regs.GCSWFSM.Bits(uint32(req.Trigger)) |
		regs.GCSWSubCmd.Bits(uint32(req.SubCommand)) |
		regs.GCSWEnable.Mask()

	p := Program{
		{Reg: regs.DMAChnSel, Value: uint32(req.Channel)},
		{Reg: regs.DMAGCSW, Value: gcsw, Mask: gcswMask},
		{Reg: regs.DMASetup, Value: req.Setup.Value(req.TwoD != nil)},
	}

	if req.TwoD != nil {
		p = append(p,
			Write{Reg: regs.DMA2DSet, Value: req.TwoD.SetValue()},
			Write{Reg: regs.DMA2DSCtl, Value: req.TwoD.StartValue()},
		)
	}

	// The refill count loads the live count when the start is issued.
	p = append(p, Write{Reg: regs.DMARCnt, Value: req.Size, Ordered: true})

	for _, s := range triggerSequences[req.Trigger] {
		p = append(p, Write{
			Reg:     s.reg,
			Value:   s.operand.value(req),
			Ordered: s.ordered,
		})
	}

	return p, nil
}
