package device

import (
	"sync"

	"github.com/sarchlab/lmdma/intc"
	"github.com/sarchlab/lmdma/memory"
	"github.com/sarchlab/lmdma/regs"
	"github.com/sarchlab/lmdma/sim"
)

// An InterruptSink receives the interrupts raised by the hardware.
type InterruptSink interface {
	Raise(line intc.Line)
}

// Trigger modes as encoded in GCSW.FSM.
const (
	fsmActionCommand uint32 = iota
	fsmOnCount
	fsmOnInternalAddr
	fsmOnExternalAddr
)

// Sub-commands as encoded in GCSW.SCMD that hold a start until the queue
// drains.
const (
	scmdWaitDrain       uint32 = 2
	scmdEnqueueThenWait uint32 = 3
)

type channel struct {
	setup    uint32
	isaddr   uint32
	esaddr   uint32
	tcnt     uint32
	rcnt     uint32
	twoDSet  uint32
	twoDSCtl uint32

	status uint32

	// Set while the channel is the active head.
	startTime sim.VTimeInSec
	count     uint32
}

func (c *channel) elemBytes() uint32 {
	return 1 << regs.SetupElemSize.Get(c.setup)
}

// DMA models the LMDMA engine. Registers are bound into a register file;
// transfers complete as events on a simulation engine.
type DMA struct {
	sim.HookableBase

	name   string
	engine sim.Engine
	freq   sim.Freq

	bytesPerCycle uint32
	version       uint32

	irq  InterruptSink
	line intc.Line

	ilm, dlm memory.Memory
	ddr      memory.Memory

	mu         sync.Mutex
	enabled    bool
	fsm        uint32
	scmd       uint32
	sel        uint32
	channels   [2]channel
	queue      []uint32
	generation uint64
}

// Name returns the name of the engine.
func (d *DMA) Name() string {
	return d.name
}

// Bind routes the DMA registers of a register file to the engine.
func (d *DMA) Bind(file *regs.File) {
	file.Bind(regs.DMAGCSW, reg{d.readGCSW, d.writeGCSW})
	file.Bind(regs.DMAChnSel, reg{d.readChnSel, d.writeChnSel})
	file.Bind(regs.DMAAct, reg{func() uint32 { return 0 }, d.writeAct})
	file.Bind(regs.DMAStatus, reg{d.readStatus, ignore})
	file.Bind(regs.DMAHStatus, reg{d.readHStatus, d.writeHStatus})

	file.Bind(regs.DMASetup, d.shadow(func(c *channel) *uint32 {
		return &c.setup
	}, noTrigger))
	file.Bind(regs.DMAISAddr, d.shadow(func(c *channel) *uint32 {
		return &c.isaddr
	}, fsmOnInternalAddr))
	file.Bind(regs.DMAESAddr, d.shadow(func(c *channel) *uint32 {
		return &c.esaddr
	}, fsmOnExternalAddr))
	file.Bind(regs.DMARCnt, d.shadow(func(c *channel) *uint32 {
		return &c.rcnt
	}, noTrigger))
	file.Bind(regs.DMA2DSet, d.shadow(func(c *channel) *uint32 {
		return &c.twoDSet
	}, noTrigger))
	file.Bind(regs.DMA2DSCtl, d.shadow(func(c *channel) *uint32 {
		return &c.twoDSCtl
	}, noTrigger))
	file.Bind(regs.DMATCnt, reg{d.readTCnt, d.writeTCnt})
}

type reg struct {
	read  func() uint32
	write func(value uint32)
}

func (r reg) Read() uint32 {
	return r.read()
}

func (r reg) Write(value uint32, _ bool) {
	r.write(value)
}

func ignore(uint32) {}

const noTrigger = ^uint32(0)

// shadow creates a per-channel register selected by CHNSEL. A write to it
// starts the selected channel when the engine is in the trigger mode given.
func (d *DMA) shadow(field func(c *channel) *uint32, trigger uint32) reg {
	return reg{
		read: func() uint32 {
			d.mu.Lock()
			defer d.mu.Unlock()

			return *field(&d.channels[d.sel])
		},
		write: func(value uint32) {
			d.mu.Lock()
			defer d.mu.Unlock()

			*field(&d.channels[d.sel]) = value
			if trigger == d.fsm {
				d.start(d.sel)
			}
		},
	}
}

func (d *DMA) readGCSW() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := regs.GCSWFSM.Bits(d.fsm) |
		regs.GCSWSubCmd.Bits(d.scmd) |
		regs.GCSWC0Status.Bits(d.channels[0].status) |
		regs.GCSWC1Status.Bits(d.channels[1].status)

	if len(d.queue) > 0 {
		v |= regs.GCSWHeadChan.Bits(d.queue[0])
	}

	if d.enabled {
		v |= regs.GCSWEnable.Mask()
	}

	return v
}

func (d *DMA) writeGCSW(value uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if value == 0 {
		d.reset()
		return
	}

	d.fsm = regs.GCSWFSM.Get(value)
	d.scmd = regs.GCSWSubCmd.Get(value)

	enable := regs.GCSWEnable.IsSet(value)
	if d.enabled && !enable {
		d.abort()
	}

	d.enabled = enable
}

// reset turns the engine off and forgets every transfer.
func (d *DMA) reset() {
	d.enabled = false
	d.fsm = 0
	d.scmd = 0
	d.queue = nil
	d.generation++

	for i := range d.channels {
		d.channels[i].status = regs.ChanIdle
	}
}

// abort drops the transfers that have not completed. Finished channels stay
// in the queue so that their status can still be collected.
func (d *DMA) abort() {
	d.generation++

	kept := d.queue[:0]
	for _, ch := range d.queue {
		c := &d.channels[ch]
		switch c.status {
		case regs.ChanComplete, regs.ChanError:
			kept = append(kept, ch)
		default:
			c.tcnt = d.liveCount(c)
			c.status = regs.ChanIdle
		}
	}

	d.queue = kept
}

func (d *DMA) readChnSel() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.sel
}

func (d *DMA) writeChnSel(value uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sel = value & 0x1
}

func (d *DMA) writeAct(value uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch regs.ActCommand.Get(value) {
	case regs.ActStart:
		d.start(d.sel)
	case regs.ActStop:
		d.stop(d.sel)
	case regs.ActReset:
		d.resetChannel(d.sel)
	}
}

func (d *DMA) readStatus() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.channels[d.sel].status
}

func (d *DMA) readHStatus() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.queue) == 0 {
		return regs.ChanIdle
	}

	return d.channels[d.queue[0]].status
}

// writeHStatus retires a finished head channel and activates the next one.
func (d *DMA) writeHStatus(uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.queue) == 0 {
		return
	}

	head := &d.channels[d.queue[0]]
	if head.status != regs.ChanComplete && head.status != regs.ChanError {
		return
	}

	head.status = regs.ChanIdle
	d.queue = d.queue[1:]
	d.activateHead()
}

func (d *DMA) readTCnt() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.liveCount(&d.channels[d.sel])
}

func (d *DMA) writeTCnt(value uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.channels[d.sel].tcnt = value & d.countMask()
	if d.fsm == fsmOnCount {
		d.start(d.sel)
	}
}

func (d *DMA) countMask() uint32 {
	if d.version >= 2 {
		return regs.TCntMaskV2
	}

	return regs.TCntMaskV1
}

// start queues a channel. A start on a disabled engine, or on a channel that
// is already queued, is ignored.
func (d *DMA) start(ch uint32) {
	if !d.enabled {
		return
	}

	c := &d.channels[ch]
	if c.status != regs.ChanIdle {
		return
	}

	if c.tcnt == 0 {
		c.tcnt = c.rcnt & d.countMask()
	}

	d.queue = append(d.queue, ch)

	if len(d.queue) > 1 {
		c.status = regs.ChanQueued
		if d.scmd == scmdWaitDrain || d.scmd == scmdEnqueueThenWait {
			c.status = regs.ChanWaiting
		}

		return
	}

	d.activateHead()
}

func (d *DMA) stop(ch uint32) {
	for i, queued := range d.queue {
		if queued != ch {
			continue
		}

		c := &d.channels[ch]
		c.tcnt = d.liveCount(c)
		c.status = regs.ChanIdle
		d.queue = append(d.queue[:i:i], d.queue[i+1:]...)

		if i == 0 {
			d.generation++
			d.activateHead()
		}

		return
	}
}

func (d *DMA) resetChannel(ch uint32) {
	c := &d.channels[ch]
	if c.status == regs.ChanActive ||
		c.status == regs.ChanQueued ||
		c.status == regs.ChanWaiting {
		return
	}

	c.status = regs.ChanIdle
}

// activateHead makes the head of the queue the active transfer and
// schedules its completion.
func (d *DMA) activateHead() {
	if len(d.queue) == 0 {
		return
	}

	c := &d.channels[d.queue[0]]
	if c.status == regs.ChanActive {
		return
	}

	now := d.engine.CurrentTime()
	c.status = regs.ChanActive
	c.startTime = now
	c.count = c.tcnt

	bytes := c.count * c.elemBytes()
	cycles := int((bytes + d.bytesPerCycle - 1) / d.bytesPerCycle)
	if cycles == 0 {
		cycles = 1
	}

	d.engine.Schedule(&completeEvent{
		EventBase:  sim.NewEventBase(d.freq.NCyclesLater(cycles, now), d),
		channel:    d.queue[0],
		generation: d.generation,
	})
}

// liveCount is the number of elements the channel still has to move.
func (d *DMA) liveCount(c *channel) uint32 {
	if c.status != regs.ChanActive {
		return c.tcnt
	}

	elapsed := d.freq.Cycle(d.engine.CurrentTime()) - d.freq.Cycle(c.startTime)
	moved := elapsed * uint64(d.bytesPerCycle) / uint64(c.elemBytes())

	if moved >= uint64(c.count) {
		return 0
	}

	return c.count - uint32(moved)
}
