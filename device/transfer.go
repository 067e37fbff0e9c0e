package device

import (
	"fmt"

	"github.com/sarchlab/lmdma/memory"
	"github.com/sarchlab/lmdma/regs"
	"github.com/sarchlab/lmdma/sim"
	"github.com/sarchlab/lmdma/tracing"
)

// HookPosTransferDone is where the DMA reports each finished transfer. The
// hook item is a TransferRecord.
var HookPosTransferDone = &sim.HookPos{Name: "DMATransferDone"}

// A TransferRecord describes a transfer the engine has finished.
type TransferRecord struct {
	Channel  uint32
	Setup    uint32
	Internal uint32
	External uint32
	Count    uint32
	Err      error
}

type completeEvent struct {
	*sim.EventBase
	channel    uint32
	generation uint64
}

// Handle finishes the active transfer: the data is moved, the channel status
// is updated and the interrupt is raised if the setup enables it.
func (d *DMA) Handle(e sim.Event) error {
	evt, ok := e.(*completeEvent)
	if !ok {
		panic(fmt.Sprintf("cannot handle event of type %T", e))
	}

	raise, record, done := d.complete(evt)
	if !done {
		return nil
	}

	d.InvokeHook(sim.HookCtx{
		Domain: d,
		Pos:    HookPosTransferDone,
		Item:   record,
	})

	if raise {
		d.irq.Raise(d.line)
	}

	return nil
}

func (d *DMA) complete(evt *completeEvent) (raise bool, record TransferRecord, done bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if evt.generation != d.generation ||
		len(d.queue) == 0 || d.queue[0] != evt.channel {
		return false, record, false
	}

	c := &d.channels[evt.channel]
	err := d.move(c)

	record = TransferRecord{
		Channel:  evt.channel,
		Setup:    c.setup,
		Internal: c.isaddr,
		External: c.esaddr,
		Count:    c.count,
		Err:      err,
	}

	c.tcnt = 0
	if err != nil {
		c.status = regs.ChanError
		return regs.SetupEIE.IsSet(c.setup), record, true
	}

	c.status = regs.ChanComplete

	return regs.SetupCIE.IsSet(c.setup), record, true
}

// move copies the elements of a transfer. The local memory side is
// contiguous; the external side follows the stride, or the 2D layout when
// enabled.
func (d *DMA) move(c *channel) error {
	lm := d.ilm
	if regs.SetupLM.Get(c.setup) == 1 {
		lm = d.dlm
	}

	src, dst := d.ddr, lm
	if regs.SetupDirection.Get(c.setup) == regs.DirLMToDDR {
		src, dst = lm, d.ddr
	}

	elem := uint64(c.elemBytes())
	if !regs.SetupUE.IsSet(c.setup) &&
		(uint64(c.isaddr)%elem != 0 || uint64(c.esaddr)%elem != 0) {
		return fmt.Errorf("unaligned %d-byte transfer at 0x%x/0x%x",
			elem, c.isaddr, c.esaddr)
	}

	for _, run := range d.externalRuns(c) {
		internal := uint64(c.isaddr) + run.offset*elem
		external := uint64(run.addr)

		from, to := external, internal
		if src == lm {
			from, to = internal, external
		}

		if err := copyBytes(src, dst, from, to, run.elements*elem); err != nil {
			return err
		}
	}

	return nil
}

type run struct {
	// offset is the index of the first element of the run in the transfer.
	offset   uint64
	addr     uint64
	elements uint64
}

// externalRuns splits a transfer into runs of elements that are contiguous
// in external memory.
func (d *DMA) externalRuns(c *channel) []run {
	count := uint64(c.count)
	elem := uint64(c.elemBytes())
	base := uint64(c.esaddr)

	if regs.Setup2DE.IsSet(c.setup) {
		return twoDRuns(c, count, elem, base)
	}

	stride := uint64(regs.SetupStride.Get(c.setup))
	if stride <= 1 {
		return []run{{offset: 0, addr: base, elements: count}}
	}

	runs := make([]run, 0, count)
	for i := uint64(0); i < count; i++ {
		runs = append(runs, run{offset: i, addr: base + i*stride*elem, elements: 1})
	}

	return runs
}

func twoDRuns(c *channel, count, elem, base uint64) []run {
	rowElems := uint64(regs.TwoDSetRowElems.Get(c.twoDSet))
	rowStride := uint64(regs.TwoDSetStride.Get(c.twoDSet))
	first := uint64(regs.TwoDSCtlStartElems.Get(c.twoDSCtl))

	if rowElems == 0 {
		return []run{{offset: 0, addr: base, elements: count}}
	}

	if first == 0 || first > rowElems {
		first = rowElems
	}

	var runs []run

	done := uint64(0)
	for row := uint64(0); done < count; row++ {
		n := rowElems
		if row == 0 {
			n = first
		}

		n = min(n, count-done)
		runs = append(runs, run{
			offset:   done,
			addr:     base + row*rowStride*elem,
			elements: n,
		})
		done += n
	}

	return runs
}

func copyBytes(src, dst memory.Memory, from, to, length uint64) error {
	data, err := src.Read(from, length)
	if err != nil {
		return err
	}

	return dst.Write(to, data)
}

// TraceTransfers reports each finished transfer to a tracer as a task that
// starts and ends at the completion time.
func (d *DMA) TraceTransfers(tracer tracing.Tracer) {
	d.AcceptHook(&transferTraceHook{dma: d, tracer: tracer})
}

type transferTraceHook struct {
	dma    *DMA
	tracer tracing.Tracer
}

func (h *transferTraceHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosTransferDone {
		return
	}

	record := ctx.Item.(TransferRecord)
	what := "complete"
	if record.Err != nil {
		what = "error"
	}

	task := tracing.Task{
		ID:       sim.GetIDGenerator().Generate(),
		Kind:     "dma_hw_transfer",
		What:     what,
		Location: h.dma.Name(),
		Detail:   record,
	}
	h.tracer.StartTask(task)
	h.tracer.EndTask(task)
}
