// Package lmdma drives the local memory DMA engine of an NDS32 core.
//
// The engine moves data between a local memory and DDR. A transfer is set up
// through a handful of channel shadow registers and started by a trigger
// write; its completion is signalled on a single interrupt line that the
// Engine services itself. The Engine is meant to be used from a single
// context. Only its completion handler may preempt the other calls.
package lmdma

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sarchlab/lmdma/intc"
	"github.com/sarchlab/lmdma/regs"
	"github.com/sarchlab/lmdma/sim"
	"github.com/sarchlab/lmdma/tracing"
)

// Status is the outcome of a transfer as reported to the Callback.
type Status uint32

// Transfer outcomes.
const (
	StatusOK    Status = 0
	StatusError Status = 1
)

func (s Status) String() string {
	if s == StatusOK {
		return "ok"
	}

	return "error"
}

// A Callback is invoked from the completion interrupt. It must not block.
type Callback func(status Status)

// Engine is the LMDMA driver.
type Engine struct {
	sim.HookableBase

	name string
	port regs.Port
	ic   intc.Controller
	line intc.Line

	callback    atomic.Pointer[Callback]
	initialized atomic.Bool

	channels [NumChannels]channelInfo

	inflightLock sync.Mutex
	inflight     []string
}

// Name returns the name of the engine.
func (e *Engine) Name() string {
	return e.name
}

// Initialize unmasks the engine interrupt at the highest priority, turns
// global interrupts on and registers cb. Calling it again replaces cb.
func (e *Engine) Initialize(cb Callback) error {
	if !regs.MSCCfgLMDMA.IsSet(e.port.Read(regs.MSCCfg)) {
		return ErrNotPresent
	}

	e.setCallback(cb)

	e.ic.SetPriority(e.line, intc.PriorityHighest)
	e.ic.Enable(e.line)
	e.ic.EnableGlobal()

	e.initialized.Store(true)

	return nil
}

// Uninitialize masks the engine interrupt, drops it to the lowest priority
// and forgets the callback. Global interrupts are left on.
func (e *Engine) Uninitialize() error {
	e.ic.Disable(e.line)
	e.ic.SetPriority(e.line, intc.PriorityLowest)

	e.setCallback(nil)
	e.initialized.Store(false)

	return nil
}

// Initialized tells if the engine interrupt is currently serviced.
func (e *Engine) Initialized() bool {
	return e.initialized.Load()
}

func (e *Engine) setCallback(cb Callback) {
	if cb == nil {
		e.callback.Store(nil)
		return
	}

	e.callback.Store(&cb)
}

// Abort turns the engine off. It does not wait for the engine to stop, and
// an interrupt already pending is still delivered.
func (e *Engine) Abort() error {
	gcsw := e.port.Read(regs.DMAGCSW)
	e.port.Write(regs.DMAGCSW, gcsw&^regs.GCSWEnable.Mask())

	for _, id := range e.drainInflight() {
		tracing.AddTaskStep(id, e, "aborted")
		tracing.EndTask(id, e)
	}

	return nil
}

// ChannelCount returns how many channels the engine implements.
func (e *Engine) ChannelCount() (int, error) {
	n := regs.DMACfgNumChannels.Get(e.port.Read(regs.DMACfg))

	switch n {
	case 0, 1:
		return int(n) + 1, nil
	default:
		return 0, fmt.Errorf("%w: channel count field %d", ErrReserved, n)
	}
}

// Version returns the engine hardware version.
func (e *Engine) Version() uint8 {
	return uint8(regs.DMACfgVersion.Get(e.port.Read(regs.DMACfg)))
}

func (e *Engine) liveCountMask() uint32 {
	if e.Version() >= 2 {
		return regs.TCntMaskV2
	}

	return regs.TCntMaskV1
}

// ChannelProgress returns how many elements the channel has moved since it
// was configured. Only the head channel can be queried. A negative result
// means the live count is larger than the configured size and is a usage
// error on the caller side.
func (e *Engine) ChannelProgress(ch uint8) (int64, error) {
	if ch >= NumChannels {
		return 0, fmt.Errorf("%w: %d", ErrInvalidChannel, ch)
	}

	head := regs.GCSWHeadChan.Get(e.port.Read(regs.DMAGCSW))
	if head != uint32(ch) {
		return 0, fmt.Errorf("%w: queried %d, head is %d",
			ErrNotSelected, ch, head)
	}

	info := &e.channels[ch]
	if !info.configured {
		return 0, fmt.Errorf("%w: %d", ErrNotConfigured, ch)
	}

	live := e.port.Read(regs.DMATCnt) & e.liveCountMask()

	return info.progress(live), nil
}

// Configure sets a channel up and starts the transfer. Success only means
// the registers were written; the outcome of the transfer arrives through
// the Callback.
func (e *Engine) Configure(req TransferRequest) error {
	program, err := Encode(req)
	if err != nil {
		return err
	}

	e.channels[req.Channel].record(req.Size)

	if e.NumHooks() > 0 {
		id := sim.GetIDGenerator().Generate()
		e.pushInflight(id)
		tracing.StartTask(id, "", e, "lmdma_transfer", req.Trigger.String(), req)
	}

	program.Apply(e.port)

	return nil
}

func (e *Engine) pushInflight(id string) {
	e.inflightLock.Lock()
	e.inflight = append(e.inflight, id)
	e.inflightLock.Unlock()
}

func (e *Engine) drainInflight() []string {
	e.inflightLock.Lock()
	defer e.inflightLock.Unlock()

	ids := e.inflight
	e.inflight = nil

	return ids
}
