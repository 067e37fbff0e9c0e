package lmdma

import (
	"github.com/sarchlab/lmdma/regs"
	"github.com/sarchlab/lmdma/tracing"
)

// HandleCompletion is the interrupt service routine of the engine. It reads
// the head channel status, retires the head channel on success, turns the
// engine off and reports the outcome to the callback. Turning the engine off
// also drops any transfer still queued behind the head channel.
//
// HandleCompletion does not allocate unless tracing hooks are attached to the
// Engine.
func (e *Engine) HandleCompletion() {
	status := StatusOK

	head := regs.StatusChannel.Get(e.port.Read(regs.DMAHStatus))
	if head != regs.ChanComplete {
		status = StatusError
	} else {
		// The written value is ignored; any write dequeues the head channel.
		e.port.WriteOrdered(regs.DMAHStatus, 0)

		// Fast-start modes return to idle by themselves.
		fsm := TriggerMode(regs.GCSWFSM.Get(e.port.Read(regs.DMAGCSW)))
		if fsm == ActionCommand {
			e.port.WriteOrdered(regs.DMAAct,
				regs.ActCommand.Bits(regs.ActReset)|
					regs.ActSubCommand.Bits(uint32(NoCondition)))
		}
	}

	// Engine off, head and tail channel back to 0.
	e.port.WriteOrdered(regs.DMAGCSW, 0)

	if e.NumHooks() > 0 {
		e.endTasks(status)
	}

	if cb := e.callback.Load(); cb != nil {
		(*cb)(status)
	}
}

// endTasks ends the task of the head transfer with its status and every
// other in-flight task as dropped, since clearing GCSW discards them.
func (e *Engine) endTasks(status Status) {
	ids := e.drainInflight()
	if len(ids) == 0 {
		return
	}

	tracing.AddTaskStep(ids[0], e, "status "+status.String())
	tracing.EndTask(ids[0], e)

	for _, id := range ids[1:] {
		tracing.AddTaskStep(id, e, "dropped")
		tracing.EndTask(id, e)
	}
}
