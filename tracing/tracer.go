package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/lmdma/sim"
)

// A Tracer can collect task traces
type Tracer interface {
	StartTask(task Task)
	StepTask(task Task)
	EndTask(task Task)
}

// CollectTrace let the tracer to collect trace from a domain
func CollectTrace(domain NamedHookable, tracer Tracer) {
	domain.AcceptHook(&traceHook{t: tracer, domain: domain.Name()})
}

// A traceHook is a hook that traces tasks
type traceHook struct {
	t      Tracer
	domain string
}

// Func calls the tracer interfaces when the hook is triggered
func (h *traceHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosTaskStart:
		h.t.StartTask(h.mustBeTask(ctx))
	case HookPosTaskStep:
		h.t.StepTask(h.mustBeTask(ctx))
	case HookPosTaskEnd:
		h.t.EndTask(h.mustBeTask(ctx))
	}
}

func (h *traceHook) mustBeTask(ctx sim.HookCtx) Task {
	task, ok := ctx.Item.(Task)
	if !ok {
		panic(fmt.Sprintf("domain %s sent a %s instead of a task",
			h.domain, reflect.TypeOf(ctx.Item)))
	}

	return task
}
