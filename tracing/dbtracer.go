package tracing

import (
	"sync"

	"github.com/sarchlab/lmdma/sim"
)

// A TraceWriter persists finished tasks and register accesses.
type TraceWriter interface {
	Init()
	Write(task Task)
	WriteAccess(entry AccessEntry)
	Flush()
}

// DBTracer is a tracer that stamps tasks with the simulation time and hands
// the finished ones to a TraceWriter.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller sim.TimeTeller
	writer     TraceWriter

	tracingTasks map[string]Task
}

// NewDBTracer creates a new DBTracer.
func NewDBTracer(timeTeller sim.TimeTeller, writer TraceWriter) *DBTracer {
	return &DBTracer{
		timeTeller:   timeTeller,
		writer:       writer,
		tracingTasks: make(map[string]Task),
	}
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task.StartTime = t.timeTeller.CurrentTime()
	t.tracingTasks[task.ID] = task
}

// StepTask records a milestone of a task.
func (t *DBTracer) StepTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	original, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	now := t.timeTeller.CurrentTime()
	for _, step := range task.Steps {
		step.Time = now
		original.Steps = append(original.Steps, step)
	}

	t.tracingTasks[task.ID] = original
}

// EndTask marks the end of a task and writes it out.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	original, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	original.EndTime = t.timeTeller.CurrentTime()
	delete(t.tracingTasks, task.ID)

	t.writer.Write(original)
}

// Terminate writes out the tasks that never finished, with their end time
// left at zero, and flushes the writer.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, task := range t.tracingTasks {
		t.writer.Write(task)
		delete(t.tracingTasks, id)
	}

	t.writer.Flush()
}
