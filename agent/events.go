package agent

import (
	"sync"
	"time"
)

// EventKind identifies the type of run event.
type EventKind string

const (
	EventRunStart      EventKind = "run_start"
	EventPlanCreated   EventKind = "plan_created"
	EventReplan        EventKind = "replan"
	EventSubtaskStart  EventKind = "subtask_start"
	EventSubtaskSkip   EventKind = "subtask_skipped"
	EventSubtaskEnd    EventKind = "subtask_end"
	EventToolCall      EventKind = "tool_call"
	EventToolResult    EventKind = "tool_result"
	EventThought       EventKind = "thought"
	EventStepEvaluated EventKind = "step_evaluated"
	EventRunEnd        EventKind = "run_end"
	EventError         EventKind = "error"
)

// Event is a typed progress event emitted during a run. Events are a
// presentation-layer concern: dropping or ignoring them never changes
// execution semantics.
type Event struct {
	Kind      EventKind      `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	RunID     string         `json:"run_id"`
	Data      map[string]any `json:"data,omitempty"`
}

// EventEmitter delivers typed events to the host via a buffered channel.
type EventEmitter struct {
	runID  string
	ch     chan Event
	closed bool
	mu     sync.Mutex
}

// NewEventEmitter creates an EventEmitter with a buffered channel.
func NewEventEmitter(runID string, bufferSize int) *EventEmitter {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &EventEmitter{
		runID: runID,
		ch:    make(chan Event, bufferSize),
	}
}

// setRun retags the emitter for a new run. Runs are sequential, so this
// never races with Emit from a previous run.
func (e *EventEmitter) setRun(runID string) {
	if e == nil {
		return
	}
	e.mu.Lock()
	e.runID = runID
	e.mu.Unlock()
}

// Emit sends an event without blocking. Events are dropped when the
// channel is full or the emitter is closed, so a slow consumer cannot
// stall the run loop. Emit on a nil emitter is a no-op.
func (e *EventEmitter) Emit(kind EventKind, data map[string]any) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	event := Event{
		Kind:      kind,
		Timestamp: time.Now(),
		RunID:     e.runID,
		Data:      data,
	}
	select {
	case e.ch <- event:
	default:
	}
}

// Events returns the read-only event channel.
func (e *EventEmitter) Events() <-chan Event {
	return e.ch
}

// Close closes the event channel. Safe to call multiple times.
func (e *EventEmitter) Close() {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}
