package agent

import (
	"context"
	"fmt"

	"github.com/kettleworks/foreman/gateway"
)

// ThoughtKind classifies a reasoning step.
type ThoughtKind string

const (
	ThoughtObservation ThoughtKind = "observation"
	ThoughtReasoning   ThoughtKind = "reasoning"
	ThoughtReflection  ThoughtKind = "reflection"
	ThoughtDecision    ThoughtKind = "decision"
)

var thinkingPrompts = map[ThoughtKind]string{
	ThoughtObservation: "You are observing the current state. What do you notice? What is important?",
	ThoughtReasoning:   "You are thinking through a problem step by step. Analyze the situation logically and explain your reasoning.",
	ThoughtReflection:  "You are reflecting on what has happened. Consider what went well, what didn't, and what can be learned.",
	ThoughtDecision:    "You are making a decision. Consider the options, their pros and cons, and choose the best path forward.",
}

// Thinker produces explicit reasoning steps around the run loop and
// surfaces them as thought events. Thinking is advisory: a gateway fault
// yields no thought and never affects the run's outcome. All methods are
// safe on a nil receiver, which is how disabled thinking is represented.
type Thinker struct {
	client  *gateway.Client
	model   string
	emitter *EventEmitter
}

// NewThinker creates a Thinker.
func NewThinker(client *gateway.Client, model string) *Thinker {
	return &Thinker{client: client, model: model}
}

// SetEmitter attaches an event emitter for thought events. A nil emitter
// disables emission.
func (t *Thinker) SetEmitter(emitter *EventEmitter) {
	if t == nil {
		return
	}
	t.emitter = emitter
}

// Think asks the model to reason about the situation and returns the
// thought content, empty when thinking is disabled or the gateway is
// unavailable. Unknown kinds fall back to plain reasoning.
func (t *Thinker) Think(ctx context.Context, situation, question string, kind ThoughtKind) string {
	if t == nil {
		return ""
	}
	system, ok := thinkingPrompts[kind]
	if !ok {
		kind = ThoughtReasoning
		system = thinkingPrompts[kind]
	}
	system += "\n\nThink aloud and be explicit about your reasoning process."

	resp, err := t.client.Complete(ctx, gateway.Request{
		Model: t.model,
		Messages: []gateway.Message{
			gateway.SystemMessage(system),
			gateway.UserMessage(fmt.Sprintf("Context: %s\n\nQuestion: %s", situation, question)),
		},
	})
	if err != nil {
		return ""
	}
	content := resp.TrimmedText()
	if content == "" {
		return ""
	}

	t.emitter.Emit(EventThought, map[string]any{
		"kind":    string(kind),
		"content": content,
	})
	return content
}

// AnalyzeFailure reasons about why a subtask failed before any replanning
// is attempted.
func (t *Thinker) AnalyzeFailure(ctx context.Context, task, errMsg string, attempts int) string {
	situation := fmt.Sprintf("Task: %s\nError: %s\nAttempts made: %d", task, errMsg, attempts)
	return t.Think(ctx, situation,
		"Why did this fail? What are the root causes? How can we fix it?", ThoughtReasoning)
}

// ReflectOnAction reasons about whether an action produced the expected
// outcome.
func (t *Thinker) ReflectOnAction(ctx context.Context, action, outcome, expected string) string {
	situation := fmt.Sprintf("Action taken: %s\nExpected outcome: %s\nActual result: %s",
		action, expected, outcome)
	return t.Think(ctx, situation,
		"Did this action achieve what we wanted? What should we do next?", ThoughtReflection)
}
