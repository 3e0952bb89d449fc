package agent

import (
	"context"
	"strings"
	"testing"
)

func TestThinkEmitsThought(t *testing.T) {
	client, adapter := scriptClient(textResponse("  the plan should start small  "))
	emitter := NewEventEmitter("run-1", 8)
	thinker := NewThinker(client, "test-model")
	thinker.SetEmitter(emitter)

	got := thinker.Think(context.Background(), "a fresh workspace", "where to begin?", ThoughtReasoning)
	if got != "the plan should start small" {
		t.Errorf("thought = %q", got)
	}

	prompt := adapter.prompts[0]
	user := prompt.Messages[1].Content
	if !strings.Contains(user, "Context: a fresh workspace") {
		t.Errorf("user prompt = %q, want the situation", user)
	}
	if !strings.Contains(user, "Question: where to begin?") {
		t.Errorf("user prompt = %q, want the question", user)
	}

	emitter.Close()
	var events []Event
	for ev := range emitter.Events() {
		events = append(events, ev)
	}
	if len(events) != 1 || events[0].Kind != EventThought {
		t.Fatalf("events = %v, want one thought", events)
	}
	if events[0].Data["kind"] != "reasoning" {
		t.Errorf("thought kind = %v", events[0].Data["kind"])
	}
	if events[0].Data["content"] != "the plan should start small" {
		t.Errorf("thought content = %v", events[0].Data["content"])
	}
}

func TestThinkUnknownKindFallsBackToReasoning(t *testing.T) {
	client, adapter := scriptClient(textResponse("thought"))
	thinker := NewThinker(client, "test-model")

	thinker.Think(context.Background(), "s", "q", ThoughtKind("daydream"))
	system := adapter.prompts[0].Messages[0].Content
	if !strings.Contains(system, "step by step") {
		t.Errorf("system prompt = %q, want the reasoning prompt", system)
	}
}

func TestThinkAbsorbsGatewayFault(t *testing.T) {
	client, _ := scriptClient(failEntry(fatalError("down")))
	emitter := NewEventEmitter("run-1", 8)
	thinker := NewThinker(client, "test-model")
	thinker.SetEmitter(emitter)

	if got := thinker.Think(context.Background(), "s", "q", ThoughtReflection); got != "" {
		t.Errorf("thought = %q, want empty on gateway fault", got)
	}

	emitter.Close()
	for ev := range emitter.Events() {
		t.Errorf("unexpected event %s", ev.Kind)
	}
}

func TestThinkNilThinker(t *testing.T) {
	var thinker *Thinker
	if got := thinker.Think(context.Background(), "s", "q", ThoughtReasoning); got != "" {
		t.Errorf("thought = %q, want empty on nil thinker", got)
	}
	if got := thinker.AnalyzeFailure(context.Background(), "t", "e", 1); got != "" {
		t.Errorf("analysis = %q, want empty on nil thinker", got)
	}
}

func TestAnalyzeFailurePrompt(t *testing.T) {
	client, adapter := scriptClient(textResponse("the file path was wrong"))
	thinker := NewThinker(client, "test-model")

	got := thinker.AnalyzeFailure(context.Background(), "read the config", "file not found", 2)
	if got != "the file path was wrong" {
		t.Errorf("analysis = %q", got)
	}

	user := adapter.prompts[0].Messages[1].Content
	for _, want := range []string{"Task: read the config", "Error: file not found", "Attempts made: 2", "Why did this fail?"} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt = %q, missing %q", user, want)
		}
	}
}

func TestReflectOnActionPrompt(t *testing.T) {
	client, adapter := scriptClient(textResponse("the write worked"))
	thinker := NewThinker(client, "test-model")

	thinker.ReflectOnAction(context.Background(), "wrote poem.txt", `{"success": true}`, "file on disk")

	user := adapter.prompts[0].Messages[1].Content
	for _, want := range []string{"Action taken: wrote poem.txt", "Expected outcome: file on disk", `Actual result: {"success": true}`} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt = %q, missing %q", user, want)
		}
	}
}
