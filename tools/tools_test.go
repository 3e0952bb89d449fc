package tools

import (
	"context"
	"testing"
)

// staticTool is a minimal Tool for registry tests.
type staticTool struct {
	name   string
	params []Parameter
	result Result
}

func (s *staticTool) Name() string            { return s.name }
func (s *staticTool) Description() string     { return "static test tool" }
func (s *staticTool) Parameters() []Parameter { return s.params }
func (s *staticTool) Execute(ctx context.Context, args map[string]any) Result {
	return s.result
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	tool := &staticTool{name: "alpha"}
	reg.Register(tool)

	if got := reg.Get("alpha"); got != tool {
		t.Errorf("expected registered tool, got %v", got)
	}
	if got := reg.Get("missing"); got != nil {
		t.Errorf("expected nil for unknown tool, got %v", got)
	}
	if reg.Count() != 1 {
		t.Errorf("expected count 1, got %d", reg.Count())
	}
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		reg.Register(&staticTool{name: name})
	}

	names := reg.Names()
	want := []string{"c", "a", "b"}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("expected order %v, got %v", want, names)
		}
	}

	// Re-registering keeps the original slot.
	reg.Register(&staticTool{name: "a"})
	if reg.Count() != 3 {
		t.Errorf("expected count 3 after replacement, got %d", reg.Count())
	}
}

func TestDefinitionSchema(t *testing.T) {
	tool := &staticTool{
		name: "demo",
		params: []Parameter{
			{Name: "path", Type: "string", Description: "a path", Required: true},
			{Name: "mode", Type: "string", Description: "a mode", Enum: []string{"fast", "slow"}},
		},
	}

	def := Definition(tool)
	if def.Name != "demo" {
		t.Errorf("expected name demo, got %q", def.Name)
	}

	props, ok := def.Parameters["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected properties map, got %T", def.Parameters["properties"])
	}
	if _, ok := props["path"]; !ok {
		t.Error("expected path property")
	}
	mode, ok := props["mode"].(map[string]any)
	if !ok {
		t.Fatalf("expected mode property map")
	}
	if enum, ok := mode["enum"].([]string); !ok || len(enum) != 2 {
		t.Errorf("expected enum with 2 values, got %v", mode["enum"])
	}

	required, ok := def.Parameters["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "path" {
		t.Errorf("expected required [path], got %v", required)
	}
}

func TestResultJSON(t *testing.T) {
	ok := Ok(map[string]any{"value": 1})
	if ok.JSON() != `{"success":true,"result":{"value":1}}` {
		t.Errorf("unexpected JSON: %s", ok.JSON())
	}

	failed := Errorf("boom: %d", 7)
	if failed.JSON() != `{"success":false,"error":"boom: 7"}` {
		t.Errorf("unexpected JSON: %s", failed.JSON())
	}
}

func TestArgHelpers(t *testing.T) {
	args := map[string]any{
		"s": "text",
		"f": float64(42),
		"i": 7,
		"b": true,
	}

	if v, ok := StringArg(args, "s"); !ok || v != "text" {
		t.Errorf("StringArg failed: %v %v", v, ok)
	}
	if _, ok := StringArg(args, "f"); ok {
		t.Error("expected StringArg to reject non-string")
	}
	if v, ok := IntArg(args, "f"); !ok || v != 42 {
		t.Errorf("IntArg float failed: %v %v", v, ok)
	}
	if v, ok := IntArg(args, "i"); !ok || v != 7 {
		t.Errorf("IntArg int failed: %v %v", v, ok)
	}
	if _, ok := IntArg(args, "b"); ok {
		t.Error("expected IntArg to reject bool")
	}
	if _, ok := IntArg(args, "missing"); ok {
		t.Error("expected IntArg to reject missing key")
	}
}
