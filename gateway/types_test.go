package gateway

import (
	"encoding/json"
	"testing"
)

func TestToolCallArgumentMap(t *testing.T) {
	tests := []struct {
		name string
		args string
		want map[string]any
	}{
		{"valid object", `{"path":"a.txt","n":3}`, map[string]any{"path": "a.txt", "n": float64(3)}},
		{"empty", ``, map[string]any{}},
		{"malformed", `{"path": unquoted}`, map[string]any{}},
		{"wrong shape", `[1,2,3]`, map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := ToolCall{Name: "x", Arguments: json.RawMessage(tt.args)}
			got := tc.ArgumentMap()
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d keys, got %d (%v)", len(tt.want), len(got), got)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("key %q: expected %v, got %v", k, v, got[k])
				}
			}
		})
	}
}

func TestMessageConstructors(t *testing.T) {
	sys := SystemMessage("be helpful")
	if sys.Role != RoleSystem || sys.Content != "be helpful" {
		t.Errorf("unexpected system message: %+v", sys)
	}

	tr := ToolResultMessage("call_1", "read_file", "contents", false)
	if tr.Role != RoleTool || tr.ToolCallID != "call_1" || tr.ToolName != "read_file" {
		t.Errorf("unexpected tool result message: %+v", tr)
	}

	call := ToolCall{ID: "call_2", Name: "write_file", Arguments: json.RawMessage(`{}`)}
	asst := AssistantMessage("thinking", call)
	if len(asst.ToolCalls) != 1 || asst.ToolCalls[0].ID != "call_2" {
		t.Errorf("unexpected assistant message: %+v", asst)
	}
}

func TestUsageAdd(t *testing.T) {
	a := Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}
	b := Usage{InputTokens: 1, OutputTokens: 2, TotalTokens: 3}

	sum := a.Add(b)
	if sum.InputTokens != 11 || sum.OutputTokens != 7 || sum.TotalTokens != 18 {
		t.Errorf("unexpected sum: %+v", sum)
	}
}

func TestResponseHelpers(t *testing.T) {
	resp := Response{Text: "  done \n", ToolCalls: []ToolCall{{Name: "x"}}}
	if !resp.HasToolCalls() {
		t.Error("expected HasToolCalls to be true")
	}
	if resp.TrimmedText() != "done" {
		t.Errorf("unexpected trimmed text: %q", resp.TrimmedText())
	}

	empty := Response{}
	if empty.HasToolCalls() {
		t.Error("expected HasToolCalls to be false")
	}
}
