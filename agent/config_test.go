package agent

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
agent:
  name: poet
  max_iterations: 5
  thinking_enabled: false
llm:
  provider: anthropic
  model: claude-sonnet-4-20250514
planning:
  max_subtasks: 8
evaluation:
  success_threshold: 0.9
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Agent.Name != "poet" || cfg.Agent.MaxIterations != 5 {
		t.Errorf("agent = %+v", cfg.Agent)
	}
	if cfg.Agent.ThinkingEnabled {
		t.Error("thinking_enabled: false should override the default")
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("provider = %q", cfg.LLM.Provider)
	}
	if cfg.Planning.MaxSubtasks != 8 {
		t.Errorf("max subtasks = %d", cfg.Planning.MaxSubtasks)
	}
	if cfg.Evaluation.SuccessThreshold != 0.9 {
		t.Errorf("threshold = %v", cfg.Evaluation.SuccessThreshold)
	}
	// Keys absent from the file keep their defaults.
	if cfg.LLM.MaxTokens != 4096 {
		t.Errorf("max tokens = %d, want default", cfg.LLM.MaxTokens)
	}
	if cfg.Planning.MaxReplans != 3 {
		t.Errorf("max replans = %d, want default", cfg.Planning.MaxReplans)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("agent: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}
