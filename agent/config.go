package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the agent's tunables, grouped the way a config file lays
// them out.
type Config struct {
	Agent      AgentConfig      `yaml:"agent"`
	LLM        LLMConfig        `yaml:"llm"`
	Planning   PlanningConfig   `yaml:"planning"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
}

// AgentConfig configures the run loop itself.
type AgentConfig struct {
	Name          string `yaml:"name"`
	MaxIterations int    `yaml:"max_iterations"` // executor tool-loop budget per subtask
	Workspace     string `yaml:"workspace"`
	// ThinkingEnabled turns on explicit reasoning steps before planning,
	// after successful tool calls, and when a subtask fails.
	ThinkingEnabled bool `yaml:"thinking_enabled"`
}

// LLMConfig selects the provider and sampling parameters.
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// PlanningConfig bounds decomposition and replanning.
type PlanningConfig struct {
	MaxSubtasks     int  `yaml:"max_subtasks"`
	AllowReplanning bool `yaml:"allow_replanning"`
	// MaxReplans caps consecutive fruitless replans per run so a gateway
	// that keeps producing unparsable revisions cannot loop forever.
	MaxReplans int `yaml:"max_replans"`
}

// EvaluationConfig controls per-step and final scoring.
type EvaluationConfig struct {
	StepEvaluation   bool    `yaml:"step_evaluation"`
	FinalEvaluation  bool    `yaml:"final_evaluation"`
	SuccessThreshold float64 `yaml:"success_threshold"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		Agent: AgentConfig{
			Name:            "foreman",
			MaxIterations:   10,
			ThinkingEnabled: true,
		},
		LLM: LLMConfig{
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Planning: PlanningConfig{
			MaxSubtasks:     20,
			AllowReplanning: true,
			MaxReplans:      3,
		},
		Evaluation: EvaluationConfig{
			StepEvaluation:   true,
			FinalEvaluation:  true,
			SuccessThreshold: 0.7,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults, so omitted keys
// keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
