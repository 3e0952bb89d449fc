package agent

import (
	"time"

	"github.com/kettleworks/foreman/tools"
)

// SubTaskStatus tracks a subtask through its lifecycle.
type SubTaskStatus string

const (
	StatusPending    SubTaskStatus = "pending"
	StatusInProgress SubTaskStatus = "in_progress"
	StatusCompleted  SubTaskStatus = "completed"
	StatusFailed     SubTaskStatus = "failed"
)

// TaskResult is the structured outcome folded into a SubTask after
// execution.
type TaskResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SubTask is one unit of planned work. Status and Result are mutated only
// by the Agent after the Executor returns; failed subtasks persist in the
// plan for audit and replan context.
type SubTask struct {
	ID           int           `json:"id"`
	Description  string        `json:"description"`
	Reasoning    string        `json:"reasoning,omitempty"`
	Dependencies []int         `json:"dependencies,omitempty"`
	Status       SubTaskStatus `json:"status"`
	Result       *TaskResult   `json:"result,omitempty"`
}

// Plan is an ordered sequence of subtasks plus the strategy that produced
// them. Subtask order is declaration order, not execution order. Plans are
// treated as values: Replan builds a new Plan rather than mutating the old
// one.
type Plan struct {
	Goal      string    `json:"goal"`
	SubTasks  []SubTask `json:"subtasks"`
	Strategy  string    `json:"strategy"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() *Plan {
	clone := &Plan{
		Goal:      p.Goal,
		Strategy:  p.Strategy,
		CreatedAt: p.CreatedAt,
		SubTasks:  make([]SubTask, len(p.SubTasks)),
	}
	copy(clone.SubTasks, p.SubTasks)
	for i := range clone.SubTasks {
		if deps := p.SubTasks[i].Dependencies; deps != nil {
			clone.SubTasks[i].Dependencies = append([]int(nil), deps...)
		}
		if res := p.SubTasks[i].Result; res != nil {
			copied := *res
			clone.SubTasks[i].Result = &copied
		}
	}
	return clone
}

// validIDs reports whether all subtask IDs are unique.
func (p *Plan) validIDs() bool {
	seen := make(map[int]bool, len(p.SubTasks))
	for _, st := range p.SubTasks {
		if seen[st.ID] {
			return false
		}
		seen[st.ID] = true
	}
	return true
}

// pruneDanglingDependencies removes dependency IDs that do not refer to any
// subtask in the plan, preserving the invariant that every dependency
// resolves within the plan.
func (p *Plan) pruneDanglingDependencies() {
	ids := make(map[int]bool, len(p.SubTasks))
	for _, st := range p.SubTasks {
		ids[st.ID] = true
	}
	for i := range p.SubTasks {
		deps := p.SubTasks[i].Dependencies[:0]
		for _, dep := range p.SubTasks[i].Dependencies {
			if ids[dep] {
				deps = append(deps, dep)
			}
		}
		p.SubTasks[i].Dependencies = deps
	}
}

// ToolInvocation records one tool call made during task execution.
type ToolInvocation struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
	Result    tools.Result   `json:"result"`
}

// ExecutionResult is produced once per Executor invocation and folded into
// the owning subtask's TaskResult by the Agent.
type ExecutionResult struct {
	Success   bool             `json:"success"`
	Output    string           `json:"output,omitempty"`
	Error     string           `json:"error,omitempty"`
	ToolCalls []ToolInvocation `json:"tool_calls,omitempty"`
}

// taskResult converts the execution result into the form stored on a
// SubTask.
func (r ExecutionResult) taskResult() *TaskResult {
	return &TaskResult{Success: r.Success, Output: r.Output, Error: r.Error}
}

// StepEvaluation scores one executed subtask.
type StepEvaluation struct {
	StepID          int      `json:"step_id"`
	StepDescription string   `json:"step_description"`
	Success         bool     `json:"success"`
	Score           float64  `json:"score"`
	Reasoning       string   `json:"reasoning"`
	Issues          []string `json:"issues,omitempty"`
	Suggestions     []string `json:"suggestions,omitempty"`
}

// FinalEvaluation is the terminal artifact of one Run invocation.
type FinalEvaluation struct {
	Goal            string           `json:"goal"`
	OverallSuccess  bool             `json:"overall_success"`
	OverallScore    float64          `json:"overall_score"`
	StepEvaluations []StepEvaluation `json:"step_evaluations"`
	Summary         string           `json:"summary"`
	Strengths       []string         `json:"strengths,omitempty"`
	Weaknesses      []string         `json:"weaknesses,omitempty"`
	LessonsLearned  []string         `json:"lessons_learned,omitempty"`
}
