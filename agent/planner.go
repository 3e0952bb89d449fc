package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kettleworks/foreman/gateway"
)

const plannerSystemPrompt = `You are an expert planning agent. Your task is to decompose complex goals into clear, actionable subtasks.

Rules:
1. Break down the goal into %d or fewer subtasks
2. Each subtask should be specific and actionable
3. Identify dependencies between subtasks
4. Provide reasoning for each subtask
5. Define a high-level strategy

Output your plan as valid JSON with this structure:
{
    "strategy": "Overall strategy description",
    "subtasks": [
        {
            "id": 1,
            "description": "Subtask description",
            "reasoning": "Why this subtask is needed",
            "dependencies": []
        }
    ]
}`

const replanSystemPrompt = `You are an expert planning agent. A previous plan has encountered issues and needs to be revised.

Analyze the situation and create an updated plan that:
1. Preserves completed subtasks
2. Addresses the failure
3. Adds new subtasks if needed
4. Adjusts the strategy

Output your updated plan in the same JSON format as before.`

// Planner turns a goal into a Plan and revises plans after failures. Both
// operations are total: any gateway or parse failure degrades to a
// deterministic fallback rather than an error.
type Planner struct {
	client      *gateway.Client
	model       string
	maxSubtasks int
}

// NewPlanner creates a Planner. maxSubtasks bounds decomposition;
// non-positive values fall back to the default of 20.
func NewPlanner(client *gateway.Client, model string, maxSubtasks int) *Planner {
	if maxSubtasks <= 0 {
		maxSubtasks = 20
	}
	return &Planner{client: client, model: model, maxSubtasks: maxSubtasks}
}

// planPayload is the wire schema the model is asked to produce.
type planPayload struct {
	Strategy string `json:"strategy"`
	SubTasks []struct {
		ID           int    `json:"id"`
		Description  string `json:"description"`
		Reasoning    string `json:"reasoning"`
		Dependencies []int  `json:"dependencies"`
	} `json:"subtasks"`
}

// CreatePlan decomposes the goal into a Plan. It never fails: when the
// gateway is unavailable or the response cannot be parsed, it returns the
// single-subtask fallback plan that executes the goal directly.
func (p *Planner) CreatePlan(ctx context.Context, goal, extra string) *Plan {
	userPrompt := fmt.Sprintf("Goal: %s\n", goal)
	if extra != "" {
		userPrompt += fmt.Sprintf("\nContext: %s\n", extra)
	}
	userPrompt += "\nPlease create a detailed plan to achieve this goal."

	resp, err := p.client.Complete(ctx, gateway.Request{
		Model: p.model,
		Messages: []gateway.Message{
			gateway.SystemMessage(fmt.Sprintf(plannerSystemPrompt, p.maxSubtasks)),
			gateway.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return p.fallbackPlan(goal)
	}

	plan, ok := p.decodePlan(goal, resp.Text, nil)
	if !ok {
		return p.fallbackPlan(goal)
	}
	return plan
}

// Replan revises a plan after a subtask failure, preserving completed work.
// On gateway or parse failure the original plan is returned unchanged;
// callers detect that identity to bound fruitless replanning.
func (p *Planner) Replan(ctx context.Context, original *Plan, completed map[int]bool, failureReason string) *Plan {
	completedIDs := make([]int, 0, len(completed))
	for id := range completed {
		completedIDs = append(completedIDs, id)
	}

	subtasksJSON, err := json.MarshalIndent(original.SubTasks, "", "  ")
	if err != nil {
		subtasksJSON = []byte("[]")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Original Goal: %s\n", original.Goal)
	fmt.Fprintf(&sb, "Original Strategy: %s\n", original.Strategy)
	fmt.Fprintf(&sb, "Completed Subtasks: %v\n", completedIDs)
	fmt.Fprintf(&sb, "Failure Reason: %s\n", failureReason)
	fmt.Fprintf(&sb, "\nOriginal Subtasks:\n%s\n", subtasksJSON)
	sb.WriteString("\nPlease create an updated plan to continue towards the goal.")

	resp, err := p.client.Complete(ctx, gateway.Request{
		Model: p.model,
		Messages: []gateway.Message{
			gateway.SystemMessage(replanSystemPrompt),
			gateway.UserMessage(sb.String()),
		},
	})
	if err != nil {
		return original
	}

	plan, ok := p.decodePlan(original.Goal, resp.Text, completed)
	if !ok {
		return original
	}
	if plan.Strategy == "" {
		plan.Strategy = original.Strategy
	}
	return plan
}

// decodePlan parses a model response into a normalized Plan. completed may
// be nil; when set, subtasks with a completed ID keep their completed
// status in the new plan.
func (p *Planner) decodePlan(goal, text string, completed map[int]bool) (*Plan, bool) {
	var payload planPayload
	if err := decodeFencedJSON(text, &payload); err != nil {
		return nil, false
	}
	if len(payload.SubTasks) == 0 {
		return nil, false
	}

	subtasks := make([]SubTask, 0, len(payload.SubTasks))
	for idx, raw := range payload.SubTasks {
		if idx >= p.maxSubtasks {
			break
		}
		if raw.Description == "" {
			return nil, false
		}
		id := raw.ID
		if id == 0 {
			id = idx + 1
		}
		status := StatusPending
		if completed[id] {
			status = StatusCompleted
		}
		subtasks = append(subtasks, SubTask{
			ID:           id,
			Description:  raw.Description,
			Reasoning:    raw.Reasoning,
			Dependencies: raw.Dependencies,
			Status:       status,
		})
	}

	plan := &Plan{
		Goal:      goal,
		SubTasks:  subtasks,
		Strategy:  payload.Strategy,
		CreatedAt: time.Now(),
	}
	if !plan.validIDs() {
		return nil, false
	}
	plan.pruneDanglingDependencies()
	return plan, true
}

// fallbackPlan is the deterministic single-subtask plan used when
// decomposition fails.
func (p *Planner) fallbackPlan(goal string) *Plan {
	return &Plan{
		Goal: goal,
		SubTasks: []SubTask{
			{
				ID:          1,
				Description: goal,
				Reasoning:   "Direct execution of the goal",
				Status:      StatusPending,
			},
		},
		Strategy:  "Direct execution",
		CreatedAt: time.Now(),
	}
}
