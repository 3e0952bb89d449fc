package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/kettleworks/foreman/gateway"
)

const stepEvaluatorSystemPrompt = `You are an evaluation agent. Assess how well a subtask was executed.

Consider:
1. Did the execution achieve the subtask's objective?
2. Was the output complete and correct?
3. Were there any errors or issues?

Output your assessment as valid JSON:
{
    "success": true,
    "score": 0.9,
    "reasoning": "Assessment reasoning",
    "issues": [],
    "suggestions": []
}

Score is a number between 0.0 and 1.0.`

const finalEvaluatorSystemPrompt = `You are an evaluation agent. Assess the overall outcome of a multi-step plan against its original goal.

Output your assessment as valid JSON:
{
    "summary": "Overall assessment of the run",
    "strengths": [],
    "weaknesses": [],
    "lessons_learned": []
}`

// Evaluator scores executed subtasks and synthesizes a final run assessment.
// Scoring degrades to deterministic results derived from execution outcomes
// when the gateway is unavailable, but success and overall score are always
// computed locally so the verdict cannot be inflated by the model.
type Evaluator struct {
	client           *gateway.Client
	model            string
	successThreshold float64
}

// NewEvaluator creates an Evaluator. successThreshold is the minimum mean
// step score for an overall success verdict; non-positive values fall back
// to the default of 0.7.
func NewEvaluator(client *gateway.Client, model string, successThreshold float64) *Evaluator {
	if successThreshold <= 0 {
		successThreshold = 0.7
	}
	return &Evaluator{client: client, model: model, successThreshold: successThreshold}
}

type stepPayload struct {
	Success     bool     `json:"success"`
	Score       float64  `json:"score"`
	Reasoning   string   `json:"reasoning"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

type finalPayload struct {
	Summary        string   `json:"summary"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	LessonsLearned []string `json:"lessons_learned"`
}

// EvaluateStep scores one executed subtask. It never fails: on gateway or
// parse failure the score is derived mechanically from the execution result.
func (e *Evaluator) EvaluateStep(ctx context.Context, task *SubTask, result ExecutionResult) StepEvaluation {
	eval := StepEvaluation{
		StepID:          task.ID,
		StepDescription: task.Description,
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Subtask: %s\n", task.Description)
	fmt.Fprintf(&sb, "Reasoning: %s\n", task.Reasoning)
	fmt.Fprintf(&sb, "Execution succeeded: %v\n", result.Success)
	if result.Output != "" {
		fmt.Fprintf(&sb, "Output:\n%s\n", result.Output)
	}
	if result.Error != "" {
		fmt.Fprintf(&sb, "Error: %s\n", result.Error)
	}
	fmt.Fprintf(&sb, "Tool calls made: %d\n", len(result.ToolCalls))
	sb.WriteString("\nPlease evaluate this execution.")

	resp, err := e.client.Complete(ctx, gateway.Request{
		Model: e.model,
		Messages: []gateway.Message{
			gateway.SystemMessage(stepEvaluatorSystemPrompt),
			gateway.UserMessage(sb.String()),
		},
	})
	if err != nil {
		return e.fallbackStep(eval, result)
	}

	var payload stepPayload
	if err := decodeFencedJSON(resp.Text, &payload); err != nil {
		return e.fallbackStep(eval, result)
	}

	eval.Success = payload.Success
	eval.Score = clampScore(payload.Score)
	eval.Reasoning = payload.Reasoning
	eval.Issues = payload.Issues
	eval.Suggestions = payload.Suggestions
	return eval
}

// fallbackStep derives a deterministic evaluation from the execution
// outcome alone.
func (e *Evaluator) fallbackStep(eval StepEvaluation, result ExecutionResult) StepEvaluation {
	eval.Success = result.Success
	eval.Reasoning = "Automatic evaluation based on execution status"
	if result.Success {
		eval.Score = 1.0
	} else {
		eval.Score = 0.0
		if result.Error != "" {
			eval.Issues = []string{result.Error}
		}
	}
	return eval
}

// EvaluateFinal synthesizes the final run evaluation. finalOutput is the
// output recorded on the plan's final subtask, shown to the model for
// context when present. The
// overall score is the exact mean of the step scores (0.0 when there are
// none) and the success verdict is the threshold comparison; only the
// narrative fields come from the model, with a templated fallback.
func (e *Evaluator) EvaluateFinal(ctx context.Context, plan *Plan, steps []StepEvaluation, finalOutput string) FinalEvaluation {
	final := FinalEvaluation{
		Goal:            plan.Goal,
		StepEvaluations: steps,
	}

	var total float64
	for _, s := range steps {
		total += s.Score
	}
	if len(steps) > 0 {
		final.OverallScore = total / float64(len(steps))
	}
	final.OverallSuccess = final.OverallScore >= e.successThreshold

	var sb strings.Builder
	fmt.Fprintf(&sb, "Goal: %s\n", plan.Goal)
	fmt.Fprintf(&sb, "Strategy: %s\n", plan.Strategy)
	fmt.Fprintf(&sb, "Overall score: %.2f (threshold %.2f)\n", final.OverallScore, e.successThreshold)
	fmt.Fprintf(&sb, "\nStep results:\n")
	for _, s := range steps {
		fmt.Fprintf(&sb, "- [%d] %s: score %.2f, %s\n", s.StepID, s.StepDescription, s.Score, s.Reasoning)
	}
	if finalOutput != "" {
		fmt.Fprintf(&sb, "\nFinal output:\n%s\n", finalOutput)
	}
	sb.WriteString("\nPlease provide an overall assessment of this run.")

	resp, err := e.client.Complete(ctx, gateway.Request{
		Model: e.model,
		Messages: []gateway.Message{
			gateway.SystemMessage(finalEvaluatorSystemPrompt),
			gateway.UserMessage(sb.String()),
		},
	})
	if err != nil {
		final.Summary = e.fallbackSummary(final)
		return final
	}

	var payload finalPayload
	if err := decodeFencedJSON(resp.Text, &payload); err != nil {
		final.Summary = e.fallbackSummary(final)
		return final
	}

	final.Summary = payload.Summary
	final.Strengths = payload.Strengths
	final.Weaknesses = payload.Weaknesses
	final.LessonsLearned = payload.LessonsLearned
	if final.Summary == "" {
		final.Summary = e.fallbackSummary(final)
	}
	return final
}

func (e *Evaluator) fallbackSummary(final FinalEvaluation) string {
	verdict := "did not achieve"
	if final.OverallSuccess {
		verdict = "achieved"
	}
	return fmt.Sprintf("The run %s the goal with an overall score of %.2f across %d evaluated steps.",
		verdict, final.OverallScore, len(final.StepEvaluations))
}

// clampScore bounds model-reported scores to [0, 1].
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
