package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kettleworks/foreman/gateway"
	"github.com/kettleworks/foreman/tools"
)

// Recorder persists completed runs. Persistence is best effort: a Recorder
// error never fails the run.
type Recorder interface {
	SaveRun(ctx context.Context, rec RunRecord) error
}

// RunRecord is the persistence snapshot of one completed run.
type RunRecord struct {
	RunID       string
	Goal        string
	Plan        *Plan
	Evaluation  *FinalEvaluation
	StartedAt   time.Time
	CompletedAt time.Time
}

// Agent drives the plan, execute, evaluate loop. A single Agent runs one
// goal at a time; Run is not safe for concurrent use.
type Agent struct {
	cfg       Config
	client    *gateway.Client
	registry  *tools.Registry
	planner   *Planner
	executor  *Executor
	evaluator *Evaluator
	thinker   *Thinker
	emitter   *EventEmitter
	recorder  Recorder
}

// Option configures an Agent.
type Option func(*Agent)

// WithRecorder attaches a run history sink.
func WithRecorder(r Recorder) Option {
	return func(a *Agent) { a.recorder = r }
}

// WithEventBuffer sets the event channel capacity.
func WithEventBuffer(n int) Option {
	return func(a *Agent) { a.emitter = NewEventEmitter("", n) }
}

// New creates an Agent from a config, a gateway client, and a tool
// registry.
func New(cfg Config, client *gateway.Client, registry *tools.Registry, opts ...Option) *Agent {
	a := &Agent{
		cfg:      cfg,
		client:   client,
		registry: registry,
		emitter:  NewEventEmitter("", 0),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.planner = NewPlanner(client, cfg.LLM.Model, cfg.Planning.MaxSubtasks)
	a.executor = NewExecutor(client, cfg.LLM.Model, registry, cfg.Agent.MaxIterations)
	a.executor.SetEmitter(a.emitter)
	a.evaluator = NewEvaluator(client, cfg.LLM.Model, cfg.Evaluation.SuccessThreshold)
	if cfg.Agent.ThinkingEnabled {
		a.thinker = NewThinker(client, cfg.LLM.Model)
		a.thinker.SetEmitter(a.emitter)
		a.executor.SetThinker(a.thinker)
	}
	return a
}

// Events returns the progress event channel. The channel is closed by
// Close, not at the end of a run.
func (a *Agent) Events() <-chan Event {
	return a.emitter.Events()
}

// Close releases the event channel. Call after the last run.
func (a *Agent) Close() {
	a.emitter.Close()
}

// Run plans the goal, executes the plan's subtasks in declaration order,
// and returns the final evaluation. Subtasks whose dependencies have not
// completed are skipped, never deferred. A failed subtask triggers a
// bounded replan when replanning is enabled; the new plan replaces the
// current one and iteration resumes after the failed subtask's position
// in it. Run returns an error only for persistent gateway faults during
// execution or context cancellation; everything else degrades into the
// evaluation.
func (a *Agent) Run(ctx context.Context, goal, extra string) (*FinalEvaluation, error) {
	runID := uuid.NewString()
	a.emitter.setRun(runID)
	startedAt := time.Now()

	a.emitter.Emit(EventRunStart, map[string]any{"goal": goal})

	situation := extra
	if situation == "" {
		situation = "Starting new task"
	}
	a.thinker.Think(ctx, situation,
		fmt.Sprintf("What is the best approach to achieve this goal: %s?", goal), ThoughtReasoning)

	plan := a.planner.CreatePlan(ctx, goal, extra)
	a.emitter.Emit(EventPlanCreated, map[string]any{
		"strategy": plan.Strategy,
		"subtasks": len(plan.SubTasks),
	})

	completed := make(map[int]bool)
	var steps []StepEvaluation
	replansUsed := 0

	for i := 0; i < len(plan.SubTasks); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		task := &plan.SubTasks[i]
		if task.Status == StatusCompleted {
			continue
		}
		if !depsMet(task, completed) {
			a.emitter.Emit(EventSubtaskSkip, map[string]any{
				"task_id":      task.ID,
				"dependencies": task.Dependencies,
			})
			continue
		}

		result, eval, err := a.runStep(ctx, task, plan)
		if err != nil {
			return nil, err
		}
		steps = append(steps, eval)

		if result.Success {
			completed[task.ID] = true
			continue
		}

		reason := result.Error
		if reason == "" {
			reason = fmt.Sprintf("subtask %d failed", task.ID)
		}
		a.thinker.AnalyzeFailure(ctx, task.Description, reason, 1)

		if !a.cfg.Planning.AllowReplanning || replansUsed >= a.cfg.Planning.MaxReplans {
			continue
		}
		replansUsed++
		newPlan := a.planner.Replan(ctx, plan, completed, reason)
		if newPlan == plan {
			continue
		}

		a.emitter.Emit(EventReplan, map[string]any{
			"failed_task": task.ID,
			"strategy":    newPlan.Strategy,
			"subtasks":    len(newPlan.SubTasks),
		})
		// Resume after the failed subtask's position in the new plan;
		// when it is absent, keep the current position.
		for j := range newPlan.SubTasks {
			if newPlan.SubTasks[j].ID == task.ID {
				i = j
				break
			}
		}
		plan = newPlan
	}

	final := a.finalEvaluation(ctx, plan, steps, lastSubtaskOutput(plan))
	a.emitter.Emit(EventRunEnd, map[string]any{
		"success": final.OverallSuccess,
		"score":   final.OverallScore,
	})

	a.record(ctx, RunRecord{
		RunID:       runID,
		Goal:        goal,
		Plan:        plan.Clone(),
		Evaluation:  final,
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
	})
	return final, nil
}

// RunTopological is Run with dependency-driven scheduling: ready subtasks
// are those whose dependencies have all completed, chosen in declaration
// order among the ready set, so a subtask declared before its dependency
// is deferred instead of skipped. Subtasks left unready when no progress
// is possible are skipped. Replanning is not attempted.
func (a *Agent) RunTopological(ctx context.Context, goal, extra string) (*FinalEvaluation, error) {
	runID := uuid.NewString()
	a.emitter.setRun(runID)
	startedAt := time.Now()

	a.emitter.Emit(EventRunStart, map[string]any{"goal": goal, "scheduling": "topological"})

	plan := a.planner.CreatePlan(ctx, goal, extra)
	a.emitter.Emit(EventPlanCreated, map[string]any{
		"strategy": plan.Strategy,
		"subtasks": len(plan.SubTasks),
	})

	completed := make(map[int]bool)
	done := make(map[int]bool)
	var steps []StepEvaluation

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var task *SubTask
		for i := range plan.SubTasks {
			t := &plan.SubTasks[i]
			if done[t.ID] || !depsMet(t, completed) {
				continue
			}
			task = t
			break
		}
		if task == nil {
			break
		}

		done[task.ID] = true
		result, eval, err := a.runStep(ctx, task, plan)
		if err != nil {
			return nil, err
		}
		steps = append(steps, eval)
		if result.Success {
			completed[task.ID] = true
		}
	}

	for i := range plan.SubTasks {
		t := &plan.SubTasks[i]
		if !done[t.ID] {
			a.emitter.Emit(EventSubtaskSkip, map[string]any{
				"task_id":      t.ID,
				"dependencies": t.Dependencies,
			})
		}
	}

	final := a.finalEvaluation(ctx, plan, steps, lastSubtaskOutput(plan))
	a.emitter.Emit(EventRunEnd, map[string]any{
		"success": final.OverallSuccess,
		"score":   final.OverallScore,
	})

	a.record(ctx, RunRecord{
		RunID:       runID,
		Goal:        goal,
		Plan:        plan.Clone(),
		Evaluation:  final,
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
	})
	return final, nil
}

// QuickTask executes a single task directly, without planning or
// evaluation.
func (a *Agent) QuickTask(ctx context.Context, description string) (ExecutionResult, error) {
	a.emitter.setRun(uuid.NewString())
	task := SubTask{ID: 1, Description: description, Status: StatusPending}
	return a.executor.ExecuteTask(ctx, &task, "")
}

// runStep executes one subtask and scores it, updating the subtask's
// status and result in place. A gateway fault from the executor is
// returned as an error; it is fatal for the whole run.
func (a *Agent) runStep(ctx context.Context, task *SubTask, plan *Plan) (ExecutionResult, StepEvaluation, error) {
	task.Status = StatusInProgress
	a.emitter.Emit(EventSubtaskStart, map[string]any{
		"task_id":     task.ID,
		"description": task.Description,
	})

	result, err := a.executor.ExecuteTask(ctx, task, planContext(plan, task))
	if err != nil {
		task.Status = StatusFailed
		a.emitter.Emit(EventError, map[string]any{
			"task_id": task.ID,
			"error":   err.Error(),
		})
		return ExecutionResult{}, StepEvaluation{}, err
	}

	task.Result = result.taskResult()
	if result.Success {
		task.Status = StatusCompleted
	} else {
		task.Status = StatusFailed
	}
	a.emitter.Emit(EventSubtaskEnd, map[string]any{
		"task_id": task.ID,
		"success": result.Success,
	})

	var eval StepEvaluation
	if a.cfg.Evaluation.StepEvaluation {
		eval = a.evaluator.EvaluateStep(ctx, task, result)
	} else {
		eval = a.evaluator.fallbackStep(StepEvaluation{
			StepID:          task.ID,
			StepDescription: task.Description,
		}, result)
	}
	a.emitter.Emit(EventStepEvaluated, map[string]any{
		"task_id": task.ID,
		"score":   eval.Score,
		"success": eval.Success,
	})
	return result, eval, nil
}

// finalEvaluation produces the terminal evaluation, skipping the model
// call when final evaluation is disabled.
func (a *Agent) finalEvaluation(ctx context.Context, plan *Plan, steps []StepEvaluation, finalOutput string) *FinalEvaluation {
	if a.cfg.Evaluation.FinalEvaluation {
		final := a.evaluator.EvaluateFinal(ctx, plan, steps, finalOutput)
		return &final
	}

	final := FinalEvaluation{Goal: plan.Goal, StepEvaluations: steps}
	var total float64
	for _, s := range steps {
		total += s.Score
	}
	if len(steps) > 0 {
		final.OverallScore = total / float64(len(steps))
	}
	final.OverallSuccess = final.OverallScore >= a.evaluator.successThreshold
	final.Summary = a.evaluator.fallbackSummary(final)
	return &final
}

func (a *Agent) record(ctx context.Context, rec RunRecord) {
	if a.recorder == nil {
		return
	}
	if err := a.recorder.SaveRun(ctx, rec); err != nil {
		a.emitter.Emit(EventError, map[string]any{"error": "history save failed: " + err.Error()})
	}
}

// lastSubtaskOutput returns the output recorded on the plan's final
// subtask. It is empty when that subtask was skipped or failed without
// producing output, even if an earlier subtask produced some.
func lastSubtaskOutput(plan *Plan) string {
	if len(plan.SubTasks) == 0 {
		return ""
	}
	if res := plan.SubTasks[len(plan.SubTasks)-1].Result; res != nil {
		return res.Output
	}
	return ""
}

// depsMet reports whether every dependency of the subtask has completed.
func depsMet(task *SubTask, completed map[int]bool) bool {
	for _, dep := range task.Dependencies {
		if !completed[dep] {
			return false
		}
	}
	return true
}

// planContext renders the surrounding plan for the executor prompt.
func planContext(plan *Plan, current *SubTask) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Goal: %s\nStrategy: %s\n", plan.Goal, plan.Strategy)
	for i := range plan.SubTasks {
		t := &plan.SubTasks[i]
		marker := " "
		switch {
		case t.ID == current.ID:
			marker = ">"
		case t.Status == StatusCompleted:
			marker = "x"
		case t.Status == StatusFailed:
			marker = "!"
		}
		fmt.Fprintf(&sb, "[%s] %d. %s\n", marker, t.ID, t.Description)
	}
	return sb.String()
}
