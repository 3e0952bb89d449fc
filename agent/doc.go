// Package agent implements the plan-execute-evaluate orchestration loop.
//
// A goal is decomposed by the Planner into a Plan of dependency-annotated
// subtasks. The Agent walks the plan in declared order, driving each
// eligible subtask through the Executor's bounded tool-calling loop and
// scoring the outcome with the Evaluator. Failed subtasks can trigger a
// replan, which replaces the remaining subtask sequence. The run ends with
// a FinalEvaluation aggregating all step scores.
//
// When thinking is enabled, a Thinker surrounds the loop with explicit
// reasoning steps, emitted as thought events: once before planning, after
// each successful tool call, and when a subtask fails. Thinking is purely
// advisory and never changes a run's outcome.
//
// The loop is single-threaded and synchronous: subtasks never execute
// concurrently, even when the dependency graph would permit it. The only
// shared state across subtasks is the completed-ID set and the current
// plan, both owned by the Agent for the duration of one Run call.
//
// Model-output parsing is deliberately tolerant: planner and evaluator
// responses are decoded with decodeFencedJSON and every parse failure
// degrades to a deterministic fallback value instead of an error. The
// planner and evaluator also absorb gateway transport faults into their
// fallbacks; only a persistent gateway fault inside the executor's loop,
// or context cancellation, makes Run return an error.
package agent
