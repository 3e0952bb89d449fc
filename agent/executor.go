package agent

import (
	"context"
	"fmt"

	"github.com/kettleworks/foreman/gateway"
	"github.com/kettleworks/foreman/tools"
)

const executorSystemPrompt = `You are an execution agent. Complete the given task using the available tools.

Work step by step. Call tools when you need to read or write files, run commands, or fetch web content. When the task is complete, respond with a concise summary of what was accomplished instead of calling more tools.`

// Executor carries out a single subtask through a bounded tool-calling
// conversation with the model.
type Executor struct {
	client        *gateway.Client
	model         string
	registry      *tools.Registry
	maxIterations int
	emitter       *EventEmitter
	thinker       *Thinker
}

// NewExecutor creates an Executor. maxIterations bounds the tool-calling
// loop; non-positive values fall back to the default of 10.
func NewExecutor(client *gateway.Client, model string, registry *tools.Registry, maxIterations int) *Executor {
	if maxIterations <= 0 {
		maxIterations = 10
	}
	return &Executor{
		client:        client,
		model:         model,
		registry:      registry,
		maxIterations: maxIterations,
	}
}

// SetEmitter attaches an event emitter for tool call and result events.
// A nil emitter disables emission.
func (e *Executor) SetEmitter(emitter *EventEmitter) {
	e.emitter = emitter
}

// SetThinker attaches a Thinker that reflects on successful tool results.
// A nil thinker disables reflection.
func (e *Executor) SetThinker(thinker *Thinker) {
	e.thinker = thinker
}

// ExecuteTask runs the tool-calling loop for one subtask. planCtx provides
// plan context for the prompt. Gateway errors propagate to the caller; tool
// failures do not, they are reported back to the model as error tool
// results.
func (e *Executor) ExecuteTask(ctx context.Context, task *SubTask, planCtx string) (ExecutionResult, error) {
	userPrompt := fmt.Sprintf("Task: %s\n\nReasoning: %s", task.Description, task.Reasoning)
	if planCtx != "" {
		userPrompt += fmt.Sprintf("\n\nPlan context:\n%s", planCtx)
	}

	messages := []gateway.Message{
		gateway.SystemMessage(executorSystemPrompt),
		gateway.UserMessage(userPrompt),
	}

	result := ExecutionResult{}

	for iteration := 0; iteration < e.maxIterations; iteration++ {
		resp, err := e.client.Complete(ctx, gateway.Request{
			Model:    e.model,
			Messages: messages,
			ToolDefs: e.registry.Definitions(),
		})
		if err != nil {
			return ExecutionResult{}, err
		}

		if !resp.HasToolCalls() {
			// A completion that stopped for any reason other than a normal
			// stop, such as hitting the token limit, is not an answer. Keep
			// the partial text in the conversation and iterate again, so
			// truncation counts against the budget.
			if resp.StopReason != gateway.StopNormal {
				messages = append(messages, gateway.AssistantMessage(resp.Text))
				continue
			}
			result.Success = true
			result.Output = resp.TrimmedText()
			return result, nil
		}

		messages = append(messages, gateway.AssistantMessage(resp.Text, resp.ToolCalls...))

		for _, call := range resp.ToolCalls {
			args := call.ArgumentMap()
			e.emitter.Emit(EventToolCall, map[string]any{
				"task_id":   task.ID,
				"tool":      call.Name,
				"arguments": args,
			})

			toolResult := e.invoke(ctx, call.Name, args)
			result.ToolCalls = append(result.ToolCalls, ToolInvocation{
				Tool:      call.Name,
				Arguments: args,
				Result:    toolResult,
			})

			e.emitter.Emit(EventToolResult, map[string]any{
				"task_id": task.ID,
				"tool":    call.Name,
				"success": toolResult.Success,
			})

			if toolResult.Success {
				e.thinker.ReflectOnAction(ctx,
					fmt.Sprintf("Used %s with %v", call.Name, args),
					toolResult.JSON(), "Successfully execute the tool")
			}

			messages = append(messages, gateway.ToolResultMessage(
				call.ID, call.Name, toolResult.JSON(), !toolResult.Success))
		}
	}

	result.Success = false
	result.Error = "exceeded maximum iterations"
	return result, nil
}

// invoke dispatches a tool call. Unknown tool names produce an error result
// so the model can correct itself on the next turn.
func (e *Executor) invoke(ctx context.Context, name string, args map[string]any) tools.Result {
	tool := e.registry.Get(name)
	if tool == nil {
		return tools.Errorf("unknown tool: %s", name)
	}
	return tool.Execute(ctx, args)
}
