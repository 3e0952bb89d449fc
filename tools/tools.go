// Package tools defines the capability contract the agent exposes to the
// model and the registry used to dispatch invocations by name. Built-in
// tools cover file operations, command execution, and web content fetching.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kettleworks/foreman/gateway"
)

// Parameter describes one input of a tool.
type Parameter struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Enum        []string `json:"enum,omitempty"`
}

// Result is the structured outcome of one tool execution. Execute never
// returns a Go error for user-input-shaped failures; those become a Result
// with Success false and a descriptive Error.
type Result struct {
	Success bool   `json:"success"`
	Output  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Errorf builds a failed Result from a format string.
func Errorf(format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Ok builds a successful Result wrapping the given output.
func Ok(output any) Result {
	return Result{Success: true, Output: output}
}

// JSON renders the result as a JSON string for the conversation. Marshal
// failures degrade to a failed result rather than panicking.
func (r Result) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"unserializable tool result: %v"}`, err)
	}
	return string(data)
}

// Tool is an external capability the model can invoke during execution.
type Tool interface {
	Name() string
	Description() string
	Parameters() []Parameter
	Execute(ctx context.Context, args map[string]any) Result
}

// Registry manages tool registration and lookup.
type Registry struct {
	tools map[string]Tool
	order []string
	mu    sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds or replaces a tool in the registry.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := tool.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Get returns a registered tool by name, or nil if not found.
func (r *Registry) Get(name string) Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Names returns the names of all registered tools in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Definitions returns the gateway tool schema for all registered tools, in
// registration order.
func (r *Registry) Definitions() []gateway.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]gateway.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, Definition(r.tools[name]))
	}
	return defs
}

// Definition converts one tool into its JSON-Schema gateway definition.
func Definition(t Tool) gateway.ToolDefinition {
	properties := make(map[string]any)
	required := make([]string, 0)
	for _, p := range t.Parameters() {
		prop := map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return gateway.ToolDefinition{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}

// StringArg extracts a string argument from parsed tool arguments.
func StringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IntArg extracts an integer argument from parsed tool arguments.
func IntArg(args map[string]any, key string) (int, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}
