package tools

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// defaultCommandTimeout bounds command execution when the model does not
// supply a timeout.
const defaultCommandTimeout = 30 * time.Second

// CommandTool executes a shell command in a subprocess and reports
// stdout, stderr, and the exit code. A non-zero exit code is a failed
// result, not an error.
type CommandTool struct {
	Workspace  string
	Shell      string
	MaxTimeout time.Duration
}

// NewCommandTool creates a CommandTool running under /bin/sh in the given
// workspace directory.
func NewCommandTool(workspace string) *CommandTool {
	return &CommandTool{
		Workspace:  workspace,
		Shell:      "/bin/sh",
		MaxTimeout: 10 * time.Minute,
	}
}

func (t *CommandTool) Name() string { return "run_command" }

func (t *CommandTool) Description() string {
	return "Execute a shell command and return its output"
}

func (t *CommandTool) Parameters() []Parameter {
	return []Parameter{
		{Name: "command", Type: "string", Description: "The shell command to execute", Required: true},
		{Name: "timeout", Type: "number", Description: "Timeout in seconds (default: 30)", Required: false},
	}
}

func (t *CommandTool) Execute(ctx context.Context, args map[string]any) Result {
	command, ok := StringArg(args, "command")
	if !ok || command == "" {
		return Errorf("command is required")
	}

	timeout := defaultCommandTimeout
	if seconds, ok := IntArg(args, "timeout"); ok && seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}
	if t.MaxTimeout > 0 && timeout > t.MaxTimeout {
		timeout = t.MaxTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, t.Shell, "-c", command)
	if t.Workspace != "" {
		cmd.Dir = t.Workspace
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		return Errorf("command timed out after %s", timeout)
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return Errorf("error executing command: %v", err)
		}
	}

	return Result{
		Success: exitCode == 0,
		Output: map[string]any{
			"stdout":      stdout.String(),
			"stderr":      stderr.String(),
			"return_code": exitCode,
		},
	}
}
