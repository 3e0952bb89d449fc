package agent

import "testing"

func TestPlanClone(t *testing.T) {
	original := &Plan{
		Goal:     "g",
		Strategy: "s",
		SubTasks: []SubTask{
			{ID: 1, Description: "a", Dependencies: []int{}},
			{ID: 2, Description: "b", Dependencies: []int{1}, Result: &TaskResult{Success: true}},
		},
	}

	clone := original.Clone()
	clone.SubTasks[0].Status = StatusFailed
	clone.SubTasks[1].Dependencies[0] = 99
	clone.SubTasks[1].Result.Success = false

	if original.SubTasks[0].Status == StatusFailed {
		t.Error("clone shares subtask slice")
	}
	if original.SubTasks[1].Dependencies[0] != 1 {
		t.Error("clone shares dependency slice")
	}
	if !original.SubTasks[1].Result.Success {
		t.Error("clone shares result pointer")
	}
}

func TestTaskResultFromExecution(t *testing.T) {
	ok := ExecutionResult{Success: true, Output: "done"}
	if r := ok.taskResult(); !r.Success || r.Output != "done" {
		t.Errorf("taskResult = %+v", r)
	}
	bad := ExecutionResult{Success: false, Error: "boom"}
	if r := bad.taskResult(); r.Success || r.Error != "boom" {
		t.Errorf("taskResult = %+v", r)
	}
}
