package model

// NodeExecutionContext is the immutable per-invocation bundle handed to a
// handler by the workflow engine. Handlers must not mutate it.
type NodeExecutionContext struct {
	InputData  map[string]any
	NodeConfig map[string]any
	Credential map[string]any
	UserID     string
}

// NodeExecutionResult is the terminal outcome of one node execution. An empty
// ActiveBranches means the single default branch.
type NodeExecutionResult struct {
	Success         bool           `json:"success"`
	Output          map[string]any `json:"output,omitempty"`
	ErrorMessage    string         `json:"errorMessage,omitempty"`
	ActiveBranches  []string       `json:"activeBranches,omitempty"`
	ExecutionTimeMs int64          `json:"executionTimeMs"`
}

func ExecutionSuccess(output map[string]any) NodeExecutionResult {
	return NodeExecutionResult{
		Success: true,
		Output:  output,
	}
}

func ExecutionFailure(message string) NodeExecutionResult {
	return NodeExecutionResult{
		Success:      false,
		ErrorMessage: message,
	}
}

func ExecutionWithBranches(output map[string]any, branches []string) NodeExecutionResult {
	return NodeExecutionResult{
		Success:        true,
		Output:         output,
		ActiveBranches: branches,
	}
}
