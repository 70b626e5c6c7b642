package script

type ErrorType string

const SYNTAX_ERROR ErrorType = "SYNTAX_ERROR"
const RESOURCE_EXHAUSTED ErrorType = "RESOURCE_EXHAUSTED"
const CANCELLED ErrorType = "CANCELLED"
const TIMEOUT ErrorType = "TIMEOUT"
const RUNTIME_ERROR ErrorType = "RUNTIME_ERROR"
const INTERRUPTED ErrorType = "INTERRUPTED"
const EXECUTION_ERROR ErrorType = "EXECUTION_ERROR"

// ScriptResult is the structured outcome of one sandboxed execution. Mapping
// results land in Data, any other value in Output. Logs carry everything the
// script wrote through the console shim, including whatever was captured
// before a timeout.
type ScriptResult struct {
	Success         bool           `json:"success"`
	Data            map[string]any `json:"data,omitempty"`
	Output          any            `json:"output,omitempty"`
	Logs            []string       `json:"logs,omitempty"`
	ErrorType       ErrorType      `json:"errorType,omitempty"`
	ErrorMessage    string         `json:"errorMessage,omitempty"`
	ExecutionTimeMs int64          `json:"executionTimeMs"`
}

func failure(errType ErrorType, message string, logs []string, tookMs int64) ScriptResult {
	return ScriptResult{
		Success:         false,
		ErrorType:       errType,
		ErrorMessage:    message,
		Logs:            logs,
		ExecutionTimeMs: tookMs,
	}
}
