package nodes

import (
	"fmt"

	"github.com/aiinpocket/n3n-core/handler"
	"github.com/aiinpocket/n3n-core/model"
	"github.com/aiinpocket/n3n-core/script"
)

var _ handler.Handler = new(codeHandler)

// codeHandler runs user JavaScript through the sandboxed runner instead of
// calling an external system.
type codeHandler struct {
	runner *script.Runner
}

func NewCodeHandler(runner *script.Runner) handler.Handler {
	return &codeHandler{runner: runner}
}

func (h *codeHandler) Type() string {
	return "code"
}

func (h *codeHandler) Execute(ctx model.NodeExecutionContext) model.NodeExecutionResult {
	code := handler.StringParam(ctx.NodeConfig, "code", "")
	if code == "" {
		return model.ExecutionFailure("required field 'code' is missing")
	}
	timeoutMs := handler.IntParam(ctx.NodeConfig, "timeoutMs", 0)

	res := h.runner.Execute(code, ctx.InputData, int64(timeoutMs))
	if !res.Success {
		return model.ExecutionFailure(fmt.Sprintf("script failed (%s): %s", res.ErrorType, res.ErrorMessage))
	}

	output := res.Data
	if output == nil {
		output = map[string]any{"output": res.Output}
	}
	if len(res.Logs) > 0 {
		output["_logs"] = res.Logs
	}
	output["_executionTimeMs"] = res.ExecutionTimeMs
	return model.ExecutionSuccess(output)
}
