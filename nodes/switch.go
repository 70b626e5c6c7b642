// Package nodes holds the built-in node handlers wired into the registry:
// flow control (switch), scripting (code) and the redis integration.
package nodes

import (
	"github.com/aiinpocket/n3n-core/handler"
	"github.com/aiinpocket/n3n-core/model"
	"github.com/aiinpocket/n3n-core/router"
)

var _ handler.Handler = new(switchHandler)

// switchHandler routes input to zero or more named branches based on the
// authored case list.
type switchHandler struct{}

func NewSwitchHandler() handler.Handler {
	return &switchHandler{}
}

func (h *switchHandler) Type() string {
	return "switch"
}

func (h *switchHandler) Execute(ctx model.NodeExecutionContext) model.NodeExecutionResult {
	cfg := router.ParseConfig(ctx.NodeConfig)
	result, err := router.Evaluate(cfg, ctx.InputData)
	if err != nil {
		return model.ExecutionFailure(err.Error())
	}
	return model.ExecutionWithBranches(result.Output, result.Branches)
}
