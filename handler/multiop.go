package handler

import (
	"fmt"

	"github.com/aiinpocket/n3n-core/logger"
	"github.com/aiinpocket/n3n-core/model"
	"github.com/aiinpocket/n3n-core/schema"
	"github.com/aiinpocket/n3n-core/util"
	"go.uber.org/zap"
)

// OperationHandler is the declarative contract implemented by every
// integration: behaviors are grouped into resources, each exposing named
// operations with field schemas. The surrounding pipeline validates the
// addressed resource/operation and the required fields exactly once, so
// implementations never repeat it.
type OperationHandler interface {
	Type() string
	Resources() map[string]schema.ResourceDef
	Operations() map[string][]schema.OperationDef
	ExecuteOperation(ctx model.NodeExecutionContext, resource string, operation string,
		credential map[string]any, params map[string]any) model.NodeExecutionResult
}

// MultiOperation wraps an OperationHandler in the shared dispatch pipeline.
func MultiOperation(h OperationHandler) Handler {
	return multiOp{h: h}
}

type multiOp struct {
	h OperationHandler
}

func (m multiOp) Type() string {
	return m.h.Type()
}

func (m multiOp) Execute(ctx model.NodeExecutionContext) model.NodeExecutionResult {
	resource := StringParam(ctx.NodeConfig, "resource", "")
	operation := StringParam(ctx.NodeConfig, "operation", "")
	if resource == "" {
		return model.ExecutionFailure("Resource not selected")
	}
	if operation == "" {
		return model.ExecutionFailure("Operation not selected")
	}

	if _, ok := m.h.Resources()[resource]; !ok {
		return model.ExecutionFailure(fmt.Sprintf("Unknown resource: %s", resource))
	}
	op, ok := schema.FindOperation(m.h.Operations()[resource], operation)
	if !ok {
		return model.ExecutionFailure(fmt.Sprintf("Unknown operation: %s for resource: %s", operation, resource))
	}

	params := ExtractParams(op, ctx.NodeConfig)
	params = util.ResolveInputParams(ctx.InputData, params)

	if err := ValidateRequired(op, params, ctx.Credential); err != nil {
		return model.ExecutionFailure(err.Error())
	}

	logger.Debug("executing operation",
		zap.String("type", m.h.Type()),
		zap.String("resource", resource),
		zap.String("operation", operation))
	return m.h.ExecuteOperation(ctx, resource, operation, ctx.Credential, params)
}

// ExtractParams collects the values for an operation's declared fields from
// the node config, applying field defaults where the config has no value.
func ExtractParams(op schema.OperationDef, config map[string]any) map[string]any {
	params := make(map[string]any)
	for _, field := range op.Fields {
		value, ok := config[field.Name]
		if ok {
			if isEmptyValue(value) && field.Default != nil {
				value = field.Default
			}
			params[field.Name] = value
		} else if field.Default != nil {
			params[field.Name] = field.Default
		}
	}
	return params
}

// ValidateRequired checks every required field of the operation against
// params and credential and reports the first missing one by name.
func ValidateRequired(op schema.OperationDef, params map[string]any, credential map[string]any) error {
	for _, field := range op.Fields {
		if !field.Required {
			continue
		}
		if v, ok := params[field.Name]; ok && !isEmptyValue(v) {
			continue
		}
		if v, ok := credential[field.Name]; ok && !isEmptyValue(v) {
			continue
		}
		return fmt.Errorf("required field '%s' is missing", field.Name)
	}
	return nil
}
