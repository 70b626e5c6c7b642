package handler

import (
	"fmt"
	"strconv"

	"github.com/aiinpocket/n3n-core/model"
)

// Handler executes one node type. Implementations must never panic past this
// boundary or mutate the context; the registry converts panics to failed
// results.
type Handler interface {
	Type() string
	Execute(ctx model.NodeExecutionContext) model.NodeExecutionResult
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

func StringParam(params map[string]any, name string, defaultValue string) string {
	value, ok := params[name]
	if !ok || isEmptyValue(value) {
		return defaultValue
	}
	return fmt.Sprintf("%v", value)
}

func IntParam(params map[string]any, name string, defaultValue int) int {
	value, ok := params[name]
	if !ok || value == nil {
		return defaultValue
	}
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	if n, err := strconv.Atoi(fmt.Sprintf("%v", value)); err == nil {
		return n
	}
	return defaultValue
}

func FloatParam(params map[string]any, name string, defaultValue float64) float64 {
	value, ok := params[name]
	if !ok || value == nil {
		return defaultValue
	}
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	if n, err := strconv.ParseFloat(fmt.Sprintf("%v", value), 64); err == nil {
		return n
	}
	return defaultValue
}

func BoolParam(params map[string]any, name string, defaultValue bool) bool {
	value, ok := params[name]
	if !ok || value == nil {
		return defaultValue
	}
	if b, ok := value.(bool); ok {
		return b
	}
	if b, err := strconv.ParseBool(fmt.Sprintf("%v", value)); err == nil {
		return b
	}
	return defaultValue
}

func ListParam(params map[string]any, name string) []any {
	if v, ok := params[name].([]any); ok {
		return v
	}
	return nil
}

func MapParam(params map[string]any, name string) map[string]any {
	if v, ok := params[name].(map[string]any); ok {
		return v
	}
	return nil
}

func CredentialValue(credential map[string]any, key string) string {
	value, ok := credential[key]
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}
