package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oliveagle/jsonpath"
)

var tokenPattern = regexp.MustCompile(`\{(.*?)\}`)

// ResolveInputParams substitutes {$.path} tokens in configured parameter
// values with data from upstream nodes. Maps and lists are resolved
// recursively; non-string values pass through untouched.
func ResolveInputParams(inputData map[string]any, params map[string]any) map[string]any {
	output := make(map[string]any, len(params))
	for k, v := range params {
		output[k] = resolveValue(inputData, v)
	}
	return output
}

func resolveValue(inputData map[string]any, value any) any {
	switch v := value.(type) {
	case map[string]any:
		return ResolveInputParams(inputData, v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = resolveValue(inputData, item)
		}
		return out
	case string:
		return resolveString(inputData, v)
	default:
		return value
	}
}

func resolveString(inputData map[string]any, s string) string {
	tokens := tokenPattern.FindAllString(s, -1)
	for _, token := range tokens {
		path := strings.TrimSuffix(strings.TrimPrefix(token, "{"), "}")
		if !strings.HasPrefix(path, "$") {
			continue
		}
		value, _ := jsonpath.JsonPathLookup(inputData, path)
		s = strings.ReplaceAll(s, token, fmt.Sprintf("%v", value))
	}
	return s
}
