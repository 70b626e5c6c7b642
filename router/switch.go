// Package router implements the Switch branch semantics: an ordered list of
// field comparisons evaluated against node input, selecting which downstream
// branches fire.
package router

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aiinpocket/n3n-core/logger"
	"go.uber.org/zap"
)

const ModeFirst = "first"
const ModeAll = "all"

var ErrNoCasesMatched = errors.New("no switch cases matched")

type Case struct {
	Branch   string `json:"branch"`
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

type Config struct {
	Mode           string `json:"mode"`
	Cases          []Case `json:"cases"`
	EnableFallback bool   `json:"enableFallback"`
	FallbackBranch string `json:"fallbackBranch"`
}

type Result struct {
	Branches []string
	Output   map[string]any
}

// ParseConfig reads a switch configuration out of a node's config mapping,
// applying the authored defaults: mode "first", fallback enabled, fallback
// branch "default".
func ParseConfig(config map[string]any) Config {
	cfg := Config{
		Mode:           ModeFirst,
		EnableFallback: true,
		FallbackBranch: "default",
	}
	if mode, ok := config["mode"].(string); ok && mode != "" {
		cfg.Mode = mode
	}
	if v, ok := config["enableFallback"].(bool); ok {
		cfg.EnableFallback = v
	}
	if v, ok := config["fallbackBranch"].(string); ok && v != "" {
		cfg.FallbackBranch = v
	}
	rawCases, _ := config["cases"].([]any)
	for i, raw := range rawCases {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		c := Case{
			Branch:   fmt.Sprintf("case_%d", i),
			Operator: "equals",
			Value:    m["value"],
		}
		if branch, ok := m["branch"].(string); ok && branch != "" {
			c.Branch = branch
		}
		if field, ok := m["field"].(string); ok {
			c.Field = field
		}
		if op, ok := m["operator"].(string); ok && op != "" {
			c.Operator = op
		}
		cfg.Cases = append(cfg.Cases, c)
	}
	return cfg
}

// Evaluate scans the cases in order against inputData. In first mode the scan
// stops at the first match; in all mode every matching branch is collected in
// case order. With no match and fallback disabled it fails hard: silently
// dropping the branch would hide authored intent.
func Evaluate(cfg Config, inputData map[string]any) (Result, error) {
	var matched []string

	for _, c := range cfg.Cases {
		var fieldValue any
		if c.Field != "" {
			fieldValue = NestedValue(inputData, c.Field)
		}
		if evaluateCondition(fieldValue, c.Operator, c.Value) {
			matched = append(matched, c.Branch)
			if cfg.Mode == ModeFirst {
				break
			}
		}
	}

	if len(matched) == 0 {
		if !cfg.EnableFallback {
			return Result{}, ErrNoCasesMatched
		}
		matched = append(matched, cfg.FallbackBranch)
	}

	output := make(map[string]any, len(inputData)+1)
	for k, v := range inputData {
		output[k] = v
	}
	output["_switchInfo"] = map[string]any{
		"mode":            cfg.Mode,
		"matchedBranches": matched,
		"totalCases":      len(cfg.Cases),
	}
	return Result{Branches: matched, Output: output}, nil
}

// NestedValue resolves a dot-path through nested maps and list indexes.
// Any missing step yields nil.
func NestedValue(data map[string]any, path string) any {
	if path == "" {
		return data
	}
	var current any = data
	for _, part := range strings.Split(path, ".") {
		switch v := current.(type) {
		case map[string]any:
			current = v[part]
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil
			}
			current = v[idx]
		default:
			return nil
		}
	}
	return current
}

type operands struct {
	fieldValue any
	compare    any
	str        string
	strCompare string
}

var operators = map[string]func(operands) bool{
	"equals":         func(o operands) bool { return o.str == o.strCompare },
	"notEquals":      func(o operands) bool { return o.str != o.strCompare },
	"contains":       func(o operands) bool { return strings.Contains(o.str, o.strCompare) },
	"notContains":    func(o operands) bool { return !strings.Contains(o.str, o.strCompare) },
	"startsWith":     func(o operands) bool { return strings.HasPrefix(o.str, o.strCompare) },
	"endsWith":       func(o operands) bool { return strings.HasSuffix(o.str, o.strCompare) },
	"matches":        matchesRegex,
	"greaterThan":    func(o operands) bool { return compareValues(o.str, o.strCompare) > 0 },
	"lessThan":       func(o operands) bool { return compareValues(o.str, o.strCompare) < 0 },
	"greaterOrEqual": func(o operands) bool { return compareValues(o.str, o.strCompare) >= 0 },
	"lessOrEqual":    func(o operands) bool { return compareValues(o.str, o.strCompare) <= 0 },
	"in":             inList,
	"notIn":          func(o operands) bool { return !inList(o) },
	"isEmpty":        func(o operands) bool { return o.str == "" },
	"isNotEmpty":     func(o operands) bool { return o.str != "" },
	"isNull":         func(o operands) bool { return false },
	"isNotNull":      func(o operands) bool { return true },
	"isTrue":         isTrue,
	"isFalse":        func(o operands) bool { return !isTrue(o) },
}

func evaluateCondition(fieldValue any, operator string, compare any) bool {
	if fieldValue == nil && compare == nil {
		return operator == "equals" || operator == "isNull"
	}
	if fieldValue == nil {
		return operator == "notEquals" || operator == "isNull"
	}

	o := operands{
		fieldValue: fieldValue,
		compare:    compare,
		str:        stringify(fieldValue),
	}
	if compare != nil {
		o.strCompare = stringify(compare)
	}

	fn, ok := operators[operator]
	if !ok {
		logger.Warn("unknown switch operator", zap.String("operator", operator))
		return false
	}
	return fn(o)
}

func matchesRegex(o operands) bool {
	re, err := regexp.Compile(o.strCompare)
	if err != nil {
		logger.Warn("invalid regex pattern in switch case", zap.String("pattern", o.strCompare))
		return false
	}
	return re.MatchString(o.str)
}

// compareValues compares numerically when both operands parse as floats and
// falls back to lexicographic comparison otherwise.
func compareValues(a, b string) int {
	numA, errA := strconv.ParseFloat(a, 64)
	numB, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case numA > numB:
			return 1
		case numA < numB:
			return -1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// inList accepts a literal sequence value or a comma-separated string,
// trimming whitespace per element.
func inList(o operands) bool {
	if list, ok := o.compare.([]any); ok {
		for _, item := range list {
			if stringify(item) == o.str {
				return true
			}
		}
		return false
	}
	for _, item := range strings.Split(o.strCompare, ",") {
		if strings.TrimSpace(item) == o.str {
			return true
		}
	}
	return false
}

func isTrue(o operands) bool {
	b, err := strconv.ParseBool(o.str)
	return (err == nil && b) || o.str == "1"
}

func stringify(v any) string {
	return fmt.Sprintf("%v", v)
}
