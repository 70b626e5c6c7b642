package script

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dop251/goja"
)

// toGuest deep-converts a host value into a native guest value. Maps and
// slices are rebuilt as guest objects/arrays rather than reflected, so the
// script can never mutate host data through the binding.
func toGuest(vm *goja.Runtime, value any) goja.Value {
	switch v := value.(type) {
	case nil:
		return goja.Null()
	case map[string]any:
		obj := vm.NewObject()
		for key, item := range v {
			obj.Set(key, toGuest(vm, item))
		}
		return obj
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = toGuest(vm, item)
		}
		return vm.NewArray(items...)
	default:
		// booleans, numbers and strings convert directly
		return vm.ToValue(v)
	}
}

// fromGuest converts a guest value back to host types using the value's own
// member and element introspection. Numeric results are narrowed to the
// smallest exact host type: int when the value fits 32 bits, int64 when it
// fits 64, float64 otherwise.
func fromGuest(value goja.Value) any {
	if value == nil || goja.IsNull(value) || goja.IsUndefined(value) {
		return nil
	}

	obj, isObject := value.(*goja.Object)
	if !isObject {
		return narrowNumber(value.Export())
	}

	if obj.ClassName() == "Array" {
		length := int(obj.Get("length").ToInteger())
		list := make([]any, 0, length)
		for i := 0; i < length; i++ {
			list = append(list, fromGuest(obj.Get(strconv.Itoa(i))))
		}
		return list
	}

	keys := obj.Keys()
	result := make(map[string]any, len(keys))
	for _, key := range keys {
		result[key] = fromGuest(obj.Get(key))
	}
	return result
}

func narrowNumber(value any) any {
	switch v := value.(type) {
	case int64:
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return int(v)
		}
		return v
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			if v >= math.MinInt32 && v <= math.MaxInt32 {
				return int(v)
			}
			if v >= math.MinInt64 && v < math.MaxInt64 {
				return int64(v)
			}
		}
		return v
	default:
		return value
	}
}

// formatLogValue renders a console argument the way the script author expects:
// objects and arrays as JSON, everything else via plain string conversion.
func formatLogValue(vm *goja.Runtime, value goja.Value) string {
	if value == nil || goja.IsUndefined(value) {
		return "undefined"
	}
	if goja.IsNull(value) {
		return "null"
	}
	if obj, ok := value.(*goja.Object); ok {
		if data, err := obj.MarshalJSON(); err == nil {
			return string(data)
		}
	}
	return fmt.Sprintf("%v", value.Export())
}
