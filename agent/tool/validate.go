package tool

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// Violation is one schema check failure; a dispatch reports all of them at
// once rather than stopping at the first.
type Violation struct {
	Field  string
	Reason string
}

func (v Violation) String() string {
	return v.Field + ": " + v.Reason
}

func joinViolations(violations []Violation) string {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, "; ")
}

// ValidateArgs checks arguments against a declarative parameter schema and
// returns the violation list. Unknown argument keys are ignored.
func ValidateArgs(params map[string]*schema.ParameterInfo, args map[string]any) []Violation {
	var out []Violation
	for name, info := range params {
		if info == nil {
			continue
		}
		val, present := args[name]
		if !present || val == nil {
			if info.Required {
				out = append(out, Violation{Field: name, Reason: "required field is missing"})
			}
			continue
		}
		out = append(out, checkType(name, info, val)...)
	}
	return out
}

func checkType(field string, info *schema.ParameterInfo, val any) []Violation {
	switch info.Type {
	case schema.String:
		if _, ok := val.(string); !ok {
			return []Violation{{Field: field, Reason: fmt.Sprintf("expected string, got %T", val)}}
		}
	case schema.Number:
		if !isNumeric(val) {
			return []Violation{{Field: field, Reason: fmt.Sprintf("expected number, got %T", val)}}
		}
	case schema.Integer:
		f, ok := asFloat(val)
		if !ok || f != float64(int64(f)) {
			return []Violation{{Field: field, Reason: fmt.Sprintf("expected integer, got %v", val)}}
		}
	case schema.Boolean:
		if _, ok := val.(bool); !ok {
			return []Violation{{Field: field, Reason: fmt.Sprintf("expected boolean, got %T", val)}}
		}
	case schema.Array:
		items, ok := val.([]any)
		if !ok {
			return []Violation{{Field: field, Reason: fmt.Sprintf("expected array, got %T", val)}}
		}
		if info.ElemInfo == nil {
			return nil
		}
		var out []Violation
		for i, item := range items {
			out = append(out, checkType(fmt.Sprintf("%s[%d]", field, i), info.ElemInfo, item)...)
		}
		return out
	case schema.Object:
		obj, ok := val.(map[string]any)
		if !ok {
			return []Violation{{Field: field, Reason: fmt.Sprintf("expected object, got %T", val)}}
		}
		if len(info.SubParams) == 0 {
			return nil
		}
		var out []Violation
		for subName, subInfo := range info.SubParams {
			subVal, present := obj[subName]
			if !present || subVal == nil {
				if subInfo.Required {
					out = append(out, Violation{Field: field + "." + subName, Reason: "required field is missing"})
				}
				continue
			}
			out = append(out, checkType(field+"."+subName, subInfo, subVal)...)
		}
		return out
	}
	return nil
}

func isNumeric(val any) bool {
	_, ok := asFloat(val)
	return ok
}

func asFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
