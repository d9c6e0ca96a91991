package util

import (
	"fmt"
	"math"
	"reflect"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
)

// ValidationError represents a parameter validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

var reflector = jsonschema.Reflector{
	AllowAdditionalProperties: true,
	DoNotReference:            true,
}

// CreateSchema reflects a JSON schema object from a struct value. Field names
// follow json tags, fields without omitempty are required and jsonschema tags
// (description, enum, minimum, maximum, default) are honored.
func CreateSchema(v any) map[string]any {
	s := reflector.Reflect(v)
	s.Version = ""
	s.ID = ""

	b, err := json.Marshal(s)
	if err != nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}

	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}

	delete(out, "additionalProperties")

	if _, ok := out["properties"]; !ok {
		out["properties"] = map[string]any{}
	}

	return out
}

// ValidateParameters validates params against the subset of JSON schema used
// by tools: required, type, enum, minimum and maximum.
func ValidateParameters(params map[string]any, schema map[string]any) error {
	for _, field := range stringList(schema["required"]) {
		if v, exists := params[field]; !exists || v == nil {
			return &ValidationError{Field: field, Message: "required field is missing"}
		}
	}

	properties, _ := schema["properties"].(map[string]any)

	for field, value := range params {
		prop, ok := properties[field].(map[string]any)
		if !ok || value == nil {
			continue // extra fields are allowed
		}

		expected, _ := prop["type"].(string)
		if !isValidType(value, expected) {
			return &ValidationError{Field: field, Value: value, Message: fmt.Sprintf("expected type %s, got %T", expected, value)}
		}

		if enum, ok := prop["enum"]; ok && !inEnum(value, enum) {
			return &ValidationError{Field: field, Value: value, Message: fmt.Sprintf("must be one of %v", enum)}
		}

		if n, ok := toFloat(value); ok {
			if min, ok := toFloat(prop["minimum"]); ok && n < min {
				return &ValidationError{Field: field, Value: value, Message: fmt.Sprintf("must be >= %v", prop["minimum"])}
			}

			if max, ok := toFloat(prop["maximum"]); ok && n > max {
				return &ValidationError{Field: field, Value: value, Message: fmt.Sprintf("must be <= %v", prop["maximum"])}
			}
		}
	}

	return nil
}

func stringList(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, x := range l {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}

		return out
	default:
		return nil
	}
}

func inEnum(value any, enum any) bool {
	rv := reflect.ValueOf(enum)
	if rv.Kind() != reflect.Slice {
		return true
	}

	for i := 0; i < rv.Len(); i++ {
		candidate := rv.Index(i).Interface()
		if a, ok := toFloat(value); ok {
			if b, ok := toFloat(candidate); ok && a == b {
				return true
			}

			continue
		}

		if reflect.DeepEqual(value, candidate) {
			return true
		}
	}

	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// isValidType checks a value against a JSON schema type name.
func isValidType(value any, expectedType string) bool {
	switch expectedType {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer":
		f, ok := toFloat(value)
		return ok && f == math.Trunc(f)
	case "number":
		_, ok := toFloat(value)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		k := reflect.ValueOf(value).Kind()
		return k == reflect.Slice || k == reflect.Array
	case "object":
		return reflect.ValueOf(value).Kind() == reflect.Map
	default:
		return true
	}
}
