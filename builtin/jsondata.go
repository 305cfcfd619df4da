package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/petal-labs/anther/tool"
)

// JSONDataDescriptor returns the process_json_data registration: parse a
// JSON string and report its structure.
func JSONDataDescriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "process_json_data",
		Description: "Process and validate JSON data.",
		Params: []tool.Param{
			{Name: "json_string", Type: tool.TypeString, Required: true, Description: "JSON string to process"},
		},
		Handler: processJSONData,
	}
}

func processJSONData(_ context.Context, args map[string]any) (map[string]any, error) {
	raw := args["json_string"].(string)

	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	analysis := map[string]any{
		"type":          jsonTypeName(data),
		"size":          len(raw),
		"nested_levels": nestedLevels(data, 0),
	}
	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		analysis["keys"] = keys
		analysis["length"] = len(v)
	case []any:
		analysis["length"] = len(v)
	}

	return map[string]any{
		"data":     data,
		"analysis": analysis,
		"valid":    true,
	}, nil
}

func jsonTypeName(value any) string {
	switch value.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	}
	return "unknown"
}

// nestedLevels counts how deeply objects and arrays nest; scalars are depth
// zero and an empty container does not add a level beyond its own.
func nestedLevels(value any, level int) int {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 0 {
			return level
		}
		deepest := level
		for _, child := range v {
			if d := nestedLevels(child, level+1); d > deepest {
				deepest = d
			}
		}
		return deepest
	case []any:
		if len(v) == 0 {
			return level
		}
		deepest := level
		for _, child := range v {
			if d := nestedLevels(child, level+1); d > deepest {
				deepest = d
			}
		}
		return deepest
	}
	return level
}
