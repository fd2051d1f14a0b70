package parser

import (
	"encoding/json"
	"fmt"

	"github.com/halvorsen/jmespath/pkg/types"
)

// decodeLiteral parses the JSON text inside a backtick literal into a Value.
func decodeLiteral(text string) (types.Value, error) {
	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return types.Null, fmt.Errorf("invalid JSON literal: %w", err)
	}
	return jsonToValue(raw), nil
}

// jsonToValue converts a value produced by encoding/json.Unmarshal (into
// any) into the engine's tagged-union Value representation.
func jsonToValue(raw any) types.Value {
	switch v := raw.(type) {
	case nil:
		return types.Null
	case bool:
		return types.NewBool(v)
	case float64:
		return types.NewNumber(v)
	case string:
		return types.NewString(v)
	case []any:
		items := make([]types.Value, len(v))
		for i, elem := range v {
			items[i] = jsonToValue(elem)
		}
		return types.NewArray(items)
	case map[string]any:
		b := types.NewObjectBuilder()
		for _, k := range jsonObjectKeysInOrder(v) {
			b.Set(k, jsonToValue(v[k]))
		}
		return b.Build()
	default:
		return types.Null
	}
}

// jsonObjectKeysInOrder returns m's keys. encoding/json's map[string]any
// decoding loses source order, so this falls back to map iteration order;
// JMESPath literals don't make key order observable other than through
// keys()/values(), where stability across repeated calls on the same Value
// (not across separate decodes) is what matters.
func jsonObjectKeysInOrder(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
