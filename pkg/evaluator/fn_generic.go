package evaluator

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/halvorsen/jmespath/pkg/types"
)

func fnAbs(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return types.NewNumber(math.Abs(args[0].Number())), nil
}

func fnCeil(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return types.NewNumber(math.Ceil(args[0].Number())), nil
}

func fnFloor(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return types.NewNumber(math.Floor(args[0].Number())), nil
}

func fnLength(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	switch args[0].Kind() {
	case types.KindString:
		return types.NewNumber(float64(utf8.RuneCountInString(args[0].String()))), nil
	case types.KindArray:
		return types.NewNumber(float64(len(args[0].Array()))), nil
	default:
		return types.NewNumber(float64(args[0].ObjectLen())), nil
	}
}

func fnType(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return types.NewString(args[0].Kind().String()), nil
}

// fnNotNull returns the first non-null argument, or null if every
// argument is null.
func fnNotNull(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	for _, a := range args {
		if !a.IsNull() {
			return a, nil
		}
	}
	return types.Null, nil
}

func fnToArray(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	if args[0].Kind() == types.KindArray {
		return args[0], nil
	}
	return types.NewArray([]types.Value{args[0]}), nil
}

func fnToString(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	if args[0].Kind() == types.KindString {
		return args[0], nil
	}
	return types.NewString(valueToJSON(args[0])), nil
}

// fnToNumber attempts to coerce its argument to a number. Only numbers
// and numeric-looking strings convert; everything else yields null.
func fnToNumber(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	v := args[0]
	switch v.Kind() {
	case types.KindNumber:
		return v, nil
	case types.KindString:
		n, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return types.Null, nil
		}
		return types.NewNumber(n), nil
	default:
		return types.Null, nil
	}
}

// valueToJSON renders v as JSON text, used by to_string for non-string
// values. Scalar encoding is delegated to encoding/json so escaping stays
// correct; structural encoding walks the tagged union directly.
func valueToJSON(v types.Value) string {
	switch v.Kind() {
	case types.KindNull:
		return "null"
	case types.KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case types.KindNumber:
		return strconv.FormatFloat(v.Number(), 'g', -1, 64)
	case types.KindString:
		b, _ := json.Marshal(v.String())
		return string(b)
	case types.KindArray:
		var b strings.Builder
		b.WriteByte('[')
		for i, elem := range v.Array() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(valueToJSON(elem))
		}
		b.WriteByte(']')
		return b.String()
	case types.KindObject:
		var b strings.Builder
		b.WriteByte('{')
		for i, key := range v.ObjectKeys() {
			if i > 0 {
				b.WriteByte(',')
			}
			kb, _ := json.Marshal(key)
			b.Write(kb)
			b.WriteByte(':')
			val, _ := v.ObjectGet(key)
			b.WriteString(valueToJSON(val))
		}
		b.WriteByte('}')
		return b.String()
	default:
		return "null"
	}
}
