package evaluator

import (
	"fmt"

	"github.com/halvorsen/jmespath/pkg/types"
)

// ParamType declares the acceptable shape of one function argument, the
// same way a signature string does, but as a small literal struct rather
// than a parsed mini-language — JMESPath's function set is closed (there
// are no user-defined functions to validate against), so there is no
// signature grammar to parse, only a fixed table of declared checks.
type ParamType struct {
	// Union lists the acceptable Kinds. A single-Kind parameter is just a
	// Union of length one.
	Union []types.Kind
	// ElemUnion, when non-nil, additionally requires Union to contain
	// KindArray and checks every element's Kind against it.
	ElemUnion []types.Kind
}

func anyOf(kinds ...types.Kind) ParamType { return ParamType{Union: kinds} }

func arrayOf(elemKinds ...types.Kind) ParamType {
	return ParamType{Union: []types.Kind{types.KindArray}, ElemUnion: elemKinds}
}

// Validate checks v against pt, returning a *types.Error with code
// InvalidTypeError on mismatch.
func (pt ParamType) Validate(fnName string, argIndex int, v types.Value) error {
	if !containsKind(pt.Union, v.Kind()) {
		return types.NewError(types.InvalidTypeError,
			fmt.Sprintf("%s(): argument %d: expected %s, got %s", fnName, argIndex+1, kindUnionName(pt.Union), v.Kind()))
	}
	if pt.ElemUnion != nil {
		for i, elem := range v.Array() {
			if !containsKind(pt.ElemUnion, elem.Kind()) {
				return types.NewError(types.InvalidTypeError,
					fmt.Sprintf("%s(): argument %d: element %d: expected %s, got %s", fnName, argIndex+1, i, kindUnionName(pt.ElemUnion), elem.Kind()))
			}
		}
	}
	return nil
}

func containsKind(kinds []types.Kind, k types.Kind) bool {
	for _, c := range kinds {
		if c == k {
			return true
		}
	}
	return false
}

func kindUnionName(kinds []types.Kind) string {
	if len(kinds) == 1 {
		return kinds[0].String()
	}
	out := ""
	for i, k := range kinds {
		if i > 0 {
			out += " or "
		}
		out += k.String()
	}
	return out
}
