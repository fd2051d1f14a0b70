package evaluator

import (
	"context"
	"fmt"
	"sync"

	"github.com/halvorsen/jmespath/pkg/types"
)

// FunctionImpl is the implementation of one built-in function. args has
// already been arity- and type-checked against the FunctionDef it came
// from by the time Impl runs.
type FunctionImpl func(ctx context.Context, e *Evaluator, ec *EvalContext, args []types.Value) (types.Value, error)

// FunctionDef declares a built-in function's calling contract as data:
// arity bounds and, optionally, a type spec per fixed-position argument.
// ArgTypes entries past len(ArgTypes) (variadic tails) are unchecked.
type FunctionDef struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 for unlimited
	ArgTypes []ParamType
	Impl    FunctionImpl
}

var (
	builtinFunctions     map[string]*FunctionDef
	builtinFunctionsOnce sync.Once
)

func initBuiltinFunctions() {
	builtinFunctionsOnce.Do(func() {
		num := anyOf(types.KindNumber)
		str := anyOf(types.KindString)
		arr := anyOf(types.KindArray)
		anyVal := anyOf(types.KindNull, types.KindBool, types.KindNumber, types.KindString, types.KindArray, types.KindObject, types.KindExpressionRef)
		exprRef := anyOf(types.KindExpressionRef)

		builtinFunctions = map[string]*FunctionDef{
			// Generic
			"abs":       {Name: "abs", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{num}, Impl: fnAbs},
			"ceil":      {Name: "ceil", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{num}, Impl: fnCeil},
			"floor":     {Name: "floor", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{num}, Impl: fnFloor},
			"length":    {Name: "length", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{anyOf(types.KindString, types.KindArray, types.KindObject)}, Impl: fnLength},
			"type":      {Name: "type", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{anyVal}, Impl: fnType},
			"not_null":  {Name: "not_null", MinArgs: 1, MaxArgs: -1, Impl: fnNotNull},
			"to_array":  {Name: "to_array", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{anyVal}, Impl: fnToArray},
			"to_string": {Name: "to_string", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{anyVal}, Impl: fnToString},
			"to_number": {Name: "to_number", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{anyVal}, Impl: fnToNumber},

			// Collection
			"avg":        {Name: "avg", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{arrayOf(types.KindNumber)}, Impl: fnAvg},
			"sum":        {Name: "sum", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{arrayOf(types.KindNumber)}, Impl: fnSum},
			"contains":   {Name: "contains", MinArgs: 2, MaxArgs: 2, ArgTypes: []ParamType{anyOf(types.KindString, types.KindArray)}, Impl: fnContains},
			"ends_with":  {Name: "ends_with", MinArgs: 2, MaxArgs: 2, ArgTypes: []ParamType{str, str}, Impl: fnEndsWith},
			"starts_with": {Name: "starts_with", MinArgs: 2, MaxArgs: 2, ArgTypes: []ParamType{str, str}, Impl: fnStartsWith},
			"join":       {Name: "join", MinArgs: 2, MaxArgs: 2, ArgTypes: []ParamType{str, arrayOf(types.KindString)}, Impl: fnJoin},
			"keys":       {Name: "keys", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{anyOf(types.KindObject)}, Impl: fnKeys},
			"values":     {Name: "values", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{anyOf(types.KindObject)}, Impl: fnValues},
			"map":        {Name: "map", MinArgs: 2, MaxArgs: 2, ArgTypes: []ParamType{exprRef, arr}, Impl: fnMap},
			"max":        {Name: "max", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{arrayOf(types.KindNumber, types.KindString)}, Impl: fnMax},
			"min":        {Name: "min", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{arrayOf(types.KindNumber, types.KindString)}, Impl: fnMin},
			"max_by":     {Name: "max_by", MinArgs: 2, MaxArgs: 2, ArgTypes: []ParamType{arr, exprRef}, Impl: fnMaxBy},
			"min_by":     {Name: "min_by", MinArgs: 2, MaxArgs: 2, ArgTypes: []ParamType{arr, exprRef}, Impl: fnMinBy},
			"merge":      {Name: "merge", MinArgs: 1, MaxArgs: -1, Impl: fnMerge},
			"reverse":    {Name: "reverse", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{anyOf(types.KindString, types.KindArray)}, Impl: fnReverse},
			"sort":       {Name: "sort", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{arrayOf(types.KindNumber, types.KindString)}, Impl: fnSort},
			"sort_by":    {Name: "sort_by", MinArgs: 2, MaxArgs: 2, ArgTypes: []ParamType{arr, exprRef}, Impl: fnSortBy},

			// Date/time extension functions
			"current_datetime": {Name: "current_datetime", MinArgs: 0, MaxArgs: 0, Impl: fnCurrentDatetime},
			"seconds_ago":      {Name: "seconds_ago", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{num}, Impl: fnSecondsAgo},
			"minutes_ago":      {Name: "minutes_ago", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{num}, Impl: fnMinutesAgo},
			"hours_ago":        {Name: "hours_ago", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{num}, Impl: fnHoursAgo},
			"days_ago":         {Name: "days_ago", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{num}, Impl: fnDaysAgo},
			"weeks_ago":        {Name: "weeks_ago", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{num}, Impl: fnWeeksAgo},
			"months_ago":       {Name: "months_ago", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{num}, Impl: fnMonthsAgo},
			"years_ago":        {Name: "years_ago", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{num}, Impl: fnYearsAgo},
			"seconds_from_now": {Name: "seconds_from_now", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{num}, Impl: fnSecondsFromNow},
			"minutes_from_now": {Name: "minutes_from_now", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{num}, Impl: fnMinutesFromNow},
			"hours_from_now":   {Name: "hours_from_now", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{num}, Impl: fnHoursFromNow},
			"days_from_now":    {Name: "days_from_now", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{num}, Impl: fnDaysFromNow},
			"weeks_from_now":   {Name: "weeks_from_now", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{num}, Impl: fnWeeksFromNow},
			"months_from_now":  {Name: "months_from_now", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{num}, Impl: fnMonthsFromNow},
			"years_from_now":   {Name: "years_from_now", MinArgs: 1, MaxArgs: 1, ArgTypes: []ParamType{num}, Impl: fnYearsFromNow},
		}
	})
}

// GetFunction retrieves a built-in function definition by name.
func GetFunction(name string) (*FunctionDef, bool) {
	initBuiltinFunctions()
	fn, ok := builtinFunctions[name]
	return fn, ok
}

// checkArity validates args against fn's declared MinArgs/MaxArgs.
func (fn *FunctionDef) checkArity(args []types.Value) error {
	if len(args) < fn.MinArgs || (fn.MaxArgs >= 0 && len(args) > fn.MaxArgs) {
		return types.NewError(types.InvalidArityError,
			fmt.Sprintf("%s(): invalid number of arguments: got %d", fn.Name, len(args)))
	}
	return nil
}

// checkTypes validates each fixed-position argument against fn's ArgTypes.
func (fn *FunctionDef) checkTypes(args []types.Value) error {
	for i, pt := range fn.ArgTypes {
		if i >= len(args) {
			break
		}
		if err := pt.Validate(fn.Name, i, args[i]); err != nil {
			return err
		}
	}
	return nil
}

// Call runs fn against args, enforcing arity and declared argument types
// before dispatching to Impl.
func (fn *FunctionDef) Call(ctx context.Context, e *Evaluator, ec *EvalContext, args []types.Value) (types.Value, error) {
	if err := fn.checkArity(args); err != nil {
		return types.Null, err
	}
	if err := fn.checkTypes(args); err != nil {
		return types.Null, err
	}
	return fn.Impl(ctx, e, ec, args)
}
