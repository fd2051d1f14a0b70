package evaluator

import "github.com/halvorsen/jmespath/pkg/types"

// EvalContext carries the two values every JMESPath node can see: the
// current value flowing through the expression (what "@" refers to) and
// the root value the whole search started from (what "$" refers to).
type EvalContext struct {
	current types.Value
	root    types.Value
}

// NewContext builds the root evaluation context for a search: both
// current and root start out as data.
func NewContext(data types.Value) *EvalContext {
	return &EvalContext{current: data, root: data}
}

// WithCurrent returns a context with a new current value but the same root,
// used when descending into a field, index, or projection element.
func (c *EvalContext) WithCurrent(v types.Value) *EvalContext {
	return &EvalContext{current: v, root: c.root}
}

// Current returns the value "@" resolves to.
func (c *EvalContext) Current() types.Value { return c.current }

// Root returns the value "$" resolves to.
func (c *EvalContext) Root() types.Value { return c.root }
