package types

// NodeType identifies the variant of an AST node.
type NodeType string

// AST node kinds, following the node set laid out by the JMESPath grammar.
const (
	NodeField          NodeType = "field"          // identifier lookup
	NodeIndex          NodeType = "index"          // [n] integer index, may be negative
	NodeLiteral        NodeType = "literal"        // `json literal` or raw 'string'
	NodeIdentity        NodeType = "identity"        // @
	NodeCurrent         NodeType = "current"         // $ (root)
	NodeSubexpression   NodeType = "subexpression"    // L.R chain
	NodeComparator       NodeType = "comparator"       // ==, !=, <, <=, >, >=
	NodeAnd              NodeType = "and"              // &&
	NodeOr               NodeType = "or"               // ||
	NodeNot              NodeType = "not"              // !
	NodePipe             NodeType = "pipe"             // |
	NodeFlatten          NodeType = "flatten"          // []
	NodeSlice            NodeType = "slice"            // [a:b:c], non-projecting form folded into SliceProjection
	NodeMultiSelectList  NodeType = "multiselect_list"  // [e1, e2, ...]
	NodeMultiSelectHash  NodeType = "multiselect_hash"  // {k1: e1, k2: e2, ...}
	NodeArrayProjection  NodeType = "array_projection"  // L[*] then R
	NodeObjectProjection NodeType = "object_projection" // L.* then R
	NodeSliceProjection  NodeType = "slice_projection"  // L[a:b:c] then R
	NodeFilterProjection NodeType = "filter_projection" // L[?pred] then R
	NodeFunction         NodeType = "function"          // name(args...)
	NodeExpressionRef    NodeType = "expression_ref"     // &expr
)

// SliceParams holds the three slice operands; a nil *float64 means "not given".
type SliceParams struct {
	Start *float64
	Stop  *float64
	Step  *float64
}

// ASTNode is an immutable node in the parsed expression tree. Only the
// fields relevant to Type are meaningful; the parser never sets fields
// outside that contract and the interpreter never reads them.
type ASTNode struct {
	Type NodeType

	// Position is the 0-based column where this node's leading token began,
	// used for error reporting when a runtime error can be pinned to syntax.
	Position int

	// Single-value payloads.
	Literal    Value        // NodeLiteral
	FieldName  string       // NodeField
	IndexValue int          // NodeIndex
	Comparator string       // NodeComparator: "==", "!=", "<", "<=", ">", ">="
	Slice      SliceParams  // NodeSlice, NodeSliceProjection
	FuncName   string       // NodeFunction

	// Structural children. Which of these are populated depends on Type:
	//   NodeSubexpression, NodeAnd, NodeOr, NodePipe, NodeComparator: LHS, RHS
	//   NodeNot, NodeFlatten, NodeExpressionRef: LHS
	//   NodeArrayProjection, NodeObjectProjection, NodeSliceProjection: LHS (source), RHS (projected body)
	//   NodeFilterProjection: LHS (source), Predicate, RHS (projected body)
	//   NodeMultiSelectList: Elements
	//   NodeMultiSelectHash: HashPairs
	//   NodeFunction: Arguments
	LHS       *ASTNode
	RHS       *ASTNode
	Predicate *ASTNode

	Elements  []*ASTNode
	HashPairs []HashPair
	Arguments []*ASTNode
}

// HashPair is one key:value entry of a multi-select-hash literal.
type HashPair struct {
	Key   string
	Value *ASTNode
}

// NewASTNode allocates a zero-valued node of the given type and position.
// Callers fill in the remaining fields appropriate to Type.
func NewASTNode(nodeType NodeType, position int) *ASTNode {
	return &ASTNode{Type: nodeType, Position: position}
}

// String returns the node's type name, primarily for debugging/%v use.
func (n *ASTNode) String() string {
	if n == nil {
		return "<nil>"
	}
	return string(n.Type)
}
