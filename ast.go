package apophis

// NodeKind identifies a syntax-tree node kind. The set is sealed: the
// parser can only ever produce kinds enumerated here, and the sandbox
// allow-list is expressed over this enumeration. Operator variants get
// their own kinds so the validator sees exactly which operator appears.
type NodeKind int

const (
	KindModule NodeKind = iota
	KindAssign
	KindExprStmt
	KindCall
	KindKeyword
	KindName
	KindConst
	KindBinOp
	KindAdd
	KindSub
	KindMult
	KindDiv
	KindPow
	KindMod
	KindIf
	KindWhile
	KindFuncDef
	KindArguments
	KindReturn
	KindCompare
	KindEq
	KindNotEq
	KindLt
	KindLtE
	KindGt
	KindGtE
	KindBoolOp
	KindAnd
	KindOr
	KindUnaryOp
	KindNot
	KindUAdd
	KindUSub
	KindBreak
	KindContinue
	KindPass

	// Kinds below parse but are outside the sandbox allow-list. They
	// exist so rejection is observable and typed, never executable.
	KindImport
	KindAttribute
	KindSubscript
	KindFor
)

var nodeKindNames = map[NodeKind]string{
	KindModule:    "module",
	KindAssign:    "assignment",
	KindExprStmt:  "expression statement",
	KindCall:      "call",
	KindKeyword:   "keyword argument",
	KindName:      "name",
	KindConst:     "constant",
	KindBinOp:     "binary operation",
	KindAdd:       "addition",
	KindSub:       "subtraction",
	KindMult:      "multiplication",
	KindDiv:       "division",
	KindPow:       "power",
	KindMod:       "modulo",
	KindIf:        "if statement",
	KindWhile:     "while loop",
	KindFuncDef:   "function definition",
	KindArguments: "parameter list",
	KindReturn:    "return",
	KindCompare:   "comparison",
	KindEq:        "equality",
	KindNotEq:     "inequality",
	KindLt:        "less-than",
	KindLtE:       "less-or-equal",
	KindGt:        "greater-than",
	KindGtE:       "greater-or-equal",
	KindBoolOp:    "boolean operation",
	KindAnd:       "and",
	KindOr:        "or",
	KindUnaryOp:   "unary operation",
	KindNot:       "not",
	KindUAdd:      "unary plus",
	KindUSub:      "unary minus",
	KindBreak:     "break",
	KindContinue:  "continue",
	KindPass:      "pass",
	KindImport:    "import",
	KindAttribute: "attribute access",
	KindSubscript: "subscript",
	KindFor:       "for loop",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "unknown node kind"
}

// Node is a syntax-tree node. Trees are transient: they exist only for
// the validation and execution of one segment and are never retained.
type Node interface {
	Kind() NodeKind
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Module is the program root.
type Module struct {
	Body []Stmt
}

// Assign binds the result of Value to Target.
type Assign struct {
	Target *Name
	Value  Expr
}

// ExprStmt is an expression evaluated for its effect, usually a call.
type ExprStmt struct {
	X Expr
}

// IfStmt is a conditional with an optional else branch. An elif chain is
// represented as a nested IfStmt in Else.
type IfStmt struct {
	Cond Expr
	Body []Stmt
	Else []Stmt
}

// WhileStmt is a condition-guarded loop.
type WhileStmt struct {
	Cond Expr
	Body []Stmt
}

// FuncDef defines a named function with positional parameters.
type FuncDef struct {
	Name   string
	Params *Arguments
	Body   []Stmt
}

// Arguments is a function definition's parameter list.
type Arguments struct {
	Names []string
}

// ReturnStmt exits the enclosing function; Value may be nil.
type ReturnStmt struct {
	Value Expr
}

// BreakStmt exits the enclosing loop.
type BreakStmt struct{}

// ContinueStmt restarts the enclosing loop.
type ContinueStmt struct{}

// PassStmt does nothing.
type PassStmt struct{}

// ImportStmt parses but is always rejected by the validator.
type ImportStmt struct {
	Modules []string
}

// ForStmt parses but is always rejected by the validator.
type ForStmt struct {
	Var  *Name
	Iter Expr
	Body []Stmt
}

// Call invokes a callee with positional and keyword arguments.
type Call struct {
	Func     Expr
	Args     []Expr
	Keywords []*KeywordArg
}

// KeywordArg is a name=value argument in a call.
type KeywordArg struct {
	Name  string
	Value Expr
}

// Name is a variable reference.
type Name struct {
	Ident string
}

// Const is a literal constant.
type Const struct {
	Val Value
}

// BinOp is an arithmetic binary operation; Op is one of the arithmetic
// operator kinds.
type BinOp struct {
	Op NodeKind
	L  Expr
	R  Expr
}

// Compare is a single, non-associative comparison.
type Compare struct {
	Op NodeKind
	L  Expr
	R  Expr
}

// BoolOp combines two operands with and/or.
type BoolOp struct {
	Op NodeKind
	L  Expr
	R  Expr
}

// UnaryOp applies not or a unary sign.
type UnaryOp struct {
	Op NodeKind
	X  Expr
}

// Attribute parses but is always rejected by the validator.
type Attribute struct {
	X    Expr
	Attr string
}

// Subscript parses but is always rejected by the validator.
type Subscript struct {
	X     Expr
	Index Expr
}

func (*Module) Kind() NodeKind       { return KindModule }
func (*Assign) Kind() NodeKind       { return KindAssign }
func (*ExprStmt) Kind() NodeKind     { return KindExprStmt }
func (*IfStmt) Kind() NodeKind       { return KindIf }
func (*WhileStmt) Kind() NodeKind    { return KindWhile }
func (*FuncDef) Kind() NodeKind      { return KindFuncDef }
func (*Arguments) Kind() NodeKind    { return KindArguments }
func (*ReturnStmt) Kind() NodeKind   { return KindReturn }
func (*BreakStmt) Kind() NodeKind    { return KindBreak }
func (*ContinueStmt) Kind() NodeKind { return KindContinue }
func (*PassStmt) Kind() NodeKind     { return KindPass }
func (*ImportStmt) Kind() NodeKind   { return KindImport }
func (*ForStmt) Kind() NodeKind      { return KindFor }
func (*Call) Kind() NodeKind         { return KindCall }
func (*KeywordArg) Kind() NodeKind   { return KindKeyword }
func (*Name) Kind() NodeKind         { return KindName }
func (*Const) Kind() NodeKind        { return KindConst }
func (b *BinOp) Kind() NodeKind      { return KindBinOp }
func (c *Compare) Kind() NodeKind    { return KindCompare }
func (b *BoolOp) Kind() NodeKind     { return KindBoolOp }
func (u *UnaryOp) Kind() NodeKind    { return KindUnaryOp }
func (*Attribute) Kind() NodeKind    { return KindAttribute }
func (*Subscript) Kind() NodeKind    { return KindSubscript }

func (*Assign) stmtNode()       {}
func (*ExprStmt) stmtNode()     {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*FuncDef) stmtNode()      {}
func (*ReturnStmt) stmtNode()   {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*PassStmt) stmtNode()     {}
func (*ImportStmt) stmtNode()   {}
func (*ForStmt) stmtNode()      {}

func (*Call) exprNode()      {}
func (*Name) exprNode()      {}
func (*Const) exprNode()     {}
func (*BinOp) exprNode()     {}
func (*Compare) exprNode()   {}
func (*BoolOp) exprNode()    {}
func (*UnaryOp) exprNode()   {}
func (*Attribute) exprNode() {}
func (*Subscript) exprNode() {}

// Walk calls visit for every node kind reachable from n, depth-first,
// including operator kinds carried on operator-bearing nodes. It stops
// early and returns false if visit returns false.
func Walk(n Node, visit func(NodeKind) bool) bool {
	if n == nil {
		return true
	}
	if !visit(n.Kind()) {
		return false
	}
	switch t := n.(type) {
	case *Module:
		return walkStmts(t.Body, visit)
	case *Assign:
		return Walk(t.Target, visit) && Walk(t.Value, visit)
	case *ExprStmt:
		return Walk(t.X, visit)
	case *IfStmt:
		return Walk(t.Cond, visit) && walkStmts(t.Body, visit) && walkStmts(t.Else, visit)
	case *WhileStmt:
		return Walk(t.Cond, visit) && walkStmts(t.Body, visit)
	case *FuncDef:
		return Walk(t.Params, visit) && walkStmts(t.Body, visit)
	case *ReturnStmt:
		if t.Value != nil {
			return Walk(t.Value, visit)
		}
	case *ImportStmt:
		return true
	case *ForStmt:
		return Walk(t.Var, visit) && Walk(t.Iter, visit) && walkStmts(t.Body, visit)
	case *Call:
		if !Walk(t.Func, visit) {
			return false
		}
		for _, a := range t.Args {
			if !Walk(a, visit) {
				return false
			}
		}
		for _, kw := range t.Keywords {
			if !Walk(kw, visit) {
				return false
			}
		}
	case *KeywordArg:
		return Walk(t.Value, visit)
	case *BinOp:
		return visit(t.Op) && Walk(t.L, visit) && Walk(t.R, visit)
	case *Compare:
		return visit(t.Op) && Walk(t.L, visit) && Walk(t.R, visit)
	case *BoolOp:
		return visit(t.Op) && Walk(t.L, visit) && Walk(t.R, visit)
	case *UnaryOp:
		return visit(t.Op) && Walk(t.X, visit)
	case *Attribute:
		return Walk(t.X, visit)
	case *Subscript:
		return Walk(t.X, visit) && Walk(t.Index, visit)
	}
	return true
}

func walkStmts(body []Stmt, visit func(NodeKind) bool) bool {
	for _, s := range body {
		if !Walk(s, visit) {
			return false
		}
	}
	return true
}
