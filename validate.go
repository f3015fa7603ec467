package apophis

// allowedKinds is the sandbox's entire security boundary: a strict
// allow-list over the sealed NodeKind enumeration, initialized once and
// never mutated. Anything absent (import, attribute access, subscripting,
// for loops, or any kind added later without an explicit entry) is
// rejected before execution.
var allowedKinds = map[NodeKind]bool{
	KindModule:    true,
	KindAssign:    true,
	KindExprStmt:  true,
	KindCall:      true,
	KindKeyword:   true,
	KindName:      true,
	KindConst:     true,
	KindBinOp:     true,
	KindAdd:       true,
	KindSub:       true,
	KindMult:      true,
	KindDiv:       true,
	KindPow:       true,
	KindMod:       true,
	KindIf:        true,
	KindWhile:     true,
	KindFuncDef:   true,
	KindArguments: true,
	KindReturn:    true,
	KindCompare:   true,
	KindEq:        true,
	KindNotEq:     true,
	KindLt:        true,
	KindLtE:       true,
	KindGt:        true,
	KindGtE:       true,
	KindBoolOp:    true,
	KindAnd:       true,
	KindOr:        true,
	KindUnaryOp:   true,
	KindNot:       true,
	KindUAdd:      true,
	KindUSub:      true,
	KindBreak:     true,
	KindContinue:  true,
	KindPass:      true,
}

// Validate walks every node reachable from root and fails with
// SyntaxRejectedError on the first node kind outside the allow-list.
// No execution may begin on a tree that has not passed Validate.
func Validate(root Node) error {
	var rejected NodeKind
	ok := Walk(root, func(kind NodeKind) bool {
		if !allowedKinds[kind] {
			rejected = kind
			return false
		}
		return true
	})
	if !ok {
		return &SyntaxRejectedError{Kind: rejected}
	}
	return nil
}
