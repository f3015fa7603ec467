package apophis

import (
	"math"
	"strings"
)

// Function is a function defined by a script segment. Definitions persist
// in the environment's function table across segments of one execution,
// but are not values: they cannot be stored in variables and never cross
// the bridge.
type Function struct {
	Name   string
	Params []string
	Body   []Stmt
}

// Sandbox parses, validates, and executes script-channel text against a
// shared environment. The only ambient capability reachable from inside
// a program is the print primitive; there is no file, network, process,
// or reflective access, and the allow-list in validate.go is the sole
// gate deciding what executes.
type Sandbox struct{}

// NewSandbox returns a sandbox executor. Sandboxes are stateless; all
// persistent state lives in the environment passed to Run.
func NewSandbox() *Sandbox { return &Sandbox{} }

// Run executes script text and returns everything the program printed.
//
// The text is desugared, parsed, and validated before any of it runs, so
// a rejected program has no partial side effects. Pre-existing variables
// in env are visible to the program and new assignments persist into env
// after Run returns.
//
// Run fails with MalformedSyntaxError if the text does not parse,
// SyntaxRejectedError if it contains a disallowed construct, and
// EvalError for faults raised during execution.
func (s *Sandbox) Run(text string, env *Environment) (string, error) {
	mod, err := Parse(Desugar(text))
	if err != nil {
		return "", err
	}
	if err := Validate(mod); err != nil {
		return "", err
	}
	ev := &evaluator{env: env}
	if _, _, err := ev.execStmts(mod.Body); err != nil {
		return "", err
	}
	return ev.out.String(), nil
}

// maxCallDepth bounds recursion through user-defined functions.
const maxCallDepth = 1000

type ctrl int

const (
	ctrlNone ctrl = iota
	ctrlBreak
	ctrlContinue
	ctrlReturn
)

// evaluator walks a validated tree. locals is the call-frame stack: empty
// at module level, one map per active function call. Output ordering is
// the order print executes in, depth-first through control flow.
type evaluator struct {
	env    *Environment
	out    strings.Builder
	locals []map[string]Value
}

func (ev *evaluator) execStmts(body []Stmt) (ctrl, Value, error) {
	for _, stmt := range body {
		c, v, err := ev.execStmt(stmt)
		if err != nil || c != ctrlNone {
			return c, v, err
		}
	}
	return ctrlNone, Null(), nil
}

func (ev *evaluator) execStmt(stmt Stmt) (ctrl, Value, error) {
	switch t := stmt.(type) {
	case *Assign:
		v, err := ev.eval(t.Value)
		if err != nil {
			return ctrlNone, Null(), err
		}
		ev.assign(t.Target.Ident, v)
	case *ExprStmt:
		if _, err := ev.eval(t.X); err != nil {
			return ctrlNone, Null(), err
		}
	case *IfStmt:
		cond, err := ev.eval(t.Cond)
		if err != nil {
			return ctrlNone, Null(), err
		}
		if cond.Truthy() {
			return ev.execStmts(t.Body)
		}
		return ev.execStmts(t.Else)
	case *WhileStmt:
		for {
			cond, err := ev.eval(t.Cond)
			if err != nil {
				return ctrlNone, Null(), err
			}
			if !cond.Truthy() {
				break
			}
			c, v, err := ev.execStmts(t.Body)
			if err != nil {
				return ctrlNone, Null(), err
			}
			if c == ctrlBreak {
				break
			}
			if c == ctrlReturn {
				return c, v, nil
			}
		}
	case *FuncDef:
		ev.env.setFunc(&Function{Name: t.Name, Params: t.Params.Names, Body: t.Body})
	case *ReturnStmt:
		if len(ev.locals) == 0 {
			return ctrlNone, Null(), evalErrorf("return outside function")
		}
		v := Null()
		if t.Value != nil {
			var err error
			v, err = ev.eval(t.Value)
			if err != nil {
				return ctrlNone, Null(), err
			}
		}
		return ctrlReturn, v, nil
	case *BreakStmt:
		return ctrlBreak, Null(), nil
	case *ContinueStmt:
		return ctrlContinue, Null(), nil
	case *PassStmt:
		// no-op
	default:
		// Unreachable after validation; fail closed anyway.
		return ctrlNone, Null(), &SyntaxRejectedError{Kind: stmt.Kind()}
	}
	return ctrlNone, Null(), nil
}

// assign writes to the innermost call frame, or to the shared environment
// at module level.
func (ev *evaluator) assign(name string, v Value) {
	if len(ev.locals) > 0 {
		ev.locals[len(ev.locals)-1][name] = v
		return
	}
	ev.env.Set(name, v)
}

// lookup reads the innermost call frame first, then the environment.
func (ev *evaluator) lookup(name string) (Value, bool) {
	if len(ev.locals) > 0 {
		if v, ok := ev.locals[len(ev.locals)-1][name]; ok {
			return v, true
		}
	}
	return ev.env.Get(name)
}

func (ev *evaluator) eval(expr Expr) (Value, error) {
	switch t := expr.(type) {
	case *Const:
		return t.Val, nil
	case *Name:
		v, ok := ev.lookup(t.Ident)
		if !ok {
			return Null(), evalErrorf("name %q is not defined", t.Ident)
		}
		return v, nil
	case *BinOp:
		l, err := ev.eval(t.L)
		if err != nil {
			return Null(), err
		}
		r, err := ev.eval(t.R)
		if err != nil {
			return Null(), err
		}
		return binOp(t.Op, l, r)
	case *Compare:
		l, err := ev.eval(t.L)
		if err != nil {
			return Null(), err
		}
		r, err := ev.eval(t.R)
		if err != nil {
			return Null(), err
		}
		return compare(t.Op, l, r)
	case *BoolOp:
		l, err := ev.eval(t.L)
		if err != nil {
			return Null(), err
		}
		// and/or short-circuit and yield an operand, not a coerced bool.
		if t.Op == KindAnd && !l.Truthy() || t.Op == KindOr && l.Truthy() {
			return l, nil
		}
		return ev.eval(t.R)
	case *UnaryOp:
		x, err := ev.eval(t.X)
		if err != nil {
			return Null(), err
		}
		return unaryOp(t.Op, x)
	case *Call:
		return ev.call(t)
	}
	return Null(), &SyntaxRejectedError{Kind: expr.Kind()}
}

func (ev *evaluator) call(c *Call) (Value, error) {
	callee, ok := c.Func.(*Name)
	if !ok {
		return Null(), evalErrorf("only named functions can be called")
	}

	if fn, found := ev.env.getFunc(callee.Ident); found {
		return ev.callFunction(fn, c)
	}

	switch callee.Ident {
	case "print", "puts":
		// Two spellings of the same primitive.
		return ev.callPrint(c)
	}
	return Null(), evalErrorf("function %q is not defined", callee.Ident)
}

func (ev *evaluator) callFunction(fn *Function, c *Call) (Value, error) {
	if len(c.Keywords) > 0 {
		return Null(), evalErrorf("%s() takes no keyword arguments", fn.Name)
	}
	if len(c.Args) != len(fn.Params) {
		return Null(), evalErrorf("%s() takes %d arguments, got %d", fn.Name, len(fn.Params), len(c.Args))
	}
	if len(ev.locals) >= maxCallDepth {
		return Null(), evalErrorf("maximum call depth exceeded")
	}

	frame := make(map[string]Value, len(fn.Params))
	for i, param := range fn.Params {
		v, err := ev.eval(c.Args[i])
		if err != nil {
			return Null(), err
		}
		frame[param] = v
	}

	ev.locals = append(ev.locals, frame)
	ctl, v, err := ev.execStmts(fn.Body)
	ev.locals = ev.locals[:len(ev.locals)-1]
	if err != nil {
		return Null(), err
	}
	if ctl == ctrlReturn {
		return v, nil
	}
	return Null(), nil
}

func (ev *evaluator) callPrint(c *Call) (Value, error) {
	end := "\n"
	for _, kw := range c.Keywords {
		if kw.Name != "end" {
			return Null(), evalErrorf("print() got an unexpected keyword argument %q", kw.Name)
		}
		v, err := ev.eval(kw.Value)
		if err != nil {
			return Null(), err
		}
		if v.Tag() != TagStr {
			return Null(), evalErrorf("print() end must be a string")
		}
		end = v.AsStr()
	}
	for i, arg := range c.Args {
		v, err := ev.eval(arg)
		if err != nil {
			return Null(), err
		}
		if i > 0 {
			ev.out.WriteByte(' ')
		}
		ev.out.WriteString(v.String())
	}
	ev.out.WriteString(end)
	return Null(), nil
}

func binOp(op NodeKind, l, r Value) (Value, error) {
	// String operations first: concatenation and repetition.
	if op == KindAdd && l.Tag() == TagStr && r.Tag() == TagStr {
		return Str(l.AsStr() + r.AsStr()), nil
	}
	if op == KindMult {
		if l.Tag() == TagStr && r.Tag() == TagInt {
			return repeatStr(l.AsStr(), r.AsInt())
		}
		if l.Tag() == TagInt && r.Tag() == TagStr {
			return repeatStr(r.AsStr(), l.AsInt())
		}
	}

	if !l.IsNumber() || !r.IsNumber() {
		return Null(), evalErrorf("unsupported operand types for %s", op)
	}
	bothInt := l.Tag() == TagInt && r.Tag() == TagInt

	switch op {
	case KindAdd:
		if bothInt {
			return Int(l.AsInt() + r.AsInt()), nil
		}
		return Float(l.floatVal() + r.floatVal()), nil
	case KindSub:
		if bothInt {
			return Int(l.AsInt() - r.AsInt()), nil
		}
		return Float(l.floatVal() - r.floatVal()), nil
	case KindMult:
		if bothInt {
			return Int(l.AsInt() * r.AsInt()), nil
		}
		return Float(l.floatVal() * r.floatVal()), nil
	case KindDiv:
		// Division always yields a float, like the canonical subset.
		if r.floatVal() == 0 {
			return Null(), evalErrorf("division by zero")
		}
		return Float(l.floatVal() / r.floatVal()), nil
	case KindMod:
		if r.floatVal() == 0 {
			return Null(), evalErrorf("modulo by zero")
		}
		if bothInt {
			// Result takes the divisor's sign.
			m := l.AsInt() % r.AsInt()
			if m != 0 && (m < 0) != (r.AsInt() < 0) {
				m += r.AsInt()
			}
			return Int(m), nil
		}
		m := math.Mod(l.floatVal(), r.floatVal())
		if m != 0 && (m < 0) != (r.floatVal() < 0) {
			m += r.floatVal()
		}
		return Float(m), nil
	case KindPow:
		if bothInt && r.AsInt() >= 0 {
			return Int(intPow(l.AsInt(), r.AsInt())), nil
		}
		return Float(math.Pow(l.floatVal(), r.floatVal())), nil
	}
	return Null(), evalErrorf("unsupported operator %s", op)
}

func repeatStr(s string, n int64) (Value, error) {
	if n < 0 {
		n = 0
	}
	if int64(len(s))*n > 1<<24 {
		return Null(), evalErrorf("string repetition too large")
	}
	return Str(strings.Repeat(s, int(n))), nil
}

func intPow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func compare(op NodeKind, l, r Value) (Value, error) {
	switch op {
	case KindEq:
		return Bool(l.Equal(r)), nil
	case KindNotEq:
		return Bool(!l.Equal(r)), nil
	}

	var less, eq bool
	switch {
	case l.IsNumber() && r.IsNumber():
		less = l.floatVal() < r.floatVal()
		eq = l.floatVal() == r.floatVal()
	case l.Tag() == TagStr && r.Tag() == TagStr:
		less = l.AsStr() < r.AsStr()
		eq = l.AsStr() == r.AsStr()
	default:
		return Null(), evalErrorf("unorderable operand types for %s", op)
	}

	switch op {
	case KindLt:
		return Bool(less), nil
	case KindLtE:
		return Bool(less || eq), nil
	case KindGt:
		return Bool(!less && !eq), nil
	case KindGtE:
		return Bool(!less), nil
	}
	return Null(), evalErrorf("unsupported comparison %s", op)
}

func unaryOp(op NodeKind, x Value) (Value, error) {
	switch op {
	case KindNot:
		return Bool(!x.Truthy()), nil
	case KindUAdd:
		if !x.IsNumber() {
			return Null(), evalErrorf("bad operand type for unary +")
		}
		return x, nil
	case KindUSub:
		switch x.Tag() {
		case TagInt:
			return Int(-x.AsInt()), nil
		case TagFloat:
			return Float(-x.AsFloat()), nil
		}
		return Null(), evalErrorf("bad operand type for unary -")
	}
	return Null(), evalErrorf("unsupported unary operator %s", op)
}
