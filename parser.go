package apophis

import (
	"strconv"
)

// parser builds a Module from a token stream. It is a plain recursive
// descent parser over the statement grammar of the restricted subset, plus
// the handful of constructs (import, attribute access, subscripting, for
// loops) that parse only so the validator can reject them by kind.
type parser struct {
	tokens []Token
	pos    int
}

// Parse desugars nothing and validates nothing: it turns already-rewritten
// script text into a syntax tree, or fails with MalformedSyntaxError.
func Parse(text string) (*Module, error) {
	tokens, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	mod := &Module{}
	for !p.at(tokEOF) {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		mod.Body = append(mod.Body, stmt)
	}
	return mod, nil
}

func (p *parser) peek() Token { return p.tokens[p.pos] }

func (p *parser) at(t TokenType) bool { return p.tokens[p.pos].Type == t }

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Type != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(t TokenType) bool {
	if p.at(t) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(t TokenType, what string) (Token, error) {
	if p.at(t) {
		return p.next(), nil
	}
	return Token{}, p.errHere("expected " + what)
}

func (p *parser) errHere(msg string) error {
	tok := p.peek()
	if tok.Text != "" {
		msg += ", found " + strconv.Quote(tok.Text)
	}
	return &MalformedSyntaxError{Line: tok.Line, Col: tok.Col, Msg: msg}
}

func (p *parser) statement() (Stmt, error) {
	switch p.peek().Type {
	case tokIf:
		return p.ifStatement()
	case tokWhile:
		return p.whileStatement()
	case tokFor:
		return p.forStatement()
	case tokDef:
		return p.funcDef()
	default:
		return p.simpleStatement()
	}
}

func (p *parser) simpleStatement() (Stmt, error) {
	var stmt Stmt
	switch p.peek().Type {
	case tokReturn:
		p.next()
		var value Expr
		if !p.at(tokNewline) && !p.at(tokEOF) {
			var err error
			value, err = p.expression()
			if err != nil {
				return nil, err
			}
		}
		stmt = &ReturnStmt{Value: value}
	case tokBreak:
		p.next()
		stmt = &BreakStmt{}
	case tokContinue:
		p.next()
		stmt = &ContinueStmt{}
	case tokPass:
		p.next()
		stmt = &PassStmt{}
	case tokImport:
		p.next()
		imp := &ImportStmt{}
		for {
			tok, err := p.expect(tokName, "module name")
			if err != nil {
				return nil, err
			}
			imp.Modules = append(imp.Modules, tok.Text)
			if !p.accept(tokComma) {
				break
			}
		}
		stmt = imp
	default:
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if p.accept(tokAssign) {
			name, ok := expr.(*Name)
			if !ok {
				return nil, p.errHere("assignment target must be a name")
			}
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			stmt = &Assign{Target: name, Value: value}
		} else {
			stmt = &ExprStmt{X: expr}
		}
	}
	if _, err := p.expect(tokNewline, "end of line"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) ifStatement() (Stmt, error) {
	p.next()
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	node := &IfStmt{Cond: cond, Body: body}
	switch {
	case p.at(tokElif):
		// An elif chain nests as an if statement in the else branch.
		chained, err := p.ifStatement()
		if err != nil {
			return nil, err
		}
		node.Else = []Stmt{chained}
	case p.accept(tokElse):
		node.Else, err = p.block()
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

func (p *parser) whileStatement() (Stmt, error) {
	p.next()
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Cond: cond, Body: body}, nil
}

func (p *parser) forStatement() (Stmt, error) {
	p.next()
	tok, err := p.expect(tokName, "loop variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokIn, `"in"`); err != nil {
		return nil, err
	}
	iter, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ForStmt{Var: &Name{Ident: tok.Text}, Iter: iter, Body: body}, nil
}

func (p *parser) funcDef() (Stmt, error) {
	p.next()
	tok, err := p.expect(tokName, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return nil, err
	}
	params := &Arguments{}
	if !p.at(tokRParen) {
		for {
			ptok, err := p.expect(tokName, "parameter name")
			if err != nil {
				return nil, err
			}
			params.Names = append(params.Names, ptok.Text)
			if !p.accept(tokComma) {
				break
			}
		}
	}
	if _, err := p.expect(tokRParen, `")"`); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &FuncDef{Name: tok.Text, Params: params, Body: body}, nil
}

// block parses ": NEWLINE INDENT stmt+ DEDENT".
func (p *parser) block() ([]Stmt, error) {
	if _, err := p.expect(tokColon, `":"`); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokNewline, "end of line after \":\""); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokIndent, "an indented block"); err != nil {
		return nil, err
	}
	var body []Stmt
	for !p.at(tokDedent) && !p.at(tokEOF) {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	if _, err := p.expect(tokDedent, "end of block"); err != nil {
		return nil, err
	}
	return body, nil
}

// Expression grammar, loosest binding first:
// or > and > not > comparison > additive > multiplicative > unary > power > postfix > atom.

func (p *parser) expression() (Expr, error) { return p.orExpr() }

func (p *parser) orExpr() (Expr, error) {
	left, err := p.andExpr()
	if err != nil {
		return nil, err
	}
	for p.accept(tokOr) {
		right, err := p.andExpr()
		if err != nil {
			return nil, err
		}
		left = &BoolOp{Op: KindOr, L: left, R: right}
	}
	return left, nil
}

func (p *parser) andExpr() (Expr, error) {
	left, err := p.notExpr()
	if err != nil {
		return nil, err
	}
	for p.accept(tokAnd) {
		right, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		left = &BoolOp{Op: KindAnd, L: left, R: right}
	}
	return left, nil
}

func (p *parser) notExpr() (Expr, error) {
	if p.accept(tokNot) {
		x, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: KindNot, X: x}, nil
	}
	return p.comparison()
}

var compareOps = map[TokenType]NodeKind{
	tokEq:        KindEq,
	tokNotEq:     KindNotEq,
	tokLess:      KindLt,
	tokLessEq:    KindLtE,
	tokGreater:   KindGt,
	tokGreaterEq: KindGtE,
}

func (p *parser) comparison() (Expr, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	op, ok := compareOps[p.peek().Type]
	if !ok {
		return left, nil
	}
	p.next()
	right, err := p.additive()
	if err != nil {
		return nil, err
	}
	if _, chained := compareOps[p.peek().Type]; chained {
		return nil, p.errHere("chained comparisons are not supported")
	}
	return &Compare{Op: op, L: left, R: right}, nil
}

func (p *parser) additive() (Expr, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op NodeKind
		switch p.peek().Type {
		case tokPlus:
			op = KindAdd
		case tokMinus:
			op = KindSub
		default:
			return left, nil
		}
		p.next()
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinOp{Op: op, L: left, R: right}
	}
}

func (p *parser) multiplicative() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		var op NodeKind
		switch p.peek().Type {
		case tokStar:
			op = KindMult
		case tokSlash:
			op = KindDiv
		case tokPercent:
			op = KindMod
		default:
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &BinOp{Op: op, L: left, R: right}
	}
}

func (p *parser) unary() (Expr, error) {
	switch p.peek().Type {
	case tokPlus:
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: KindUAdd, X: x}, nil
	case tokMinus:
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: KindUSub, X: x}, nil
	}
	return p.power()
}

func (p *parser) power() (Expr, error) {
	base, err := p.postfix()
	if err != nil {
		return nil, err
	}
	if p.accept(tokStarStar) {
		// Power is right-associative and binds tighter than unary on
		// the right operand, as in the canonical language.
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &BinOp{Op: KindPow, L: base, R: exp}, nil
	}
	return base, nil
}

func (p *parser) postfix() (Expr, error) {
	expr, err := p.atom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept(tokLParen):
			call := &Call{Func: expr}
			if err := p.callArgs(call); err != nil {
				return nil, err
			}
			expr = call
		case p.accept(tokDot):
			tok, err := p.expect(tokName, "attribute name")
			if err != nil {
				return nil, err
			}
			expr = &Attribute{X: expr, Attr: tok.Text}
		case p.accept(tokLBracket):
			index, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRBracket, `"]"`); err != nil {
				return nil, err
			}
			expr = &Subscript{X: expr, Index: index}
		default:
			return expr, nil
		}
	}
}

func (p *parser) callArgs(call *Call) error {
	if p.accept(tokRParen) {
		return nil
	}
	for {
		// name= introduces a keyword argument.
		if p.at(tokName) && p.tokens[p.pos+1].Type == tokAssign {
			name := p.next().Text
			p.next()
			value, err := p.expression()
			if err != nil {
				return err
			}
			call.Keywords = append(call.Keywords, &KeywordArg{Name: name, Value: value})
		} else {
			if len(call.Keywords) > 0 {
				return p.errHere("positional argument after keyword argument")
			}
			arg, err := p.expression()
			if err != nil {
				return err
			}
			call.Args = append(call.Args, arg)
		}
		if p.accept(tokComma) {
			continue
		}
		_, err := p.expect(tokRParen, `")"`)
		return err
	}
}

func (p *parser) atom() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case tokName:
		p.next()
		return &Name{Ident: tok.Text}, nil
	case tokInt:
		p.next()
		i, _ := strconv.ParseInt(tok.Text, 10, 64)
		return &Const{Val: Int(i)}, nil
	case tokFloat:
		p.next()
		f, _ := strconv.ParseFloat(tok.Text, 64)
		return &Const{Val: Float(f)}, nil
	case tokString:
		p.next()
		return &Const{Val: Str(tok.Text)}, nil
	case tokTrue:
		p.next()
		return &Const{Val: Bool(true)}, nil
	case tokFalse:
		p.next()
		return &Const{Val: Bool(false)}, nil
	case tokNone:
		p.next()
		return &Const{Val: Null()}, nil
	case tokLParen:
		p.next()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, p.errHere("expected an expression")
}
