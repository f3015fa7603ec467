package apophis

import (
	"strconv"
	"strings"
)

// TokenType is the kind of a lexical token.
type TokenType int

const (
	tokEOF TokenType = iota
	tokNewline
	tokIndent
	tokDedent

	tokName
	tokInt
	tokFloat
	tokString

	// Operators and punctuation.
	tokPlus
	tokMinus
	tokStar
	tokStarStar
	tokSlash
	tokPercent
	tokAssign
	tokEq
	tokNotEq
	tokLess
	tokLessEq
	tokGreater
	tokGreaterEq
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokColon
	tokDot

	// Keywords.
	tokIf
	tokElif
	tokElse
	tokWhile
	tokFor
	tokIn
	tokDef
	tokReturn
	tokBreak
	tokContinue
	tokPass
	tokAnd
	tokOr
	tokNot
	tokTrue
	tokFalse
	tokNone
	tokImport
)

var keywords = map[string]TokenType{
	"if":       tokIf,
	"elif":     tokElif,
	"else":     tokElse,
	"while":    tokWhile,
	"for":      tokFor,
	"in":       tokIn,
	"def":      tokDef,
	"return":   tokReturn,
	"break":    tokBreak,
	"continue": tokContinue,
	"pass":     tokPass,
	"and":      tokAnd,
	"or":       tokOr,
	"not":      tokNot,
	"True":     tokTrue,
	"False":    tokFalse,
	"None":     tokNone,
	"import":   tokImport,
}

var singleCharTokens = map[byte]TokenType{
	'+': tokPlus, '-': tokMinus, '*': tokStar, '/': tokSlash,
	'%': tokPercent, '=': tokAssign, '<': tokLess, '>': tokGreater,
	'(': tokLParen, ')': tokRParen, '[': tokLBracket, ']': tokRBracket,
	',': tokComma, ':': tokColon, '.': tokDot,
}

// Token is a lexical token with its 1-based source position.
type Token struct {
	Type TokenType
	Text string
	Line int
	Col  int
}

// lexer tokenizes one script segment. It is line-oriented: each physical
// line produces its tokens followed by a newline token, and changes in
// leading whitespace produce indent/dedent tokens, Python tokenizer style.
// Blank and comment-only lines produce nothing.
type lexer struct {
	lines  []string
	tokens []Token
	indent []int
}

// lex tokenizes desugared script text. The returned stream always ends
// with any pending dedents followed by a single EOF token.
func lex(text string) ([]Token, error) {
	lx := &lexer{
		lines:  strings.Split(text, "\n"),
		indent: []int{0},
	}
	for i, line := range lx.lines {
		if err := lx.lexLine(i+1, line); err != nil {
			return nil, err
		}
	}
	last := len(lx.lines)
	for len(lx.indent) > 1 {
		lx.indent = lx.indent[:len(lx.indent)-1]
		lx.emit(tokDedent, "", last, 1)
	}
	lx.emit(tokEOF, "", last, 1)
	return lx.tokens, nil
}

func (lx *lexer) emit(t TokenType, text string, line, col int) {
	lx.tokens = append(lx.tokens, Token{Type: t, Text: text, Line: line, Col: col})
}

func (lx *lexer) lexLine(lineNo int, line string) error {
	// Measure indentation. Tabs advance to the next multiple of 8.
	width := 0
	i := 0
	for i < len(line) {
		switch line[i] {
		case ' ':
			width++
		case '\t':
			width += 8 - width%8
		default:
			goto measured
		}
		i++
	}
measured:
	rest := line[i:]
	if rest == "" || rest[0] == '#' {
		return nil
	}

	top := lx.indent[len(lx.indent)-1]
	switch {
	case width > top:
		lx.indent = append(lx.indent, width)
		lx.emit(tokIndent, "", lineNo, 1)
	case width < top:
		for len(lx.indent) > 1 && lx.indent[len(lx.indent)-1] > width {
			lx.indent = lx.indent[:len(lx.indent)-1]
			lx.emit(tokDedent, "", lineNo, 1)
		}
		if lx.indent[len(lx.indent)-1] != width {
			return &MalformedSyntaxError{Line: lineNo, Col: 1, Msg: "inconsistent indentation"}
		}
	}

	col := i + 1
	for len(rest) > 0 {
		n, err := lx.lexToken(lineNo, col, rest)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		col += n
		rest = rest[n:]
	}
	lx.emit(tokNewline, "", lineNo, col)
	return nil
}

// lexToken consumes one token (or a run of whitespace, or a trailing
// comment) from rest and returns how many bytes it consumed. A zero return
// with no error means the remainder of the line is a comment.
func (lx *lexer) lexToken(line, col int, rest string) (int, error) {
	c := rest[0]
	switch {
	case c == ' ' || c == '\t':
		n := 1
		for n < len(rest) && (rest[n] == ' ' || rest[n] == '\t') {
			n++
		}
		return n, nil
	case c == '#':
		return 0, nil
	case isNameStart(c):
		n := 1
		for n < len(rest) && isNamePart(rest[n]) {
			n++
		}
		word := rest[:n]
		if t, ok := keywords[word]; ok {
			lx.emit(t, word, line, col)
		} else {
			lx.emit(tokName, word, line, col)
		}
		return n, nil
	case c >= '0' && c <= '9' || c == '.' && len(rest) > 1 && rest[1] >= '0' && rest[1] <= '9':
		return lx.lexNumber(line, col, rest)
	case c == '\'' || c == '"':
		return lx.lexString(line, col, rest)
	}

	two := ""
	if len(rest) >= 2 {
		two = rest[:2]
	}
	switch two {
	case "**":
		lx.emit(tokStarStar, two, line, col)
		return 2, nil
	case "==":
		lx.emit(tokEq, two, line, col)
		return 2, nil
	case "!=":
		lx.emit(tokNotEq, two, line, col)
		return 2, nil
	case "<=":
		lx.emit(tokLessEq, two, line, col)
		return 2, nil
	case ">=":
		lx.emit(tokGreaterEq, two, line, col)
		return 2, nil
	}

	if t, ok := singleCharTokens[c]; ok {
		lx.emit(t, string(c), line, col)
		return 1, nil
	}
	return 0, &MalformedSyntaxError{Line: line, Col: col, Msg: "unexpected character " + strconv.QuoteRune(rune(c))}
}

func (lx *lexer) lexNumber(line, col int, rest string) (int, error) {
	n := 0
	isFloat := false
	for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
		n++
	}
	if n < len(rest) && rest[n] == '.' && !(n+1 < len(rest) && isNameStart(rest[n+1])) {
		isFloat = true
		n++
		for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
			n++
		}
	}
	if n < len(rest) && (rest[n] == 'e' || rest[n] == 'E') {
		m := n + 1
		if m < len(rest) && (rest[m] == '+' || rest[m] == '-') {
			m++
		}
		if m < len(rest) && rest[m] >= '0' && rest[m] <= '9' {
			isFloat = true
			n = m
			for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
				n++
			}
		}
	}
	text := rest[:n]
	if isFloat {
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return 0, &MalformedSyntaxError{Line: line, Col: col, Msg: "bad float literal " + text}
		}
		lx.emit(tokFloat, text, line, col)
	} else {
		if _, err := strconv.ParseInt(text, 10, 64); err != nil {
			return 0, &MalformedSyntaxError{Line: line, Col: col, Msg: "bad integer literal " + text}
		}
		lx.emit(tokInt, text, line, col)
	}
	return n, nil
}

func (lx *lexer) lexString(line, col int, rest string) (int, error) {
	quote := rest[0]
	var b strings.Builder
	n := 1
	for n < len(rest) {
		c := rest[n]
		if c == quote {
			lx.emit(tokString, b.String(), line, col)
			return n + 1, nil
		}
		if c == '\\' {
			if n+1 >= len(rest) {
				break
			}
			n++
			switch rest[n] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\':
				b.WriteByte('\\')
			case '\'':
				b.WriteByte('\'')
			case '"':
				b.WriteByte('"')
			default:
				b.WriteByte('\\')
				b.WriteByte(rest[n])
			}
			n++
			continue
		}
		b.WriteByte(c)
		n++
	}
	return 0, &MalformedSyntaxError{Line: line, Col: col, Msg: "unterminated string literal"}
}

func isNameStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isNamePart(c byte) bool {
	return isNameStart(c) || c >= '0' && c <= '9'
}
