package apophis

import "strings"

// blockKeywords are the block-introducing keywords that take a trailing
// colon in the canonical surface syntax.
var blockKeywords = map[string]bool{
	"if":    true,
	"elif":  true,
	"else":  true,
	"while": true,
	"def":   true,
}

// aliasKeywords maps alternate leading keywords to their canonical
// spelling. unless/until additionally wrap their condition in "not (...)".
var aliasKeywords = map[string]string{
	"elsif":  "elif",
	"unless": "if",
	"until":  "while",
}

// Desugar rewrites the alternate block-terminated surface syntax into the
// canonical colon-and-indentation syntax, one physical line at a time:
//
//   - a line that is exactly the keyword "end" is dropped;
//   - a leading "elsif" becomes "elif"; "unless c" becomes "if not (c)";
//     "until c" becomes "while not (c)";
//   - a block header ("if", "elif", "else", "while", "def") that does not
//     already end with ':' gets one appended.
//
// Desugar is a best-effort textual pass, not a transpiler: it performs no
// semantic analysis and leaves any line outside these patterns untouched.
// Canonical input passes through unchanged.
func Desugar(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "end" {
			continue
		}
		out = append(out, desugarLine(line, trimmed))
	}
	return strings.Join(out, "\n")
}

func desugarLine(line, trimmed string) string {
	keyword, rest := leadingWord(trimmed)
	if keyword == "" {
		return line
	}
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]

	if canonical, ok := aliasKeywords[keyword]; ok {
		if keyword == "elsif" {
			line = indent + canonical + rest
		} else {
			// unless/until negate their condition.
			cond := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), ":"))
			line = indent + canonical + " not (" + cond + ")"
		}
		keyword = canonical
		trimmed = strings.TrimSpace(line)
	}

	if blockKeywords[keyword] && !strings.HasSuffix(trimmed, ":") {
		line += ":"
	}
	return line
}

// leadingWord splits off the first identifier-shaped word of a trimmed
// line, returning the word and everything after it.
func leadingWord(trimmed string) (string, string) {
	i := 0
	for i < len(trimmed) {
		c := trimmed[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || i > 0 && c >= '0' && c <= '9' {
			i++
			continue
		}
		break
	}
	if i == 0 {
		return "", trimmed
	}
	// A keyword must stand alone or be followed by a non-identifier rune.
	return trimmed[:i], trimmed[i:]
}
