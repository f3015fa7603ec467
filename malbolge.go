package apophis

import "strings"

// Engine executes esoteric-channel programs. It is a capability seam, not
// a full interpreter contract: callers treat any concrete engine as a
// substitutable strategy with this one operation, and a conforming engine
// fails with UnsupportedProgramError for input outside its recognized set.
type Engine interface {
	Execute(source string) (string, error)
}

// StubEngine is the reference Malbolge engine. The real language is
// extremely complex; this engine recognizes exactly two literal programs:
//
//	"Q"   terminates immediately producing no output
//	">b"  writes the letter "s"
//
// Everything else fails with UnsupportedProgramError. It is a placeholder
// for a full virtual machine, not a goal to generalize.
type StubEngine struct{}

// Execute runs one of the two recognized programs.
func (StubEngine) Execute(source string) (string, error) {
	switch source {
	case "Q":
		return "", nil
	case ">b":
		return "s", nil
	}
	return "", &UnsupportedProgramError{Source: source}
}

// encryptTable is Malbolge's fixed instruction-encryption substitution for
// the 94 printable ASCII code points 33 through 126.
var encryptTable = [94]byte{
	53, 122, 93, 38, 103, 113, 116, 121, 102, 114, 36, 40, 119, 101, 52,
	123, 87, 80, 41, 72, 45, 90, 110, 44, 91, 37, 92, 51, 100, 76, 43, 81,
	59, 62, 85, 33, 112, 74, 83, 55, 50, 70, 104, 79, 65, 49, 67, 66, 54,
	118, 94, 61, 73, 95, 48, 47, 56, 124, 106, 115, 98, 57, 109, 60, 46,
	84, 86, 97, 99, 96, 117, 89, 42, 77, 75, 39, 88, 126, 120, 68, 108,
	125, 82, 69, 111, 107, 78, 58, 35, 63, 71, 34, 105, 64,
}

// Encode applies Malbolge's encryption algorithm to text: each printable
// ASCII character (33-126) is substituted through the encryption table,
// and every other character passes through unchanged.
func Encode(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r >= 33 && r <= 126 {
			b.WriteByte(encryptTable[r-33])
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
