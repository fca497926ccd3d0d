package query

import (
	"strings"
	"unicode"
)

// maskByte replaces every byte inside a quoted literal during structural
// scanning. Position-stable: the masked string has the same length as the
// input, so offsets computed against it are valid against the original.
const maskByte = '#'

// MaskLiterals returns the statement with the interior of every single- or
// double-quoted literal replaced by maskByte. Backslash escape pairs and
// doubled quotes inside double-quoted literals do not terminate the literal.
// The masked text is used only for structural scanning; literal values are
// read from the original via the lexer and Unescape.
func MaskLiterals(stmt string) string {
	out := []byte(stmt)
	var quote byte
	for i := 0; i < len(out); i++ {
		ch := out[i]
		if quote == 0 {
			if ch == '\'' || ch == '"' {
				quote = ch
			}
			continue
		}
		switch {
		case ch == '\\' && i+1 < len(out):
			out[i] = maskByte
			i++
			out[i] = maskByte
		case ch == quote:
			if ch == '"' && i+1 < len(out) && out[i+1] == '"' {
				// doubled quote is a literal quote, not a terminator
				out[i] = maskByte
				i++
				out[i] = maskByte
				continue
			}
			quote = 0
		default:
			out[i] = maskByte
		}
	}
	return string(out)
}

// Unescape resolves the escape sequences of a literal body: \t \n \r \\ \"
// \' plus the doubled double-quote form.
func Unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 't':
				b.WriteByte('\t')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case '\'':
				b.WriteByte('\'')
			default:
				b.WriteByte('\\')
				b.WriteByte(s[i])
			}
			continue
		}
		if ch == '"' && i+1 < len(s) && s[i+1] == '"' {
			b.WriteByte('"')
			i++
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// ExtractTableRefs scans a masked statement for :name virtual-table
// references. Because the input is masked, a :name-shaped substring inside a
// string literal is never reported.
func ExtractTableRefs(masked string) []string {
	var refs []string
	seen := make(map[string]bool)
	for i := 0; i < len(masked); i++ {
		if masked[i] != ':' {
			continue
		}
		// a colon inside an identifier is a range separator (A1:C10), not a
		// table reference
		if i > 0 && isIdentByte(masked[i-1]) {
			continue
		}
		j := i + 1
		for j < len(masked) && isIdentByte(masked[j]) {
			j++
		}
		if j > i+1 {
			name := masked[i+1 : j]
			if !seen[name] {
				seen[name] = true
				refs = append(refs, name)
			}
			i = j - 1
		}
	}
	return refs
}

func isIdentByte(b byte) bool {
	return b == '_' || unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b))
}
