package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes statement strings.
type Lexer struct {
	input string
	pos   int // byte offset just past ch
	ch    rune
	prev  TokenType // type of the last emitted token
}

// NewLexer creates a new lexer.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, prev: TokenEOF}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
		l.pos++
		return
	}
	// decode full runes so multi-byte characters survive literals intact
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.ch = r
	l.pos += w
}

func (l *Lexer) peekChar() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readString reads a quoted literal, resolving escape pairs and the doubled
// double-quote form so the token value holds the real characters.
func (l *Lexer) readString(quote rune) string {
	var result strings.Builder
	l.readChar() // skip opening quote

	for l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				result.WriteRune('\n')
			case 't':
				result.WriteRune('\t')
			case 'r':
				result.WriteRune('\r')
			case '\\':
				result.WriteRune('\\')
			case '\'', '"':
				result.WriteRune(l.ch)
			default:
				result.WriteRune(l.ch)
			}
			l.readChar()
			continue
		}
		if l.ch == quote {
			if quote == '"' && l.peekChar() == '"' {
				result.WriteRune('"')
				l.readChar()
				l.readChar()
				continue
			}
			break
		}
		result.WriteRune(l.ch)
		l.readChar()
	}

	if l.ch == quote {
		l.readChar() // skip closing quote
	}

	return result.String()
}

func (l *Lexer) readNumber() string {
	var result strings.Builder
	if l.ch == '-' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	for unicode.IsDigit(l.ch) || l.ch == '.' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	return result.String()
}

// readIdentifier reads an identifier, keyword, qualified reference or grid
// range location. A ':' or '!' is absorbed only when it glues range parts
// together (A1:C10, Sheet1!A1:C10).
func (l *Lexer) readIdentifier() string {
	var result strings.Builder
	for {
		switch {
		case unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '_' || l.ch == '.':
			result.WriteRune(l.ch)
			l.readChar()
		case (l.ch == ':' || l.ch == '!') && result.Len() > 0 && isIdentStart(l.peekChar()):
			result.WriteRune(l.ch)
			l.readChar()
		default:
			return result.String()
		}
	}
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

// valueStart reports whether the previous token allows a literal value to
// begin here, used to tell a negative number from a minus operator.
func (l *Lexer) valueStart() bool {
	switch l.prev {
	case TokenIdent, TokenNumber, TokenString, TokenRightParen, TokenTableRef:
		return false
	default:
		return true
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	tok := l.nextToken()
	l.prev = tok.Type
	return tok
}

func (l *Lexer) nextToken() Token {
	l.skipWhitespace()

	switch l.ch {
	case 0:
		return Token{Type: TokenEOF}
	case '=':
		l.readChar()
		return Token{Type: TokenEqual, Value: "="}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenNotEqual, Value: "!="}
		}
		l.readChar()
		return Token{Type: TokenError, Value: "!"}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenLessEqual, Value: "<="}
		}
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenNotEqual, Value: "<>"}
		}
		l.readChar()
		return Token{Type: TokenLess, Value: "<"}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenGreaterEqual, Value: ">="}
		}
		l.readChar()
		return Token{Type: TokenGreater, Value: ">"}
	case '\'', '"':
		quote := l.ch
		return Token{Type: TokenString, Value: l.readString(quote)}
	case '*':
		l.readChar()
		return Token{Type: TokenIdent, Value: "*"}
	case '+':
		l.readChar()
		return Token{Type: TokenPlus, Value: "+"}
	case '/':
		l.readChar()
		return Token{Type: TokenSlash, Value: "/"}
	case '-':
		if unicode.IsDigit(l.peekChar()) && l.valueStart() {
			return Token{Type: TokenNumber, Value: l.readNumber()}
		}
		l.readChar()
		return Token{Type: TokenMinus, Value: "-"}
	case ',':
		l.readChar()
		return Token{Type: TokenComma, Value: ","}
	case '(':
		l.readChar()
		return Token{Type: TokenLeftParen, Value: "("}
	case ')':
		l.readChar()
		return Token{Type: TokenRightParen, Value: ")"}
	case ':':
		if isIdentStart(l.peekChar()) && !unicode.IsDigit(l.peekChar()) {
			l.readChar()
			return Token{Type: TokenTableRef, Value: l.readIdentifier()}
		}
		l.readChar()
		return Token{Type: TokenError, Value: ":"}
	default:
		if unicode.IsDigit(l.ch) {
			return Token{Type: TokenNumber, Value: l.readNumber()}
		}
		if unicode.IsLetter(l.ch) || l.ch == '_' {
			value := l.readIdentifier()
			return Token{Type: identifierType(value), Value: value}
		}
		ch := l.ch
		l.readChar()
		return Token{Type: TokenError, Value: string(ch)}
	}
}

var keywords = map[string]TokenType{
	"SELECT":   TokenSelect,
	"FROM":     TokenFrom,
	"WHERE":    TokenWhere,
	"AND":      TokenAnd,
	"OR":       TokenOr,
	"AS":       TokenAs,
	"GROUP":    TokenGroup,
	"BY":       TokenBy,
	"HAVING":   TokenHaving,
	"ORDER":    TokenOrder,
	"ASC":      TokenAsc,
	"DESC":     TokenDesc,
	"LIMIT":    TokenLimit,
	"OFFSET":   TokenOffset,
	"IS":       TokenIs,
	"NOT":      TokenNot,
	"NULL":     TokenNull,
	"DISTINCT": TokenDistinct,
	"JOIN":     TokenJoin,
	"INNER":    TokenInner,
	"LEFT":     TokenLeft,
	"RIGHT":    TokenRight,
	"OUTER":    TokenOuter,
	"ON":       TokenOn,
	"INSERT":   TokenInsert,
	"INTO":     TokenInto,
	"VALUES":   TokenValues,
	"UPDATE":   TokenUpdate,
	"SET":      TokenSet,
	"DELETE":   TokenDelete,
	"CONTAINS": TokenContains,
	"STARTS":   TokenStarts,
	"ENDS":     TokenEnds,
	"WITH":     TokenWith,
	"DATE":     TokenDate,
	"LABEL":    TokenLabel,
	"FORMAT":   TokenFormat,
	"PIVOT":    TokenPivot,
	"TRUE":     TokenBool,
	"FALSE":    TokenBool,
}

// identifierType determines if an identifier is a keyword. Keywords are
// case-insensitive.
func identifierType(ident string) TokenType {
	if tokType, ok := keywords[strings.ToUpper(ident)]; ok {
		return tokType
	}
	return TokenIdent
}

// Tokenize returns all tokens from the input.
func Tokenize(input string) []Token {
	lexer := NewLexer(input)
	var tokens []Token
	for {
		tok := lexer.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}
	return tokens
}
