package query

import "testing"

func TestLexer_Basic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			"simple select",
			"select * where A > 30",
			[]Token{
				{TokenSelect, "select"},
				{TokenIdent, "*"},
				{TokenWhere, "where"},
				{TokenIdent, "A"},
				{TokenGreater, ">"},
				{TokenNumber, "30"},
				{TokenEOF, ""},
			},
		},
		{
			"virtual table ref",
			"from :orders",
			[]Token{
				{TokenFrom, "from"},
				{TokenTableRef, "orders"},
				{TokenEOF, ""},
			},
		},
		{
			"grid range absorbed",
			"from A1:C10",
			[]Token{
				{TokenFrom, "from"},
				{TokenIdent, "A1:C10"},
				{TokenEOF, ""},
			},
		},
		{
			"sheet qualified range",
			"from Sheet1!A1:C10",
			[]Token{
				{TokenFrom, "from"},
				{TokenIdent, "Sheet1!A1:C10"},
				{TokenEOF, ""},
			},
		},
		{
			"multi-byte string literal",
			`where Name = "café"`,
			[]Token{
				{TokenWhere, "where"},
				{TokenIdent, "Name"},
				{TokenEqual, "="},
				{TokenString, "café"},
				{TokenEOF, ""},
			},
		},
		{
			"multi-byte literal with surrounding text",
			`where City = "Zürich" and N = 1`,
			[]Token{
				{TokenWhere, "where"},
				{TokenIdent, "City"},
				{TokenEqual, "="},
				{TokenString, "Zürich"},
				{TokenAnd, "and"},
				{TokenIdent, "N"},
				{TokenEqual, "="},
				{TokenNumber, "1"},
				{TokenEOF, ""},
			},
		},
		{
			"negative number literal",
			"where A > -5",
			[]Token{
				{TokenWhere, "where"},
				{TokenIdent, "A"},
				{TokenGreater, ">"},
				{TokenNumber, "-5"},
				{TokenEOF, ""},
			},
		},
		{
			"minus as operator",
			"select A - 5",
			[]Token{
				{TokenSelect, "select"},
				{TokenIdent, "A"},
				{TokenMinus, "-"},
				{TokenNumber, "5"},
				{TokenEOF, ""},
			},
		},
		{
			"not equal forms",
			"A != 1 and B <> 2",
			[]Token{
				{TokenIdent, "A"},
				{TokenNotEqual, "!="},
				{TokenNumber, "1"},
				{TokenAnd, "and"},
				{TokenIdent, "B"},
				{TokenNotEqual, "<>"},
				{TokenNumber, "2"},
				{TokenEOF, ""},
			},
		},
		{
			"qualified column",
			"select a.Name",
			[]Token{
				{TokenSelect, "select"},
				{TokenIdent, "a.Name"},
				{TokenEOF, ""},
			},
		},
		{
			"boolean keywords",
			"where Active = true",
			[]Token{
				{TokenWhere, "where"},
				{TokenIdent, "Active"},
				{TokenEqual, "="},
				{TokenBool, "true"},
				{TokenEOF, ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Tokenize(%q) produced %d tokens, want %d: %v", tt.input, len(got), len(tt.want), got)
			}
			for i, tok := range got {
				if tok.Type != tt.want[i].Type || tok.Value != tt.want[i].Value {
					t.Errorf("token %d = {%v %q}, want {%v %q}", i, tok.Type, tok.Value, tt.want[i].Type, tt.want[i].Value)
				}
			}
		})
	}
}

func TestLexer_StringEscapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain double", `"hello"`, "hello"},
		{"plain single", `'hello'`, "hello"},
		{"escaped tab", `"a\tb"`, "a\tb"},
		{"escaped newline", `"a\nb"`, "a\nb"},
		{"escaped backslash", `"a\\b"`, `a\b`},
		{"escaped quote", `"say \"hi\""`, `say "hi"`},
		{"doubled quote", `"say ""hi"""`, `say "hi"`},
		{"single quote in double", `"it's"`, "it's"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Tokenize(tt.input)
			if len(tokens) < 1 || tokens[0].Type != TokenString {
				t.Fatalf("Tokenize(%q) = %v, want leading string token", tt.input, tokens)
			}
			if tokens[0].Value != tt.want {
				t.Errorf("string value = %q, want %q", tokens[0].Value, tt.want)
			}
		})
	}
}

func TestLexer_CaseInsensitiveKeywords(t *testing.T) {
	for _, input := range []string{"SELECT", "select", "SeLeCt"} {
		tokens := Tokenize(input)
		if tokens[0].Type != TokenSelect {
			t.Errorf("Tokenize(%q)[0].Type = %v, want TokenSelect", input, tokens[0].Type)
		}
	}
}

func TestLexer_InvalidCharacter(t *testing.T) {
	tokens := Tokenize("select ; from")
	last := tokens[len(tokens)-1]
	if last.Type != TokenError {
		t.Errorf("expected TokenError for ';', got %v", last)
	}
}
