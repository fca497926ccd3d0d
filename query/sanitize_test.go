package query

import (
	"reflect"
	"testing"
)

func TestMaskLiterals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no literals", "select * where A > 30", "select * where A > 30"},
		{"double quoted", `select * where A = "abc"`, `select * where A = "###"`},
		{"single quoted", `select * where A = 'abc'`, `select * where A = '###'`},
		{"escaped quote inside", `where A = "a\"b"`, `where A = "####"`},
		{"doubled quote inside", `where A = "a""b"`, `where A = "####"`},
		{"keyword inside literal", `where A = "where :x"`, `where A = "########"`},
		{"two literals", `where A = "ab" and B = 'cd'`, `where A = "##" and B = '##'`},
		{"unterminated", `where A = "abc`, `where A = "###`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskLiterals(tt.input)
			if got != tt.want {
				t.Errorf("MaskLiterals(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if len(got) != len(tt.input) {
				t.Errorf("masked length %d differs from input length %d", len(got), len(tt.input))
			}
		})
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"tab", `a\tb`, "a\tb"},
		{"newline", `a\nb`, "a\nb"},
		{"carriage return", `a\rb`, "a\rb"},
		{"backslash", `a\\b`, `a\b`},
		{"escaped double quote", `a\"b`, `a"b`},
		{"escaped single quote", `a\'b`, "a'b"},
		{"doubled double quote", `a""b`, `a"b`},
		{"unknown escape kept", `a\qb`, `a\qb`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unescape(tt.input); got != tt.want {
				t.Errorf("Unescape(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractTableRefs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single ref", "select * from :orders", []string{"orders"}},
		{"two refs", "select * from :a join :b on a.x = b.x", []string{"a", "b"}},
		{"duplicate ref once", "select * from :t where :t", []string{"t"}},
		{"range colon ignored", "select * from A1:C10", nil},
		{"sheet range ignored", "select A from Sheet1!A1:C10", nil},
		{"no refs", "select * where A > 1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTableRefs(MaskLiterals(tt.input))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTableRefs(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractTableRefs_IgnoresLiterals(t *testing.T) {
	got := ExtractTableRefs(MaskLiterals(`select * from :real where A = ":fake"`))
	want := []string{"real"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
