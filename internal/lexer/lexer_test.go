package lexer

import (
	"testing"

	"github.com/gigaherz/rhinogo/pkg/token"
)

// collect scans the whole input and returns every token up to and including
// EOF.
func collect(t *testing.T, input string, opts ...Option) []token.Token {
	t.Helper()
	l := New(input, opts...)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
		if len(toks) > 10000 {
			t.Fatalf("lexer did not terminate on input %q", input)
		}
	}
}

func TestOperatorsAndPunctuators(t *testing.T) {
	// `/` comes last, after `]`, where it is division; after any other
	// operator it would start a regular expression literal.
	input := `= + - * % ** ++ -- === !== == != < > <= >= && || ?? ?. ... => << >> >>> & | ^ ~ ! ? : ; , . ( ) { } [ ] /`
	expected := []token.Type{
		token.ASSIGN, token.PLUS, token.MINUS, token.ASTERISK,
		token.PERCENT, token.POWER, token.INC, token.DEC,
		token.STRICT_EQ, token.STRICT_NOT_EQ, token.EQ, token.NOT_EQ,
		token.LESS, token.GREATER, token.LESS_EQ, token.GREATER_EQ,
		token.AND, token.OR, token.NULLISH, token.OPTCHAIN, token.ELLIPSIS,
		token.ARROW, token.SHL, token.SHR, token.USHR,
		token.BITAND, token.BITOR, token.BITXOR, token.BITNOT,
		token.NOT, token.QUESTION, token.COLON, token.SEMICOLON,
		token.COMMA, token.DOT, token.LPAREN, token.RPAREN,
		token.LBRACE, token.RBRACE, token.LBRACK, token.RBRACK,
		token.SLASH, token.EOF,
	}
	toks := collect(t, input)
	if len(toks) != len(expected) {
		t.Fatalf("token count: got %d, want %d", len(toks), len(expected))
	}
	for i, want := range expected {
		if toks[i].Type != want {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, want)
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	tests := []struct {
		input string
		typ   token.Type
	}{
		{"var", token.VAR},
		{"let", token.LET},
		{"const", token.CONST},
		{"function", token.FUNCTION},
		{"return", token.RETURN},
		{"typeof", token.TYPEOF},
		{"instanceof", token.INSTANCEOF},
		{"of", token.OF},
		{"with", token.WITH},
		{"foo", token.IDENT},
		{"$tmp", token.IDENT},
		{"_x1", token.IDENT},
		{"übung", token.IDENT},
	}
	for _, tt := range tests {
		toks := collect(t, tt.input)
		if toks[0].Type != tt.typ {
			t.Errorf("%q: got %s, want %s", tt.input, toks[0].Type, tt.typ)
		}
		if toks[0].Literal != tt.input {
			t.Errorf("%q: literal %q", tt.input, toks[0].Literal)
		}
	}
}

func TestNumericLiterals(t *testing.T) {
	tests := []struct {
		input string
		value float64
	}{
		{"0", 0},
		{"123", 123},
		{"123.45", 123.45},
		{".5", 0.5},
		{"1e3", 1000},
		{"1.5e-2", 0.015},
		{"0xFF", 255},
		{"0Xff", 255},
		{"0o755", 493},
		{"0b1010", 10},
		{"0755", 493}, // legacy octal, non-strict
		{"0789", 789}, // digit 9 downgrades to decimal
	}
	for _, tt := range tests {
		toks := collect(t, tt.input)
		if toks[0].Type != token.NUMBER {
			t.Errorf("%q: got %s, want NUMBER", tt.input, toks[0].Type)
			continue
		}
		if toks[0].NumValue != tt.value {
			t.Errorf("%q: got %v, want %v", tt.input, toks[0].NumValue, tt.value)
		}
	}
}

func TestBigIntLiterals(t *testing.T) {
	for _, input := range []string{"123n", "0xFFn", "0n"} {
		toks := collect(t, input)
		if toks[0].Type != token.BIGINT {
			t.Errorf("%q: got %s, want BIGINT", input, toks[0].Type)
		}
	}
}

func TestLegacyOctalStrictMode(t *testing.T) {
	l := New("0755", WithStrictMode(true))
	l.NextToken()
	if len(l.Errors()) == 0 {
		t.Error("expected an error for legacy octal in strict mode")
	}
}

func TestStringLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`'hello'`, "hello"},
		{`"world"`, "world"},
		{`'a\nb'`, "a\nb"},
		{`'\x41'`, "A"},
		{`'A'`, "A"},
		{`'\u{1F680}'`, "🚀"},
		{`'it\'s'`, "it's"},
		{`'\101'`, "A"}, // octal escape, non-strict
	}
	for _, tt := range tests {
		toks := collect(t, tt.input)
		if toks[0].Type != token.STRING {
			t.Errorf("%q: got %s, want STRING", tt.input, toks[0].Type)
			continue
		}
		if toks[0].Literal != tt.want {
			t.Errorf("%q: got %q, want %q", tt.input, toks[0].Literal, tt.want)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New("'abc\nvar x")
	tok := l.NextToken()
	if tok.Type != token.STRING {
		t.Fatalf("got %s, want STRING", tok.Type)
	}
	if len(l.Errors()) == 0 {
		t.Fatal("expected an unterminated-string error")
	}
	// The scanner keeps going after the error.
	tok = l.NextToken()
	if tok.Type != token.VAR {
		t.Errorf("after error: got %s, want var", tok.Type)
	}
}

func TestTemplateLiterals(t *testing.T) {
	toks := collect(t, "`a${x}b${y}c`")
	expected := []struct {
		typ token.Type
		lit string
	}{
		{token.TMPHEAD, "a"},
		{token.IDENT, "x"},
		{token.TMPMID, "b"},
		{token.IDENT, "y"},
		{token.TMPTAIL, "c"},
		{token.EOF, ""},
	}
	if len(toks) != len(expected) {
		t.Fatalf("token count: got %d, want %d", len(toks), len(expected))
	}
	for i, want := range expected {
		if toks[i].Type != want.typ || toks[i].Literal != want.lit {
			t.Errorf("token %d: got %s(%q), want %s(%q)", i, toks[i].Type, toks[i].Literal, want.typ, want.lit)
		}
	}
}

func TestNestedTemplateBraces(t *testing.T) {
	// The object literal's closing brace must not terminate the
	// substitution.
	toks := collect(t, "`v=${ {a: 1}.a }!`")
	var types []token.Type
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	want := []token.Type{
		token.TMPHEAD, token.LBRACE, token.IDENT, token.COLON, token.NUMBER,
		token.RBRACE, token.DOT, token.IDENT, token.TMPTAIL, token.EOF,
	}
	if len(types) != len(want) {
		t.Fatalf("token types %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s (all: %v)", i, types[i], want[i], types)
		}
	}
}

func TestNoSubstitutionTemplate(t *testing.T) {
	toks := collect(t, "`plain`")
	if toks[0].Type != token.NOSUBTMP || toks[0].Literal != "plain" {
		t.Errorf("got %s(%q)", toks[0].Type, toks[0].Literal)
	}
}

func TestRegexVersusDivision(t *testing.T) {
	tests := []struct {
		input string
		// the type expected for the token at index idx
		idx  int
		want token.Type
	}{
		{`a / b`, 1, token.SLASH},
		{`1 / 2`, 1, token.SLASH},
		{`/ab+c/gi`, 0, token.REGEXP},
		{`x = /ab/`, 2, token.REGEXP},
		{`return /ab/`, 1, token.REGEXP},
		{`typeof /ab/`, 1, token.REGEXP},
		{`f(/ab/)`, 2, token.REGEXP},
		{`a[0] / 2`, 4, token.SLASH},
		{`(a) / 2`, 3, token.SLASH},
		{`a++ / 2`, 2, token.SLASH},
	}
	for _, tt := range tests {
		toks := collect(t, tt.input)
		if toks[tt.idx].Type != tt.want {
			t.Errorf("%q token %d: got %s, want %s", tt.input, tt.idx, toks[tt.idx].Type, tt.want)
		}
	}
}

func TestRegexCharClassSlash(t *testing.T) {
	toks := collect(t, `/[/]/`)
	if toks[0].Type != token.REGEXP || toks[0].Literal != `/[/]/` {
		t.Errorf("got %s(%q)", toks[0].Type, toks[0].Literal)
	}
}

func TestNewlineBefore(t *testing.T) {
	l := New("a\nb c")
	a := l.NextToken()
	b := l.NextToken()
	c := l.NextToken()
	if a.NewlineBefore {
		t.Error("first token should not have NewlineBefore")
	}
	if !b.NewlineBefore {
		t.Error("token after newline should have NewlineBefore")
	}
	if c.NewlineBefore {
		t.Error("token on same line should not have NewlineBefore")
	}
}

func TestBlockCommentNewline(t *testing.T) {
	l := New("a /* x\ny */ b")
	l.NextToken()
	b := l.NextToken()
	if !b.NewlineBefore {
		t.Error("a block comment containing a newline must set NewlineBefore")
	}
}

func TestPositions(t *testing.T) {
	l := New("var x\n  = 1")
	v := l.NextToken()
	x := l.NextToken()
	eq := l.NextToken()
	if v.Pos.Line != 1 || v.Pos.Column != 1 {
		t.Errorf("var at %s", v.Pos)
	}
	if x.Pos.Line != 1 || x.Pos.Column != 5 {
		t.Errorf("x at %s", x.Pos)
	}
	if eq.Pos.Line != 2 || eq.Pos.Column != 3 {
		t.Errorf("= at %s", eq.Pos)
	}
}

func TestCommentPreservation(t *testing.T) {
	toks := collect(t, "// note\nx", WithPreserveComments(true))
	if toks[0].Type != token.COMMENT || toks[0].Literal != "// note" {
		t.Fatalf("got %s(%q)", toks[0].Type, toks[0].Literal)
	}
	if toks[1].Type != token.IDENT {
		t.Errorf("got %s after comment", toks[1].Type)
	}
}

func TestIllegalCharacter(t *testing.T) {
	l := New("a # b")
	l.NextToken()
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("got %s, want ILLEGAL", tok.Type)
	}
	if len(l.Errors()) == 0 {
		t.Fatal("expected a recorded error")
	}
	if next := l.NextToken(); next.Type != token.IDENT {
		t.Errorf("scanner should resume after illegal character, got %s", next.Type)
	}
}

func TestBOMStripped(t *testing.T) {
	toks := collect(t, "\xEF\xBB\xBFvar")
	if toks[0].Type != token.VAR {
		t.Errorf("got %s, want var", toks[0].Type)
	}
}
