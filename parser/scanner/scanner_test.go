package scanner_test

import (
	"fmt"
	"strings"
	"testing"

	. "github.com/leftmike/cubist/parser/scanner"
	"github.com/leftmike/cubist/parser/token"
)

func TestScan(t *testing.T) {
	cases := []struct {
		s string
		r rune
	}{
		{"", token.EOF},
		{"   ", token.EOF},
		{"-- comment", token.EOF},
		{"abc", token.Identifier},
		{"Members", token.Identifier},
		{"[Product]", token.Identifier},
		{"[All Products]", token.Identifier},
		{"'apple'", token.String},
		{"\"apple\"", token.String},
		{"12345", token.Integer},
		{"-12345", token.Integer},
		{"1234.5678", token.Float},
		{", ", token.Comma},
		{".Members", token.Dot},
		{"(123", token.LParen},
		{")+", token.RParen},
		{"{[A]}", token.LBrace},
		{"}", token.RBrace},
		{"-abc", token.Error},
		{"+", token.Error},
		{"/", token.Error},
		{"[abc", token.Error},
		{"'abc", token.Error},
		{"/* abc", token.Error},
	}

	for i, c := range cases {
		var s Scanner
		s.Init(strings.NewReader(c.s), fmt.Sprintf("cases[%d]", i))
		var sctx ScanCtx
		s.Scan(&sctx)
		if sctx.Token != c.r {
			t.Errorf("Scan(%q) got %s want %s", c.s, token.Format(sctx.Token),
				token.Format(c.r))
		}
	}

	identifiers := []struct {
		s      string
		id     string
		quoted bool
	}{
		{"abc", "abc", false},
		{"abc_123 def", "abc_123", false},
		{"Members.", "Members", false},
		{"[abc]", "abc", true},
		{"[All Products]", "All Products", true},
		{"[a]]b]", "a]b", true},
		{"[Members]", "Members", true},
		{"[]", "", true},
	}

	for i, c := range identifiers {
		var s Scanner
		s.Init(strings.NewReader(c.s), fmt.Sprintf("identifiers[%d]", i))
		var sctx ScanCtx
		s.Scan(&sctx)
		if sctx.Token != token.Identifier {
			t.Errorf("Scan(%q) got %s want Identifier", c.s, token.Format(sctx.Token))
		}
		if sctx.Identifier != c.id {
			t.Errorf("Scan(%q).Identifier got %s want %s", c.s, sctx.Identifier, c.id)
		}
		if sctx.Quoted != c.quoted {
			t.Errorf("Scan(%q).Quoted got %v want %v", c.s, sctx.Quoted, c.quoted)
		}
	}

	strs := []struct {
		s   string
		ret string
	}{
		{"'abc'", "abc"},
		{"'abc' 123", "abc"},
		{"'abc''def' 123", "abc'def"},
		{`"abc""def"`, `abc"def`},
		{`"it's"`, "it's"},
		{"''", ""},
	}

	for i, c := range strs {
		var s Scanner
		s.Init(strings.NewReader(c.s), fmt.Sprintf("strings[%d]", i))
		var sctx ScanCtx
		s.Scan(&sctx)
		if sctx.Token != token.String {
			t.Errorf("Scan(%q) got %s want String", c.s, token.Format(sctx.Token))
		}
		if sctx.String != c.ret {
			t.Errorf("Scan(%q).String got %s want %s", c.s, sctx.String, c.ret)
		}
	}

	integers := []struct {
		s string
		n int64
	}{
		{"12345", 12345},
		{"999 ", 999},
		{"999zzz", 999},
		{"-123", -123},
	}

	for i, n := range integers {
		var s Scanner
		s.Init(strings.NewReader(n.s), fmt.Sprintf("integers[%d]", i))
		var sctx ScanCtx
		s.Scan(&sctx)
		if sctx.Token != token.Integer {
			t.Errorf("Scan(%q) got %s want Integer", n.s, token.Format(sctx.Token))
		}
		if sctx.Integer != n.n {
			t.Errorf("Scan(%q).Integer got %d want %d", n.s, sctx.Integer, n.n)
		}
	}

	floats := []struct {
		s string
		n float64
	}{
		{"123.456", 123.456},
		{"999.", 999.0},
		{"9.99zzz", 9.99},
		{"-12.5", -12.5},
	}

	for i, n := range floats {
		var s Scanner
		s.Init(strings.NewReader(n.s), fmt.Sprintf("floats[%d]", i))
		var sctx ScanCtx
		s.Scan(&sctx)
		if sctx.Token != token.Float {
			t.Errorf("Scan(%q) got %s want Float", n.s, token.Format(sctx.Token))
		}
		if sctx.Float != n.n {
			t.Errorf("Scan(%q).Float got %f want %f", n.s, sctx.Float, n.n)
		}
	}

	{
		src := `
-- start with a comment
Filter // function
[Product] /* quoted
identifier */
.Members, 'apple' -- string
`
		expected := []struct {
			ret  rune
			s    string
			line int
		}{
			{ret: token.Identifier, s: "Filter", line: 3},
			{ret: token.Identifier, s: "Product", line: 4},
			{ret: token.Dot, line: 6},
			{ret: token.Identifier, s: "Members", line: 6},
			{ret: token.Comma, line: 6},
			{ret: token.String, s: "apple", line: 6},
			{ret: token.EOF},
		}

		var s Scanner
		s.Init(strings.NewReader(src), "src")
		for i, e := range expected {
			var sctx ScanCtx
			s.Scan(&sctx)
			if sctx.Token != e.ret {
				t.Errorf("Scan(%q)[%d] got %s want %s", src, i, token.Format(sctx.Token),
					token.Format(e.ret))
			}
			if e.line > 0 && sctx.Line != e.line {
				t.Errorf("Scan(%q)[%d].Line got %d want %d", src, i, sctx.Line, e.line)
			}
			switch e.ret {
			case token.Identifier:
				if sctx.Identifier != e.s {
					t.Errorf("Scan(%q)[%d].Identifier got %s want %s", src, i, sctx.Identifier,
						e.s)
				}
			case token.String:
				if sctx.String != e.s {
					t.Errorf("Scan(%q)[%d].String got %s want %s", src, i, sctx.String, e.s)
				}
			}
		}
	}
}
