package repl_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/andreyvit/diff"

	"github.com/leftmike/cubist/evaluate"
	"github.com/leftmike/cubist/execute"
	_ "github.com/leftmike/cubist/fun"
	"github.com/leftmike/cubist/repl"
	"github.com/leftmike/cubist/schema"
	"github.com/leftmike/cubist/tuple"
)

const testCube = `
dimension "Product" {
    hierarchy "Product" {
        all = "All Products"
        levels = ["Category", "Item"]

        member "Fruit" {
            level = "Category"
        }
        member "Veg" {
            level = "Category"
        }
        member "Apple" {
            level = "Item"
            parent = "Fruit"
        }
        member "Carrot" {
            level = "Item"
            parent = "Veg"
        }
    }
}
`

func newConsole(t *testing.T) (*repl.Console, *schema.Schema, *bytes.Buffer) {
	t.Helper()

	s, err := schema.Load(strings.NewReader(testCube))
	if err != nil {
		t.Fatalf("schema.Load() failed with %s", err)
	}
	ex, err := execute.NewExecutor(schema.NewReader(s, nil), evaluate.DefaultSettings(), 1)
	if err != nil {
		t.Fatalf("NewExecutor() failed with %s", err)
	}
	t.Cleanup(ex.Close)

	var buf bytes.Buffer
	return repl.NewConsole(ex, s, &buf), s, &buf
}

func lineReader(lines ...string) func() (string, error) {
	return func() (string, error) {
		if len(lines) == 0 {
			return "", io.EOF
		}
		line := lines[0]
		lines = lines[1:]
		return line, nil
	}
}

func TestCommands(t *testing.T) {
	cases := []struct {
		lines []string
		want  string
	}{
		{
			lines: []string{"style"},
			want:  "styles: ITERABLE LIST MUTABLE_LIST ANY\n",
		},
		{
			lines: []string{"style list, mutable-list", "style"},
			want:  "styles: LIST MUTABLE_LIST\n",
		},
		{
			lines: []string{"style value", "style"},
			want: `style: queries return sets; VALUE is not acceptable
styles: ITERABLE LIST MUTABLE_LIST ANY
`,
		},
		{
			lines: []string{"style abc"},
			want:  "style: olap: unknown result style: ABC\n",
		},
		{
			lines: []string{"explain", "explain on", "explain", "explain maybe"},
			want: `explain is off
explain is on
explain: expected on or off: maybe
`,
		},
		{
			lines: []string{"flag native off", "flag"},
			want: `expand_non_native = on
native = off
native_filter = on
`,
		},
		{
			lines: []string{"flag native", "flag unknown on", "flag native maybe"},
			want: `flag: expected <name> on|off
flag: unknown is not a flag
flag: expected on or off: maybe
`,
		},
		{
			lines: []string{"", "# comment", "// comment", "bogus"},
			want:  "unknown command: bogus; try help\n",
		},
		{
			lines: []string{"filter", "members"},
			want: `filter: expected <set>, <predicate>
members: expected <set>
`,
		},
		{
			lines: []string{"quit", "style"},
			want:  "",
		},
	}

	for _, c := range cases {
		con, _, buf := newConsole(t)
		err := con.Run(context.Background(), lineReader(c.lines...))
		if err != nil {
			t.Errorf("Run(%v) failed with %s", c.lines, err)
			continue
		}
		if buf.String() != c.want {
			t.Errorf("Run(%v) output differs:\n%s", c.lines,
				diff.LineDiff(c.want, buf.String()))
		}
	}
}

func TestHelp(t *testing.T) {
	con, _, buf := newConsole(t)
	err := con.Command(context.Background(), "help")
	if err != nil {
		t.Fatalf("Command(help) failed with %s", err)
	}
	for _, cmd := range []string{"filter", "members", "style", "explain", "flag", "quit"} {
		if !strings.Contains(buf.String(), "    "+cmd) {
			t.Errorf("Command(help) does not describe %s", cmd)
		}
	}
}

func TestQuery(t *testing.T) {
	cases := []struct {
		line    string
		want    []string
		notWant []string
		fail    bool
	}{
		{
			line:    "filter [Product].[Item].Members, StartsWith([Product], 'C')",
			want:    []string{"[Product]", "[Product].[Veg].[Carrot]", "(1 tuples)"},
			notWant: []string{"[Product].[Fruit].[Apple]"},
		},
		{
			line: "members [Product].[Category].Members",
			want: []string{"[Product].[Fruit]", "[Product].[Veg]", "(2 tuples)"},
		},
		{
			line: "filter [Product].[Category].Members, FALSE",
			want: []string{"(0 tuples)"},
		},
		{line: "filter [Product].[Item].Members", fail: true},
		{line: "members [Product].[Nothing]", fail: true},
	}

	for _, c := range cases {
		con, _, buf := newConsole(t)
		err := con.Command(context.Background(), c.line)
		if c.fail {
			if err == nil {
				t.Errorf("Command(%q) did not fail", c.line)
			}
			continue
		} else if err != nil {
			t.Errorf("Command(%q) failed with %s", c.line, err)
			continue
		}

		out := buf.String()
		for _, w := range c.want {
			if !strings.Contains(out, w) {
				t.Errorf("Command(%q) got %s want %s", c.line, out, w)
			}
		}
		for _, nw := range c.notWant {
			if strings.Contains(out, nw) {
				t.Errorf("Command(%q) got %s did not want %s", c.line, out, nw)
			}
		}
	}
}

func TestExplain(t *testing.T) {
	con, _, buf := newConsole(t)
	ctx := context.Background()
	err := con.Command(ctx, "explain on")
	if err != nil {
		t.Fatalf("Command(explain on) failed with %s", err)
	}
	err = con.Command(ctx, "filter [Product].[Item].Members, TRUE")
	if err != nil {
		t.Fatalf("Command(filter) failed with %s", err)
	}
	if !strings.Contains(strings.SplitN(buf.String(), "\n", 2)[0], "Filter(style=") {
		t.Errorf("Command(filter) with explain on got %s", buf.String())
	}
}

func TestRender(t *testing.T) {
	_, s, _ := newConsole(t)
	d, ok := s.Dimension("Product")
	if !ok {
		t.Fatal("Dimension(Product) not found")
	}
	lvl := d.Hierarchies()[0].Levels()[2]

	var buf bytes.Buffer
	repl.Render(&buf, tuple.Unary(lvl.Members()))
	for _, w := range []string{"[Product].[Fruit].[Apple]", "[Product].[Veg].[Carrot]",
		"(2 tuples)"} {
		if !strings.Contains(buf.String(), w) {
			t.Errorf("Render(%s) got %s want %s", lvl, buf.String(), w)
		}
	}

	buf.Reset()
	repl.Render(&buf, tuple.Empty(2))
	if !strings.HasSuffix(buf.String(), "(0 tuples)\n") {
		t.Errorf("Render(Empty(2)) got %s", buf.String())
	}
}
