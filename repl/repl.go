package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/leftmike/cubist/calc"
	"github.com/leftmike/cubist/execute"
	"github.com/leftmike/cubist/flags"
	"github.com/leftmike/cubist/olap"
	"github.com/leftmike/cubist/schema"
	"github.com/leftmike/cubist/tuple"
)

var (
	errQuit = errors.New("quit")
)

const help = `commands:
    filter <set>, <predicate>   filter a set and print the tuples
    members <set>               print the tuples of a set
    style [<style> ...]         show or set the acceptable result styles
    explain on|off              print the compiled calculators of each query
    flag [<name> on|off]        show or set an engine flag
    help                        print this message
    quit                        leave the console
`

// Console runs commands against a schema; output goes to w.
type Console struct {
	ex      *execute.Executor
	schema  *schema.Schema
	w       io.Writer
	styles  []olap.ResultStyle
	explain bool
}

func NewConsole(ex *execute.Executor, s *schema.Schema, w io.Writer) *Console {
	return &Console{
		ex:     ex,
		schema: s,
		w:      w,
		styles: olap.IterableListMutableListAny,
	}
}

// Run reads commands, one per line, from lines until it is closed or a quit command is read.
// Errors from commands are written to the output.
func (c *Console) Run(ctx context.Context, lines func() (string, error)) error {
	for {
		line, err := lines()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		err = c.Command(ctx, line)
		if err == errQuit {
			return nil
		} else if err != nil {
			fmt.Fprintln(c.w, err)
		}
	}
}

func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	idx := strings.IndexAny(line, " \t")
	if idx < 0 {
		return strings.ToLower(line), ""
	}
	return strings.ToLower(line[:idx]), strings.TrimSpace(line[idx+1:])
}

func (c *Console) Command(ctx context.Context, line string) error {
	cmd, rest := splitCommand(line)
	if strings.HasPrefix(cmd, "#") || strings.HasPrefix(cmd, "//") {
		return nil
	}

	switch cmd {
	case "":
		return nil
	case "filter":
		if rest == "" {
			return errors.New("filter: expected <set>, <predicate>")
		}
		return c.query(ctx, fmt.Sprintf("Filter(%s)", rest))
	case "members":
		if rest == "" {
			return errors.New("members: expected <set>")
		}
		return c.query(ctx, rest)
	case "style":
		return c.style(rest)
	case "explain":
		switch strings.ToLower(rest) {
		case "on", "true":
			c.explain = true
		case "off", "false":
			c.explain = false
		case "":
			fmt.Fprintf(c.w, "explain is %s\n", onOff(c.explain))
		default:
			return fmt.Errorf("explain: expected on or off: %s", rest)
		}
		return nil
	case "flag":
		return c.flag(rest)
	case "help", "?":
		io.WriteString(c.w, help)
		return nil
	case "quit", "exit":
		return errQuit
	}
	return fmt.Errorf("unknown command: %s; try help", cmd)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (c *Console) style(rest string) error {
	if rest == "" {
		fmt.Fprintf(c.w, "styles: %s\n", formatStyles(c.styles))
		return nil
	}

	names := strings.FieldsFunc(rest,
		func(r rune) bool {
			return r == ' ' || r == ',' || r == '\t'
		})
	var styles []olap.ResultStyle
	for _, s := range names {
		rs, err := olap.ParseResultStyle(s)
		if err != nil {
			return fmt.Errorf("style: %s", err)
		}
		if rs == olap.Value {
			return errors.New("style: queries return sets; VALUE is not acceptable")
		}
		styles = append(styles, rs)
	}
	c.styles = styles
	return nil
}

func formatStyles(styles []olap.ResultStyle) string {
	var names []string
	for _, rs := range styles {
		names = append(names, rs.String())
	}
	return strings.Join(names, " ")
}

func (c *Console) flag(rest string) error {
	settings := c.ex.Settings()
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		var names []string
		flags.ListFlags(
			func(name string, f flags.Flag) {
				names = append(names, name)
			})
		sort.Strings(names)
		for _, name := range names {
			f, _ := flags.LookupFlag(name)
			fmt.Fprintf(c.w, "%s = %s\n", name, onOff(settings.Flags.GetFlag(f)))
		}
		return nil
	} else if len(fields) != 2 {
		return errors.New("flag: expected <name> on|off")
	}

	f, ok := flags.LookupFlag(fields[0])
	if !ok {
		return fmt.Errorf("flag: %s is not a flag", fields[0])
	}
	var b bool
	switch strings.ToLower(fields[1]) {
	case "on", "true":
		b = true
	case "off", "false":
		b = false
	default:
		return fmt.Errorf("flag: expected on or off: %s", fields[1])
	}
	settings.Flags = settings.Flags.With(f, b)
	c.ex.SetSettings(settings)
	return nil
}

func (c *Console) query(ctx context.Context, expr string) error {
	e, err := c.schema.ParseExpr(expr)
	if err != nil {
		return err
	}
	res, err := c.ex.Execute(ctx, e, c.styles)
	if err != nil {
		return err
	}

	if c.explain {
		err = calc.Explain(c.w, res.Calc)
		if err != nil {
			return err
		}
	}
	Render(c.w, res.Tuples)
	return nil
}

// Render writes l as a table with one column per hierarchy.
func Render(w io.Writer, l tuple.List) {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)

	row := make([]string, l.Arity())
	for col := range row {
		if l.Size() > 0 {
			row[col] = l.Member(0, col).Hierarchy().UniqueName()
		} else {
			row[col] = fmt.Sprintf("%d", col+1)
		}
	}
	tw.SetHeader(row)

	for idx := 0; idx < l.Size(); idx++ {
		for col := range row {
			row[col] = l.Member(idx, col).UniqueName()
		}
		tw.Append(row)
	}
	tw.Render()
	fmt.Fprintf(w, "(%d tuples)\n", l.Size())
}
