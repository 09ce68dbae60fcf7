package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leftmike/cubist/calc"
	"github.com/leftmike/cubist/olap"
	"github.com/leftmike/cubist/repl"
)

var (
	filterCmd = &cobra.Command{
		Use:   "filter <set> <predicate>",
		Short: "Filter a set and print the tuples",
		Args:  cobra.ExactArgs(2),
		RunE:  filterRun,
	}

	resultStyles = []string{"iterable", "list", "mutable_list", "any"}
	explain      = false
)

func init() {
	fs := filterCmd.Flags()
	fs.StringSliceVar(&resultStyles, "style", resultStyles, "acceptable result `styles`")
	fs.BoolVar(&explain, "explain", explain, "print the compiled calculators")

	cubistCmd.AddCommand(filterCmd)
}

func parseStyles(names []string) ([]olap.ResultStyle, error) {
	var styles []olap.ResultStyle
	for _, name := range names {
		rs, err := olap.ParseResultStyle(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("cubist: %s", err)
		}
		styles = append(styles, rs)
	}
	return styles, nil
}

func filterRun(cmd *cobra.Command, args []string) error {
	styles, err := parseStyles(resultStyles)
	if err != nil {
		return err
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	e, err := eng.schema.ParseExpr(fmt.Sprintf("Filter(%s, %s)", args[0], args[1]))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := eng.executor.Execute(ctx, e, styles)
	if err != nil {
		return err
	}
	if explain {
		err = calc.Explain(os.Stdout, res.Calc)
		if err != nil {
			return err
		}
	}
	repl.Render(os.Stdout, res.Tuples)
	return nil
}
