package calc

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Explain writes c and the calcs it is built from as an indented tree.
func Explain(w io.Writer, c Calc) error {
	return explain(w, c, 0)
}

func explain(w io.Writer, c Calc, depth int) error {
	args := map[string]interface{}{}
	c.CollectArguments(args)
	var names []string
	for nam := range args {
		names = append(names, nam)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(strings.Repeat("    ", depth))
	b.WriteString(c.Name())
	fmt.Fprintf(&b, "(style=%s", c.ResultStyle())
	for _, nam := range names {
		fmt.Fprintf(&b, ", %s=%v", nam, args[nam])
	}
	b.WriteString(")\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	for _, sub := range c.Calcs() {
		if sub == nil {
			continue
		}
		if err := explain(w, sub, depth+1); err != nil {
			return err
		}
	}
	return nil
}
