// Package compile turns resolved expressions into calcs.
package compile

import (
	"fmt"

	"github.com/leftmike/cubist/calc"
	"github.com/leftmike/cubist/evaluate"
	"github.com/leftmike/cubist/mdx"
	"github.com/leftmike/cubist/olap"
	"github.com/leftmike/cubist/tuple"
)

type Compiler struct {
	validator mdx.Validator
	styles    []olap.ResultStyle
}

// New returns a compiler whose top level expression will be compiled with the first of
// styles which can be provided.
func New(v mdx.Validator, styles []olap.ResultStyle) *Compiler {
	if v == nil {
		v = mdx.DefaultValidator()
	}
	if len(styles) == 0 {
		styles = olap.AnyOnly
	}
	return &Compiler{
		validator: v,
		styles:    styles,
	}
}

func (c *Compiler) withStyles(styles []olap.ResultStyle) *Compiler {
	return &Compiler{
		validator: c.validator,
		styles:    styles,
	}
}

func (c *Compiler) Validator() mdx.Validator {
	return c.validator
}

func (c *Compiler) AcceptableResultStyles() []olap.ResultStyle {
	return c.styles
}

func (c *Compiler) Compile(e mdx.Exp) (calc.Calc, error) {
	switch e := e.(type) {
	case *mdx.Call:
		if e.Fun == nil {
			return nil, fmt.Errorf("compile: %s: function is not bound", e.Name)
		}
		return e.Fun.CompileCall(e, c)
	case *mdx.Literal:
		if b, ok := e.Value.(bool); ok {
			return calc.ConstantBoolean(b), nil
		}
		return nil, fmt.Errorf("compile: %s: only boolean literals may be compiled", e)
	case *mdx.MemberExpr:
		if wantsSet(c.styles) {
			return memberSet(e.Member), nil
		}
		return calc.ConstantMember(e.Member), nil
	case *mdx.HierarchyExpr, *mdx.DimensionExpr:
		return c.CompileHierarchy(e)
	case *mdx.LevelExpr:
		return nil, fmt.Errorf("compile: level %s may not be used as a value", e)
	}
	panic(fmt.Sprintf("unexpected expression type: %T: %v", e, e))
}

func wantsSet(styles []olap.ResultStyle) bool {
	for _, s := range styles {
		switch s {
		case olap.Iterable, olap.List, olap.MutableList:
			return true
		}
	}
	return false
}

func (c *Compiler) CompileAs(e mdx.Exp, styles []olap.ResultStyle) (calc.Calc, error) {
	cc, err := c.withStyles(styles).Compile(e)
	if err != nil {
		return nil, err
	}
	return adapt(cc, styles)
}

// adapt returns cc if it already has one of styles, and otherwise converts it to the first of
// styles that it can be converted to.
func adapt(cc calc.Calc, styles []olap.ResultStyle) (calc.Calc, error) {
	got := cc.ResultStyle()
	if olap.ContainsStyle(styles, got) || olap.ContainsStyle(styles, olap.Any) {
		return cc, nil
	}

	for _, s := range styles {
		switch s {
		case olap.Iterable:
			if lc, ok := cc.(calc.ListCalc); ok {
				return calc.ListAsIter(lc), nil
			}
		case olap.List:
			if lc, ok := cc.(calc.ListCalc); ok {
				return calc.ImmutableList(lc), nil
			} else if ic, ok := cc.(calc.IterCalc); ok {
				return calc.IterAsList(ic, false), nil
			}
		case olap.MutableList:
			if lc, ok := cc.(calc.ListCalc); ok {
				return calc.MutableCopy(lc), nil
			} else if ic, ok := cc.(calc.IterCalc); ok {
				return calc.IterAsList(ic, true), nil
			}
		}
	}
	return nil, &olap.ResultStyleError{Wanted: styles, Got: []olap.ResultStyle{got}}
}

func (c *Compiler) CompileBoolean(e mdx.Exp) (calc.BooleanCalc, error) {
	cc, err := c.withStyles(olap.ValueOnly).Compile(e)
	if err != nil {
		return nil, err
	}
	bc, ok := cc.(calc.BooleanCalc)
	if !ok {
		return nil, fmt.Errorf("compile: %s is not a boolean expression", e)
	}
	return bc, nil
}

func (c *Compiler) CompileList(e mdx.Exp, mutable bool) (calc.ListCalc, error) {
	styles := olap.ListOnly
	if mutable {
		styles = olap.MutableListOnly
	}
	cc, err := c.CompileAs(e, styles)
	if err != nil {
		return nil, err
	}
	lc, ok := cc.(calc.ListCalc)
	if !ok {
		return nil, &olap.ResultStyleError{
			Wanted: styles,
			Got:    []olap.ResultStyle{cc.ResultStyle()},
		}
	}
	return lc, nil
}

func (c *Compiler) CompileIterable(e mdx.Exp) (calc.IterCalc, error) {
	cc, err := c.CompileAs(e, olap.IterableOnly)
	if err != nil {
		return nil, err
	}
	ic, ok := cc.(calc.IterCalc)
	if !ok {
		return nil, &olap.ResultStyleError{
			Wanted: olap.IterableOnly,
			Got:    []olap.ResultStyle{cc.ResultStyle()},
		}
	}
	return ic, nil
}

func (c *Compiler) CompileHierarchy(e mdx.Exp) (calc.HierarchyCalc, error) {
	switch e := e.(type) {
	case *mdx.HierarchyExpr:
		return calc.ConstantHierarchy(e.Hierarchy), nil
	case *mdx.DimensionExpr:
		hs := e.Dimension.Hierarchies()
		if len(hs) != 1 {
			return nil, fmt.Errorf("compile: dimension %s has %d hierarchies", e, len(hs))
		}
		return calc.ConstantHierarchy(hs[0]), nil
	case *mdx.MemberExpr:
		return calc.ConstantHierarchy(e.Member.Hierarchy()), nil
	}

	cc, err := c.withStyles(olap.ValueOnly).Compile(e)
	if err != nil {
		return nil, err
	}
	hc, ok := cc.(calc.HierarchyCalc)
	if !ok {
		return nil, fmt.Errorf("compile: %s is not a hierarchy expression", e)
	}
	return hc, nil
}

func (c *Compiler) CompileMember(e mdx.Exp) (calc.MemberCalc, error) {
	if me, ok := e.(*mdx.MemberExpr); ok {
		return calc.ConstantMember(me.Member), nil
	}

	cc, err := c.withStyles(olap.ValueOnly).Compile(e)
	if err != nil {
		return nil, err
	}
	mc, ok := cc.(calc.MemberCalc)
	if !ok {
		return nil, fmt.Errorf("compile: %s is not a member expression", e)
	}
	return mc, nil
}

type memberSetCalc struct {
	calc.Base
	m *olap.Member
}

func memberSet(m *olap.Member) calc.ListCalc {
	return &memberSetCalc{
		Base: calc.NewBase("MemberSet", olap.MutableList),
		m:    m,
	}
}

func (msc *memberSetCalc) EvaluateList(ev *evaluate.Evaluator) (tuple.List, error) {
	return tuple.Unary([]*olap.Member{msc.m}), nil
}

func (msc *memberSetCalc) CollectArguments(args map[string]interface{}) {
	args["member"] = msc.m
}
