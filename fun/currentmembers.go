package fun

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/leftmike/cubist/calc"
	"github.com/leftmike/cubist/evaluate"
	"github.com/leftmike/cubist/flags"
	"github.com/leftmike/cubist/mdx"
	"github.com/leftmike/cubist/olap"
	"github.com/leftmike/cubist/tuple"
)

type currentMembersFun struct {
	funBase
}

var currentMembersFunDef = &currentMembersFun{
	funBase{
		name:        "CurrentMembers",
		description: "Returns the set of current members of a hierarchy during an iteration.",
		syntax:      mdx.PropertySyntax,
	},
}

func (cmf *currentMembersFun) Result(args []mdx.Exp) (mdx.Type, error) {
	if err := cmf.argCount(args, 1, 1); err != nil {
		return mdx.UnknownType, err
	}
	if err := cmf.argType(args, 0, mdx.HierarchyType, mdx.DimensionType); err != nil {
		return mdx.UnknownType, err
	}
	return mdx.SetType, nil
}

func (cmf *currentMembersFun) CompileCall(call *mdx.Call, c mdx.Compiler) (calc.Calc, error) {
	if h, ok := singleHierarchy(call.Args[0]); ok {
		return &currentMembersCalc{
			Base:      calc.NewBase("CurrentMembersFixed", olap.List),
			hierarchy: h,
			compiler:  c,
		}, nil
	}

	hc, err := c.CompileHierarchy(call.Args[0])
	if err != nil {
		return nil, err
	}
	return &currentMembersCalc{
		Base:     calc.NewBase("CurrentMembers", olap.List, hc),
		hc:       hc,
		compiler: c,
	}, nil
}

// currentMembersCalc expands the current member of a hierarchy into the members that it
// stands for: the members of a compound member, or the members aggregated by a calculated
// member.
type currentMembersCalc struct {
	calc.Base
	hierarchy *olap.Hierarchy
	hc        calc.HierarchyCalc
	compiler  mdx.Compiler
}

func (cmc *currentMembersCalc) DependsOn(h *olap.Hierarchy) bool {
	if cmc.hierarchy != nil {
		return cmc.hierarchy == h
	}
	return true
}

func (cmc *currentMembersCalc) CollectArguments(args map[string]interface{}) {
	if cmc.hierarchy != nil {
		args["hierarchy"] = cmc.hierarchy
	}
}

func (cmc *currentMembersCalc) EvaluateList(ev *evaluate.Evaluator) (tuple.List, error) {
	h := cmc.hierarchy
	if h == nil {
		var err error
		h, err = cmc.hc.EvaluateHierarchy(ev)
		if err != nil {
			return nil, err
		}
	}
	members, err := cmc.expand(ev, ev.Context(h), map[*olap.Member]struct{}{})
	if err != nil {
		return nil, err
	}
	return tuple.Immutable(tuple.Unary(members)), nil
}

func (cmc *currentMembersCalc) expand(ev *evaluate.Evaluator, m *olap.Member,
	checked map[*olap.Member]struct{}) ([]*olap.Member, error) {
	if _, ok := checked[m]; ok {
		return []*olap.Member{m}, nil
	}
	checked[m] = struct{}{}

	if m.IsCompound() {
		return m.Compound(), nil
	} else if !m.IsCalculated() {
		return []*olap.Member{m}, nil
	}

	switch e := m.Expression().(type) {
	case *mdx.MemberExpr:
		return cmc.expand(ev, e.Member, checked)
	case *mdx.Call:
		call := unwrapCall(e)
		if strings.EqualFold(call.Name, "Aggregate") && len(call.Args) > 0 {
			members, err := cmc.expandNonNative(ev, call.Args[0])
			if err != nil {
				return nil, err
			} else if members != nil {
				return members, nil
			}
		}
	}
	return []*olap.Member{m}, nil
}

// unwrapCall looks through set braces, parentheses, and Cache around a single call.
func unwrapCall(call *mdx.Call) *mdx.Call {
	for len(call.Args) == 1 && (call.Name == "{}" || call.Name == "()" ||
		strings.EqualFold(call.Name, "Cache")) {
		arg, ok := call.Args[0].(*mdx.Call)
		if !ok {
			break
		}
		call = arg
	}
	return call
}

// expandNonNative evaluates the set aggregated by a calculated member. It returns nil if
// expansion is disabled, if the set is already being expanded, or if the set has more than
// one hierarchy.
func (cmc *currentMembersCalc) expandNonNative(ev *evaluate.Evaluator,
	e mdx.Exp) ([]*olap.Member, error) {
	if !ev.Settings().Flags.GetFlag(flags.ExpandNonNative) || !ev.AddNativeExpansion(e) {
		return nil, nil
	}
	defer ev.RemoveNativeExpansion(e)

	lc, err := cmc.compiler.CompileList(e, false)
	if err != nil {
		return nil, err
	}
	l, err := lc.EvaluateList(ev)
	if err != nil {
		return nil, err
	}
	if err := ev.CheckResultLimit(l.Size()); err != nil {
		return nil, err
	}
	if l.Arity() != 1 {
		log.WithFields(log.Fields{
			"execution": ev.Execution().ID(),
			"function":  "CurrentMembers",
		}).Debugf("fun: aggregated set %s has arity %d", e, l.Arity())
		return nil, nil
	}
	return l.Slice(0).Members(), nil
}

type aggregateFun struct {
	funBase
}

var aggregateFunDef = &aggregateFun{
	funBase{
		name:        "Aggregate",
		description: "Returns the aggregate of the cells of a set.",
		syntax:      mdx.FunctionSyntax,
	},
}

func (af *aggregateFun) Result(args []mdx.Exp) (mdx.Type, error) {
	if err := af.argCount(args, 1, 2); err != nil {
		return mdx.UnknownType, err
	}
	if err := af.argType(args, 0, mdx.SetType, mdx.MemberType); err != nil {
		return mdx.UnknownType, err
	}
	return mdx.NumericType, nil
}

// CompileCall fails: Aggregate is only used as the expression of calculated members, which
// CurrentMembers expands.
func (af *aggregateFun) CompileCall(call *mdx.Call, c mdx.Compiler) (calc.Calc, error) {
	return nil, fmt.Errorf("fun: %s: cell values are not supported", call)
}

type cacheFun struct {
	funBase
}

var cacheFunDef = &cacheFun{
	funBase{
		name:        "Cache",
		description: "Evaluates an expression; the result is not cached.",
		syntax:      mdx.FunctionSyntax,
	},
}

func (cf *cacheFun) Result(args []mdx.Exp) (mdx.Type, error) {
	if err := cf.argCount(args, 1, 1); err != nil {
		return mdx.UnknownType, err
	}
	return args[0].Type(), nil
}

func (cf *cacheFun) CompileCall(call *mdx.Call, c mdx.Compiler) (calc.Calc, error) {
	return c.CompileAs(call.Args[0], c.AcceptableResultStyles())
}
