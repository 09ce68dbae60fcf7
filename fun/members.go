package fun

import (
	"fmt"

	"github.com/leftmike/cubist/calc"
	"github.com/leftmike/cubist/evaluate"
	"github.com/leftmike/cubist/mdx"
	"github.com/leftmike/cubist/olap"
	"github.com/leftmike/cubist/tuple"
)

type membersFun struct {
	funBase
	all bool
}

var (
	membersFunDef = &membersFun{
		funBase: funBase{
			name:        "Members",
			description: "Returns the set of members in a dimension, hierarchy, or level.",
			syntax:      mdx.PropertySyntax,
		},
	}
	allMembersFunDef = &membersFun{
		funBase: funBase{
			name:        "AllMembers",
			description: "Returns the set of members, including calculated members.",
			syntax:      mdx.PropertySyntax,
		},
		all: true,
	}
)

func (mf *membersFun) Result(args []mdx.Exp) (mdx.Type, error) {
	if err := mf.argCount(args, 1, 1); err != nil {
		return mdx.UnknownType, err
	}
	switch a := args[0].(type) {
	case *mdx.LevelExpr, *mdx.HierarchyExpr:
		return mdx.SetType, nil
	case *mdx.DimensionExpr:
		if len(a.Dimension.Hierarchies()) != 1 {
			return mdx.UnknownType,
				fmt.Errorf("fun: %s: dimension %s has more than one hierarchy", mf.name, a)
		}
		return mdx.SetType, nil
	}
	if err := mf.argType(args, 0, mdx.LevelType, mdx.HierarchyType,
		mdx.DimensionType); err != nil {
		return mdx.UnknownType, err
	}
	return mdx.UnknownType, fmt.Errorf("fun: %s: expected a level or a hierarchy: %s", mf.name,
		args[0])
}

func (mf *membersFun) CompileCall(call *mdx.Call, c mdx.Compiler) (calc.Calc, error) {
	mc := &membersCalc{
		all: mf.all,
	}
	if le, ok := call.Args[0].(*mdx.LevelExpr); ok {
		mc.Base = calc.NewBase(mf.name+"Level", olap.List)
		mc.level = le.Level
	} else if h, ok := singleHierarchy(call.Args[0]); ok {
		mc.Base = calc.NewBase(mf.name+"Hierarchy", olap.List)
		mc.hierarchy = h
	} else {
		return nil, fmt.Errorf("fun: %s: unexpected argument: %s", mf.name, call.Args[0])
	}
	return mc, nil
}

// membersCalc returns an immutable list, since the members may be shared with the schema.
type membersCalc struct {
	calc.Base
	level     *olap.Level
	hierarchy *olap.Hierarchy
	all       bool
}

func (mc *membersCalc) EvaluateList(ev *evaluate.Evaluator) (tuple.List, error) {
	if mc.level != nil {
		members := levelMembers(ev, mc.level)
		if mc.all {
			for _, m := range calculatedMembers(ev, mc.level.Hierarchy()) {
				if m.Level() == mc.level {
					members = append(members[:len(members):len(members)], m)
				}
			}
		}
		return tuple.Immutable(tuple.Unary(members)), nil
	}

	var members []*olap.Member
	for _, lvl := range levels(ev, mc.hierarchy) {
		members = append(members, levelMembers(ev, lvl)...)
		if err := ev.CheckResultLimit(len(members)); err != nil {
			return nil, err
		}
	}
	if mc.all {
		members = append(members, calculatedMembers(ev, mc.hierarchy)...)
	}
	return tuple.Immutable(tuple.Hierarchize(tuple.Unary(members), false)), nil
}

func (mc *membersCalc) CollectArguments(args map[string]interface{}) {
	if mc.level != nil {
		args["level"] = mc.level
	} else {
		args["hierarchy"] = mc.hierarchy
	}
}
