package fun

import (
	"fmt"
	"strings"

	"github.com/leftmike/cubist/calc"
	"github.com/leftmike/cubist/evaluate"
	"github.com/leftmike/cubist/mdx"
	"github.com/leftmike/cubist/olap"
)

type memberTestFun struct {
	funBase
	minArgs int
	maxArgs int
	test    func(args []string) func(m *olap.Member) bool
}

var (
	keyInFunDef = &memberTestFun{
		funBase: funBase{
			name:        "KeyIn",
			description: "Returns whether the key of the current member is one of the keys.",
			syntax:      mdx.FunctionSyntax,
		},
		minArgs: 1,
		maxArgs: -1,
		test: func(keys []string) func(m *olap.Member) bool {
			set := map[string]struct{}{}
			for _, k := range keys {
				set[k] = struct{}{}
			}
			return func(m *olap.Member) bool {
				_, ok := set[m.Key()]
				return ok
			}
		},
	}
	startsWithFunDef = &memberTestFun{
		funBase: funBase{
			name:        "StartsWith",
			description: "Returns whether the name of the current member starts with a prefix.",
			syntax:      mdx.FunctionSyntax,
		},
		minArgs: 1,
		maxArgs: 1,
		test: func(args []string) func(m *olap.Member) bool {
			prefix := args[0]
			return func(m *olap.Member) bool {
				return strings.HasPrefix(m.Name(), prefix)
			}
		},
	}
	isCalculatedFunDef = &memberTestFun{
		funBase: funBase{
			name:        "IsCalculated",
			description: "Returns whether the current member is a calculated member.",
			syntax:      mdx.FunctionSyntax,
		},
		minArgs: 0,
		maxArgs: 0,
		test: func(args []string) func(m *olap.Member) bool {
			return (*olap.Member).IsCalculated
		},
	}
)

func (mtf *memberTestFun) Result(args []mdx.Exp) (mdx.Type, error) {
	max := mtf.maxArgs
	if max >= 0 {
		max += 1
	}
	if err := mtf.argCount(args, mtf.minArgs+1, max); err != nil {
		return mdx.UnknownType, err
	}
	if err := mtf.argType(args, 0, mdx.HierarchyType, mdx.DimensionType); err != nil {
		return mdx.UnknownType, err
	}
	if _, ok := singleHierarchy(args[0]); !ok {
		return mdx.UnknownType,
			fmt.Errorf("fun: %s: dimension %s has more than one hierarchy", mtf.name, args[0])
	}
	if _, err := MemberTestArgs(args[1:]); err != nil {
		return mdx.UnknownType, fmt.Errorf("fun: %s: %s", mtf.name, err)
	}
	return mdx.BooleanType, nil
}

// MemberTestArgs returns the string literals following the hierarchy of a member test such
// as KeyIn or StartsWith.
func MemberTestArgs(args []mdx.Exp) ([]string, error) {
	strs := make([]string, 0, len(args))
	for _, a := range args {
		s, ok := stringLiteral(a)
		if !ok {
			return nil, fmt.Errorf("expected a string: %s", a)
		}
		strs = append(strs, s)
	}
	return strs, nil
}

func (mtf *memberTestFun) CompileCall(call *mdx.Call, c mdx.Compiler) (calc.Calc, error) {
	h, _ := singleHierarchy(call.Args[0])
	args, err := MemberTestArgs(call.Args[1:])
	if err != nil {
		return nil, err
	}
	return &memberTestCalc{
		Base:      calc.NewBase(mtf.name, olap.Value),
		hierarchy: h,
		args:      args,
		test:      mtf.test(args),
	}, nil
}

type memberTestCalc struct {
	calc.Base
	hierarchy *olap.Hierarchy
	args      []string
	test      func(m *olap.Member) bool
}

func (mtc *memberTestCalc) DependsOn(h *olap.Hierarchy) bool {
	return h == mtc.hierarchy
}

func (mtc *memberTestCalc) EvaluateBoolean(ev *evaluate.Evaluator) (bool, error) {
	m := ev.Context(mtc.hierarchy)
	if m == nil {
		return false, fmt.Errorf("fun: %s: hierarchy %s has no current member", mtc.Name(),
			mtc.hierarchy)
	}
	return mtc.test(m), nil
}

func (mtc *memberTestCalc) CollectArguments(args map[string]interface{}) {
	args["hierarchy"] = mtc.hierarchy
	if len(mtc.args) > 0 {
		args["args"] = strings.Join(mtc.args, ", ")
	}
}

type logicalOp int

const (
	andOp logicalOp = iota
	orOp
	notOp
)

type logicalFun struct {
	funBase
	op logicalOp
}

var (
	andFunDef = &logicalFun{
		funBase: funBase{
			name:        "And",
			description: "Returns the conjunction of two conditions.",
			syntax:      mdx.FunctionSyntax,
		},
		op: andOp,
	}
	orFunDef = &logicalFun{
		funBase: funBase{
			name:        "Or",
			description: "Returns the disjunction of two conditions.",
			syntax:      mdx.FunctionSyntax,
		},
		op: orOp,
	}
	notFunDef = &logicalFun{
		funBase: funBase{
			name:        "Not",
			description: "Returns the negation of a condition.",
			syntax:      mdx.FunctionSyntax,
		},
		op: notOp,
	}
)

func (lf *logicalFun) Result(args []mdx.Exp) (mdx.Type, error) {
	n := 2
	if lf.op == notOp {
		n = 1
	}
	if err := lf.argCount(args, n, n); err != nil {
		return mdx.UnknownType, err
	}
	for idx := range args {
		if err := lf.argType(args, idx, mdx.BooleanType); err != nil {
			return mdx.UnknownType, err
		}
	}
	return mdx.BooleanType, nil
}

func (lf *logicalFun) CompileCall(call *mdx.Call, c mdx.Compiler) (calc.Calc, error) {
	bcs := make([]calc.BooleanCalc, 0, len(call.Args))
	calcs := make([]calc.Calc, 0, len(call.Args))
	for _, a := range call.Args {
		bc, err := c.CompileBoolean(a)
		if err != nil {
			return nil, err
		}
		bcs = append(bcs, bc)
		calcs = append(calcs, bc)
	}
	return &logicalCalc{
		Base: calc.NewBase(lf.name, olap.Value, calcs...),
		op:   lf.op,
		bcs:  bcs,
	}, nil
}

type logicalCalc struct {
	calc.Base
	op  logicalOp
	bcs []calc.BooleanCalc
}

func (lc *logicalCalc) EvaluateBoolean(ev *evaluate.Evaluator) (bool, error) {
	b, err := lc.bcs[0].EvaluateBoolean(ev)
	if err != nil {
		return false, err
	}

	switch lc.op {
	case andOp:
		if !b {
			return false, nil
		}
		return lc.bcs[1].EvaluateBoolean(ev)
	case orOp:
		if b {
			return true, nil
		}
		return lc.bcs[1].EvaluateBoolean(ev)
	case notOp:
		return !b, nil
	}
	panic(fmt.Sprintf("unexpected logical op: %d", lc.op))
}
