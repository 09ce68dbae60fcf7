package fun

import (
	"fmt"
	"strings"

	"github.com/leftmike/cubist/calc"
	"github.com/leftmike/cubist/evaluate"
	"github.com/leftmike/cubist/mdx"
	"github.com/leftmike/cubist/olap"
	"github.com/leftmike/cubist/tuple"
)

type setFun struct {
	funBase
}

var setFunDef = &setFun{
	funBase{
		name:        "{}",
		description: "Brace operator constructs a set.",
		syntax:      mdx.BracesSyntax,
	},
}

func (sf *setFun) Result(args []mdx.Exp) (mdx.Type, error) {
	for idx := range args {
		if err := sf.argType(args, idx, mdx.MemberType, mdx.SetType); err != nil {
			return mdx.UnknownType, err
		}
	}
	return mdx.SetType, nil
}

func (sf *setFun) CompileCall(call *mdx.Call, c mdx.Compiler) (calc.Calc, error) {
	lcs := make([]calc.ListCalc, 0, len(call.Args))
	calcs := make([]calc.Calc, 0, len(call.Args))
	for _, a := range call.Args {
		lc, err := c.CompileList(a, false)
		if err != nil {
			return nil, err
		}
		lcs = append(lcs, lc)
		calcs = append(calcs, lc)
	}
	return &setCalc{
		Base: calc.NewBase("Set", olap.MutableList, calcs...),
		lcs:  lcs,
	}, nil
}

type setCalc struct {
	calc.Base
	lcs []calc.ListCalc
}

func (sc *setCalc) EvaluateList(ev *evaluate.Evaluator) (tuple.List, error) {
	if len(sc.lcs) == 0 {
		return tuple.CreateList(1, 0), nil
	}

	var result tuple.MutableList
	for _, lc := range sc.lcs {
		l, err := lc.EvaluateList(ev)
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = tuple.CreateList(l.Arity(), l.Size())
		} else if result.Arity() != l.Arity() {
			return nil, fmt.Errorf("fun: {}: sets with arity %d and %d", result.Arity(),
				l.Arity())
		}

		cr := l.Cursor()
		for cr.Forward() {
			result.AddCurrent(cr)
		}
		if err := cr.Err(); err != nil {
			return nil, err
		}
		if err := ev.CheckResultLimit(result.Size()); err != nil {
			return nil, err
		}
	}
	return result, nil
}

type asFun struct {
	funBase
}

var asFunDef = &asFun{
	funBase{
		name:        "AS",
		description: "Names a set so that its position may be tracked while it is iterated.",
		syntax:      mdx.FunctionSyntax,
	},
}

func (af *asFun) Result(args []mdx.Exp) (mdx.Type, error) {
	if err := af.argCount(args, 2, 2); err != nil {
		return mdx.UnknownType, err
	}
	if err := af.argType(args, 0, mdx.SetType, mdx.MemberType); err != nil {
		return mdx.UnknownType, err
	}
	if _, ok := stringLiteral(args[1]); !ok {
		return mdx.UnknownType, fmt.Errorf("fun: AS: expected a name: %s", args[1])
	}
	return mdx.SetType, nil
}

func (af *asFun) CompileCall(call *mdx.Call, c mdx.Compiler) (calc.Calc, error) {
	ic, err := c.CompileIterable(call.Args[0])
	if err != nil {
		return nil, err
	}
	name, _ := stringLiteral(call.Args[1])
	return &asCalc{
		Base: calc.NewBase("NamedSet", olap.Iterable, ic),
		ic:   ic,
		name: name,
	}, nil
}

type asCalc struct {
	calc.Base
	ic   calc.IterCalc
	name string
}

func (ac *asCalc) UsesHierarchy(h *olap.Hierarchy) bool {
	return ac.ic.UsesHierarchy(h)
}

func (ac *asCalc) EvaluateIterable(ev *evaluate.Evaluator) (tuple.Iterable, error) {
	return ac.ic.EvaluateIterable(ev)
}

func (ac *asCalc) CollectArguments(args map[string]interface{}) {
	args["name"] = ac.name
}

type existingFun struct {
	funBase
}

var existingFunDef = &existingFun{
	funBase{
		name:        "Existing",
		description: "Returns the members of a set which exist with the current context.",
		syntax:      mdx.FunctionSyntax,
	},
}

func (ef *existingFun) Result(args []mdx.Exp) (mdx.Type, error) {
	if err := ef.argCount(args, 1, 1); err != nil {
		return mdx.UnknownType, err
	}
	if err := ef.argType(args, 0, mdx.SetType, mdx.MemberType); err != nil {
		return mdx.UnknownType, err
	}
	return mdx.SetType, nil
}

func (ef *existingFun) CompileCall(call *mdx.Call, c mdx.Compiler) (calc.Calc, error) {
	lc, err := c.CompileList(call.Args[0], false)
	if err != nil {
		return nil, err
	}
	return &existingCalc{
		Base: calc.NewBase("Existing", olap.MutableList, lc),
		lc:   lc,
	}, nil
}

type existingCalc struct {
	calc.Base
	lc calc.ListCalc
}

// DependsOn is true for every hierarchy: whether a member exists depends on the context of
// its hierarchy, and the hierarchies of the set are not known until it is evaluated.
func (_ *existingCalc) DependsOn(h *olap.Hierarchy) bool {
	return true
}

func existsWith(ev *evaluate.Evaluator, m *olap.Member) bool {
	ctx := ev.Context(m.Hierarchy())
	return ctx == nil || ctx.IsAll() || ctx == m || ctx.IsAncestorOf(m) || m.IsAncestorOf(ctx)
}

func (ec *existingCalc) EvaluateList(ev *evaluate.Evaluator) (tuple.List, error) {
	l, err := ec.lc.EvaluateList(ev)
	if err != nil {
		return nil, err
	}

	result := tuple.CreateList(l.Arity(), l.Size())
	cr := l.Cursor()
	for cr.Forward() {
		exists := true
		for col := 0; col < cr.Arity(); col++ {
			if !existsWith(ev, cr.Member(col)) {
				exists = false
				break
			}
		}
		if exists {
			result.AddCurrent(cr)
		}
	}
	if err := cr.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type hierarchizeFun struct {
	funBase
}

var hierarchizeFunDef = &hierarchizeFun{
	funBase{
		name:        "Hierarchize",
		description: "Orders the members of a set in a hierarchy.",
		syntax:      mdx.FunctionSyntax,
	},
}

func (hf *hierarchizeFun) Result(args []mdx.Exp) (mdx.Type, error) {
	if err := hf.argCount(args, 1, 2); err != nil {
		return mdx.UnknownType, err
	}
	if err := hf.argType(args, 0, mdx.SetType, mdx.MemberType); err != nil {
		return mdx.UnknownType, err
	}
	if len(args) == 2 {
		if s, ok := stringLiteral(args[1]); !ok || !strings.EqualFold(s, "POST") {
			return mdx.UnknownType, fmt.Errorf("fun: Hierarchize: expected 'POST': %s",
				args[1])
		}
	}
	return mdx.SetType, nil
}

func (hf *hierarchizeFun) CompileCall(call *mdx.Call, c mdx.Compiler) (calc.Calc, error) {
	lc, err := c.CompileList(call.Args[0], false)
	if err != nil {
		return nil, err
	}
	return &hierarchizeCalc{
		Base: calc.NewBase("Hierarchize", olap.MutableList, lc),
		lc:   lc,
		post: len(call.Args) == 2,
	}, nil
}

type hierarchizeCalc struct {
	calc.Base
	lc   calc.ListCalc
	post bool
}

func (hc *hierarchizeCalc) EvaluateList(ev *evaluate.Evaluator) (tuple.List, error) {
	l, err := hc.lc.EvaluateList(ev)
	if err != nil {
		return nil, err
	}
	l = tuple.Hierarchize(l, hc.post)
	if !l.Mutable() {
		return l.CloneList(l.Size()), nil
	}
	return l, nil
}

func (hc *hierarchizeCalc) CollectArguments(args map[string]interface{}) {
	args["post"] = hc.post
}

func stringLiteral(e mdx.Exp) (string, bool) {
	if l, ok := e.(*mdx.Literal); ok {
		s, ok := l.Value.(string)
		return s, ok
	}
	return "", false
}
