package fun

import (
	"strings"
	"testing"

	"github.com/leftmike/cubist/calc"
	"github.com/leftmike/cubist/compile"
	"github.com/leftmike/cubist/evaluate"
	"github.com/leftmike/cubist/mdx"
	"github.com/leftmike/cubist/olap"
	"github.com/leftmike/cubist/tuple"
)

type testCube struct {
	letter    *olap.Hierarchy
	letters   []*olap.Member
	product   *olap.Hierarchy
	category  *olap.Level
	item      *olap.Level
	members   map[string]*olap.Member
	calcLevel *olap.Level
}

func newTestCube(t *testing.T) *testCube {
	t.Helper()

	tc := &testCube{
		members: map[string]*olap.Member{},
	}

	tc.letter = olap.NewDimension("Letter").AddHierarchy("Letter", "All Letters")
	lvl := tc.letter.AddLevel("Letter")
	for _, nam := range []string{"A", "B", "C", "D"} {
		m, err := lvl.AddMember(nam, nam, nil)
		if err != nil {
			t.Fatalf("AddMember(%s) failed with %s", nam, err)
		}
		tc.letters = append(tc.letters, m)
		tc.members[nam] = m
	}

	tc.product = olap.NewDimension("Product").AddHierarchy("Product", "All Products")
	tc.category = tc.product.AddLevel("Category")
	tc.item = tc.product.AddLevel("Item")
	for _, nam := range []string{"Fruit", "Veg"} {
		m, err := tc.category.AddMember(nam, strings.ToLower(nam), nil)
		if err != nil {
			t.Fatalf("AddMember(%s) failed with %s", nam, err)
		}
		tc.members[nam] = m
	}
	for _, item := range []struct{ name, parent string }{
		{"Apple", "Fruit"},
		{"Banana", "Fruit"},
		{"Carrot", "Veg"},
		{"Daikon", "Veg"},
	} {
		m, err := tc.item.AddMember(item.name, strings.ToLower(item.name),
			tc.members[item.parent])
		if err != nil {
			t.Fatalf("AddMember(%s) failed with %s", item.name, err)
		}
		tc.members[item.name] = m
	}
	return tc
}

func (tc *testCube) list(names ...string) tuple.List {
	members := make([]*olap.Member, len(names))
	for i, nam := range names {
		members[i] = tc.members[nam]
	}
	return tuple.Unary(members)
}

func newCall(t *testing.T, name string, args ...mdx.Exp) *mdx.Call {
	t.Helper()

	syntax := mdx.FunctionSyntax
	if name == "{}" {
		syntax = mdx.BracesSyntax
	}
	c, err := mdx.NewCall(mdx.DefaultValidator(), name, syntax, args...)
	if err != nil {
		t.Fatalf("NewCall(%s) failed with %s", name, err)
	}
	return c
}

func str(s string) mdx.Exp {
	return &mdx.Literal{Value: s}
}

func memberExps(members ...*olap.Member) []mdx.Exp {
	exps := make([]mdx.Exp, len(members))
	for i, m := range members {
		exps[i] = &mdx.MemberExpr{Member: m}
	}
	return exps
}

func compileAs(t *testing.T, e mdx.Exp, styles []olap.ResultStyle) calc.Calc {
	t.Helper()

	cc, err := compile.New(nil, styles).Compile(e)
	if err != nil {
		t.Fatalf("Compile(%s) failed with %s", e, err)
	}
	return cc
}

func evaluateSet(ev *evaluate.Evaluator, cc calc.Calc) (tuple.List, error) {
	switch cc := cc.(type) {
	case calc.ListCalc:
		return cc.EvaluateList(ev)
	case calc.IterCalc:
		it, err := cc.EvaluateIterable(ev)
		if err != nil {
			return nil, err
		}
		return tuple.Materialize(it)
	}
	panic("unexpected calc")
}

func keys(l tuple.List) []string {
	var ks []string
	for idx := 0; idx < l.Size(); idx++ {
		ks = append(ks, l.Member(idx, 0).Key())
	}
	return ks
}

func equalKeys(ks1, ks2 []string) bool {
	if len(ks1) != len(ks2) {
		return false
	}
	for i := range ks1 {
		if ks1[i] != ks2[i] {
			return false
		}
	}
	return true
}

// testReader pushes down Filter(Members(<level>), KeyIn(...)) for the levels in native.
// When tamper is set, the native evaluator ignores the predicate.
type testReader struct {
	native     map[*olap.Level]bool
	tamper     bool
	calculated map[*olap.Hierarchy][]*olap.Member
	pushed     []string
}

func (tr *testReader) NativeSetEvaluator(fun olap.FunDef, args []olap.Exp,
	ev *evaluate.Evaluator, requester evaluate.Dependent) evaluate.NativeEvaluator {
	if !strings.EqualFold(fun.Name(), "Filter") || len(args) != 2 {
		return nil
	}
	call, ok := args[0].(*mdx.Call)
	if !ok || !strings.EqualFold(call.Name, "Members") {
		return nil
	}
	le, ok := call.Args[0].(*mdx.LevelExpr)
	if !ok {
		return nil
	}
	tr.pushed = append(tr.pushed, le.Level.Name())
	if !tr.native[le.Level] {
		return nil
	}
	pred, ok := args[1].(*mdx.Call)
	if !ok || !strings.EqualFold(pred.Name, "KeyIn") {
		return nil
	}
	ks, err := MemberTestArgs(pred.Args[1:])
	if err != nil {
		return nil
	}
	return testNative{level: le.Level, keys: ks, tamper: tr.tamper}
}

func (_ *testReader) Levels(h *olap.Hierarchy) []*olap.Level {
	return h.Levels()
}

func (_ *testReader) LevelMembers(lvl *olap.Level) []*olap.Member {
	return lvl.Members()
}

func (tr *testReader) CalculatedMembers(h *olap.Hierarchy) []*olap.Member {
	return tr.calculated[h]
}

type testNative struct {
	level  *olap.Level
	keys   []string
	tamper bool
}

func (tn testNative) Execute(style olap.ResultStyle) (tuple.Iterable, error) {
	var members []*olap.Member
	for _, m := range tn.level.Members() {
		if tn.tamper {
			members = append(members, m)
			continue
		}
		for _, k := range tn.keys {
			if m.Key() == k {
				members = append(members, m)
				break
			}
		}
	}

	idx := 0
	return tuple.NewIterable(1,
		func() tuple.Cursor {
			idx = 0
			return tuple.NewCursorFunc(1,
				func() (olap.Tuple, bool, error) {
					if idx >= len(members) {
						return nil, false, nil
					}
					idx += 1
					return olap.Tuple{members[idx-1]}, true, nil
				})
		}), nil
}
