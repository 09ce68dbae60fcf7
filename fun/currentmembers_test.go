package fun

import (
	"testing"

	"github.com/leftmike/cubist/evaluate"
	"github.com/leftmike/cubist/flags"
	"github.com/leftmike/cubist/mdx"
	"github.com/leftmike/cubist/olap"
)

func TestCurrentMembers(t *testing.T) {
	tc := newTestCube(t)
	fruits := olap.NewCompoundMember("Fruits", []*olap.Member{tc.members["Apple"],
		tc.members["Banana"]})
	greens := newCall(t, "{}", memberExps(tc.members["Carrot"], tc.members["Daikon"])...)
	aggregate := olap.NewCalculatedMember(tc.item, tc.members["Veg"], "Greens",
		&mdx.Call{
			Name:   "{}",
			Args:   []mdx.Exp{newCall(t, "Cache", newCall(t, "Aggregate", greens))},
			Syntax: mdx.BracesSyntax,
		})
	alias := olap.NewCalculatedMember(tc.item, tc.members["Veg"], "Alias",
		&mdx.MemberExpr{Member: tc.members["Carrot"]})
	tr := &testReader{
		calculated: map[*olap.Hierarchy][]*olap.Member{
			tc.product: {aggregate, alias},
		},
	}

	call := newCall(t, "CurrentMembers", &mdx.HierarchyExpr{Hierarchy: tc.product})
	cc := compileAs(t, call, olap.ListOnly)
	if cc.Name() != "CurrentMembersFixed" {
		t.Errorf("Compile(%s) got %s want CurrentMembersFixed", call, cc.Name())
	}
	if !cc.DependsOn(tc.product) || cc.DependsOn(tc.letter) {
		t.Errorf("Compile(%s).DependsOn() got %v, %v want true, false", call,
			cc.DependsOn(tc.product), cc.DependsOn(tc.letter))
	}

	cases := []struct {
		m    *olap.Member
		off  bool
		want []string
	}{
		{m: tc.members["Apple"], want: []string{"apple"}},
		{m: fruits, want: []string{"apple", "banana"}},
		{m: aggregate, want: []string{"carrot", "daikon"}},
		{m: aggregate, off: true, want: []string{"Greens"}},
		{m: alias, want: []string{"carrot"}},
		{m: tc.product.AllMember(), want: []string{"All Products"}},
	}

	for _, c := range cases {
		settings := evaluate.DefaultSettings()
		if c.off {
			settings.Flags = settings.Flags.With(flags.ExpandNonNative, false)
		}
		ev := evaluate.NewEvaluator(nil, tr, settings)
		ev.SetContext(c.m)
		l, err := evaluateSet(ev, cc)
		if err != nil {
			t.Errorf("Evaluate(%s) at %s failed with %s", call, c.m, err)
		} else if !equalKeys(keys(l), c.want) {
			t.Errorf("Evaluate(%s) at %s got %v want %v", call, c.m, keys(l), c.want)
		}
		if ev.ActiveNativeExpansions() != 0 {
			t.Errorf("Evaluate(%s) at %s left %d native expansions", call, c.m,
				ev.ActiveNativeExpansions())
		}
	}
}

func TestCurrentMembersLimit(t *testing.T) {
	tc := newTestCube(t)
	aggregate := olap.NewCalculatedMember(tc.item, tc.members["Veg"], "Everything",
		newCall(t, "Aggregate", newCall(t, "Members", &mdx.LevelExpr{Level: tc.item})))

	settings := evaluate.DefaultSettings()
	settings.ResultLimit = 3
	ev := evaluate.NewEvaluator(nil, &testReader{}, settings)
	ev.SetContext(aggregate)

	call := newCall(t, "CurrentMembers", &mdx.HierarchyExpr{Hierarchy: tc.product})
	_, err := evaluateSet(ev, compileAs(t, call, olap.ListOnly))
	if !olap.IsLimit(err) {
		t.Errorf("Evaluate(%s) got %v want limit error", call, err)
	}
	if ev.ActiveNativeExpansions() != 0 {
		t.Errorf("Evaluate(%s) left %d native expansions", call, ev.ActiveNativeExpansions())
	}
}
