package fun

import (
	"strings"
	"testing"

	"github.com/leftmike/cubist/calc"
	"github.com/leftmike/cubist/evaluate"
	"github.com/leftmike/cubist/mdx"
	"github.com/leftmike/cubist/olap"
)

func TestSetFunctions(t *testing.T) {
	tc := newTestCube(t)
	product := &mdx.HierarchyExpr{Hierarchy: tc.product}
	greens := olap.NewCalculatedMember(tc.category, tc.product.AllMember(), "Greens",
		&mdx.MemberExpr{Member: tc.members["Veg"]})
	tr := &testReader{
		calculated: map[*olap.Hierarchy][]*olap.Member{
			tc.product: {greens},
		},
	}

	cases := []struct {
		e       mdx.Exp
		context []*olap.Member
		want    []string
	}{
		{
			e: newCall(t, "Members", product),
			want: []string{"All Products", "fruit", "apple", "banana", "veg", "carrot",
				"daikon"},
		},
		{
			e: newCall(t, "AllMembers", product),
			want: []string{"All Products", "fruit", "apple", "banana", "veg", "carrot",
				"daikon", "Greens"},
		},
		{
			e:    newCall(t, "AllMembers", &mdx.LevelExpr{Level: tc.category}),
			want: []string{"fruit", "veg", "Greens"},
		},
		{
			e:    newCall(t, "Members", &mdx.LevelExpr{Level: tc.item}),
			want: []string{"apple", "banana", "carrot", "daikon"},
		},
		{
			e: newCall(t, "{}", newCall(t, "Members", &mdx.LevelExpr{Level: tc.category}),
				&mdx.MemberExpr{Member: tc.members["Daikon"]}),
			want: []string{"fruit", "veg", "daikon"},
		},
		{
			e:    newCall(t, "{}"),
			want: nil,
		},
		{
			e: newCall(t, "Hierarchize", newCall(t, "{}", memberExps(tc.members["Daikon"],
				tc.members["Veg"], tc.members["Apple"], tc.members["Fruit"])...)),
			want: []string{"fruit", "apple", "veg", "daikon"},
		},
		{
			e: newCall(t, "Hierarchize", newCall(t, "{}", memberExps(tc.members["Daikon"],
				tc.members["Veg"], tc.members["Apple"], tc.members["Fruit"])...), str("POST")),
			want: []string{"apple", "fruit", "daikon", "veg"},
		},
		{
			e:       newCall(t, "Existing", newCall(t, "Members", product)),
			context: []*olap.Member{tc.members["Veg"]},
			want:    []string{"All Products", "veg", "carrot", "daikon"},
		},
		{
			e:       newCall(t, "Existing", newCall(t, "Members", product)),
			context: []*olap.Member{tc.members["Apple"]},
			want:    []string{"All Products", "fruit", "apple"},
		},
		{
			e:    newCall(t, "AS", newCall(t, "Members", &mdx.LevelExpr{Level: tc.category}), str("C")),
			want: []string{"fruit", "veg"},
		},
	}

	for _, c := range cases {
		for _, styles := range [][]olap.ResultStyle{olap.AnyOnly, olap.ListOnly,
			olap.MutableListOnly, olap.IterableOnly} {
			ev := evaluate.NewEvaluator(nil, tr, evaluate.DefaultSettings())
			ev.SetTuple(c.context)
			l, err := evaluateSet(ev, compileAs(t, c.e, styles))
			if err != nil {
				t.Errorf("Evaluate(%s) failed with %s", c.e, err)
			} else if !equalKeys(keys(l), c.want) {
				t.Errorf("Evaluate(%s) got %v want %v", c.e, keys(l), c.want)
			}
		}
	}
}

func TestSetLimit(t *testing.T) {
	tc := newTestCube(t)
	settings := evaluate.DefaultSettings()
	settings.ResultLimit = 3

	for _, e := range []mdx.Exp{
		newCall(t, "Members", &mdx.HierarchyExpr{Hierarchy: tc.product}),
		newCall(t, "{}", memberExps(tc.letters...)...),
	} {
		ev := evaluate.NewEvaluator(nil, nil, settings)
		_, err := evaluateSet(ev, compileAs(t, e, olap.ListOnly))
		if !olap.IsLimit(err) {
			t.Errorf("Evaluate(%s) got %v want limit error", e, err)
		}
	}
}

func TestExplain(t *testing.T) {
	tc := newTestCube(t)
	call := newCall(t, "Filter",
		newCall(t, "AS", newCall(t, "Members", &mdx.LevelExpr{Level: tc.category}),
			str("Categories")),
		newCall(t, "Not", keyIn(t, tc.product, "veg")))

	var b strings.Builder
	err := calc.Explain(&b, compileAs(t, call, olap.AnyOnly))
	if err != nil {
		t.Fatalf("Explain(%s) failed with %s", call, err)
	}
	want := `IterIterFilter(style=ITERABLE)
    NamedSet(style=ITERABLE, name=Categories)
        ListAsIter(style=ITERABLE)
            MembersLevel(style=LIST, level=[Product].[Category])
    Not(style=VALUE)
        KeyIn(style=VALUE, args=veg, hierarchy=[Product])
`
	if b.String() != want {
		t.Errorf("Explain(%s) got\n%s\nwant\n%s", call, b.String(), want)
	}
}
