package native_test

import (
	"strings"
	"testing"

	"github.com/leftmike/cubist/calc"
	"github.com/leftmike/cubist/compile"
	"github.com/leftmike/cubist/evaluate"
	"github.com/leftmike/cubist/mdx"
	"github.com/leftmike/cubist/native"
	"github.com/leftmike/cubist/olap"
	"github.com/leftmike/cubist/storage/kv"
	"github.com/leftmike/cubist/tuple"
)

type testCube struct {
	product  *olap.Hierarchy
	category *olap.Level
	item     *olap.Level
	letter   *olap.Hierarchy
	members  map[string]*olap.Member
}

func newTestCube(t *testing.T) *testCube {
	t.Helper()

	tc := &testCube{
		members: map[string]*olap.Member{},
	}
	add := func(lvl *olap.Level, name string, parent *olap.Member) {
		m, err := lvl.AddMember(name, strings.ToLower(name), parent)
		if err != nil {
			t.Fatalf("AddMember(%s) failed with %s", name, err)
		}
		tc.members[name] = m
	}

	tc.product = olap.NewDimension("Product").AddHierarchy("Product", "All Products")
	tc.category = tc.product.AddLevel("Category")
	tc.item = tc.product.AddLevel("Item")
	add(tc.category, "Fruit", nil)
	add(tc.category, "Veg", nil)
	add(tc.item, "Apple", tc.members["Fruit"])
	add(tc.item, "Banana", tc.members["Fruit"])
	add(tc.item, "Carrot", tc.members["Veg"])
	add(tc.item, "Daikon", tc.members["Veg"])

	tc.letter = olap.NewDimension("Letter").AddHierarchy("Letter", "All Letters")
	lvl := tc.letter.AddLevel("Letter")
	add(lvl, "A", nil)
	add(lvl, "B", nil)
	return tc
}

// testReader records the levels for which the provider returned a native evaluator.
type testReader struct {
	provider *native.Provider
	accepted []string
}

func (tr *testReader) NativeSetEvaluator(fd olap.FunDef, args []olap.Exp,
	ev *evaluate.Evaluator, requester evaluate.Dependent) evaluate.NativeEvaluator {
	ne := tr.provider.NativeSetEvaluator(fd, args, ev, requester)
	if ne != nil {
		c := args[0].(*mdx.Call)
		tr.accepted = append(tr.accepted, c.Args[0].(*mdx.LevelExpr).Level.Name())
		return ne
	}
	return nil
}

func (_ *testReader) Levels(h *olap.Hierarchy) []*olap.Level {
	return h.Levels()
}

func (_ *testReader) LevelMembers(lvl *olap.Level) []*olap.Member {
	return lvl.Members()
}

func (_ *testReader) CalculatedMembers(h *olap.Hierarchy) []*olap.Member {
	return nil
}

func call(t *testing.T, name string, args ...mdx.Exp) *mdx.Call {
	t.Helper()

	syntax := mdx.FunctionSyntax
	if name == "Members" || name == "AllMembers" {
		syntax = mdx.PropertySyntax
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

func keys(t *testing.T, it tuple.Iterable) []string {
	t.Helper()

	members, err := tuple.Members(it, 0)
	if err != nil {
		t.Fatalf("Members() failed with %s", err)
	}
	var ks []string
	for _, m := range members {
		ks = append(ks, m.Key())
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

func loadProvider(t *testing.T, tc *testCube) *native.Provider {
	t.Helper()

	p := native.NewProvider(kv.NewBTree())
	err := p.Load(tc.product)
	if err != nil {
		t.Fatalf("Load() failed with %s", err)
	}
	return p
}

func TestLoad(t *testing.T) {
	tc := newTestCube(t)
	p := loadProvider(t, tc)

	err := p.Load(tc.product, tc.letter)
	if err != nil {
		t.Fatalf("Load() failed with %s", err)
	}
	names, err := p.StoredLevels()
	if err != nil {
		t.Fatalf("StoredLevels() failed with %s", err)
	}
	want := []string{"[Product].[Category]", "[Product].[Item]", "[Letter].[Letter]"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("StoredLevels() got %v want %v", names, want)
	}
}

func TestNativeSetEvaluator(t *testing.T) {
	tc := newTestCube(t)
	product := &mdx.HierarchyExpr{Hierarchy: tc.product}
	letter := &mdx.HierarchyExpr{Hierarchy: tc.letter}
	items := func() mdx.Exp {
		return call(t, "Members", &mdx.LevelExpr{Level: tc.item})
	}

	cases := []struct {
		set  mdx.Exp
		pred mdx.Exp
		want   []string
		reject bool
	}{
		{
			set:  items(),
			pred: call(t, "KeyIn", product, str("carrot"), str("apple")),
			want: []string{"apple", "carrot"},
		},
		{
			set:  items(),
			pred: call(t, "StartsWith", product, str("B")),
			want: []string{"banana"},
		},
		{
			set: items(),
			pred: call(t, "Not", call(t, "Or", call(t, "StartsWith", product, str("B")),
				call(t, "KeyIn", product, str("daikon")))),
			want: []string{"apple", "carrot"},
		},
		{
			set: items(),
			pred: call(t, "And", call(t, "KeyIn", product, str("apple"), str("banana")),
				&mdx.Literal{Value: true}),
			want: []string{"apple", "banana"},
		},
		{
			set:  items(),
			pred: call(t, "IsCalculated", product),
		},
		{
			set:  items(),
			pred: call(t, "Not", call(t, "IsCalculated", product)),
			want: []string{"apple", "banana", "carrot", "daikon"},
		},
		{
			set:  items(),
			pred: call(t, "KeyIn", letter, str("a")),
			want: []string{"apple", "banana", "carrot", "daikon"},
		},
		{
			set: items(),
			pred: call(t, "And", call(t, "KeyIn", letter, str("b")),
				call(t, "KeyIn", product, str("apple"))),
		},
		{
			set:  call(t, "Members", &mdx.LevelExpr{Level: tc.category}),
			pred: call(t, "KeyIn", product, str("veg")),
			want: []string{"veg"},
		},
		{
			set:    call(t, "Members", product),
			pred:   call(t, "KeyIn", product, str("veg")),
			reject: true,
		},
		{
			set:    call(t, "AllMembers", &mdx.LevelExpr{Level: tc.item}),
			pred:   call(t, "KeyIn", product, str("apple")),
			reject: true,
		},
		{
			set:    items(),
			pred:   str("apple"),
			reject: true,
		},
		{
			set:    call(t, "Members", tc.letterLevel()),
			pred:   call(t, "KeyIn", letter, str("a")),
			reject: true,
		},
	}

	filter, ok := mdx.Lookup("Filter")
	if !ok {
		t.Fatal("Lookup(Filter) failed")
	}
	p := loadProvider(t, tc)
	for _, c := range cases {
		ev := evaluate.NewEvaluator(nil, &testReader{provider: p}, evaluate.DefaultSettings())
		ev.SetContext(tc.members["A"])

		ne := p.NativeSetEvaluator(filter, []olap.Exp{c.set, c.pred}, ev, nil)
		if c.reject {
			if ne != nil {
				t.Errorf("NativeSetEvaluator(%s, %s) got an evaluator", c.set, c.pred)
			}
			continue
		}
		if ne == nil {
			t.Errorf("NativeSetEvaluator(%s, %s) got nil", c.set, c.pred)
			continue
		}

		for _, style := range []olap.ResultStyle{olap.Iterable, olap.List, olap.MutableList} {
			it, err := ne.Execute(style)
			if err != nil {
				t.Errorf("Execute(%s) failed with %s", style, err)
				continue
			}
			l, isList := it.(tuple.List)
			if style == olap.Iterable && isList {
				t.Errorf("Execute(%s) got a list", style)
			} else if style != olap.Iterable &&
				(!isList || l.Mutable() != (style == olap.MutableList)) {
				t.Errorf("Execute(%s) got %T", style, it)
			}
			if ks := keys(t, it); !equalKeys(ks, c.want) {
				t.Errorf("Execute(%s) for Filter(%s, %s) got %v want %v", style, c.set, c.pred,
					ks, c.want)
			}
		}
	}
}

func (tc *testCube) letterLevel() *mdx.LevelExpr {
	lvl, _ := tc.letter.Level("Letter")
	return &mdx.LevelExpr{Level: lvl}
}

func TestDisableLevel(t *testing.T) {
	tc := newTestCube(t)
	p := loadProvider(t, tc)
	filter, _ := mdx.Lookup("Filter")
	args := []olap.Exp{
		call(t, "Members", &mdx.LevelExpr{Level: tc.item}),
		call(t, "KeyIn", &mdx.HierarchyExpr{Hierarchy: tc.product}, str("apple")),
	}
	ev := evaluate.NewEvaluator(nil, nil, evaluate.DefaultSettings())

	p.DisableLevel(tc.item)
	if p.NativeSetEvaluator(filter, args, ev, nil) != nil {
		t.Errorf("NativeSetEvaluator() got an evaluator for a disabled level")
	}
	p.EnableLevel(tc.item)
	if p.NativeSetEvaluator(filter, args, ev, nil) == nil {
		t.Errorf("NativeSetEvaluator() got nil for an enabled level")
	}
}

func TestLevelDecomposition(t *testing.T) {
	tc := newTestCube(t)
	product := &mdx.HierarchyExpr{Hierarchy: tc.product}
	want := []string{"fruit", "apple", "daikon"}

	cases := []struct {
		disable  *olap.Level
		accepted []string
	}{
		{accepted: []string{"Category", "Item"}},
		{disable: tc.item, accepted: []string{"Category"}},
		{disable: tc.category, accepted: nil},
	}

	for _, c := range cases {
		p := loadProvider(t, tc)
		if c.disable != nil {
			p.DisableLevel(c.disable)
		}
		tr := &testReader{provider: p}

		e := call(t, "Filter", call(t, "Members", product),
			call(t, "KeyIn", product, str("fruit"), str("apple"), str("daikon")))
		cc, err := compile.New(nil, olap.IterableOnly).Compile(e)
		if err != nil {
			t.Fatalf("Compile(%s) failed with %s", e, err)
		}
		ev := evaluate.NewEvaluator(nil, tr, evaluate.DefaultSettings())
		it, err := cc.(calc.IterCalc).EvaluateIterable(ev)
		if err != nil {
			t.Fatalf("EvaluateIterable(%s) failed with %s", e, err)
		}
		if ks := keys(t, it); !equalKeys(ks, want) {
			t.Errorf("EvaluateIterable(%s) got %v want %v", e, ks, want)
		}
		if !equalKeys(tr.accepted, c.accepted) {
			t.Errorf("EvaluateIterable(%s) accepted %v want %v", e, tr.accepted, c.accepted)
		}
	}
}
