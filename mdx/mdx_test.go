package mdx_test

import (
	"errors"
	"testing"

	"github.com/leftmike/cubist/calc"
	"github.com/leftmike/cubist/mdx"
	"github.com/leftmike/cubist/olap"
)

type testFunDef struct {
	name string
	args int
}

func (fd testFunDef) Name() string {
	return fd.name
}

func (_ testFunDef) Description() string {
	return "Used for testing."
}

func (_ testFunDef) Syntax() mdx.Syntax {
	return mdx.FunctionSyntax
}

func (fd testFunDef) Result(args []mdx.Exp) (mdx.Type, error) {
	if len(args) != fd.args {
		return mdx.UnknownType, errors.New("wrong number of arguments")
	}
	return mdx.BooleanType, nil
}

func (_ testFunDef) CompileCall(call *mdx.Call, c mdx.Compiler) (calc.Calc, error) {
	return calc.ConstantBoolean(true), nil
}

func TestString(t *testing.T) {
	d := olap.NewDimension("Time")
	h := d.AddHierarchy("Fiscal", "All Periods")
	lvl := h.AddLevel("Year")
	m, err := lvl.AddMember("2020", "", nil)
	if err != nil {
		t.Fatalf("AddMember(2020) failed with %s", err)
	}

	cases := []struct {
		e   mdx.Exp
		s   string
		typ mdx.Type
	}{
		{e: &mdx.DimensionExpr{Dimension: d}, s: "[Time]", typ: mdx.DimensionType},
		{e: &mdx.HierarchyExpr{Hierarchy: h}, s: "[Time].[Fiscal]", typ: mdx.HierarchyType},
		{e: &mdx.LevelExpr{Level: lvl}, s: "[Time].[Fiscal].[Year]", typ: mdx.LevelType},
		{e: &mdx.MemberExpr{Member: m}, s: "[Time].[Fiscal].[2020]", typ: mdx.MemberType},
		{e: &mdx.Literal{Value: true}, s: "TRUE", typ: mdx.BooleanType},
		{e: &mdx.Literal{Value: int64(-12)}, s: "-12", typ: mdx.NumericType},
		{e: &mdx.Literal{Value: 1.5}, s: "1.5", typ: mdx.NumericType},
		{e: &mdx.Literal{Value: "it's"}, s: "'it''s'", typ: mdx.StringType},
		{
			e: &mdx.Call{
				Name:   "Filter",
				Args:   []mdx.Exp{&mdx.LevelExpr{Level: lvl}, &mdx.Literal{Value: false}},
				Result: mdx.SetType,
			},
			s:   "Filter([Time].[Fiscal].[Year], FALSE)",
			typ: mdx.SetType,
		},
		{
			e: &mdx.Call{
				Name:   "Members",
				Args:   []mdx.Exp{&mdx.LevelExpr{Level: lvl}},
				Syntax: mdx.PropertySyntax,
				Result: mdx.SetType,
			},
			s:   "[Time].[Fiscal].[Year].Members",
			typ: mdx.SetType,
		},
		{
			e: &mdx.Call{
				Name:   "{}",
				Args:   []mdx.Exp{&mdx.MemberExpr{Member: m}, &mdx.MemberExpr{Member: m}},
				Syntax: mdx.BracesSyntax,
				Result: mdx.SetType,
			},
			s:   "{[Time].[Fiscal].[2020], [Time].[Fiscal].[2020]}",
			typ: mdx.SetType,
		},
		{
			e: &mdx.Call{
				Name:   "()",
				Args:   []mdx.Exp{&mdx.Literal{Value: int64(1)}},
				Syntax: mdx.ParenthesesSyntax,
				Result: mdx.NumericType,
			},
			s:   "(1)",
			typ: mdx.NumericType,
		},
	}

	for _, c := range cases {
		if c.e.String() != c.s {
			t.Errorf("String() got %s want %s", c.e.String(), c.s)
		}
		if c.e.Type() != c.typ {
			t.Errorf("%s.Type() got %s want %s", c.s, c.e.Type(), c.typ)
		}
	}

	if mdx.Type(99).String() != "Type(99)" {
		t.Errorf("Type(99).String() got %s", mdx.Type(99))
	}
}

func TestRegistry(t *testing.T) {
	fd := testFunDef{name: "RegistryTest", args: 1}
	mdx.Register(fd)

	func() {
		defer func() {
			if recover() == nil {
				t.Errorf("Register(registrytest) twice did not panic")
			}
		}()
		mdx.Register(testFunDef{name: "registrytest"})
	}()

	if lfd, ok := mdx.Lookup("REGISTRYTEST"); !ok || lfd.Name() != "RegistryTest" {
		t.Errorf("Lookup(REGISTRYTEST) got %v, %v", lfd, ok)
	}
	if _, ok := mdx.Lookup("NotRegistered"); ok {
		t.Errorf("Lookup(NotRegistered) did not fail")
	}

	var found bool
	for _, f := range mdx.Functions() {
		if f.Name() == "RegistryTest" {
			found = true
		}
	}
	if !found {
		t.Errorf("Functions() did not include RegistryTest")
	}

	v := mdx.DefaultValidator()
	arg := &mdx.Literal{Value: true}
	call, err := mdx.NewCall(v, "registryTest", mdx.FunctionSyntax, arg)
	if err != nil {
		t.Fatalf("NewCall(registryTest) failed with %s", err)
	}
	if call.Name != "RegistryTest" || call.Result != mdx.BooleanType || call.Fun == nil {
		t.Errorf("NewCall(registryTest) got %s %s", call.Name, call.Result)
	}
	if c, ok := mdx.IsCall(call, "REGISTRYTEST"); !ok || c != call {
		t.Errorf("IsCall(%s, REGISTRYTEST) got %v", call, ok)
	}
	if _, ok := mdx.IsCall(call, "Filter"); ok {
		t.Errorf("IsCall(%s, Filter) got true", call)
	}
	if _, ok := mdx.IsCall(arg, "RegistryTest"); ok {
		t.Errorf("IsCall(%s, RegistryTest) got true", arg)
	}

	_, err = mdx.NewCall(v, "RegistryTest", mdx.FunctionSyntax)
	if err == nil {
		t.Errorf("NewCall(RegistryTest) with no arguments did not fail")
	}
	_, err = mdx.NewCall(v, "NotRegistered", mdx.FunctionSyntax)
	if err == nil {
		t.Errorf("NewCall(NotRegistered) did not fail")
	}
}
