package calc

import (
	"github.com/leftmike/cubist/evaluate"
	"github.com/leftmike/cubist/olap"
)

type constantBoolean struct {
	Base
	b bool
}

func ConstantBoolean(b bool) BooleanCalc {
	return &constantBoolean{
		Base: NewBase("Literal", olap.Value),
		b:    b,
	}
}

func (c *constantBoolean) EvaluateBoolean(ev *evaluate.Evaluator) (bool, error) {
	return c.b, nil
}

func (c *constantBoolean) CollectArguments(args map[string]interface{}) {
	args["value"] = c.b
}

type constantHierarchy struct {
	Base
	h *olap.Hierarchy
}

func ConstantHierarchy(h *olap.Hierarchy) HierarchyCalc {
	return &constantHierarchy{
		Base: NewBase("Hierarchy", olap.Value),
		h:    h,
	}
}

func (c *constantHierarchy) EvaluateHierarchy(ev *evaluate.Evaluator) (*olap.Hierarchy,
	error) {
	return c.h, nil
}

func (c *constantHierarchy) CollectArguments(args map[string]interface{}) {
	args["hierarchy"] = c.h
}

type constantMember struct {
	Base
	m *olap.Member
}

func ConstantMember(m *olap.Member) MemberCalc {
	return &constantMember{
		Base: NewBase("Member", olap.Value),
		m:    m,
	}
}

func (c *constantMember) EvaluateMember(ev *evaluate.Evaluator) (*olap.Member, error) {
	return c.m, nil
}

func (c *constantMember) CollectArguments(args map[string]interface{}) {
	args["member"] = c.m
}
