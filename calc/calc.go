// Package calc defines compiled expressions. A calc is built once, when an expression is
// compiled, and then evaluated any number of times against an evaluator.
package calc

import (
	"github.com/leftmike/cubist/evaluate"
	"github.com/leftmike/cubist/olap"
	"github.com/leftmike/cubist/tuple"
)

type Calc interface {
	ResultStyle() olap.ResultStyle
	// DependsOn returns true if the result may change when the current member of h
	// changes; it must return true unless independence can be shown.
	DependsOn(h *olap.Hierarchy) bool
	// UsesHierarchy returns true if the calc sets the current member of h itself, and so
	// does not depend on the member of h in the context.
	UsesHierarchy(h *olap.Hierarchy) bool
	Calcs() []Calc
	Name() string
	CollectArguments(args map[string]interface{})
}

type ListCalc interface {
	Calc
	EvaluateList(ev *evaluate.Evaluator) (tuple.List, error)
}

type IterCalc interface {
	Calc
	EvaluateIterable(ev *evaluate.Evaluator) (tuple.Iterable, error)
}

type BooleanCalc interface {
	Calc
	EvaluateBoolean(ev *evaluate.Evaluator) (bool, error)
}

type HierarchyCalc interface {
	Calc
	EvaluateHierarchy(ev *evaluate.Evaluator) (*olap.Hierarchy, error)
}

type MemberCalc interface {
	Calc
	EvaluateMember(ev *evaluate.Evaluator) (*olap.Member, error)
}

// Base is embedded by calcs to get the common methods.
type Base struct {
	name  string
	style olap.ResultStyle
	calcs []Calc
}

func NewBase(name string, style olap.ResultStyle, calcs ...Calc) Base {
	return Base{
		name:  name,
		style: style,
		calcs: calcs,
	}
}

func (b *Base) Name() string {
	return b.name
}

func (b *Base) ResultStyle() olap.ResultStyle {
	return b.style
}

func (b *Base) Calcs() []Calc {
	return b.calcs
}

func (b *Base) DependsOn(h *olap.Hierarchy) bool {
	return AnyDepends(b.calcs, h)
}

func (_ *Base) UsesHierarchy(h *olap.Hierarchy) bool {
	return false
}

func (_ *Base) CollectArguments(args map[string]interface{}) {}

// AnyDepends returns true if any of calcs depends on h.
func AnyDepends(calcs []Calc, h *olap.Hierarchy) bool {
	for _, c := range calcs {
		if c != nil && c.DependsOn(h) {
			return true
		}
	}
	return false
}

// AnyDependsButFirst is for calcs whose first argument is a set which is iterated, setting
// the context for the remaining arguments: if the set depends on h, so does the calc; if the
// set sets h itself, the calc does not depend on h; otherwise the calc depends on h if any
// of the remaining arguments do.
func AnyDependsButFirst(calcs []Calc, h *olap.Hierarchy) bool {
	if len(calcs) == 0 {
		return false
	}
	if calcs[0].DependsOn(h) {
		return true
	}
	if calcs[0].UsesHierarchy(h) {
		return false
	}
	return AnyDepends(calcs[1:], h)
}
