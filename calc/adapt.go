package calc

import (
	"github.com/leftmike/cubist/evaluate"
	"github.com/leftmike/cubist/olap"
	"github.com/leftmike/cubist/tuple"
)

type listAsIter struct {
	Base
	lc ListCalc
}

// ListAsIter presents a list calc as an iterable calc.
func ListAsIter(lc ListCalc) IterCalc {
	return &listAsIter{
		Base: NewBase("ListAsIter", olap.Iterable, lc),
		lc:   lc,
	}
}

func (c *listAsIter) UsesHierarchy(h *olap.Hierarchy) bool {
	return c.lc.UsesHierarchy(h)
}

func (c *listAsIter) EvaluateIterable(ev *evaluate.Evaluator) (tuple.Iterable, error) {
	return c.lc.EvaluateList(ev)
}

type iterAsList struct {
	Base
	ic      IterCalc
	mutable bool
}

// IterAsList materializes the result of an iterable calc.
func IterAsList(ic IterCalc, mutable bool) ListCalc {
	style := olap.List
	if mutable {
		style = olap.MutableList
	}
	return &iterAsList{
		Base:    NewBase("IterAsList", style, ic),
		ic:      ic,
		mutable: mutable,
	}
}

func (c *iterAsList) UsesHierarchy(h *olap.Hierarchy) bool {
	return c.ic.UsesHierarchy(h)
}

func (c *iterAsList) EvaluateList(ev *evaluate.Evaluator) (tuple.List, error) {
	it, err := c.ic.EvaluateIterable(ev)
	if err != nil {
		return nil, err
	}
	l, err := tuple.Materialize(it)
	if err != nil {
		return nil, err
	}
	if c.mutable && !l.Mutable() {
		return l.CloneList(l.Size()), nil
	}
	return l, nil
}

type mutableCopy struct {
	Base
	lc ListCalc
}

// MutableCopy returns a calc which clones the result of lc when it is not mutable.
func MutableCopy(lc ListCalc) ListCalc {
	return &mutableCopy{
		Base: NewBase("MutableCopy", olap.MutableList, lc),
		lc:   lc,
	}
}

func (c *mutableCopy) UsesHierarchy(h *olap.Hierarchy) bool {
	return c.lc.UsesHierarchy(h)
}

func (c *mutableCopy) EvaluateList(ev *evaluate.Evaluator) (tuple.List, error) {
	l, err := c.lc.EvaluateList(ev)
	if err != nil {
		return nil, err
	}
	if l.Mutable() {
		return l, nil
	}
	return l.CloneList(l.Size()), nil
}

type immutableList struct {
	Base
	lc ListCalc
}

// ImmutableList presents a mutable list calc as a list calc; its result can not be changed.
func ImmutableList(lc ListCalc) ListCalc {
	return &immutableList{
		Base: NewBase("ImmutableList", olap.List, lc),
		lc:   lc,
	}
}

func (c *immutableList) UsesHierarchy(h *olap.Hierarchy) bool {
	return c.lc.UsesHierarchy(h)
}

func (c *immutableList) EvaluateList(ev *evaluate.Evaluator) (tuple.List, error) {
	l, err := c.lc.EvaluateList(ev)
	if err != nil {
		return nil, err
	}
	return tuple.Immutable(l), nil
}
