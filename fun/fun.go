// Package fun defines the functions which may be called in expressions. Importing the
// package registers them with package mdx.
package fun

import (
	"fmt"

	"github.com/leftmike/cubist/evaluate"
	"github.com/leftmike/cubist/mdx"
	"github.com/leftmike/cubist/olap"
)

type funBase struct {
	name        string
	description string
	syntax      mdx.Syntax
}

func (fb funBase) Name() string {
	return fb.name
}

func (fb funBase) Description() string {
	return fb.description
}

func (fb funBase) Syntax() mdx.Syntax {
	return fb.syntax
}

func (fb funBase) argCount(args []mdx.Exp, min, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		return fmt.Errorf("fun: %s: wrong number of arguments: %d", fb.name, len(args))
	}
	return nil
}

func (fb funBase) argType(args []mdx.Exp, idx int, types ...mdx.Type) error {
	typ := args[idx].Type()
	for _, t := range types {
		if typ == t {
			return nil
		}
	}
	return fmt.Errorf("fun: %s: argument %d: unexpected %s: %s", fb.name, idx+1, typ,
		args[idx])
}

func init() {
	for _, fd := range []mdx.FunDef{
		aggregateFunDef,
		allMembersFunDef,
		andFunDef,
		asFunDef,
		cacheFunDef,
		currentMembersFunDef,
		existingFunDef,
		filterFunDef,
		hierarchizeFunDef,
		isCalculatedFunDef,
		keyInFunDef,
		membersFunDef,
		notFunDef,
		orFunDef,
		setFunDef,
		startsWithFunDef,
	} {
		mdx.Register(fd)
	}
}

// singleHierarchy returns the hierarchy of a hierarchy expression or of a dimension
// expression with exactly one hierarchy.
func singleHierarchy(e mdx.Exp) (*olap.Hierarchy, bool) {
	switch e := e.(type) {
	case *mdx.HierarchyExpr:
		return e.Hierarchy, true
	case *mdx.DimensionExpr:
		if hs := e.Dimension.Hierarchies(); len(hs) == 1 {
			return hs[0], true
		}
	}
	return nil, false
}

func levels(ev *evaluate.Evaluator, h *olap.Hierarchy) []*olap.Level {
	if sr := ev.SchemaReader(); sr != nil {
		return sr.Levels(h)
	}
	return h.Levels()
}

func levelMembers(ev *evaluate.Evaluator, lvl *olap.Level) []*olap.Member {
	if sr := ev.SchemaReader(); sr != nil {
		return sr.LevelMembers(lvl)
	}
	return lvl.Members()
}

func calculatedMembers(ev *evaluate.Evaluator, h *olap.Hierarchy) []*olap.Member {
	if sr := ev.SchemaReader(); sr != nil {
		return sr.CalculatedMembers(h)
	}
	return nil
}
