package evaluate

import (
	"github.com/leftmike/cubist/olap"
	"github.com/leftmike/cubist/tuple"
)

// Dependent is implemented by compiled calculators.
type Dependent interface {
	DependsOn(h *olap.Hierarchy) bool
}

// NativeEvaluator executes a function call outside of the evaluator; its result replaces
// local evaluation of the call.
type NativeEvaluator interface {
	Execute(style olap.ResultStyle) (tuple.Iterable, error)
}

type SchemaReader interface {
	// NativeSetEvaluator returns nil if fun applied to args can not be executed natively
	// in the context of ev.
	NativeSetEvaluator(fun olap.FunDef, args []olap.Exp, ev *Evaluator,
		requester Dependent) NativeEvaluator
	Levels(h *olap.Hierarchy) []*olap.Level
	LevelMembers(lvl *olap.Level) []*olap.Member
	CalculatedMembers(h *olap.Hierarchy) []*olap.Member
}
