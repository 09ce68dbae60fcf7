package schema

import (
	"github.com/leftmike/cubist/evaluate"
	"github.com/leftmike/cubist/flags"
	"github.com/leftmike/cubist/native"
	"github.com/leftmike/cubist/olap"
)

// Reader gives evaluators access to a schema. Native evaluation is delegated to provider,
// which may be nil, when the native flag is set.
type Reader struct {
	schema   *Schema
	provider *native.Provider
}

func NewReader(s *Schema, provider *native.Provider) *Reader {
	return &Reader{
		schema:   s,
		provider: provider,
	}
}

func (r *Reader) Schema() *Schema {
	return r.schema
}

func (r *Reader) NativeSetEvaluator(fd olap.FunDef, args []olap.Exp, ev *evaluate.Evaluator,
	requester evaluate.Dependent) evaluate.NativeEvaluator {
	if r.provider == nil || !ev.Settings().Flags.GetFlag(flags.EnableNative) {
		return nil
	}
	return r.provider.NativeSetEvaluator(fd, args, ev, requester)
}

func (_ *Reader) Levels(h *olap.Hierarchy) []*olap.Level {
	return h.Levels()
}

func (_ *Reader) LevelMembers(lvl *olap.Level) []*olap.Member {
	return lvl.Members()
}

func (r *Reader) CalculatedMembers(h *olap.Hierarchy) []*olap.Member {
	return r.schema.CalculatedMembers(h)
}
