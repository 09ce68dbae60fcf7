package fun

import (
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/leftmike/cubist/calc"
	"github.com/leftmike/cubist/concat"
	"github.com/leftmike/cubist/evaluate"
	"github.com/leftmike/cubist/flags"
	"github.com/leftmike/cubist/mdx"
	"github.com/leftmike/cubist/metrics"
	"github.com/leftmike/cubist/olap"
	"github.com/leftmike/cubist/tuple"
)

const (
	filterTiming = "Filter"
)

type filterFun struct {
	funBase
}

var filterFunDef = &filterFun{
	funBase{
		name:        "Filter",
		description: "Returns the set resulting from filtering a set based on a search condition.",
		syntax:      mdx.FunctionSyntax,
	},
}

func (ff *filterFun) Result(args []mdx.Exp) (mdx.Type, error) {
	if err := ff.argCount(args, 2, 2); err != nil {
		return mdx.UnknownType, err
	}
	if err := ff.argType(args, 0, mdx.SetType, mdx.MemberType); err != nil {
		return mdx.UnknownType, err
	}
	if err := ff.argType(args, 1, mdx.BooleanType); err != nil {
		return mdx.UnknownType, err
	}
	return mdx.SetType, nil
}

func (ff *filterFun) CompileCall(call *mdx.Call, c mdx.Compiler) (calc.Calc, error) {
	styles := c.AcceptableResultStyles()
	if _, ok := mdx.IsCall(call.Args[0], "AS"); ok {
		styles = olap.IterableOnly
	}

	if olap.ContainsStyle(styles, olap.Iterable) || olap.ContainsStyle(styles, olap.Any) {
		return ff.compileIterable(call, c)
	} else if olap.ContainsStyle(styles, olap.List) ||
		olap.ContainsStyle(styles, olap.MutableList) {
		return ff.compileList(call, c)
	}
	return nil, &olap.ResultStyleError{Wanted: styles, Got: olap.IterableListMutableListAny}
}

type sourceKind int

const (
	iterableSource sourceKind = iota
	listSource
	mutableListSource
)

// source is the compiled set being filtered; which kind it is is decided when the call is
// compiled.
type source struct {
	kind sourceKind
	cc   calc.Calc
	iter calc.IterCalc
	list calc.ListCalc
}

func newSource(cc calc.Calc) (source, error) {
	src := source{cc: cc}
	var ok bool
	switch cc.ResultStyle() {
	case olap.Iterable:
		src.kind = iterableSource
		src.iter, ok = cc.(calc.IterCalc)
	case olap.List:
		src.kind = listSource
		src.list, ok = cc.(calc.ListCalc)
	case olap.MutableList:
		src.kind = mutableListSource
		src.list, ok = cc.(calc.ListCalc)
	}
	if !ok {
		return source{}, &olap.ResultStyleError{
			Wanted: olap.IterableMutableListList,
			Got:    []olap.ResultStyle{cc.ResultStyle()},
		}
	}
	return src, nil
}

// filter returns the tuples of the source for which pred is true. An iterable source is
// filtered lazily; a list source is filtered completely before filter returns.
func (src source) filter(ev *evaluate.Evaluator, pred calc.BooleanCalc) (tuple.Iterable,
	error) {
	switch src.kind {
	case iterableSource:
		it, err := src.iter.EvaluateIterable(ev)
		if err != nil {
			return nil, err
		}
		return filterIterable(ev, it, pred), nil
	case listSource, mutableListSource:
		l, err := src.list.EvaluateList(ev)
		if err != nil {
			return nil, err
		}
		return filterList(ev, l, pred)
	}
	panic("unexpected source kind")
}

type filterCalc struct {
	calc.Base
	call     *mdx.Call
	src      source
	pred     calc.BooleanCalc
	existing bool
	compiler mdx.Compiler
}

func newFilterCalc(name string, style olap.ResultStyle, call *mdx.Call, src source,
	pred calc.BooleanCalc, c mdx.Compiler) filterCalc {
	_, existing := mdx.IsCall(call.Args[0], "Existing")
	log.WithFields(log.Fields{
		"function": "Filter",
		"strategy": name,
		"style":    style,
	}).Debug("filter: compiled")
	return filterCalc{
		Base:     calc.NewBase(name, style, src.cc, pred),
		call:     call,
		src:      src,
		pred:     pred,
		existing: existing,
		compiler: c,
	}
}

// DependsOn is true for every hierarchy when the source is an Existing set: a native
// evaluator would replace the context.
func (fc *filterCalc) DependsOn(h *olap.Hierarchy) bool {
	if fc.existing {
		return true
	}
	return calc.AnyDependsButFirst(fc.Calcs(), h)
}

func (fc *filterCalc) CollectArguments(args map[string]interface{}) {
	if fc.existing {
		args["existing"] = true
	}
}

func (fc *filterCalc) nativeEvaluator(ev *evaluate.Evaluator,
	args []mdx.Exp) evaluate.NativeEvaluator {
	sr := ev.SchemaReader()
	if sr == nil {
		return nil
	}
	oargs := make([]olap.Exp, len(args))
	for i, a := range args {
		oargs[i] = a
	}
	return sr.NativeSetEvaluator(fc.call.Fun, oargs, ev, fc)
}

func (ff *filterFun) compileIterable(call *mdx.Call, c mdx.Compiler) (calc.Calc, error) {
	cc, err := c.CompileAs(call.Args[0], olap.IterableMutableListList)
	if err != nil {
		return nil, err
	}
	pred, err := c.CompileBoolean(call.Args[1])
	if err != nil {
		return nil, err
	}
	src, err := newSource(cc)
	if err != nil {
		return nil, err
	}

	var name string
	switch src.kind {
	case iterableSource:
		name = "IterIterFilter"
	case listSource:
		name = "ImmutableIterFilter"
	case mutableListSource:
		name = "MutableIterFilter"
	}
	return &filterIterCalc{
		filterCalc: newFilterCalc(name, olap.Iterable, call, src, pred, c),
	}, nil
}

func (ff *filterFun) compileList(call *mdx.Call, c mdx.Compiler) (calc.Calc, error) {
	lc, err := c.CompileAs(call.Args[0], olap.MutableListList)
	if err != nil {
		return nil, err
	}
	pred, err := c.CompileBoolean(call.Args[1])
	if err != nil {
		return nil, err
	}
	src, err := newSource(lc)
	if err != nil {
		return nil, err
	}

	var name string
	switch src.kind {
	case listSource:
		name = "ImmutableListFilter"
	case mutableListSource:
		name = "MutableListFilter"
	default:
		return nil, &olap.ResultStyleError{
			Wanted: olap.MutableListList,
			Got:    []olap.ResultStyle{lc.ResultStyle()},
		}
	}
	return &filterListCalc{
		filterCalc: newFilterCalc(name, olap.MutableList, call, src, pred, c),
	}, nil
}

type filterIterCalc struct {
	filterCalc
}

func (fic *filterIterCalc) EvaluateIterable(ev *evaluate.Evaluator) (tuple.Iterable, error) {
	tm := ev.Timing()
	tm.MarkStart(filterTiming)
	defer tm.MarkEnd(filterTiming)

	if ne := fic.nativeEvaluator(ev, fic.call.Args); ne != nil {
		metrics.Evaluations.WithLabelValues(filterTiming, metrics.OutcomeNative).Inc()
		return ne.Execute(olap.Iterable)
	}

	it, ok, err := fic.evaluateLevels(ev)
	if err != nil {
		return nil, err
	} else if ok {
		metrics.Evaluations.WithLabelValues(filterTiming, metrics.OutcomeDecomposed).Inc()
		return it, nil
	}

	metrics.Evaluations.WithLabelValues(filterTiming, metrics.OutcomeLocal).Inc()
	return fic.src.filter(ev, fic.pred)
}

var levelMembersFuns = map[string]bool{
	"members":    true,
	"allmembers": true,
}

// evaluateLevels filters the members of a hierarchy one level at a time, pushing the filter
// of each level below the root down to a native evaluator; the results are put back into
// hierarchical order. If the source is not the members of a single hierarchy, or if any
// level can not be filtered natively, evaluateLevels returns false.
func (fic *filterIterCalc) evaluateLevels(ev *evaluate.Evaluator) (tuple.Iterable, bool,
	error) {
	if !ev.Settings().Flags.GetFlag(flags.EnableNativeFilter) {
		return nil, false, nil
	}

	arg0, ok := fic.call.Args[0].(*mdx.Call)
	if !ok || len(arg0.Args) != 1 || !levelMembersFuns[strings.ToLower(arg0.Name)] {
		return nil, false, nil
	}
	h, ok := singleHierarchy(arg0.Args[0])
	if !ok {
		return nil, false, nil
	}

	members := concat.New[*olap.Member]()
	for _, lvl := range levels(ev, h) {
		lms, ok, err := fic.evaluateLevel(ev, lvl, arg0.Name)
		if err != nil {
			return nil, false, err
		} else if !ok {
			log.WithFields(log.Fields{
				"execution": ev.Execution().ID(),
				"function":  "Filter",
				"level":     lvl.UniqueName(),
			}).Debug("filter: level can not be filtered natively")
			return nil, false, nil
		}
		members.AddAll(lms)
		if err := ev.CheckResultLimit(members.Size()); err != nil {
			return nil, false, err
		}
	}
	return tuple.Hierarchize(tuple.Unary(members.Slice()), false), true, nil
}

// evaluateLevel filters the members of one level. The all level is always filtered locally;
// any other level must be filtered by a native evaluator, as Members of the level. For
// AllMembers, the calculated members of the level are then filtered locally.
func (fic *filterIterCalc) evaluateLevel(ev *evaluate.Evaluator, lvl *olap.Level,
	funName string) ([]*olap.Member, bool, error) {
	sp := ev.Savepoint()
	defer ev.Restore(sp)

	if lvl.IsAll() {
		levelCall, err := mdx.NewCall(fic.compiler.Validator(), funName, mdx.PropertySyntax,
			&mdx.LevelExpr{Level: lvl})
		if err != nil {
			return nil, false, err
		}
		cc, err := fic.compiler.CompileAs(levelCall, olap.IterableMutableListList)
		if err != nil {
			return nil, false, err
		}
		src, err := newSource(cc)
		if err != nil {
			return nil, false, err
		}
		it, err := src.filter(ev, fic.pred)
		if err != nil {
			return nil, false, err
		}
		lms, err := tuple.Members(it, 0)
		if err != nil {
			return nil, false, err
		}
		return lms, true, nil
	}

	levelCall, err := mdx.NewCall(fic.compiler.Validator(), membersFunDef.Name(),
		mdx.PropertySyntax, &mdx.LevelExpr{Level: lvl})
	if err != nil {
		return nil, false, err
	}
	args := append([]mdx.Exp{levelCall}, fic.call.Args[1:]...)
	ne := fic.nativeEvaluator(ev, args)
	if ne == nil {
		return nil, false, nil
	}
	it, err := ne.Execute(olap.Iterable)
	if err != nil {
		return nil, false, err
	}
	lms, err := tuple.Members(it, 0)
	if err != nil {
		return nil, false, err
	}

	if strings.EqualFold(funName, allMembersFunDef.Name()) {
		var cms []*olap.Member
		for _, m := range calculatedMembers(ev, lvl.Hierarchy()) {
			if m.Level() == lvl {
				cms = append(cms, m)
			}
		}
		if len(cms) > 0 {
			l, err := filterList(ev, tuple.Unary(cms), fic.pred)
			if err != nil {
				return nil, false, err
			}
			lms = append(lms, l.Slice(0).Members()...)
		}
	}
	return lms, true, nil
}

type filterListCalc struct {
	filterCalc
}

func (flc *filterListCalc) EvaluateList(ev *evaluate.Evaluator) (tuple.List, error) {
	tm := ev.Timing()
	tm.MarkStart(filterTiming)
	defer tm.MarkEnd(filterTiming)

	if ne := flc.nativeEvaluator(ev, flc.call.Args); ne != nil {
		metrics.Evaluations.WithLabelValues(filterTiming, metrics.OutcomeNative).Inc()
		it, err := ne.Execute(flc.ResultStyle())
		if err != nil {
			return nil, err
		}
		return tuple.Materialize(it)
	}

	metrics.Evaluations.WithLabelValues(filterTiming, metrics.OutcomeLocal).Inc()
	l, err := flc.src.list.EvaluateList(ev)
	if err != nil {
		return nil, err
	}
	return filterList(ev, l, flc.pred)
}

func predicateError(t olap.Tuple, err error) error {
	var pe *olap.PredicateError
	if olap.IsCancelled(err) || olap.IsLimit(err) || errors.As(err, &pe) {
		return err
	}
	return &olap.PredicateError{Tuple: t, Err: err}
}

// filterList walks l with the non-empty flag off, binding each tuple into the context, and
// returns a new list of the tuples for which pred is true. The context is restored however
// filterList returns.
func filterList(ev *evaluate.Evaluator, l tuple.List, pred calc.BooleanCalc) (tuple.MutableList,
	error) {
	sp := ev.Savepoint()
	defer ev.Restore(sp)

	ev.SetNonEmpty(false)
	result := tuple.CreateList(l.Arity(), l.Size()/2)
	checker := ev.CancellationChecker()
	cr := l.Cursor()
	for iteration := 0; cr.Forward(); iteration += 1 {
		if err := checker.Check(iteration); err != nil {
			return nil, err
		}
		cr.SetContext(ev)
		b, err := pred.EvaluateBoolean(ev)
		if err != nil {
			return nil, predicateError(cr.Current(), err)
		}
		if b {
			result.AddCurrent(cr)
		}
	}
	if err := cr.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// filterIterable returns an iterable whose cursors pull tuples from it as they are needed.
// The predicate is evaluated in a child of ev, so later changes to ev are not seen and
// evaluating the predicate does not change ev.
func filterIterable(ev *evaluate.Evaluator, it tuple.Iterable,
	pred calc.BooleanCalc) tuple.Iterable {
	child := ev.Push()
	child.SetNonEmpty(false)
	return tuple.NewIterable(it.Arity(),
		func() tuple.Cursor {
			cev := child.Push()
			return &filterCursor{
				cursor:  it.Cursor(),
				ev:      cev,
				sp:      cev.Savepoint(),
				pred:    pred,
				checker: cev.CancellationChecker(),
			}
		})
}

type filterCursor struct {
	cursor    tuple.Cursor
	ev        *evaluate.Evaluator
	sp        evaluate.Savepoint
	pred      calc.BooleanCalc
	checker   evaluate.CancellationChecker
	iteration int
	err       error
}

func (fc *filterCursor) Arity() int {
	return fc.cursor.Arity()
}

func (fc *filterCursor) Forward() bool {
	if fc.err != nil {
		return false
	}

	defer fc.ev.Restore(fc.sp)
	for fc.cursor.Forward() {
		fc.ev.Restore(fc.sp)
		if err := fc.checker.Check(fc.iteration); err != nil {
			fc.err = err
			return false
		}
		fc.iteration += 1
		fc.cursor.SetContext(fc.ev)
		b, err := fc.pred.EvaluateBoolean(fc.ev)
		if err != nil {
			fc.err = predicateError(fc.cursor.Current(), err)
			return false
		}
		if b {
			return true
		}
	}
	fc.err = fc.cursor.Err()
	return false
}

func (fc *filterCursor) Err() error {
	return fc.err
}

func (fc *filterCursor) Current() olap.Tuple {
	return fc.cursor.Current()
}

func (fc *filterCursor) Member(col int) *olap.Member {
	return fc.cursor.Member(col)
}

func (fc *filterCursor) SetContext(cs tuple.ContextSetter) {
	fc.cursor.SetContext(cs)
}
