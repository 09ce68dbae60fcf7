package evaluate

import (
	"context"
	"fmt"

	"github.com/leftmike/cubist/flags"
	"github.com/leftmike/cubist/olap"
)

type root struct {
	exec             *Execution
	ownsExec         bool
	canceller        Canceller
	reader           SchemaReader
	settings         Settings
	timing           *Timing
	nativeExpansions map[olap.Exp]struct{}
}

type commandKind int

const (
	setMemberCommand commandKind = iota
	setNonEmptyCommand
)

// command records how to undo one change to the context.
type command struct {
	kind     commandKind
	h        *olap.Hierarchy
	m        *olap.Member
	nonEmpty bool
}

// Savepoint marks the state of an evaluator; see Evaluator.Savepoint.
type Savepoint int

// Evaluator holds the current member of each hierarchy and the non-empty flag while a query
// is evaluated. It belongs to one execution and must not be shared between goroutines.
type Evaluator struct {
	root     *root
	depth    int
	current  map[*olap.Hierarchy]*olap.Member
	nonEmpty bool
	commands []command
}

// NewEvaluator returns the root evaluator of exec; if exec is nil, a new execution is
// started using the query timeout of settings, and the caller must call Close to release it.
func NewEvaluator(exec *Execution, reader SchemaReader, settings Settings) *Evaluator {
	var ownsExec bool
	if exec == nil {
		exec = NewExecution(context.Background(), settings.QueryTimeout)
		ownsExec = true
	}
	if settings.Flags == nil {
		settings.Flags = flags.Default()
	}
	return &Evaluator{
		root: &root{
			exec:             exec,
			ownsExec:         ownsExec,
			canceller:        exec,
			reader:           reader,
			settings:         settings,
			timing:           NewTiming(),
			nativeExpansions: map[olap.Exp]struct{}{},
		},
		current: map[*olap.Hierarchy]*olap.Member{},
	}
}

// Close cancels the execution of ev if NewEvaluator started it; an execution passed to
// NewEvaluator belongs to the caller and is left alone.
func (ev *Evaluator) Close() {
	if ev.root.ownsExec {
		ev.root.exec.Cancel()
	}
}

// SetCanceller replaces what the cancellation checkers of this evaluator, and of every
// evaluator pushed from it, poll.
func (ev *Evaluator) SetCanceller(c Canceller) {
	ev.root.canceller = c
}

func (ev *Evaluator) Execution() *Execution {
	return ev.root.exec
}

func (ev *Evaluator) SchemaReader() SchemaReader {
	return ev.root.reader
}

func (ev *Evaluator) Settings() Settings {
	return ev.root.settings
}

func (ev *Evaluator) Timing() *Timing {
	return ev.root.timing
}

func (ev *Evaluator) CancellationChecker() CancellationChecker {
	return NewCancellationChecker(ev.root.canceller, ev.root.settings.CheckCancelInterval)
}

// Depth is zero for the root evaluator and one more than its parent for a pushed evaluator.
func (ev *Evaluator) Depth() int {
	return ev.depth
}

// Savepoint returns a marker for the current state; Restore with the marker undoes every
// change made since. Savepoints must be restored in LIFO order:
//
//	sp := ev.Savepoint()
//	defer ev.Restore(sp)
func (ev *Evaluator) Savepoint() Savepoint {
	return Savepoint(len(ev.commands))
}

func (ev *Evaluator) Restore(sp Savepoint) {
	if int(sp) > len(ev.commands) {
		panic(fmt.Sprintf("evaluate: restore of savepoint %d past %d changes", sp,
			len(ev.commands)))
	}
	for len(ev.commands) > int(sp) {
		cmd := ev.commands[len(ev.commands)-1]
		ev.commands = ev.commands[:len(ev.commands)-1]
		switch cmd.kind {
		case setMemberCommand:
			if cmd.m == nil {
				delete(ev.current, cmd.h)
			} else {
				ev.current[cmd.h] = cmd.m
			}
		case setNonEmptyCommand:
			ev.nonEmpty = cmd.nonEmpty
		default:
			panic(fmt.Sprintf("evaluate: unexpected command: %d", cmd.kind))
		}
	}
}

// Push returns a child evaluator which starts with the same context; changes to the child
// are not seen by ev.
func (ev *Evaluator) Push() *Evaluator {
	current := make(map[*olap.Hierarchy]*olap.Member, len(ev.current))
	for h, m := range ev.current {
		current[h] = m
	}
	return &Evaluator{
		root:     ev.root,
		depth:    ev.depth + 1,
		current:  current,
		nonEmpty: ev.nonEmpty,
	}
}

// SetContext makes m the current member of its hierarchy.
func (ev *Evaluator) SetContext(m *olap.Member) {
	h := m.Hierarchy()
	ev.commands = append(ev.commands,
		command{kind: setMemberCommand, h: h, m: ev.current[h]})
	ev.current[h] = m
}

func (ev *Evaluator) SetTuple(t olap.Tuple) {
	for _, m := range t {
		ev.SetContext(m)
	}
}

// Context returns the current member of h, which is its default member if none has been
// set.
func (ev *Evaluator) Context(h *olap.Hierarchy) *olap.Member {
	if m, ok := ev.current[h]; ok {
		return m
	}
	return h.DefaultMember()
}

// ContextMembers returns the members which have been set; hierarchies at their default
// member are not included.
func (ev *Evaluator) ContextMembers() map[*olap.Hierarchy]*olap.Member {
	current := make(map[*olap.Hierarchy]*olap.Member, len(ev.current))
	for h, m := range ev.current {
		current[h] = m
	}
	return current
}

func (ev *Evaluator) NonEmpty() bool {
	return ev.nonEmpty
}

func (ev *Evaluator) SetNonEmpty(nonEmpty bool) {
	ev.commands = append(ev.commands,
		command{kind: setNonEmptyCommand, nonEmpty: ev.nonEmpty})
	ev.nonEmpty = nonEmpty
}

// CheckResultLimit fails with a *olap.LimitError if size is more than the result limit.
func (ev *Evaluator) CheckResultLimit(size int) error {
	limit := ev.root.settings.ResultLimit
	if limit > 0 && size > limit {
		return &olap.LimitError{Size: size, Limit: limit}
	}
	return nil
}

// AddNativeExpansion marks e as being expanded for a native evaluator; it returns false,
// and does not mark e, if e is already being expanded.
func (ev *Evaluator) AddNativeExpansion(e olap.Exp) bool {
	if _, ok := ev.root.nativeExpansions[e]; ok {
		return false
	}
	ev.root.nativeExpansions[e] = struct{}{}
	return true
}

func (ev *Evaluator) RemoveNativeExpansion(e olap.Exp) {
	delete(ev.root.nativeExpansions, e)
}

func (ev *Evaluator) ActiveNativeExpansions() int {
	return len(ev.root.nativeExpansions)
}
