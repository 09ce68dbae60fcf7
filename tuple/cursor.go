package tuple

import (
	"github.com/leftmike/cubist/olap"
)

// ContextSetter is the part of an evaluator which a cursor needs to bind its current tuple
// into the evaluation context.
type ContextSetter interface {
	SetContext(m *olap.Member)
}

// Cursor walks forward over tuples. Current, Member, and SetContext are only valid after
// Forward has returned true. When Forward returns false, Err reports whether the walk ended
// because of an error rather than exhaustion. A cursor must not be shared between walks.
type Cursor interface {
	Arity() int
	Forward() bool
	Err() error
	Current() olap.Tuple
	Member(col int) *olap.Member
	SetContext(cs ContextSetter)
}

// Iterable produces cursors; it does not promise that more than one walk is possible and it
// does not know its size.
type Iterable interface {
	Arity() int
	Cursor() Cursor
}

type iterable struct {
	arity  int
	cursor func() Cursor
}

// NewIterable returns an Iterable which calls cursor each time a new walk is started.
func NewIterable(arity int, cursor func() Cursor) Iterable {
	return iterable{
		arity:  arity,
		cursor: cursor,
	}
}

func (it iterable) Arity() int {
	return it.arity
}

func (it iterable) Cursor() Cursor {
	return it.cursor()
}

// CursorFunc adapts a forward function into a Cursor. Forward returns the next tuple, or
// false when there are no more; the returned tuple is not copied.
type CursorFunc struct {
	arity   int
	forward func() (olap.Tuple, bool, error)
	current olap.Tuple
	err     error
}

func NewCursorFunc(arity int, forward func() (olap.Tuple, bool, error)) *CursorFunc {
	return &CursorFunc{
		arity:   arity,
		forward: forward,
	}
}

func (cf *CursorFunc) Arity() int {
	return cf.arity
}

func (cf *CursorFunc) Forward() bool {
	if cf.err != nil || cf.forward == nil {
		return false
	}
	t, ok, err := cf.forward()
	if err != nil {
		cf.err = err
		cf.forward = nil
		return false
	}
	if !ok {
		cf.forward = nil
		return false
	}
	cf.current = t
	return true
}

func (cf *CursorFunc) Err() error {
	return cf.err
}

func (cf *CursorFunc) Current() olap.Tuple {
	return cf.current
}

func (cf *CursorFunc) Member(col int) *olap.Member {
	return cf.current[col]
}

func (cf *CursorFunc) SetContext(cs ContextSetter) {
	for _, m := range cf.current {
		cs.SetContext(m)
	}
}

// Members collects the members at column col of every tuple produced by it.
func Members(it Iterable, col int) ([]*olap.Member, error) {
	if l, ok := it.(List); ok {
		return l.Slice(col).Members(), nil
	}

	var members []*olap.Member
	cr := it.Cursor()
	for cr.Forward() {
		members = append(members, cr.Member(col))
	}
	if err := cr.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

// Materialize returns it as a List, walking it once if it is not already one.
func Materialize(it Iterable) (List, error) {
	if l, ok := it.(List); ok {
		return l, nil
	}

	l := CreateList(it.Arity(), 0)
	cr := it.Cursor()
	for cr.Forward() {
		l.AddCurrent(cr)
	}
	if err := cr.Err(); err != nil {
		return nil, err
	}
	return l, nil
}
