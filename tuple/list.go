package tuple

import (
	"fmt"

	"github.com/leftmike/cubist/olap"
)

// List is a finite, indexable sequence of tuples which all have the same arity.
type List interface {
	Iterable
	Size() int
	Tuple(idx int) olap.Tuple
	Member(idx, col int) *olap.Member
	Slice(col int) Slice
	// CloneList returns a mutable copy of the list with room for at least capacity tuples.
	CloneList(capacity int) MutableList
	Mutable() bool
}

// MutableList may be changed in place.
type MutableList interface {
	List
	Add(t olap.Tuple)
	AddCurrent(cr Cursor)
	Remove(idx int)
	Clear()
}

type arrayList struct {
	arity   int
	members []*olap.Member
}

// CreateList returns an empty mutable list.
func CreateList(arity int, capacity int) MutableList {
	if arity < 1 {
		panic(fmt.Sprintf("tuple: arity must be at least one: %d", arity))
	}
	if capacity < 0 {
		capacity = 0
	}
	return &arrayList{
		arity:   arity,
		members: make([]*olap.Member, 0, capacity*arity),
	}
}

// Unary returns a mutable list of arity one holding a copy of members.
func Unary(members []*olap.Member) MutableList {
	return &arrayList{
		arity:   1,
		members: append(make([]*olap.Member, 0, len(members)), members...),
	}
}

func FromTuples(arity int, tuples ...olap.Tuple) MutableList {
	l := CreateList(arity, len(tuples))
	for _, t := range tuples {
		l.Add(t)
	}
	return l
}

// Empty returns an immutable list with no tuples.
func Empty(arity int) List {
	return Immutable(CreateList(arity, 0))
}

func (al *arrayList) Arity() int {
	return al.arity
}

func (al *arrayList) Size() int {
	return len(al.members) / al.arity
}

func (al *arrayList) Tuple(idx int) olap.Tuple {
	return append(olap.Tuple(nil), al.members[idx*al.arity:(idx+1)*al.arity]...)
}

func (al *arrayList) Member(idx, col int) *olap.Member {
	return al.members[idx*al.arity+col]
}

func (al *arrayList) Slice(col int) Slice {
	return Slice{list: al, col: col}
}

func (al *arrayList) CloneList(capacity int) MutableList {
	if capacity < al.Size() {
		capacity = al.Size()
	}
	nl := &arrayList{
		arity:   al.arity,
		members: make([]*olap.Member, len(al.members), capacity*al.arity),
	}
	copy(nl.members, al.members)
	return nl
}

func (_ *arrayList) Mutable() bool {
	return true
}

func (al *arrayList) Add(t olap.Tuple) {
	if len(t) != al.arity {
		panic(fmt.Sprintf("tuple: adding tuple of arity %d to list of arity %d", len(t),
			al.arity))
	}
	al.members = append(al.members, t...)
}

func (al *arrayList) AddCurrent(cr Cursor) {
	if cr.Arity() != al.arity {
		panic(fmt.Sprintf("tuple: adding tuple of arity %d to list of arity %d", cr.Arity(),
			al.arity))
	}
	for col := 0; col < al.arity; col++ {
		al.members = append(al.members, cr.Member(col))
	}
}

func (al *arrayList) Remove(idx int) {
	al.members = append(al.members[:idx*al.arity], al.members[(idx+1)*al.arity:]...)
}

func (al *arrayList) Clear() {
	al.members = al.members[:0]
}

func (al *arrayList) Cursor() Cursor {
	return &arrayCursor{
		list: al,
		idx:  -1,
	}
}

type arrayCursor struct {
	list *arrayList
	idx  int
}

func (ac *arrayCursor) Arity() int {
	return ac.list.arity
}

func (ac *arrayCursor) Forward() bool {
	if ac.idx+1 >= ac.list.Size() {
		ac.idx = ac.list.Size()
		return false
	}
	ac.idx += 1
	return true
}

func (_ *arrayCursor) Err() error {
	return nil
}

func (ac *arrayCursor) Current() olap.Tuple {
	return ac.list.Tuple(ac.idx)
}

func (ac *arrayCursor) Member(col int) *olap.Member {
	return ac.list.Member(ac.idx, col)
}

func (ac *arrayCursor) SetContext(cs ContextSetter) {
	for _, m := range ac.list.members[ac.idx*ac.list.arity : (ac.idx+1)*ac.list.arity] {
		cs.SetContext(m)
	}
}

type immutableList struct {
	list List
}

// Immutable returns a view of l without the mutating operations. Use Append to get a list
// with an additional tuple.
func Immutable(l List) List {
	if il, ok := l.(immutableList); ok {
		return il
	}
	return immutableList{list: l}
}

func (il immutableList) Arity() int {
	return il.list.Arity()
}

func (il immutableList) Cursor() Cursor {
	return il.list.Cursor()
}

func (il immutableList) Size() int {
	return il.list.Size()
}

func (il immutableList) Tuple(idx int) olap.Tuple {
	return il.list.Tuple(idx)
}

func (il immutableList) Member(idx, col int) *olap.Member {
	return il.list.Member(idx, col)
}

func (il immutableList) Slice(col int) Slice {
	return Slice{list: il, col: col}
}

func (il immutableList) CloneList(capacity int) MutableList {
	return il.list.CloneList(capacity)
}

func (_ immutableList) Mutable() bool {
	return false
}

// Append adds t to l in place when l is mutable and returns l; otherwise it returns a new
// list holding the tuples of l followed by t.
func Append(l List, t olap.Tuple) List {
	if ml, ok := l.(MutableList); ok && ml.Mutable() {
		ml.Add(t)
		return ml
	}
	ml := l.CloneList(l.Size() + 1)
	ml.Add(t)
	return ml
}

// Equal compares two lists tuple by tuple.
func Equal(l1, l2 List) bool {
	if l1.Arity() != l2.Arity() || l1.Size() != l2.Size() {
		return false
	}
	for idx := 0; idx < l1.Size(); idx++ {
		for col := 0; col < l1.Arity(); col++ {
			if l1.Member(idx, col) != l2.Member(idx, col) {
				return false
			}
		}
	}
	return true
}
