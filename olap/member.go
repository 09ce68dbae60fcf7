package olap

import (
	"fmt"
	"strings"
)

// Exp is a resolved expression; the expression tree itself lives in package mdx.
type Exp interface {
	fmt.Stringer
}

// FunDef identifies a function definition.
type FunDef interface {
	Name() string
}

type memberType int

const (
	regularMember memberType = iota
	allMember
	calculatedMember
	compoundMember
)

// Member is owned by a hierarchy and is never modified after the schema has been built.
// Members are compared by identity.
type Member struct {
	name     string
	key      string
	level    *Level
	parent   *Member
	ordinal  int
	typ      memberType
	exp      Exp
	compound []*Member
}

func (m *Member) Name() string {
	return m.name
}

func (m *Member) Key() string {
	return m.key
}

func (m *Member) Level() *Level {
	return m.level
}

func (m *Member) Hierarchy() *Hierarchy {
	return m.level.hierarchy
}

func (m *Member) Parent() *Member {
	return m.parent
}

func (m *Member) Depth() int {
	return m.level.depth
}

// Ordinal is the position of the member within its level; calculated and compound members
// sort after all stored members.
func (m *Member) Ordinal() int {
	return m.ordinal
}

func (m *Member) IsAll() bool {
	return m.typ == allMember
}

func (m *Member) IsCalculated() bool {
	return m.typ == calculatedMember
}

func (m *Member) Expression() Exp {
	return m.exp
}

func (m *Member) IsCompound() bool {
	return m.typ == compoundMember
}

func (m *Member) Compound() []*Member {
	return m.compound
}

func (m *Member) UniqueName() string {
	if m.parent == nil || m.parent.IsAll() {
		return fmt.Sprintf("%s.[%s]", m.Hierarchy().UniqueName(), m.name)
	}
	return fmt.Sprintf("%s.[%s]", m.parent.UniqueName(), m.name)
}

func (m *Member) String() string {
	return m.UniqueName()
}

// IsAncestorOf returns true if m is a strict ancestor of m2.
func (m *Member) IsAncestorOf(m2 *Member) bool {
	for p := m2.parent; p != nil; p = p.parent {
		if p == m {
			return true
		}
	}
	return false
}

// Path returns the members from the root of the hierarchy down to and including m.
func (m *Member) Path() []*Member {
	var path []*Member
	for p := m; p != nil; p = p.parent {
		path = append(path, p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// NewCalculatedMember creates a member defined by an expression; it belongs to level but is
// not one of the level's stored members.
func NewCalculatedMember(level *Level, parent *Member, name string, exp Exp) *Member {
	return &Member{
		name:    name,
		key:     name,
		level:   level,
		parent:  parent,
		ordinal: len(level.members) + 1<<20,
		typ:     calculatedMember,
		exp:     exp,
	}
}

// NewCompoundMember creates a synthetic member standing for the aggregate of members, all of
// which must belong to the same hierarchy.
func NewCompoundMember(name string, members []*Member) *Member {
	if len(members) == 0 {
		panic("olap: compound member requires at least one member")
	}
	h := members[0].Hierarchy()
	for _, m := range members[1:] {
		if m.Hierarchy() != h {
			panic(fmt.Sprintf("olap: compound member %s: members from hierarchies %s and %s",
				name, h, m.Hierarchy()))
		}
	}

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = m.key
	}
	return &Member{
		name:     name,
		key:      strings.Join(keys, "+"),
		level:    members[0].level,
		ordinal:  len(members[0].level.members) + 1<<21,
		typ:      compoundMember,
		compound: append([]*Member(nil), members...),
	}
}
