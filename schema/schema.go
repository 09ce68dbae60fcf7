// Package schema holds the dimensions of a cube together with its calculated members, and
// binds names in expressions to them.
package schema

import (
	"fmt"
	"strings"

	"github.com/leftmike/cubist/mdx"
	"github.com/leftmike/cubist/olap"
	"github.com/leftmike/cubist/parser"
)

type Schema struct {
	dimensions []*olap.Dimension
	calculated map[*olap.Hierarchy][]*olap.Member
}

func New() *Schema {
	return &Schema{
		calculated: map[*olap.Hierarchy][]*olap.Member{},
	}
}

func (s *Schema) AddDimension(name string) (*olap.Dimension, error) {
	if _, ok := s.Dimension(name); ok {
		return nil, fmt.Errorf("schema: dimension %s already exists", name)
	}
	d := olap.NewDimension(name)
	s.dimensions = append(s.dimensions, d)
	return d, nil
}

func (s *Schema) Dimensions() []*olap.Dimension {
	return s.dimensions
}

// Dimension looks up a dimension by name, ignoring case.
func (s *Schema) Dimension(name string) (*olap.Dimension, bool) {
	for _, d := range s.dimensions {
		if strings.EqualFold(d.Name(), name) {
			return d, true
		}
	}
	return nil, false
}

func (s *Schema) Hierarchies() []*olap.Hierarchy {
	var hs []*olap.Hierarchy
	for _, d := range s.dimensions {
		hs = append(hs, d.Hierarchies()...)
	}
	return hs
}

// AddCalculatedMember defines a member of lvl by an expression; exp is usually parsed with
// ParseExpr.
func (s *Schema) AddCalculatedMember(lvl *olap.Level, parent *olap.Member, name string,
	exp olap.Exp) (*olap.Member, error) {
	if parent == nil && lvl.Depth() > 0 {
		above := lvl.Hierarchy().Levels()[lvl.Depth()-1]
		if !above.IsAll() {
			return nil, fmt.Errorf("schema: calculated member %s requires a parent", name)
		}
		parent = lvl.Hierarchy().AllMember()
	} else if parent != nil && parent.Depth() != lvl.Depth()-1 {
		return nil, fmt.Errorf("schema: calculated member %s: parent %s is not from the level "+
			"above", name, parent)
	}
	if _, ok := s.child(lvl.Hierarchy(), parent, lvl, name); ok {
		return nil, fmt.Errorf("schema: member %s already exists in level %s", name, lvl)
	}

	m := olap.NewCalculatedMember(lvl, parent, name, exp)
	h := lvl.Hierarchy()
	s.calculated[h] = append(s.calculated[h], m)
	return m, nil
}

func (s *Schema) CalculatedMembers(h *olap.Hierarchy) []*olap.Member {
	return s.calculated[h]
}

// ParseExpr parses an expression, resolving names against s.
func (s *Schema) ParseExpr(expr string) (mdx.Exp, error) {
	return parser.ParseExpr(expr, s)
}

func findHierarchy(d *olap.Dimension, name string) (*olap.Hierarchy, bool) {
	for _, h := range d.Hierarchies() {
		if strings.EqualFold(h.Name(), name) {
			return h, true
		}
	}
	return nil, false
}

func findLevel(h *olap.Hierarchy, name string) (*olap.Level, bool) {
	for _, lvl := range h.Levels() {
		if strings.EqualFold(lvl.Name(), name) {
			return lvl, true
		}
	}
	return nil, false
}

// child returns the member named name whose parent is parent; when lvl is not nil, the
// member must belong to lvl. A nil parent finds the members of the top level.
func (s *Schema) child(h *olap.Hierarchy, parent *olap.Member, lvl *olap.Level,
	name string) (*olap.Member, bool) {
	var depth int
	if parent != nil {
		depth = parent.Depth() + 1
	} else if levels := h.Levels(); len(levels) > 0 && levels[0].IsAll() {
		depth = 1
		parent = h.AllMember()
	}
	if lvl != nil && lvl.Depth() != depth {
		return nil, false
	}
	if depth >= len(h.Levels()) {
		return nil, false
	}

	for _, m := range h.Levels()[depth].Members() {
		if m.Parent() == parent && strings.EqualFold(m.Name(), name) {
			return m, true
		}
	}
	for _, m := range s.calculated[h] {
		if m.Depth() == depth && m.Parent() == parent && strings.EqualFold(m.Name(), name) {
			return m, true
		}
	}
	return nil, false
}

// levelMember returns the member named name of lvl; the name must be unique in the level.
func (s *Schema) levelMember(lvl *olap.Level, name string) (*olap.Member, error) {
	var found *olap.Member
	members := append(append([]*olap.Member(nil), lvl.Members()...),
		s.calculated[lvl.Hierarchy()]...)
	for _, m := range members {
		if m.Level() != lvl || !strings.EqualFold(m.Name(), name) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("schema: member %s is not unique in level %s", name, lvl)
		}
		found = m
	}
	if found == nil {
		return nil, fmt.Errorf("schema: member %s not found in level %s", name, lvl)
	}
	return found, nil
}

// Resolve binds a name such as [Product].[Fruit].[Apple] or [Product].[Item].[Apple]. The
// hierarchy may be left out of the name when the dimension has a single hierarchy.
func (s *Schema) Resolve(names []string) (mdx.Exp, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("schema: empty name")
	}
	un := "[" + strings.Join(names, "].[") + "]"

	d, ok := s.Dimension(names[0])
	if !ok {
		return nil, fmt.Errorf("schema: %s not found", un)
	}
	if len(names) == 1 {
		return &mdx.DimensionExpr{Dimension: d}, nil
	}
	names = names[1:]

	h, ok := findHierarchy(d, names[0])
	if ok && (len(names) == 1 || len(d.Hierarchies()) > 1 ||
		!s.isLevelOrMember(h, names[0])) {
		names = names[1:]
	} else if len(d.Hierarchies()) == 1 {
		h = d.Hierarchies()[0]
	} else {
		return nil, fmt.Errorf("schema: %s not found", un)
	}
	if len(names) == 0 {
		return &mdx.HierarchyExpr{Hierarchy: h}, nil
	}

	var m *olap.Member
	if lvl, ok := findLevel(h, names[0]); ok {
		if len(names) == 1 {
			return &mdx.LevelExpr{Level: lvl}, nil
		}
		var err error
		m, err = s.levelMember(lvl, names[1])
		if err != nil {
			return nil, err
		}
		names = names[2:]
	} else if all := h.AllMember(); all != nil && strings.EqualFold(all.Name(), names[0]) {
		m = all
		names = names[1:]
	}

	for _, name := range names {
		child, ok := s.child(h, m, nil, name)
		if !ok {
			return nil, fmt.Errorf("schema: %s not found", un)
		}
		m = child
	}
	return &mdx.MemberExpr{Member: m}, nil
}

func (s *Schema) isLevelOrMember(h *olap.Hierarchy, name string) bool {
	if _, ok := findLevel(h, name); ok {
		return true
	}
	_, ok := s.child(h, nil, nil, name)
	return ok
}
