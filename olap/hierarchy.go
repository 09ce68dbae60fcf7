package olap

import (
	"fmt"
	"sync/atomic"
)

type Dimension struct {
	name        string
	hierarchies []*Hierarchy
}

type Hierarchy struct {
	name      string
	dimension *Dimension
	levels    []*Level
	all       *Member
	ordinal   int64
}

type Level struct {
	name      string
	hierarchy *Hierarchy
	depth     int
	isAll     bool
	members   []*Member
}

func NewDimension(name string) *Dimension {
	return &Dimension{name: name}
}

func (d *Dimension) Name() string {
	return d.name
}

func (d *Dimension) UniqueName() string {
	return fmt.Sprintf("[%s]", d.name)
}

func (d *Dimension) String() string {
	return d.UniqueName()
}

func (d *Dimension) Hierarchies() []*Hierarchy {
	return d.hierarchies
}

var hierarchyOrdinal int64

// AddHierarchy adds a hierarchy to the dimension. If allName is not empty, the hierarchy
// gets an all level holding a single all member.
func (d *Dimension) AddHierarchy(name, allName string) *Hierarchy {
	h := &Hierarchy{
		name:      name,
		dimension: d,
		ordinal:   atomic.AddInt64(&hierarchyOrdinal, 1),
	}
	d.hierarchies = append(d.hierarchies, h)

	if allName != "" {
		lvl := h.AddLevel("(All)")
		lvl.isAll = true
		h.all = &Member{
			name:  allName,
			key:   allName,
			level: lvl,
			typ:   allMember,
		}
		lvl.members = append(lvl.members, h.all)
	}
	return h
}

func (h *Hierarchy) Name() string {
	return h.name
}

func (h *Hierarchy) Dimension() *Dimension {
	return h.dimension
}

func (h *Hierarchy) UniqueName() string {
	if h.name == h.dimension.name {
		return h.dimension.UniqueName()
	}
	return fmt.Sprintf("[%s].[%s]", h.dimension.name, h.name)
}

func (h *Hierarchy) String() string {
	return h.UniqueName()
}

// Levels returns the levels of the hierarchy in order from the root.
func (h *Hierarchy) Levels() []*Level {
	return h.levels
}

func (h *Hierarchy) HasAll() bool {
	return h.all != nil
}

func (h *Hierarchy) AllMember() *Member {
	return h.all
}

// DefaultMember is the all member, or else the first member of the first level.
func (h *Hierarchy) DefaultMember() *Member {
	if h.all != nil {
		return h.all
	}
	for _, lvl := range h.levels {
		if len(lvl.members) > 0 {
			return lvl.members[0]
		}
	}
	return nil
}

// Ordinal orders hierarchies by creation; it is used to put tuples into canonical order.
func (h *Hierarchy) Ordinal() int64 {
	return h.ordinal
}

func (h *Hierarchy) AddLevel(name string) *Level {
	lvl := &Level{
		name:      name,
		hierarchy: h,
		depth:     len(h.levels),
	}
	h.levels = append(h.levels, lvl)
	return lvl
}

func (h *Hierarchy) Level(name string) (*Level, bool) {
	for _, lvl := range h.levels {
		if lvl.name == name {
			return lvl, true
		}
	}
	return nil, false
}

func (l *Level) Name() string {
	return l.name
}

func (l *Level) Hierarchy() *Hierarchy {
	return l.hierarchy
}

func (l *Level) Depth() int {
	return l.depth
}

func (l *Level) IsAll() bool {
	return l.isAll
}

func (l *Level) Members() []*Member {
	return l.members
}

func (l *Level) UniqueName() string {
	return fmt.Sprintf("%s.[%s]", l.hierarchy.UniqueName(), l.name)
}

func (l *Level) String() string {
	return l.UniqueName()
}

// AddMember adds a stored member to the level. The parent must belong to the level directly
// above; for the first level below an all level, a nil parent means the all member.
func (l *Level) AddMember(name, key string, parent *Member) (*Member, error) {
	if l.isAll {
		return nil, fmt.Errorf("olap: level %s: members may not be added to an all level", l)
	}
	if parent == nil && l.depth > 0 {
		parent = l.hierarchy.levels[l.depth-1].singleAll()
		if parent == nil {
			return nil, fmt.Errorf("olap: level %s: member %s requires a parent", l, name)
		}
	} else if parent != nil && parent.level.depth != l.depth-1 {
		return nil, fmt.Errorf("olap: level %s: parent %s is not from the level above", l,
			parent)
	} else if parent != nil && parent.Hierarchy() != l.hierarchy {
		return nil, fmt.Errorf("olap: level %s: parent %s is from a different hierarchy", l,
			parent)
	}
	if key == "" {
		key = name
	}

	m := &Member{
		name:    name,
		key:     key,
		level:   l,
		parent:  parent,
		ordinal: len(l.members),
	}
	l.members = append(l.members, m)
	return m, nil
}

func (l *Level) singleAll() *Member {
	if l.isAll {
		return l.members[0]
	}
	return nil
}
