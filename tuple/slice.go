package tuple

import (
	"github.com/leftmike/cubist/olap"
)

// Slice is a view of the members at one column of every tuple of a list; it reflects later
// changes to the list.
type Slice struct {
	list List
	col  int
}

func (s Slice) Len() int {
	return s.list.Size()
}

func (s Slice) At(idx int) *olap.Member {
	return s.list.Member(idx, s.col)
}

// Members returns a copy of the members in the slice.
func (s Slice) Members() []*olap.Member {
	members := make([]*olap.Member, s.list.Size())
	for idx := range members {
		members[idx] = s.list.Member(idx, s.col)
	}
	return members
}

func (s Slice) Contains(m *olap.Member) bool {
	for idx := 0; idx < s.list.Size(); idx++ {
		if s.list.Member(idx, s.col) == m {
			return true
		}
	}
	return false
}
