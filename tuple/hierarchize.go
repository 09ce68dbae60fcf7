package tuple

import (
	"github.com/google/btree"

	"github.com/leftmike/cubist/olap"
)

type hierarchizeItem struct {
	paths [][]*olap.Member
	idx   int
	post  bool
}

func compareMembers(m1, m2 *olap.Member) int {
	if m1 == m2 {
		return 0
	}
	if m1.Ordinal() != m2.Ordinal() {
		if m1.Ordinal() < m2.Ordinal() {
			return -1
		}
		return 1
	}
	if m1.Key() < m2.Key() {
		return -1
	} else if m1.Key() > m2.Key() {
		return 1
	}
	return 0
}

// comparePaths orders members by their ancestors from the root down; when one path is a
// prefix of the other, the ancestor comes first unless post is set.
func comparePaths(p1, p2 []*olap.Member, post bool) int {
	if len(p1) > 0 && len(p2) > 0 && p1[0].Hierarchy() != p2[0].Hierarchy() {
		if p1[0].Hierarchy().Ordinal() < p2[0].Hierarchy().Ordinal() {
			return -1
		}
		return 1
	}

	for i := 0; i < len(p1) && i < len(p2); i++ {
		if cmp := compareMembers(p1[i], p2[i]); cmp != 0 {
			return cmp
		}
	}

	if len(p1) == len(p2) {
		return 0
	}
	cmp := -1
	if len(p1) > len(p2) {
		cmp = 1
	}
	if post {
		return -cmp
	}
	return cmp
}

func (hi hierarchizeItem) Less(item btree.Item) bool {
	hi2 := item.(hierarchizeItem)
	for col := range hi.paths {
		if cmp := comparePaths(hi.paths[col], hi2.paths[col], hi.post); cmp != 0 {
			return cmp < 0
		}
	}
	return hi.idx < hi2.idx
}

// Hierarchize returns the tuples of l in canonical hierarchy order: for each column in turn,
// members are ordered by their ancestors from the root, level by level, by ordinal and then
// by key. Parents come before their children unless post is set. Duplicates are kept in
// their original relative order.
func Hierarchize(l List, post bool) List {
	n := l.Size()
	if n <= 1 {
		return l
	}

	tree := btree.New(16)
	for idx := 0; idx < n; idx++ {
		paths := make([][]*olap.Member, l.Arity())
		for col := range paths {
			paths[col] = l.Member(idx, col).Path()
		}
		tree.ReplaceOrInsert(hierarchizeItem{
			paths: paths,
			idx:   idx,
			post:  post,
		})
	}

	result := CreateList(l.Arity(), n)
	tree.Ascend(
		func(item btree.Item) bool {
			result.Add(l.Tuple(item.(hierarchizeItem).idx))
			return true
		})
	return result
}
