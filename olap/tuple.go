package olap

import (
	"strings"
)

// Tuple holds one member per hierarchy of its arity.
type Tuple []*Member

func (t Tuple) Equal(t2 Tuple) bool {
	if len(t) != len(t2) {
		return false
	}
	for i, m := range t {
		if m != t2[i] {
			return false
		}
	}
	return true
}

func (t Tuple) String() string {
	if len(t) == 1 {
		return t[0].UniqueName()
	}

	var b strings.Builder
	b.WriteByte('(')
	for i, m := range t {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(m.UniqueName())
	}
	b.WriteByte(')')
	return b.String()
}
