package testutil

import (
	"github.com/leftmike/cubist/olap"
	"github.com/leftmike/cubist/tuple"
)

func members(it tuple.Iterable, fn func(m *olap.Member) string) ([]string, error) {
	ms, err := tuple.Members(it, 0)
	if err != nil {
		return nil, err
	}
	var ss []string
	for _, m := range ms {
		ss = append(ss, fn(m))
	}
	return ss, nil
}

// MemberNames returns the names of the first member of each tuple of it.
func MemberNames(it tuple.Iterable) ([]string, error) {
	return members(it, (*olap.Member).Name)
}

// MemberKeys returns the keys of the first member of each tuple of it.
func MemberKeys(it tuple.Iterable) ([]string, error) {
	return members(it, (*olap.Member).Key)
}
