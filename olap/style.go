package olap

import (
	"fmt"
	"strings"
)

type ResultStyle int

const (
	Value ResultStyle = iota
	Iterable
	List
	MutableList
	Any
)

var (
	IterableOnly               = []ResultStyle{Iterable}
	ListOnly                   = []ResultStyle{List}
	MutableListOnly            = []ResultStyle{MutableList}
	AnyOnly                    = []ResultStyle{Any}
	ValueOnly                  = []ResultStyle{Value}
	MutableListList            = []ResultStyle{MutableList, List}
	IterableListMutableList    = []ResultStyle{Iterable, List, MutableList}
	IterableMutableListList    = []ResultStyle{Iterable, MutableList, List}
	IterableListMutableListAny = []ResultStyle{Iterable, List, MutableList, Any}
)

var styleNames = [...]string{
	Value:       "VALUE",
	Iterable:    "ITERABLE",
	List:        "LIST",
	MutableList: "MUTABLE_LIST",
	Any:         "ANY",
}

func (rs ResultStyle) String() string {
	if rs < 0 || int(rs) >= len(styleNames) {
		return fmt.Sprintf("ResultStyle(%d)", int(rs))
	}
	return styleNames[rs]
}

// ParseResultStyle accepts the names returned by String, case insensitive, and with either
// '_' or '-' as separator.
func ParseResultStyle(s string) (ResultStyle, error) {
	s = strings.ReplaceAll(strings.ToUpper(s), "-", "_")
	for rs, nam := range styleNames {
		if nam == s {
			return ResultStyle(rs), nil
		}
	}
	return 0, fmt.Errorf("olap: unknown result style: %s", s)
}

func ContainsStyle(styles []ResultStyle, rs ResultStyle) bool {
	for _, s := range styles {
		if s == rs {
			return true
		}
	}
	return false
}

func formatStyles(styles []ResultStyle) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, rs := range styles {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(rs.String())
	}
	b.WriteByte(']')
	return b.String()
}
