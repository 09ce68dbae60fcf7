// Package mdx holds resolved expressions: names have already been bound to the members,
// levels, hierarchies, and dimensions of a schema, and function calls to their definitions.
package mdx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leftmike/cubist/olap"
)

type Exp interface {
	olap.Exp
	// Type returns the category of value that the expression evaluates to.
	Type() Type
}

type Type int

const (
	UnknownType Type = iota
	BooleanType
	NumericType
	StringType
	MemberType
	LevelType
	HierarchyType
	DimensionType
	SetType
)

var typeNames = map[Type]string{
	UnknownType:   "unknown",
	BooleanType:   "boolean",
	NumericType:   "numeric",
	StringType:    "string",
	MemberType:    "member",
	LevelType:     "level",
	HierarchyType: "hierarchy",
	DimensionType: "dimension",
	SetType:       "set",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

type DimensionExpr struct {
	Dimension *olap.Dimension
}

func (de *DimensionExpr) String() string {
	return de.Dimension.UniqueName()
}

func (_ *DimensionExpr) Type() Type {
	return DimensionType
}

type HierarchyExpr struct {
	Hierarchy *olap.Hierarchy
}

func (he *HierarchyExpr) String() string {
	return he.Hierarchy.UniqueName()
}

func (_ *HierarchyExpr) Type() Type {
	return HierarchyType
}

type LevelExpr struct {
	Level *olap.Level
}

func (le *LevelExpr) String() string {
	return le.Level.UniqueName()
}

func (_ *LevelExpr) Type() Type {
	return LevelType
}

type MemberExpr struct {
	Member *olap.Member
}

func (me *MemberExpr) String() string {
	return me.Member.UniqueName()
}

func (_ *MemberExpr) Type() Type {
	return MemberType
}

// Literal is a boolean, int64, float64, or string constant.
type Literal struct {
	Value interface{}
}

func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	panic(fmt.Sprintf("unexpected literal type: %T: %v", l.Value, l.Value))
}

func (l *Literal) Type() Type {
	switch l.Value.(type) {
	case bool:
		return BooleanType
	case int64, float64:
		return NumericType
	case string:
		return StringType
	}
	panic(fmt.Sprintf("unexpected literal type: %T: %v", l.Value, l.Value))
}

type Syntax int

const (
	// Function is Name(arg, ...).
	FunctionSyntax Syntax = iota
	// Property is arg.Name.
	PropertySyntax
	// Braces is {arg, ...}.
	BracesSyntax
	// Parentheses is (arg, ...).
	ParenthesesSyntax
)

// Call is a function call which has been bound to the definition of the function. Fun may be
// nil when the call is only kept as an expression, for example as the expression of a
// calculated member, and is never compiled.
type Call struct {
	Name   string
	Fun    FunDef
	Args   []Exp
	Syntax Syntax
	Result Type
}

func (c *Call) String() string {
	var b strings.Builder
	switch c.Syntax {
	case PropertySyntax:
		if len(c.Args) > 0 {
			b.WriteString(c.Args[0].String())
			b.WriteByte('.')
		}
		b.WriteString(c.Name)
		return b.String()
	case BracesSyntax:
		b.WriteByte('{')
		formatArgs(&b, c.Args)
		b.WriteByte('}')
		return b.String()
	case ParenthesesSyntax:
		b.WriteByte('(')
		formatArgs(&b, c.Args)
		b.WriteByte(')')
		return b.String()
	}
	b.WriteString(c.Name)
	b.WriteByte('(')
	formatArgs(&b, c.Args)
	b.WriteByte(')')
	return b.String()
}

func formatArgs(b *strings.Builder, args []Exp) {
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
}

func (c *Call) Type() Type {
	return c.Result
}

// IsCall returns the call if e is a call of the function named name; names are compared
// ignoring case.
func IsCall(e Exp, name string) (*Call, bool) {
	c, ok := e.(*Call)
	if !ok || !strings.EqualFold(c.Name, name) {
		return nil, false
	}
	return c, true
}
