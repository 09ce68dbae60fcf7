package mdx

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/leftmike/cubist/calc"
	"github.com/leftmike/cubist/olap"
)

type FunDef interface {
	olap.FunDef
	Description() string
	Syntax() Syntax
	// Result returns the type of the value returned when called with args, or an error if
	// the function may not be called with args.
	Result(args []Exp) (Type, error)
	CompileCall(call *Call, c Compiler) (calc.Calc, error)
}

// Validator binds function names to definitions.
type Validator interface {
	Def(name string, args []Exp) (FunDef, error)
}

// Compiler compiles expressions into calcs; see package compile.
type Compiler interface {
	Validator() Validator
	// AcceptableResultStyles are the styles, most preferred first, which the caller of the
	// current CompileCall will accept.
	AcceptableResultStyles() []olap.ResultStyle
	Compile(e Exp) (calc.Calc, error)
	// CompileAs compiles e to a calc with the first of styles which can be provided;
	// ResultStyle of the returned calc reports which.
	CompileAs(e Exp, styles []olap.ResultStyle) (calc.Calc, error)
	CompileBoolean(e Exp) (calc.BooleanCalc, error)
	CompileList(e Exp, mutable bool) (calc.ListCalc, error)
	CompileIterable(e Exp) (calc.IterCalc, error)
	CompileHierarchy(e Exp) (calc.HierarchyCalc, error)
	CompileMember(e Exp) (calc.MemberCalc, error)
}

var (
	registryMutex sync.RWMutex
	registry      = map[string]FunDef{}
)

func registryName(name string) string {
	return strings.ToLower(name)
}

// Register adds fd to the functions available to every validator; it panics if a function
// with the same name is already registered.
func Register(fd FunDef) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	nam := registryName(fd.Name())
	if _, ok := registry[nam]; ok {
		panic(fmt.Sprintf("mdx: function %s already registered", fd.Name()))
	}
	registry[nam] = fd
}

func Lookup(name string) (FunDef, bool) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	fd, ok := registry[registryName(name)]
	return fd, ok
}

// Functions returns every registered function sorted by name.
func Functions() []FunDef {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	fds := make([]FunDef, 0, len(registry))
	for _, fd := range registry {
		fds = append(fds, fd)
	}
	sort.Slice(fds, func(i, j int) bool {
		return registryName(fds[i].Name()) < registryName(fds[j].Name())
	})
	return fds
}

type registryValidator struct{}

// DefaultValidator looks up functions in the registry.
func DefaultValidator() Validator {
	return registryValidator{}
}

func (_ registryValidator) Def(name string, args []Exp) (FunDef, error) {
	fd, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("mdx: function %s not found", name)
	}
	if _, err := fd.Result(args); err != nil {
		return nil, err
	}
	return fd, nil
}

// NewCall validates the call of name with args and returns it.
func NewCall(v Validator, name string, syntax Syntax, args ...Exp) (*Call, error) {
	fd, err := v.Def(name, args)
	if err != nil {
		return nil, err
	}
	typ, err := fd.Result(args)
	if err != nil {
		return nil, err
	}
	return &Call{
		Name:   fd.Name(),
		Fun:    fd,
		Args:   args,
		Syntax: syntax,
		Result: typ,
	}, nil
}
