package flags

import (
	"strings"
)

type Flag int

const (
	EnableNative Flag = iota
	EnableNativeFilter
	ExpandNonNative
)

type flagDefault struct {
	flag Flag
	def  bool
}

var (
	defaultFlags = map[string]flagDefault{
		"native":            {EnableNative, true},
		"native_filter":     {EnableNativeFilter, true},
		"expand_non_native": {ExpandNonNative, true},
	}
)

func LookupFlag(nam string) (Flag, bool) {
	fd, ok := defaultFlags[strings.ToLower(nam)]
	return fd.flag, ok
}

func ListFlags(fn func(nam string, f Flag)) {
	for nam, fd := range defaultFlags {
		fn(nam, fd.flag)
	}
}

type Flags []bool

func (flgs Flags) GetFlag(f Flag) bool {
	return flgs[f]
}

// With returns a copy of flgs with f set to b.
func (flgs Flags) With(f Flag, b bool) Flags {
	nflgs := append(Flags(nil), flgs...)
	nflgs[f] = b
	return nflgs
}

func Default() Flags {
	flgs := make([]bool, len(defaultFlags))
	for _, fd := range defaultFlags {
		flgs[fd.flag] = fd.def
	}
	return flgs
}
