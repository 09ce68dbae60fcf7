package flags_test

import (
	"testing"

	"github.com/leftmike/cubist/flags"
)

func TestLookupFlag(t *testing.T) {
	cases := []struct {
		nam string
		f   flags.Flag
		ok  bool
		def bool
	}{
		{nam: "native", f: flags.EnableNative, ok: true, def: true},
		{nam: "NATIVE_FILTER", f: flags.EnableNativeFilter, ok: true, def: true},
		{nam: "expand_non_native", f: flags.ExpandNonNative, ok: true, def: true},
		{nam: "pushdown_where"},
	}

	flgs := flags.Default()
	for _, c := range cases {
		f, ok := flags.LookupFlag(c.nam)
		if ok != c.ok {
			t.Errorf("LookupFlag(%q) got %v want %v", c.nam, ok, c.ok)
			continue
		}
		if !ok {
			continue
		}
		if f != c.f {
			t.Errorf("LookupFlag(%q) got %d want %d", c.nam, f, c.f)
		}
		if flgs.GetFlag(f) != c.def {
			t.Errorf("Default().GetFlag(%q) got %v want %v", c.nam, flgs.GetFlag(f), c.def)
		}
	}
}

func TestWith(t *testing.T) {
	flgs := flags.Default()
	nflgs := flgs.With(flags.EnableNativeFilter, false)
	if nflgs.GetFlag(flags.EnableNativeFilter) {
		t.Errorf("With(EnableNativeFilter, false) did not clear the flag")
	}
	if !flgs.GetFlag(flags.EnableNativeFilter) {
		t.Errorf("With(EnableNativeFilter, false) changed the original flags")
	}

	cnt := 0
	flags.ListFlags(func(nam string, f flags.Flag) {
		cnt += 1
	})
	if cnt != len(flgs) {
		t.Errorf("ListFlags() got %d flags want %d", cnt, len(flgs))
	}
}
