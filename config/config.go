package config

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/pflag"

	"github.com/leftmike/cubist/flags"
)

type setBy int

const (
	byDefault setBy = iota
	byConfig
	byEnv
	byFlag
)

func (sb setBy) String() string {
	switch sb {
	case byDefault:
		return "default"
	case byConfig:
		return "config"
	case byEnv:
		return "env"
	case byFlag:
		return "flag"
	}
	panic(fmt.Sprintf("unexpected config set by: %d", sb))
}

type value interface {
	Set(s string) error
	SetValue(v interface{}) error
	String() string
	Type() string
}

// Config holds variables which may be set, in increasing order of precedence, by a config
// file, by the environment, and by command line flags. Engine flags (see package flags) may
// also be set in a config file.
type Config struct {
	fs    *pflag.FlagSet
	vars  map[string]*Var
	flgs  flags.Flags
	flgBy map[flags.Flag]setBy
}

type Var struct {
	cfg      *Config
	name     string
	usage    string
	env      string
	short    string
	noConfig bool
	noFlag   bool
	by       setBy
	val      value
	ptr      interface{}
}

func NewConfig(fs *pflag.FlagSet) *Config {
	return &Config{
		fs:    fs,
		vars:  map[string]*Var{},
		flgs:  flags.Default(),
		flgBy: map[flags.Flag]setBy{},
	}
}

// Var starts the definition of a variable; p must be a pointer to the type of the method
// used to finish the definition.
func (c *Config) Var(p interface{}, name string) *Var {
	if _, ok := c.vars[name]; ok {
		panic(fmt.Sprintf("config: variable redefined: %s", name))
	}
	return &Var{
		cfg:  c,
		name: name,
		ptr:  p,
	}
}

func (v *Var) Usage(usage string) *Var {
	v.usage = usage
	return v
}

func (v *Var) Env(env string) *Var {
	v.env = env
	return v
}

func (v *Var) Short(short string) *Var {
	v.short = short
	return v
}

// NoConfig prevents the variable from being set in a config file.
func (v *Var) NoConfig() *Var {
	v.noConfig = true
	return v
}

// NoFlag prevents the variable from being set on the command line.
func (v *Var) NoFlag() *Var {
	v.noFlag = true
	return v
}

func (v *Var) define(val value) {
	v.val = val
	v.cfg.vars[v.name] = v
	if v.noFlag || v.cfg.fs == nil {
		return
	}

	flg := v.cfg.fs.VarPF(flagValue{v}, v.name, v.short, v.usage)
	if val.Type() == "bool" {
		flg.NoOptDefVal = "true"
	}
}

func (v *Var) Bool(b bool) *bool {
	p, ok := v.ptr.(*bool)
	if !ok {
		panic(fmt.Sprintf("config: %s: expected *bool; got %T", v.name, v.ptr))
	}
	*p = b
	v.define((*boolValue)(p))
	return p
}

func (v *Var) Int(i int) *int {
	p, ok := v.ptr.(*int)
	if !ok {
		panic(fmt.Sprintf("config: %s: expected *int; got %T", v.name, v.ptr))
	}
	*p = i
	v.define((*intValue)(p))
	return p
}

func (v *Var) String(s string) *string {
	p, ok := v.ptr.(*string)
	if !ok {
		panic(fmt.Sprintf("config: %s: expected *string; got %T", v.name, v.ptr))
	}
	*p = s
	v.define((*stringValue)(p))
	return p
}

func (v *Var) Duration(d time.Duration) *time.Duration {
	p, ok := v.ptr.(*time.Duration)
	if !ok {
		panic(fmt.Sprintf("config: %s: expected *time.Duration; got %T", v.name, v.ptr))
	}
	*p = d
	v.define((*durationValue)(p))
	return p
}

type flagValue struct {
	v *Var
}

func (fv flagValue) Set(s string) error {
	err := fv.v.val.Set(s)
	if err != nil {
		return err
	}
	fv.v.by = byFlag
	return nil
}

func (fv flagValue) String() string {
	if fv.v.val == nil {
		return ""
	}
	return fv.v.val.String()
}

func (fv flagValue) Type() string {
	return fv.v.val.Type()
}

// Env sets each variable which has an environment name and which was not set on the
// command line from the environment.
func (c *Config) Env() error {
	for _, v := range c.vars {
		if v.env == "" || v.by == byFlag {
			continue
		}
		s, ok := os.LookupEnv(v.env)
		if !ok {
			continue
		}
		err := v.val.Set(s)
		if err != nil {
			return fmt.Errorf("config: %s: %s: %s", v.name, v.env, err)
		}
		v.by = byEnv
	}
	return nil
}

// Flags returns the engine flags: the defaults as changed by the config file.
func (c *Config) Flags() flags.Flags {
	return c.flgs
}

// SetFlag changes an engine flag; it takes precedence over the config file.
func (c *Config) SetFlag(name string, b bool) error {
	f, ok := flags.LookupFlag(name)
	if !ok {
		return fmt.Errorf("config: %s is not a flag", name)
	}
	c.flgs[f] = b
	c.flgBy[f] = byFlag
	return nil
}

// List writes every variable and flag as name = value in name order.
func (c *Config) List(w io.Writer) {
	type nameVal struct {
		name string
		val  string
		by   setBy
	}

	var list []nameVal
	for _, v := range c.vars {
		list = append(list, nameVal{v.name, v.val.String(), v.by})
	}
	flags.ListFlags(
		func(name string, f flags.Flag) {
			list = append(list, nameVal{name, fmt.Sprintf("%v", c.flgs[f]), c.flgBy[f]})
		})
	sort.Slice(list, func(i, j int) bool {
		return list[i].name < list[j].name
	})

	for _, nv := range list {
		fmt.Fprintf(w, "%s = %s (%s)\n", nv.name, nv.val, nv.by)
	}
}
