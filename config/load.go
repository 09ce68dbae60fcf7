package config

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/hashicorp/hcl"
	"github.com/hashicorp/hcl/hcl/scanner"
	"github.com/hashicorp/hcl/hcl/token"

	"github.com/leftmike/cubist/flags"
)

// Load sets variables and engine flags from an HCL config file. Variables already set on the
// command line or from the environment keep their values.
func (c *Config) Load(r io.Reader) error {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return err
	}

	var cfg map[string]interface{}
	err = hcl.Decode(&cfg, string(b))
	if err != nil {
		return fmt.Errorf("config: %s", err)
	}
	if key, ok := missingValue(b); ok {
		return fmt.Errorf("config: %s: missing value", key)
	}

	for name, val := range cfg {
		if v, ok := c.vars[name]; ok {
			if v.noConfig {
				return fmt.Errorf("config: %s can't be set in config file", name)
			}
			if v.by == byDefault {
				err := v.val.SetValue(val)
				if err != nil {
					return fmt.Errorf("config: %s: %s", name, err)
				}
				v.by = byConfig
			}
		} else if f, ok := flags.LookupFlag(name); ok {
			b, ok := val.(bool)
			if !ok {
				return fmt.Errorf("config: %s: expected boolean value; got %v", name, val)
			}
			if c.flgBy[f] == byDefault {
				c.flgs[f] = b
				c.flgBy[f] = byConfig
			}
		} else {
			return fmt.Errorf("config: %s is not a config variable", name)
		}
	}

	return nil
}

// missingValue returns the key of a trailing assignment with no value; hcl drops such an
// assignment without an error.
func missingValue(b []byte) (string, bool) {
	s := scanner.New(b)
	s.Error = func(pos token.Pos, msg string) {}

	var key, last token.Token
	for {
		tok := s.Scan()
		switch tok.Type {
		case token.EOF:
			return key.Text, last.Type == token.ASSIGN
		case token.COMMENT:
			continue
		case token.ASSIGN:
			key = last
		}
		last = tok
	}
}

func (c *Config) LoadFile(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	err = c.Load(f)
	if err != nil {
		return fmt.Errorf("%s: %s", filename, err)
	}
	return nil
}
