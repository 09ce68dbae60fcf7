package schema

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/hashicorp/hcl"
	log "github.com/sirupsen/logrus"

	"github.com/leftmike/cubist/olap"
)

type cubeDef struct {
	Dimensions []dimensionDef `hcl:"dimension"`
}

type dimensionDef struct {
	Name        string         `hcl:",key"`
	Hierarchies []hierarchyDef `hcl:"hierarchy"`
}

type hierarchyDef struct {
	Name       string          `hcl:",key"`
	All        string          `hcl:"all"`
	Levels     []string        `hcl:"levels"`
	Members    []memberDef     `hcl:"member"`
	Calculated []calculatedDef `hcl:"calculated"`
}

type memberDef struct {
	Name   string `hcl:",key"`
	Level  string `hcl:"level"`
	Key    string `hcl:"key"`
	Parent string `hcl:"parent"`
}

type calculatedDef struct {
	Name       string `hcl:",key"`
	Level      string `hcl:"level"`
	Parent     string `hcl:"parent"`
	Expression string `hcl:"expression"`
}

// Load reads a cube from r, which holds blocks like the following.
//
//	dimension "Product" {
//	    hierarchy "Product" {
//	        all = "All Products"
//	        levels = ["Category", "Item"]
//	        member "Fruit" { level = "Category" key = "fruit" }
//	        member "Apple" { level = "Item" parent = "Fruit" }
//	        calculated "Produce" {
//	            level = "Category"
//	            expression = "Aggregate({[Product].[Fruit], [Product].[Veg]})"
//	        }
//	    }
//	}
//
// Parents must be defined before their children, and a parent is named by its name in the
// level above. Calculated members are added after every dimension has been defined, so
// their expressions may refer to any dimension.
func Load(r io.Reader) (*Schema, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var cd cubeDef
	err = hcl.Decode(&cd, string(b))
	if err != nil {
		return nil, fmt.Errorf("schema: %s", err)
	}

	s := New()
	type pending struct {
		h   *olap.Hierarchy
		def calculatedDef
	}
	var calcs []pending
	for _, dd := range cd.Dimensions {
		d, err := s.AddDimension(dd.Name)
		if err != nil {
			return nil, err
		}
		if len(dd.Hierarchies) == 0 {
			return nil, fmt.Errorf("schema: dimension %s: no hierarchies", dd.Name)
		}
		for _, hd := range dd.Hierarchies {
			h, err := s.loadHierarchy(d, hd)
			if err != nil {
				return nil, err
			}
			for _, cd := range hd.Calculated {
				calcs = append(calcs, pending{h, cd})
			}
		}
	}

	for _, p := range calcs {
		err = s.loadCalculated(p.h, p.def)
		if err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"dimensions": len(s.dimensions),
		"calculated": len(calcs),
	}).Debug("schema: cube loaded")
	return s, nil
}

func LoadFile(filename string) (*Schema, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}

func (s *Schema) loadHierarchy(d *olap.Dimension, hd hierarchyDef) (*olap.Hierarchy, error) {
	if _, ok := findHierarchy(d, hd.Name); ok {
		return nil, fmt.Errorf("schema: hierarchy %s already exists in dimension %s", hd.Name,
			d)
	}
	if len(hd.Levels) == 0 {
		return nil, fmt.Errorf("schema: hierarchy %s: no levels", hd.Name)
	}

	h := d.AddHierarchy(hd.Name, hd.All)
	for _, nam := range hd.Levels {
		if _, ok := findLevel(h, nam); ok {
			return nil, fmt.Errorf("schema: hierarchy %s: level %s already exists", h, nam)
		}
		h.AddLevel(nam)
	}

	for _, md := range hd.Members {
		lvl, parent, err := s.memberLevel(h, md)
		if err != nil {
			return nil, err
		}
		if _, ok := s.child(h, parent, lvl, md.Name); ok {
			return nil, fmt.Errorf("schema: member %s already exists in level %s", md.Name, lvl)
		}
		_, err = lvl.AddMember(md.Name, md.Key, parent)
		if err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (s *Schema) memberLevel(h *olap.Hierarchy, md memberDef) (*olap.Level, *olap.Member,
	error) {
	lvl, ok := findLevel(h, md.Level)
	if !ok {
		return nil, nil, fmt.Errorf("schema: member %s: level %s not found in %s", md.Name,
			md.Level, h)
	}
	if md.Parent == "" {
		return lvl, nil, nil
	}
	if lvl.Depth() == 0 {
		return nil, nil, fmt.Errorf("schema: member %s: level %s has no parent level", md.Name,
			lvl)
	}
	parent, err := s.levelMember(h.Levels()[lvl.Depth()-1], md.Parent)
	if err != nil {
		return nil, nil, err
	}
	return lvl, parent, nil
}

func (s *Schema) loadCalculated(h *olap.Hierarchy, cd calculatedDef) error {
	lvl, parent, err := s.memberLevel(h, memberDef{
		Name:   cd.Name,
		Level:  cd.Level,
		Parent: cd.Parent,
	})
	if err != nil {
		return err
	}
	exp, err := s.ParseExpr(cd.Expression)
	if err != nil {
		return fmt.Errorf("schema: calculated member %s: %s", cd.Name, err)
	}
	_, err = s.AddCalculatedMember(lvl, parent, cd.Name, exp)
	return err
}
