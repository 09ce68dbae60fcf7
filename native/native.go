// Package native executes filters of level members against a member store instead of
// evaluating the predicate once per member.
package native

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/golang/protobuf/proto"
	log "github.com/sirupsen/logrus"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/leftmike/cubist/evaluate"
	"github.com/leftmike/cubist/fun"
	"github.com/leftmike/cubist/mdx"
	"github.com/leftmike/cubist/metrics"
	"github.com/leftmike/cubist/olap"
	"github.com/leftmike/cubist/storage/kv"
	"github.com/leftmike/cubist/tuple"
)

var (
	levelsPrefix  = []byte{'L'}
	membersPrefix = []byte{'M'}
)

type Provider struct {
	mutex    sync.RWMutex
	store    kv.KV
	levels   map[*olap.Level]uint32
	disabled map[*olap.Level]struct{}
	nextID   uint32
}

func NewProvider(store kv.KV) *Provider {
	return &Provider{
		store:    store,
		levels:   map[*olap.Level]uint32{},
		disabled: map[*olap.Level]struct{}{},
		nextID:   1,
	}
}

func memberKey(id uint32, ordinal int) []byte {
	key := append(make([]byte, 0, 9), membersPrefix...)
	key = binary.BigEndian.AppendUint32(key, id)
	return binary.BigEndian.AppendUint32(key, uint32(ordinal))
}

func levelRange(id uint32) ([]byte, []byte) {
	minKey := binary.BigEndian.AppendUint32(append([]byte(nil), membersPrefix...), id)
	maxKey := append(append([]byte(nil), minKey...), 0xFF, 0xFF, 0xFF, 0xFF)
	return minKey, maxKey
}

func encodeMember(m *olap.Member) ([]byte, error) {
	fields := map[string]interface{}{
		"name":    m.Name(),
		"key":     m.Key(),
		"ordinal": m.Ordinal(),
	}
	if p := m.Parent(); p != nil {
		fields["parent"] = p.Key()
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

type record struct {
	name    string
	key     string
	ordinal int
}

func decodeMember(val []byte) (record, error) {
	var s structpb.Struct
	err := proto.Unmarshal(val, &s)
	if err != nil {
		return record{}, err
	}
	return record{
		name:    s.Fields["name"].GetStringValue(),
		key:     s.Fields["key"].GetStringValue(),
		ordinal: int(s.Fields["ordinal"].GetNumberValue()),
	}, nil
}

// Load writes the stored members of every level of hierarchies, other than all levels, to
// the store; loading a level again replaces its members.
func (p *Provider) Load(hierarchies ...*olap.Hierarchy) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	u, err := p.store.Update()
	if err != nil {
		return err
	}

	ids := map[*olap.Level]uint32{}
	for _, h := range hierarchies {
		for _, lvl := range h.Levels() {
			if lvl.IsAll() {
				continue
			}
			id, ok := p.levels[lvl]
			if !ok {
				id = p.nextID
				p.nextID += 1
			}
			err = p.loadLevel(u, id, lvl)
			if err != nil {
				u.Rollback()
				return fmt.Errorf("native: loading level %s: %s", lvl, err)
			}
			ids[lvl] = id
		}
	}

	err = u.Commit(true)
	if err != nil {
		return err
	}
	for lvl, id := range ids {
		p.levels[lvl] = id
		log.WithFields(log.Fields{
			"level":   lvl.UniqueName(),
			"members": len(lvl.Members()),
		}).Debug("native: level loaded")
	}
	return nil
}

func (p *Provider) loadLevel(u kv.Updater, id uint32, lvl *olap.Level) error {
	key := binary.BigEndian.AppendUint32(append([]byte(nil), levelsPrefix...), id)
	err := u.Set(key, []byte(lvl.UniqueName()))
	if err != nil {
		return err
	}

	for ordinal := len(lvl.Members()); ; ordinal += 1 {
		err := u.Get(memberKey(id, ordinal), func(val []byte) error { return nil })
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		err = u.Delete(memberKey(id, ordinal))
		if err != nil {
			return err
		}
	}

	for _, m := range lvl.Members() {
		val, err := encodeMember(m)
		if err != nil {
			return err
		}
		err = u.Set(memberKey(id, m.Ordinal()), val)
		if err != nil {
			return err
		}
	}
	return nil
}

// StoredLevels returns the unique names of the levels in the store.
func (p *Provider) StoredLevels() ([]string, error) {
	it, err := p.store.Iterate(levelsPrefix, append(append([]byte(nil), levelsPrefix...),
		kv.MaxKey...))
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var names []string
	for {
		err = it.Item(
			func(key, val []byte) error {
				names = append(names, string(val))
				return nil
			})
		if err == io.EOF {
			return names, nil
		} else if err != nil {
			return nil, err
		}
	}
}

// DisableLevel marks lvl as not supported natively; filters of its members are evaluated
// by the caller.
func (p *Provider) DisableLevel(lvl *olap.Level) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.disabled[lvl] = struct{}{}
}

func (p *Provider) EnableLevel(lvl *olap.Level) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	delete(p.disabled, lvl)
}

func (p *Provider) levelID(lvl *olap.Level) (uint32, bool) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	if _, ok := p.disabled[lvl]; ok {
		return 0, false
	}
	id, ok := p.levels[lvl]
	return id, ok
}

// NativeSetEvaluator accepts Filter(<level>.Members, <predicate>) for loaded levels where
// the predicate only tests the members of the level with KeyIn, StartsWith, or
// IsCalculated, combined with And, Or, Not, and boolean literals. Tests of other
// hierarchies are evaluated once against the current context of ev.
func (p *Provider) NativeSetEvaluator(fd olap.FunDef, args []olap.Exp, ev *evaluate.Evaluator,
	requester evaluate.Dependent) evaluate.NativeEvaluator {
	if !strings.EqualFold(fd.Name(), "Filter") || len(args) != 2 {
		return nil
	}
	se, ok := args[0].(mdx.Exp)
	if !ok {
		return nil
	}
	c, ok := mdx.IsCall(se, "Members")
	if !ok || len(c.Args) != 1 {
		return nil
	}
	le, ok := c.Args[0].(*mdx.LevelExpr)
	if !ok {
		return nil
	}
	id, ok := p.levelID(le.Level)
	if !ok {
		metrics.NativeRequests.WithLabelValues("unsupported").Inc()
		return nil
	}
	pe, ok := args[1].(mdx.Exp)
	if !ok {
		return nil
	}
	pred, err := translate(pe, le.Level.Hierarchy(), ev)
	if err != nil {
		log.WithFields(log.Fields{
			"level":     le.Level.UniqueName(),
			"predicate": pe.String(),
		}).Debugf("native: %s", err)
		metrics.NativeRequests.WithLabelValues("untranslatable").Inc()
		return nil
	}

	metrics.NativeRequests.WithLabelValues("accepted").Inc()
	return &levelFilter{
		provider: p,
		id:       id,
		level:    le.Level,
		pred:     pred,
		checker:  ev.CancellationChecker(),
	}
}

type predicate func(r record) bool

var errUntranslatable = errors.New("predicate can not be executed natively")

func hierarchyOf(e mdx.Exp) (*olap.Hierarchy, bool) {
	switch e := e.(type) {
	case *mdx.HierarchyExpr:
		return e.Hierarchy, true
	case *mdx.DimensionExpr:
		if hs := e.Dimension.Hierarchies(); len(hs) == 1 {
			return hs[0], true
		}
	}
	return nil, false
}

func constant(b bool) predicate {
	return func(r record) bool {
		return b
	}
}

func translate(e mdx.Exp, h *olap.Hierarchy, ev *evaluate.Evaluator) (predicate, error) {
	if l, ok := e.(*mdx.Literal); ok {
		if b, ok := l.Value.(bool); ok {
			return constant(b), nil
		}
		return nil, errUntranslatable
	}

	c, ok := e.(*mdx.Call)
	if !ok {
		return nil, errUntranslatable
	}
	switch strings.ToLower(c.Name) {
	case "and", "or":
		p1, err := translate(c.Args[0], h, ev)
		if err != nil {
			return nil, err
		}
		p2, err := translate(c.Args[1], h, ev)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(c.Name, "and") {
			return func(r record) bool {
				return p1(r) && p2(r)
			}, nil
		}
		return func(r record) bool {
			return p1(r) || p2(r)
		}, nil
	case "not":
		p, err := translate(c.Args[0], h, ev)
		if err != nil {
			return nil, err
		}
		return func(r record) bool {
			return !p(r)
		}, nil
	case "keyin", "startswith", "iscalculated":
		th, ok := hierarchyOf(c.Args[0])
		if !ok {
			return nil, errUntranslatable
		}
		args, err := fun.MemberTestArgs(c.Args[1:])
		if err != nil {
			return nil, err
		}
		if th != h {
			// Independent of the members being filtered.
			m := ev.Context(th)
			if m == nil {
				return nil, fmt.Errorf("hierarchy %s has no current member", th)
			}
			return constant(testMember(c.Name, args, m)), nil
		}
		return memberTest(c.Name, args), nil
	}
	return nil, errUntranslatable
}

func memberTest(name string, args []string) predicate {
	switch strings.ToLower(name) {
	case "keyin":
		set := map[string]struct{}{}
		for _, k := range args {
			set[k] = struct{}{}
		}
		return func(r record) bool {
			_, ok := set[r.key]
			return ok
		}
	case "startswith":
		prefix := args[0]
		return func(r record) bool {
			return strings.HasPrefix(r.name, prefix)
		}
	case "iscalculated":
		// Stored members are never calculated.
		return constant(false)
	}
	panic(fmt.Sprintf("unexpected member test: %s", name))
}

func testMember(name string, args []string, m *olap.Member) bool {
	if strings.EqualFold(name, "IsCalculated") {
		return m.IsCalculated()
	}
	return memberTest(name, args)(record{name: m.Name(), key: m.Key()})
}

type levelFilter struct {
	provider *Provider
	id       uint32
	level    *olap.Level
	pred     predicate
	checker  evaluate.CancellationChecker
}

func (lf *levelFilter) scan() ([]*olap.Member, error) {
	minKey, maxKey := levelRange(lf.id)
	it, err := lf.provider.store.Iterate(minKey, maxKey)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	stored := lf.level.Members()
	var members []*olap.Member
	for iteration := 0; ; iteration += 1 {
		err = lf.checker.Check(iteration)
		if err != nil {
			return nil, err
		}
		err = it.Item(
			func(key, val []byte) error {
				r, err := decodeMember(val)
				if err != nil {
					return err
				}
				if r.ordinal < 0 || r.ordinal >= len(stored) ||
					stored[r.ordinal].Key() != r.key {
					return fmt.Errorf("native: level %s: member %s is out of date", lf.level,
						r.key)
				}
				if lf.pred(r) {
					members = append(members, stored[r.ordinal])
				}
				return nil
			})
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
	}
	return members, nil
}

// Execute returns a list for the list styles and otherwise an iterable which is not a list.
func (lf *levelFilter) Execute(style olap.ResultStyle) (tuple.Iterable, error) {
	members, err := lf.scan()
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"level":   lf.level.UniqueName(),
		"members": len(members),
		"style":   style,
	}).Trace("native: level filter executed")

	switch style {
	case olap.MutableList:
		return tuple.Unary(members), nil
	case olap.List:
		return tuple.Immutable(tuple.Unary(members)), nil
	}

	return tuple.NewIterable(1,
		func() tuple.Cursor {
			idx := 0
			return tuple.NewCursorFunc(1,
				func() (olap.Tuple, bool, error) {
					if idx >= len(members) {
						return nil, false, nil
					}
					idx += 1
					return olap.Tuple{members[idx-1]}, true, nil
				})
		}), nil
}
