package kv_test

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/leftmike/cubist/storage/kv"
	"github.com/leftmike/cubist/testutil"
)

const (
	iterateCmd = iota
	getCmd
	updaterCmd
	updateCmd
	commitCmd
	rollbackCmd
)

type keyVal struct {
	key string
	val string
}

type kvCmd struct {
	fln     testutil.FileLineNumber
	cmd     int
	fail    bool
	key     string
	maxKey  string
	oldVal  string
	newVal  string
	keyVals []keyVal
}

func fln() testutil.FileLineNumber {
	return testutil.MakeFileLineNumber()
}

func getVal(get func([]byte, func([]byte) error) error, key string) (string, error) {
	var s string
	err := get([]byte(key),
		func(val []byte) error {
			s = string(val)
			return nil
		})
	if err == io.EOF {
		return "", nil
	}
	return s, err
}

func runKVTest(t *testing.T, st kv.KV, cmds []kvCmd) {
	t.Helper()

	var updater kv.Updater
	for _, cmd := range cmds {
		switch cmd.cmd {
		case iterateCmd:
			maxKey := kv.MaxKey
			if cmd.maxKey != "" {
				maxKey = []byte(cmd.maxKey)
			}
			keyVals := cmd.keyVals
			it, err := st.Iterate([]byte(cmd.key), maxKey)
			if err != nil {
				t.Errorf("%sIterate() failed with %s", cmd.fln, err)
				break
			}

			for {
				err := it.Item(
					func(key, val []byte) error {
						if len(keyVals) == 0 {
							return errors.New("too many key vals")
						}
						if string(key) != keyVals[0].key {
							return fmt.Errorf("key: got %s want %s", string(key), keyVals[0].key)
						}
						if string(val) != keyVals[0].val {
							return fmt.Errorf("val: got %s want %s", string(val), keyVals[0].val)
						}
						keyVals = keyVals[1:]
						return nil
					})
				if err != nil {
					if err != io.EOF {
						t.Errorf("%sIterate() failed with %s", cmd.fln, err)
					}
					break
				}
			}
			if len(keyVals) > 0 {
				t.Errorf("%sIterate() not enough key vals: %d", cmd.fln, len(keyVals))
			}
			it.Close()

		case getCmd:
			val, err := getVal(st.Get, cmd.key)
			if err != nil {
				t.Errorf("%sGet(%s) failed with %s", cmd.fln, cmd.key, err)
			} else if val != cmd.oldVal {
				t.Errorf("%sGet(%s) got %s want %s", cmd.fln, cmd.key, val, cmd.oldVal)
			}

		case updaterCmd:
			if updater != nil {
				panic("updater: updater is not nil")
			}

			var err error
			updater, err = st.Update()
			if err != nil {
				t.Fatalf("%sUpdate() failed with %s", cmd.fln, err)
			}

		case updateCmd:
			if updater == nil {
				panic("update: updater is nil")
			}

			val, err := getVal(updater.Get, cmd.key)
			if err != nil {
				t.Errorf("%sGet(%s) failed with %s", cmd.fln, cmd.key, err)
				break
			}
			if val != cmd.oldVal {
				t.Errorf("%sGet(%s) got %s want %s", cmd.fln, cmd.key, val, cmd.oldVal)
			}
			if cmd.newVal == "" {
				err = updater.Delete([]byte(cmd.key))
			} else {
				err = updater.Set([]byte(cmd.key), []byte(cmd.newVal))
			}
			if err != nil {
				t.Errorf("%sSet(%s) failed with %s", cmd.fln, cmd.key, err)
			}

		case commitCmd:
			if updater == nil {
				panic("commit: updater is nil")
			}
			err := updater.Commit(true)
			if cmd.fail {
				if err == nil {
					t.Errorf("%sCommit() did not fail", cmd.fln)
				}
			} else if err != nil {
				t.Errorf("%sCommit() failed with %s", cmd.fln, err)
			}
			updater = nil

		case rollbackCmd:
			if updater == nil {
				panic("rollback: updater is nil")
			}
			updater.Rollback()
			updater = nil

		default:
			panic(fmt.Sprintf("unexpected command: %d", cmd.cmd))
		}
	}
}

func testKV(t *testing.T, st kv.KV) {
	t.Helper()

	runKVTest(t, st,
		[]kvCmd{
			{fln: fln(), cmd: iterateCmd, key: "A"},
			{fln: fln(), cmd: getCmd, key: "Aaaa"},
			{fln: fln(), cmd: updaterCmd},
			{fln: fln(), cmd: updateCmd, key: "Aaaa", newVal: "aaa@2"},
			{fln: fln(), cmd: updateCmd, key: "Accc", newVal: "ccc@2"},
			{fln: fln(), cmd: updateCmd, key: "Abbb", newVal: "bbb@2"},
			{fln: fln(), cmd: updateCmd, key: "Bzzz", newVal: "zzz@2"},
			{fln: fln(), cmd: updateCmd, key: "Abbb", oldVal: "bbb@2", newVal: "bbb@2"},
			{fln: fln(), cmd: commitCmd},

			{fln: fln(), cmd: getCmd, key: "Aaaa", oldVal: "aaa@2"},
			{fln: fln(), cmd: iterateCmd, key: "A", maxKey: "A\xFF",
				keyVals: []keyVal{
					{"Aaaa", "aaa@2"},
					{"Abbb", "bbb@2"},
					{"Accc", "ccc@2"},
				},
			},
			{fln: fln(), cmd: iterateCmd, key: "Abbb", maxKey: "Accc",
				keyVals: []keyVal{
					{"Abbb", "bbb@2"},
					{"Accc", "ccc@2"},
				},
			},

			{fln: fln(), cmd: updaterCmd},
			{fln: fln(), cmd: updateCmd, key: "Abbb", oldVal: "bbb@2", newVal: "bbb@3"},
			{fln: fln(), cmd: updateCmd, key: "Addd", newVal: "ddd@3"},
			{fln: fln(), cmd: updateCmd, key: "Bzzz", oldVal: "zzz@2"},
			{fln: fln(), cmd: commitCmd},

			{fln: fln(), cmd: iterateCmd, key: "A",
				keyVals: []keyVal{
					{"Aaaa", "aaa@2"},
					{"Abbb", "bbb@3"},
					{"Accc", "ccc@2"},
					{"Addd", "ddd@3"},
				},
			},

			{fln: fln(), cmd: updaterCmd},
			{fln: fln(), cmd: updateCmd, key: "Abbb", oldVal: "bbb@3", newVal: "bbb@4"},
			{fln: fln(), cmd: rollbackCmd},

			{fln: fln(), cmd: getCmd, key: "Abbb", oldVal: "bbb@3"},
			{fln: fln(), cmd: getCmd, key: "Bzzz"},
			{fln: fln(), cmd: iterateCmd, key: "A",
				keyVals: []keyVal{
					{"Aaaa", "aaa@2"},
					{"Abbb", "bbb@3"},
					{"Accc", "ccc@2"},
					{"Addd", "ddd@3"},
				},
			},
		})
}

func TestBTreeKV(t *testing.T) {
	testKV(t, kv.NewBTree())
}

func TestBBoltKV(t *testing.T) {
	dataDir := filepath.Join("testdata", "bbolt_kv")
	err := testutil.CleanDir(dataDir, []string{".gitignore"})
	if err != nil {
		t.Fatal(err)
	}

	st, err := kv.NewBBolt(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	testKV(t, st)
}

func TestBadgerKV(t *testing.T) {
	dataDir := filepath.Join("testdata", "badger_kv")
	err := testutil.CleanDir(dataDir, []string{".gitignore"})
	if err != nil {
		t.Fatal(err)
	}

	st, err := kv.NewBadger(dataDir,
		testutil.SetupLogger(filepath.Join("testdata", "badger_kv.log")))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	testKV(t, st)
}

func TestPebbleKV(t *testing.T) {
	dataDir := filepath.Join("testdata", "pebble_kv")
	err := testutil.CleanDir(dataDir, []string{".gitignore"})
	if err != nil {
		t.Fatal(err)
	}

	st, err := kv.NewPebble(dataDir,
		testutil.SetupLogger(filepath.Join("testdata", "pebble_kv.log")))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	testKV(t, st)
}

func TestOpen(t *testing.T) {
	for _, name := range []string{"btree", "memory"} {
		st, err := kv.Open(name, "", nil)
		if err != nil {
			t.Errorf("Open(%s) failed with %s", name, err)
			continue
		}
		st.Close()
	}

	_, err := kv.Open("unknown", "", nil)
	if err == nil {
		t.Error("Open(unknown) did not fail")
	}
}
