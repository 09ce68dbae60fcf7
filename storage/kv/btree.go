package kv

import (
	"bytes"
	"io"
	"sync"

	"github.com/google/btree"
)

type btreeKV struct {
	treeMutex   sync.Mutex
	updateMutex sync.Mutex
	tree        *btree.BTree
}

type btreeIterator struct {
	idx   int
	items []btreeItem
}

type btreeUpdater struct {
	bkv  *btreeKV
	tree *btree.BTree
}

type btreeItem struct {
	key []byte
	val []byte
}

func (bi btreeItem) Less(item btree.Item) bool {
	bi2 := item.(btreeItem)
	return bytes.Compare(bi.key, bi2.key) < 0
}

// NewBTree returns a store which keeps everything in memory. Iterators see a snapshot and
// updaters work on a copy of the tree which replaces the original on commit.
func NewBTree() KV {
	return &btreeKV{
		tree: btree.New(16),
	}
}

func (bkv *btreeKV) snapshot() *btree.BTree {
	bkv.treeMutex.Lock()
	defer bkv.treeMutex.Unlock()

	return bkv.tree
}

func (bkv *btreeKV) Iterate(minKey, maxKey []byte) (Iterator, error) {
	var items []btreeItem
	bkv.snapshot().AscendGreaterOrEqual(btreeItem{key: minKey},
		func(item btree.Item) bool {
			bi := item.(btreeItem)
			if bytes.Compare(maxKey, bi.key) < 0 {
				return false
			}
			items = append(items, bi)
			return true
		})

	return &btreeIterator{
		items: items,
	}, nil
}

func (bit *btreeIterator) Item(fn func(key, val []byte) error) error {
	if bit.idx == len(bit.items) {
		return io.EOF
	}

	err := fn(bit.items[bit.idx].key, bit.items[bit.idx].val)
	bit.idx += 1
	return err
}

func (bit *btreeIterator) Close() {
	// Nothing.
}

func getItem(tree *btree.BTree, key []byte, fn func(val []byte) error) error {
	item := tree.Get(btreeItem{key: key})
	if item == nil {
		return io.EOF
	}
	return fn(item.(btreeItem).val)
}

func (bkv *btreeKV) Get(key []byte, fn func(val []byte) error) error {
	return getItem(bkv.snapshot(), key, fn)
}

func (bkv *btreeKV) Update() (Updater, error) {
	bkv.updateMutex.Lock()

	bkv.treeMutex.Lock()
	tree := bkv.tree.Clone()
	bkv.treeMutex.Unlock()

	return btreeUpdater{
		bkv:  bkv,
		tree: tree,
	}, nil
}

func (bkv *btreeKV) Close() error {
	return nil
}

func (bu btreeUpdater) Get(key []byte, fn func(val []byte) error) error {
	return getItem(bu.tree, key, fn)
}

func (bu btreeUpdater) Set(key, val []byte) error {
	bu.tree.ReplaceOrInsert(btreeItem{
		key: append([]byte(nil), key...),
		val: append([]byte(nil), val...),
	})
	return nil
}

func (bu btreeUpdater) Delete(key []byte) error {
	bu.tree.Delete(btreeItem{key: key})
	return nil
}

func (bu btreeUpdater) Commit(sync bool) error {
	bu.bkv.treeMutex.Lock()
	bu.bkv.tree = bu.tree
	bu.bkv.treeMutex.Unlock()

	bu.bkv.updateMutex.Unlock()
	return nil
}

func (bu btreeUpdater) Rollback() {
	bu.bkv.updateMutex.Unlock()
}
