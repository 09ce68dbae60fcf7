package kv

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/dgraph-io/badger"
	log "github.com/sirupsen/logrus"
)

type badgerKV struct {
	mutex sync.Mutex
	db    *badger.DB
}

type badgerIterator struct {
	tx     *badger.Txn
	it     *badger.Iterator
	maxKey []byte
}

type badgerUpdater struct {
	kv *badgerKV
	tx *badger.Txn
}

func NewBadger(dataDir string, logger *log.Logger) (KV, error) {
	os.MkdirAll(dataDir, 0755)

	opts := badger.DefaultOptions(dataDir)
	opts = opts.WithBypassLockGuard(true)
	opts = opts.WithSyncWrites(false)
	if logger != nil {
		opts = opts.WithLogger(logger)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerKV{
		db: db,
	}, nil
}

func (bkv *badgerKV) Iterate(minKey, maxKey []byte) (Iterator, error) {
	tx := bkv.db.NewTransaction(false)
	it := tx.NewIterator(badger.DefaultIteratorOptions)
	it.Seek(minKey)

	return badgerIterator{
		tx:     tx,
		it:     it,
		maxKey: append(make([]byte, 0, len(maxKey)), maxKey...),
	}, nil
}

func (bit badgerIterator) Item(fn func(key, val []byte) error) error {
	if !bit.it.Valid() {
		return io.EOF
	}

	item := bit.it.Item()
	key := item.Key()
	if bytes.Compare(bit.maxKey, key) < 0 {
		return io.EOF
	}
	err := item.Value(
		func(val []byte) error {
			return fn(key, val)
		})
	if err != nil {
		return err
	}

	bit.it.Next()
	return nil
}

func (bit badgerIterator) Close() {
	bit.it.Close()
	bit.tx.Discard()
}

func (bkv *badgerKV) Get(key []byte, fn func(val []byte) error) error {
	tx := bkv.db.NewTransaction(false)
	defer tx.Discard()

	return getTxn(tx, key, fn)
}

func getTxn(tx *badger.Txn, key []byte, fn func(val []byte) error) error {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return io.EOF
		}
		return err
	}
	return item.Value(
		func(val []byte) error {
			return fn(val)
		})
}

func (bkv *badgerKV) Update() (Updater, error) {
	bkv.mutex.Lock()

	return badgerUpdater{
		kv: bkv,
		tx: bkv.db.NewTransaction(true),
	}, nil
}

func (bkv *badgerKV) Close() error {
	return bkv.db.Close()
}

func (bu badgerUpdater) Get(key []byte, fn func(val []byte) error) error {
	return getTxn(bu.tx, key, fn)
}

func (bu badgerUpdater) Set(key, val []byte) error {
	return bu.tx.Set(append([]byte(nil), key...), append([]byte(nil), val...))
}

func (bu badgerUpdater) Delete(key []byte) error {
	return bu.tx.Delete(append([]byte(nil), key...))
}

func (bu badgerUpdater) Commit(sync bool) error {
	err := bu.tx.Commit()
	if err == nil && sync {
		err = bu.kv.db.Sync()
	}
	bu.kv.mutex.Unlock()
	return err
}

func (bu badgerUpdater) Rollback() {
	bu.tx.Discard()
	bu.kv.mutex.Unlock()
}
