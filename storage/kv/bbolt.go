package kv

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	cubistBucket = []byte{'c', 'u', 'b', 'i', 's', 't'}
)

type bboltKV struct {
	db *bbolt.DB
}

type bboltIterator struct {
	tx     *bbolt.Tx
	cr     *bbolt.Cursor
	minKey []byte
	maxKey []byte
	next   bool
}

type bboltUpdater struct {
	tx  *bbolt.Tx
	bkt *bbolt.Bucket
}

func NewBBolt(dataDir string) (KV, error) {
	os.MkdirAll(dataDir, 0755)

	db, err := bbolt.Open(filepath.Join(dataDir, "cubist.bbolt"), 0644, nil)
	if err != nil {
		return nil, err
	}
	db.NoFreelistSync = true

	err = db.Update(
		func(tx *bbolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(cubistBucket)
			return err
		})
	if err != nil {
		db.Close()
		return nil, err
	}

	return bboltKV{
		db: db,
	}, nil
}

func (bkv bboltKV) begin(writable bool) (*bbolt.Tx, *bbolt.Bucket, error) {
	tx, err := bkv.db.Begin(writable)
	if err != nil {
		return nil, nil, fmt.Errorf("bbolt: begin failed: %s", err)
	}
	bkt := tx.Bucket(cubistBucket)
	if bkt == nil {
		tx.Rollback()
		return nil, nil, errors.New("bbolt: missing cubist bucket")
	}
	return tx, bkt, nil
}

func (bkv bboltKV) Iterate(minKey, maxKey []byte) (Iterator, error) {
	tx, bkt, err := bkv.begin(false)
	if err != nil {
		return nil, err
	}

	return &bboltIterator{
		tx:     tx,
		cr:     bkt.Cursor(),
		minKey: append(make([]byte, 0, len(minKey)), minKey...),
		maxKey: append(make([]byte, 0, len(maxKey)), maxKey...),
	}, nil
}

func (bit *bboltIterator) Item(fn func(key, val []byte) error) error {
	var key, val []byte
	if bit.next {
		key, val = bit.cr.Next()
	} else {
		key, val = bit.cr.Seek(bit.minKey)
		bit.next = true
	}

	if key == nil || bytes.Compare(bit.maxKey, key) < 0 {
		return io.EOF
	}

	return fn(key, val)
}

func (bit *bboltIterator) Close() {
	bit.tx.Rollback()
}

func (bkv bboltKV) Get(key []byte, fn func(val []byte) error) error {
	tx, bkt, err := bkv.begin(false)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	return getBucket(bkt, key, fn)
}

func getBucket(bkt *bbolt.Bucket, key []byte, fn func(val []byte) error) error {
	val := bkt.Get(key)
	if val == nil {
		return io.EOF
	}
	return fn(val)
}

func (bkv bboltKV) Update() (Updater, error) {
	tx, bkt, err := bkv.begin(true)
	if err != nil {
		return nil, err
	}
	return bboltUpdater{
		tx:  tx,
		bkt: bkt,
	}, nil
}

func (bkv bboltKV) Close() error {
	return bkv.db.Close()
}

func (bu bboltUpdater) Get(key []byte, fn func(val []byte) error) error {
	return getBucket(bu.bkt, key, fn)
}

func (bu bboltUpdater) Set(key, val []byte) error {
	return bu.bkt.Put(key, val)
}

func (bu bboltUpdater) Delete(key []byte) error {
	return bu.bkt.Delete(key)
}

func (bu bboltUpdater) Commit(sync bool) error {
	bu.tx.DB().NoSync = !sync
	return bu.tx.Commit()
}

func (bu bboltUpdater) Rollback() {
	bu.tx.Rollback()
}
