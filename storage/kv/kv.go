// Package kv is an ordered key-value store with interchangeable backends: an in-memory
// btree, bbolt, badger, and pebble.
package kv

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Iterator returns io.EOF from Item once there are no more keys.
type Iterator interface {
	Item(fn func(key, val []byte) error) error
	Close()
}

// Updater batches changes which become visible together when they are committed. Only one
// updater may be active at a time; Update blocks until the previous one is finished.
type Updater interface {
	Get(key []byte, fn func(val []byte) error) error
	Set(key, val []byte) error
	Delete(key []byte) error
	Commit(sync bool) error
	Rollback()
}

type KV interface {
	// Iterate returns the keys from minKey up to and including maxKey in order.
	Iterate(minKey, maxKey []byte) (Iterator, error)
	// Get returns io.EOF if key is not found.
	Get(key []byte, fn func(val []byte) error) error
	Update() (Updater, error)
	Close() error
}

var (
	// MaxKey sorts after every key used by the stores.
	MaxKey = []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

	Backends = []string{"btree", "bbolt", "badger", "pebble"}
)

// Open returns the backend named by name; dataDir is ignored by the btree backend.
func Open(name, dataDir string, logger *log.Logger) (KV, error) {
	switch name {
	case "btree", "memory":
		return NewBTree(), nil
	case "bbolt":
		return NewBBolt(dataDir)
	case "badger":
		return NewBadger(dataDir, logger)
	case "pebble":
		return NewPebble(dataDir, logger)
	}
	return nil, fmt.Errorf("kv: unknown store: %s", name)
}
