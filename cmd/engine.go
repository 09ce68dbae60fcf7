package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/leftmike/cubist/execute"
	"github.com/leftmike/cubist/native"
	"github.com/leftmike/cubist/schema"
	"github.com/leftmike/cubist/storage/kv"
)

type engine struct {
	schema   *schema.Schema
	store    kv.KV
	executor *execute.Executor
}

// openEngine loads the schema, stores its members in the native store, and starts an
// executor using the current config.
func openEngine() (*engine, error) {
	s, err := schema.LoadFile(*params.Schema)
	if err != nil {
		return nil, fmt.Errorf("cubist: %s", err)
	}

	if *params.Store != "btree" && *params.Store != "memory" {
		err = os.MkdirAll(*params.Data, 0755)
		if err != nil {
			return nil, fmt.Errorf("cubist: %s", err)
		}
	}
	store, err := kv.Open(*params.Store, *params.Data, log.StandardLogger())
	if err != nil {
		return nil, fmt.Errorf("cubist: %s", err)
	}

	provider := native.NewProvider(store)
	err = provider.Load(s.Hierarchies()...)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("cubist: %s", err)
	}

	settings, err := params.Settings(cfg)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("cubist: %s", err)
	}
	ex, err := execute.NewExecutor(schema.NewReader(s, provider), settings, *params.PoolSize)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("cubist: %s", err)
	}

	log.WithFields(log.Fields{
		"schema": *params.Schema,
		"store":  *params.Store,
		"data":   *params.Data,
	}).Info("cubist: engine open")
	return &engine{
		schema:   s,
		store:    store,
		executor: ex,
	}, nil
}

func (e *engine) Close() {
	e.executor.Close()
	err := e.store.Close()
	if err != nil {
		log.WithField("store", *params.Store).WithError(err).Error("cubist: closing store")
	}
}
