package config

import (
	"fmt"
	"time"

	"github.com/leftmike/cubist/evaluate"
)

// Params are the variables which control query execution.
type Params struct {
	ResultLimit         *int
	CheckCancelInterval *int
	QueryTimeout        *time.Duration
	PoolSize            *int
	Store               *string
	Data                *string
	Schema              *string
}

func (c *Config) Params() *Params {
	return &Params{
		ResultLimit: c.Var(new(int), "result_limit").Env("CUBIST_RESULT_LIMIT").
			Usage("maximum size of an intermediate set; 0 means no limit").Int(0),
		CheckCancelInterval: c.Var(new(int), "check_cancel_interval").
			Usage("iterations between checks for cancellation; 0 disables checking").
			Int(evaluate.DefaultCheckCancelInterval),
		QueryTimeout: c.Var(new(time.Duration), "query_timeout").Env("CUBIST_QUERY_TIMEOUT").
			Usage("maximum time a query may run; 0 means no timeout").Duration(0),
		PoolSize: c.Var(new(int), "pool_size").
			Usage("maximum number of concurrent executions").Int(8),
		Store: c.Var(new(string), "store").Env("CUBIST_STORE").
			Usage("native store: btree, bbolt, badger, or pebble").String("btree"),
		Data: c.Var(new(string), "data").Env("CUBIST_DATA").
			Usage("`directory` for native store data").String("testdata"),
		Schema: c.Var(new(string), "schema").Short("c").Env("CUBIST_SCHEMA").
			Usage("cube definition `file`").String("cube.hcl"),
	}
}

// Settings returns the evaluation settings for the current values of the params and the
// engine flags of c.
func (p *Params) Settings(c *Config) (evaluate.Settings, error) {
	if *p.ResultLimit < 0 {
		return evaluate.Settings{}, fmt.Errorf("config: result_limit must not be negative: %d",
			*p.ResultLimit)
	}
	if *p.CheckCancelInterval < 0 {
		return evaluate.Settings{},
			fmt.Errorf("config: check_cancel_interval must not be negative: %d",
				*p.CheckCancelInterval)
	}
	if *p.QueryTimeout < 0 {
		return evaluate.Settings{}, fmt.Errorf("config: query_timeout must not be negative: %s",
			*p.QueryTimeout)
	}

	return evaluate.Settings{
		Flags:               append(c.Flags()[:0:0], c.Flags()...),
		ResultLimit:         *p.ResultLimit,
		CheckCancelInterval: *p.CheckCancelInterval,
		QueryTimeout:        *p.QueryTimeout,
	}, nil
}
