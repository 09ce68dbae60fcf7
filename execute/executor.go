// Package execute runs set expressions to completion: each execution gets its own evaluator,
// its own timeout, and a materialized result.
package execute

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	log "github.com/sirupsen/logrus"

	"github.com/leftmike/cubist/calc"
	"github.com/leftmike/cubist/compile"
	"github.com/leftmike/cubist/evaluate"
	"github.com/leftmike/cubist/mdx"
	"github.com/leftmike/cubist/metrics"
	"github.com/leftmike/cubist/olap"
	"github.com/leftmike/cubist/tuple"
)

const (
	statusOK        = "ok"
	statusCancelled = "cancelled"
	statusTimeout   = "timeout"
	statusLimit     = "limit"
	statusFailed    = "failed"
)

var (
	ErrClosed = errors.New("execute: executor closed")
)

type Result struct {
	Execution string
	// Style is the result style of the compiled expression.
	Style   olap.ResultStyle
	Tuples  tuple.List
	Calc    calc.Calc
	Elapsed time.Duration
}

type Executor struct {
	reader   evaluate.SchemaReader
	settings evaluate.Settings
	pool     *ants.Pool
	wg       sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewExecutor returns an executor which runs at most poolSize submitted executions at a
// time; poolSize <= 0 means no limit.
func NewExecutor(reader evaluate.SchemaReader, settings evaluate.Settings,
	poolSize int) (*Executor, error) {

	pool, err := ants.NewPool(poolSize,
		ants.WithPanicHandler(func(v interface{}) {
			log.WithField("panic", v).Error("execute: submitted execution panicked")
		}))
	if err != nil {
		return nil, fmt.Errorf("execute: %s", err)
	}

	return &Executor{
		reader:   reader,
		settings: settings,
		pool:     pool,
	}, nil
}

func (ex *Executor) Settings() evaluate.Settings {
	return ex.settings
}

// SetSettings changes the settings used by executions started after it returns.
func (ex *Executor) SetSettings(settings evaluate.Settings) {
	ex.settings = settings
}

func (ex *Executor) Compile(e mdx.Exp, styles []olap.ResultStyle) (calc.Calc, error) {
	if len(styles) == 0 {
		styles = olap.AnyOnly
	}
	return compile.New(nil, styles).CompileAs(e, styles)
}

// Execute compiles e as one of styles, evaluates it in a new execution, and returns the
// tuples as a list.
func (ex *Executor) Execute(ctx context.Context, e mdx.Exp,
	styles []olap.ResultStyle) (*Result, error) {

	exec := evaluate.NewExecution(ctx, ex.settings.QueryTimeout)
	defer exec.Cancel()

	le := log.WithField("execution", exec.ID())
	le.WithField("expression", e).Debug("execute: starting")

	res, err := ex.execute(exec, e, styles)
	status := executionStatus(err)
	metrics.Executions.WithLabelValues(status).Inc()
	if err != nil {
		le.WithFields(log.Fields{
			"status":  status,
			"elapsed": exec.Elapsed(),
		}).WithError(err).Info("execute: failed")
		return nil, err
	}

	le.WithFields(log.Fields{
		"style":   res.Style,
		"tuples":  res.Tuples.Size(),
		"elapsed": res.Elapsed,
	}).Debug("execute: done")
	return res, nil
}

func (ex *Executor) execute(exec *evaluate.Execution, e mdx.Exp,
	styles []olap.ResultStyle) (*Result, error) {

	cc, err := ex.Compile(e, styles)
	if err != nil {
		return nil, err
	}

	ev := evaluate.NewEvaluator(exec, ex.reader, ex.settings)
	var it tuple.Iterable
	switch cc := cc.(type) {
	case calc.ListCalc:
		it, err = cc.EvaluateList(ev)
	case calc.IterCalc:
		it, err = cc.EvaluateIterable(ev)
	default:
		return nil, fmt.Errorf("execute: %s does not evaluate to a set", e)
	}
	if err != nil {
		return nil, err
	}

	l, err := tuple.Materialize(it)
	if err != nil {
		return nil, err
	}
	err = ev.CheckResultLimit(l.Size())
	if err != nil {
		return nil, err
	}

	return &Result{
		Execution: exec.ID(),
		Style:     cc.ResultStyle(),
		Tuples:    l,
		Calc:      cc,
		Elapsed:   exec.Elapsed(),
	}, nil
}

func executionStatus(err error) string {
	if err == nil {
		return statusOK
	}

	var ce *olap.CancelledError
	if errors.As(err, &ce) {
		if ce.Reason == olap.Timeout {
			return statusTimeout
		}
		return statusCancelled
	} else if olap.IsLimit(err) {
		return statusLimit
	}
	return statusFailed
}

// Submit runs Execute on the pool and calls fn with the result; it blocks while the pool is
// full.
func (ex *Executor) Submit(ctx context.Context, e mdx.Exp, styles []olap.ResultStyle,
	fn func(res *Result, err error)) error {

	ex.mu.Lock()
	if ex.closed {
		ex.mu.Unlock()
		return ErrClosed
	}
	ex.wg.Add(1)
	ex.mu.Unlock()

	err := ex.pool.Submit(
		func() {
			defer ex.wg.Done()
			fn(ex.Execute(ctx, e, styles))
		})
	if err != nil {
		ex.wg.Done()
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrClosed
		}
		return fmt.Errorf("execute: %s", err)
	}
	return nil
}

// Close waits for submitted executions to finish and then releases the pool. Submit fails
// with ErrClosed once Close has been called.
func (ex *Executor) Close() {
	ex.mu.Lock()
	if ex.closed {
		ex.mu.Unlock()
		return
	}
	ex.closed = true
	ex.mu.Unlock()

	ex.wg.Wait()
	ex.pool.Release()
}
