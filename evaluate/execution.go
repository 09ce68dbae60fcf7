package evaluate

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/leftmike/cubist/metrics"
	"github.com/leftmike/cubist/olap"
)

// Canceller is polled by a CancellationChecker.
type Canceller interface {
	CheckCancelOrTimeout() error
}

// Execution is one run of a query; it is the unit of cancellation.
type Execution struct {
	id     uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc
	start  time.Time
}

// NewExecution starts an execution which is cancelled when ctx is done, when Cancel is
// called, or after timeout if timeout is not zero.
func NewExecution(ctx context.Context, timeout time.Duration) *Execution {
	if ctx == nil {
		ctx = context.Background()
	}

	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	return &Execution{
		id:     uuid.New(),
		ctx:    ctx,
		cancel: cancel,
		start:  time.Now(),
	}
}

func (exec *Execution) ID() string {
	return exec.id.String()
}

func (exec *Execution) Context() context.Context {
	return exec.ctx
}

func (exec *Execution) Elapsed() time.Duration {
	return time.Since(exec.start)
}

func (exec *Execution) Cancel() {
	exec.cancel()
}

// CheckCancelOrTimeout returns a *olap.CancelledError once the execution has been cancelled
// or has timed out.
func (exec *Execution) CheckCancelOrTimeout() error {
	select {
	case <-exec.ctx.Done():
	default:
		return nil
	}

	reason := olap.Cancelled
	if errors.Is(exec.ctx.Err(), context.DeadlineExceeded) {
		reason = olap.Timeout
	}
	metrics.Cancellations.WithLabelValues(reason.String()).Inc()
	return &olap.CancelledError{
		Execution: exec.ID(),
		Reason:    reason,
	}
}
