package olap

import (
	"errors"
	"fmt"
)

var (
	ErrCancelled = errors.New("olap: query cancelled")
)

// ResultStyleError is returned at compile time when no compiled form satisfies the result
// styles acceptable to the caller.
type ResultStyleError struct {
	Wanted []ResultStyle
	Got    []ResultStyle
}

func (e *ResultStyleError) Error() string {
	return fmt.Sprintf("olap: result style mismatch: wanted one of %s; got %s",
		formatStyles(e.Wanted), formatStyles(e.Got))
}

// LimitError is returned when an intermediate collection grows past the configured result
// limit.
type LimitError struct {
	Size  int
	Limit int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("olap: size of intermediate result (%d) exceeds limit (%d)", e.Size,
		e.Limit)
}

type Reason int

const (
	Cancelled Reason = iota
	Timeout
)

func (r Reason) String() string {
	if r == Timeout {
		return "timeout"
	}
	return "cancelled"
}

// CancelledError is returned when an execution is cancelled or times out while it is being
// evaluated; errors.Is(err, ErrCancelled) is true for it.
type CancelledError struct {
	Execution string
	Reason    Reason
}

func (e *CancelledError) Error() string {
	if e.Reason == Timeout {
		return fmt.Sprintf("olap: execution %s: query timed out", e.Execution)
	}
	return fmt.Sprintf("olap: execution %s: query cancelled", e.Execution)
}

func (e *CancelledError) Is(target error) bool {
	return target == ErrCancelled
}

// PredicateError wraps an error returned by a predicate while it was evaluated against
// Tuple.
type PredicateError struct {
	Tuple Tuple
	Err   error
}

func (e *PredicateError) Error() string {
	return fmt.Sprintf("olap: predicate failed at %s: %s", e.Tuple, e.Err)
}

func (e *PredicateError) Unwrap() error {
	return e.Err
}

func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

func IsLimit(err error) bool {
	var le *LimitError
	return errors.As(err, &le)
}

// Retryable is true for errors where running the same query again may succeed.
func Retryable(err error) bool {
	return IsCancelled(err) && !IsLimit(err)
}
