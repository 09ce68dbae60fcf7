package evaluate

// CancellationChecker is called from loops with a counter which increases by one on each
// iteration; it only polls for cancellation every interval iterations.
type CancellationChecker struct {
	canceller Canceller
	interval  int
}

func NewCancellationChecker(canceller Canceller, interval int) CancellationChecker {
	return CancellationChecker{
		canceller: canceller,
		interval:  interval,
	}
}

func (cc CancellationChecker) Check(iteration int) error {
	if cc.canceller == nil || cc.interval <= 0 || iteration%cc.interval != 0 {
		return nil
	}
	return cc.canceller.CheckCancelOrTimeout()
}
