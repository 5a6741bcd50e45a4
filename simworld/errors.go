package simworld

import "errors"

// ErrPastObjectIntroduction is returned when a buffered write tries to
// introduce or relocate an object strictly before the candidate world's
// current coordinate time.
var ErrPastObjectIntroduction = errors.New("simworld: past object introduction")

// ErrUnknownObject is returned by State/StateInFrame for an object id the
// world has never seen.
var ErrUnknownObject = errors.New("simworld: unknown object")

// ErrExcessiveRetries is returned by the scheduler when RetrySmallerStep
// bisection fails to converge within the configured retry budget.
var ErrExcessiveRetries = errors.New("simworld: excessive retries")
