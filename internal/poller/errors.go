package poller

import "errors"

// ErrWriteFailed indicates one or more batch writes were rejected by a
// sink during a cycle. The wrapped error chain names every rejection.
var ErrWriteFailed = errors.New("batch write failed")
