package mqtt

import "errors"

// ErrAckTimeout is returned when the plant controller does not acknowledge a
// published schedule before the timeout.
var ErrAckTimeout = errors.New("timeout waiting for ack")
