package api

import (
	"fmt"
	"regexp"

	"github.com/aqua-stark/world-binding/common/errors"
)

var quotedReasonRegexp = regexp.MustCompile(`'([^']+)'|"([^"]+)"`)

// DispatchError is a transport failure classified by the dispatcher. It
// matches ErrDispatch and unwraps to the original transport error.
type DispatchError struct {
	Channel    Channel
	Target     string
	Entrypoint string
	Err        error
}

// NewDispatchError wraps a transport error.
func NewDispatchError(channel Channel, target, entrypoint string, err error) *DispatchError {
	return &DispatchError{
		Channel:    channel,
		Target:     target,
		Entrypoint: entrypoint,
		Err:        err,
	}
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%v: %s %s::%s: %v", ErrDispatch, e.Channel, e.Target, e.Entrypoint, e.Err)
}

// Unwrap exposes both the classification and the original error.
func (e *DispatchError) Unwrap() []error {
	return []error{ErrDispatch, e.Err}
}

// RevertReason returns the human readable reason of a failed dispatch.
//
// Reverts embed the reason as a quoted string in the transport message,
// e.g. "Failure reason: 0x... ('Username is too long')". When no quoted
// reason is present the original transport message is returned.
func RevertReason(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	var de *DispatchError
	if errors.As(err, &de) && de.Err != nil {
		msg = de.Err.Error()
	}

	m := quotedReasonRegexp.FindStringSubmatch(msg)
	switch {
	case m == nil:
		return msg
	case m[1] != "":
		return m[1]
	default:
		return m[2]
	}
}
