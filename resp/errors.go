package resp

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotComplete signals that the buffer holds a strict prefix of a
// frame. It is the only recoverable decode outcome; every other error
// is fatal for the connection that produced it.
var ErrNotComplete = errors.New("resp: buffer holds a partial frame")

// DecodeError wraps a fatal decode failure with the reason it
// occurred. Compare against the sentinel constructors below with
// errors.As, never by matching the Error() string.
type DecodeError struct {
	Reason string
	cause  error
}

func (e *DecodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("resp: %s: %v", e.Reason, e.cause)
	}
	return fmt.Sprintf("resp: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.cause }

func errInvalidFrameType(b byte) error {
	return &DecodeError{Reason: fmt.Sprintf("invalid frame type %q", b)}
}

func errInvalidFrame(reason string) error {
	return &DecodeError{Reason: reason}
}

func errInvalidFrameLength(n int64) error {
	return &DecodeError{Reason: fmt.Sprintf("invalid frame length %d", n)}
}

func errParse(cause error) error {
	return &DecodeError{Reason: "parse error", cause: errors.WithStack(cause)}
}
