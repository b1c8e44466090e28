package vault

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse is returned when a 200 read does not carry a
// {"data":{"state":"..."}} envelope.
var ErrMalformedResponse = errors.New("malformed vault response")

// ErrInvalidUTF8 is returned by SetValue for a value that JSON cannot carry
// unchanged.
var ErrInvalidUTF8 = errors.New("state is not valid UTF-8")

type Op string

const (
	OpPersist Op = "persist"
	OpRead    Op = "read"
)

// StatusError reports a response status outside the success set of Op.
type StatusError struct {
	Op         Op
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Op == OpRead {
		return fmt.Sprintf("failed to read from vault with status code %d", e.StatusCode)
	}
	return fmt.Sprintf("failed to persist with status code %d", e.StatusCode)
}

// ResponseTooLargeError reports a read response body longer than the
// configured cap. The body was not decoded.
type ResponseTooLargeError struct {
	Limit int64
}

func (e *ResponseTooLargeError) Error() string {
	return fmt.Sprintf("vault response exceeds %d bytes", e.Limit)
}

// StateTooLargeError reports a state whose encoded write body could not be
// returned by a later read. No request was sent.
type StateTooLargeError struct {
	Size  int64
	Limit int64
}

func (e *StateTooLargeError) Error() string {
	return fmt.Sprintf("encoded state is %d bytes, limit is %d", e.Size, e.Limit)
}
