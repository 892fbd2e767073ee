package extract

import (
	"errors"
	"fmt"
)

// Sentinel failures the model reports in place of data. Callers must treat
// these as run-stopping errors, never as a zero-difference result.
var (
	ErrInputsTooSimilar = errors.New("images are too similar to detect meaningful differences")
	ErrInvalidInputType = errors.New("inputs are not valid webpage screenshots")
)

// MalformedResponseError means no valid structure could be recovered from the
// model output. Raw carries the original text for diagnostics.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// UpstreamError is an error sentinel with a code this agent does not
// recognize.
type UpstreamError struct {
	Code    string
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("model returned error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("model returned error %s", e.Code)
}
