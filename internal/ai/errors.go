package ai

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks requests rejected before any rate-limit bookkeeping
// or upstream call. ErrRateLimited marks requests dropped by the
// sliding-window gate.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrRateLimited  = errors.New("rate limited")
)

// UpstreamError wraps any failure of the completion model: transport errors,
// API rejections, or output that could not be parsed into the expected shape.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func invalidInput(message string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, message)
}

func upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}
