package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrModelUnavailable   = errors.New("model unavailable")
	ErrModelOutputInvalid = errors.New("model output invalid")
	ErrScanJobNotFound    = errors.New("scan job not found")
	ErrFeatureDisabled    = errors.New("feature disabled")
	ErrTemporary          = errors.New("temporary failure")

	errInvalidDateLiteral = errors.New("date must be a JSON string")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// ModelOutputError is returned when model text could not be recovered into
// the expected structure. Sample is a bounded excerpt of the offending text.
type ModelOutputError struct {
	Stage  string
	Sample string
	Err    error
}

func (e *ModelOutputError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s at stage %s", ErrModelOutputInvalid, e.Stage)
	}
	return fmt.Sprintf("%s at stage %s: %v", ErrModelOutputInvalid, e.Stage, e.Err)
}

func (e *ModelOutputError) Is(target error) bool {
	return target == ErrModelOutputInvalid
}

func (e *ModelOutputError) Unwrap() error {
	return e.Err
}

// AsModelOutputError extracts stage and sample details from a wrapped error.
func AsModelOutputError(err error) (*ModelOutputError, bool) {
	var out *ModelOutputError
	if errors.As(err, &out) {
		return out, true
	}
	return nil, false
}
