package core

import (
	"errors"
	"strings"
)

// ErrValidation is matched by every ValidationError via errors.Is.
var ErrValidation = errors.New("invalid message")

// ValidationError reports the message fields that were blank. Nothing is
// stored when it is returned.
type ValidationError struct {
	Fields []string // wire names, e.g. "target", "sender", "text"
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Fields, ", ") + " must not be blank"
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
