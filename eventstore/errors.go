package eventstore

import (
	"errors"
	"fmt"
)

// ErrIntegrity is wrapped by a SerializationError when a stored record is
// well-formed but does not belong where it was found.
var ErrIntegrity = errors.New("data integrity fault")

// IOError reports a failure of the underlying storage, such as a full disk or
// a permission problem. It is never retried by the store.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// SerializationError reports a document that is malformed, incomplete or
// otherwise cannot be converted to or from its domain type.
type SerializationError struct {
	// Source names the file or item the document came from, if known.
	Source string

	// Field is the offending document field, if any.
	Field string

	Err error
}

func (e *SerializationError) Error() string {
	msg := "serialization error"
	if e.Source != "" {
		msg += " in " + e.Source
	}
	if e.Field != "" {
		msg += fmt.Sprintf(": field %q", e.Field)
	}
	return msg + ": " + e.Err.Error()
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
