// Package apperr defines the layered error used across tmgr.
//
// Every layer reports failures as "<message> (<layer> error: <kind>)". Wrapping
// an *Error in another layer keeps the full inner text as the message, so a
// store failure surfacing through a command reads
//
//	Task starting with id 'x' was not found (db error: No tasks found) (complete error: Database error)
package apperr

import (
	"errors"
	"fmt"
)

// Kind names a failure category within a layer.
type Kind string

// Error is a failure tagged with the layer that produced it.
type Error struct {
	Layer   string
	Kind    Kind
	Message string
	Err     error
}

// New returns an error with its own message and no cause.
func New(layer string, kind Kind, message string) *Error {
	return &Error{Layer: layer, Kind: kind, Message: message}
}

// Newf is New with a formatted message.
func Newf(layer string, kind Kind, format string, args ...any) *Error {
	return New(layer, kind, fmt.Sprintf(format, args...))
}

// Wrap tags err with layer and kind. The displayed message is err's text.
func Wrap(layer string, kind Kind, err error) *Error {
	return &Error{Layer: layer, Kind: kind, Err: err}
}

// Wrapf tags err with layer and kind and prefixes a formatted message.
func Wrapf(layer string, kind Kind, err error, format string, args ...any) *Error {
	return &Error{Layer: layer, Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	msg := e.Message
	switch {
	case e.Err != nil && msg != "":
		msg = msg + ": " + e.Err.Error()
	case e.Err != nil:
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s (%s error: %s)", msg, e.Layer, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether any *Error in err's chain has the given kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
