// Package apperr defines the error taxonomy shared by the ingestion pipeline,
// the storage layer and the HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	KindInternal   Kind = iota
	KindInput           // caller sent something unusable
	KindParse           // an input file could not be read
	KindExtraction      // external extraction service failed
	KindStorage         // snapshot directory or remote store failed
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input_error"
	case KindParse:
		return "parse_error"
	case KindExtraction:
		return "extraction_error"
	case KindStorage:
		return "storage_error"
	default:
		return "internal_error"
	}
}

// HTTPStatus maps the kind onto a response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInput:
		return http.StatusBadRequest
	case KindParse:
		return http.StatusUnprocessableEntity
	case KindExtraction:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error carrying the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with a kind and operation. A nil err yields nil.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Input builds a KindInput error from a message.
func Input(op, msg string) error {
	return &Error{Kind: KindInput, Op: op, Err: errors.New(msg)}
}

// KindOf reports the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the innermost human readable message, without the op chain.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Err.Error()
	}
	return err.Error()
}
