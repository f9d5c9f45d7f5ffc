package errors

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeInternal    ErrorType = "INTERNAL"
	ErrTypeUnavailable ErrorType = "UNAVAILABLE"
)

type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		stack = goerrors.Wrap(err, 2).Stack()
	} else {
		stack = goerrors.New(message).Stack()
	}
	return &DomainError{Type: errType, Message: message, Err: err, Stack: stack}
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}

func Unavailable(message string, err error) *DomainError {
	return New(ErrTypeUnavailable, message, err)
}

// RemoteError carries an error message returned by another service.
type RemoteError string

func (e RemoteError) Error() string { return string(e) }

func Remote(message string) error {
	return RemoteError(message)
}
