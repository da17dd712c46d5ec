package store

import (
	"context"
	"errors"
	"fmt"

	basebigt "github.com/streamingfast/cfstore/base/bigt"
)

var (
	ErrNotConnected    = errors.New("client not connected")
	ErrTableExists     = errors.New("table already exists")
	ErrTableNotFound   = errors.New("table not found")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Kind is the failure category of an `OpError`.
type Kind uint8

const (
	KindIO Kind = iota
	KindConnection
	KindClose
	KindInvalidArgument
	KindNotFound
	KindExists
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindConnection:
		return "connection"
	case KindClose:
		return "close"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindExists:
		return "exists"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// OpError is returned by every failing `Client` operation.
type OpError struct {
	Op    string
	Table string
	Kind  Kind
	Err   error
}

func (e *OpError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("%s (%s): %s", e.Op, e.Kind, e.Err)
	}

	return fmt.Sprintf("%s %s (%s): %s", e.Op, e.Table, e.Kind, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// IsKind reports whether `err` is an `*OpError` of the given kind.
func IsKind(err error, kind Kind) bool {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Kind == kind
	}
	return false
}

func newOpError(op, table string, err error) *OpError {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr
	}

	return &OpError{Op: op, Table: table, Kind: kindOf(err), Err: err}
}

func kindOf(err error) Kind {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Kind
	}

	switch {
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrTableNotFound), basebigt.IsNotFoundError(err):
		return KindNotFound
	case errors.Is(err, ErrTableExists), basebigt.IsAlreadyExistsError(err):
		return KindExists
	case errors.Is(err, ErrNotConnected):
		return KindConnection
	}

	return KindIO
}

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

type ErrColumnNotPresent struct {
	familyColumn string
}

func NewErrColumnNotPresent(familyColumn string) *ErrColumnNotPresent {
	return &ErrColumnNotPresent{familyColumn: familyColumn}
}

func (e *ErrColumnNotPresent) Error() string {
	return fmt.Sprintf("column '%s' not present", e.familyColumn)
}

func IsErrColumnNotPresent(err error) bool {
	var target *ErrColumnNotPresent
	return errors.As(err, &target)
}

type ErrEmptyValue struct {
	familyColumn string
}

func NewErrEmptyValue(familyColumn string) *ErrEmptyValue {
	return &ErrEmptyValue{familyColumn: familyColumn}
}

func (e *ErrEmptyValue) Error() string {
	return fmt.Sprintf("value '%s' present but empty", e.familyColumn)
}

func IsErrEmptyValue(err error) bool {
	var target *ErrEmptyValue
	return errors.As(err, &target)
}
