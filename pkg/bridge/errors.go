package bridge

import (
	"errors"
	"fmt"
	"os"

	"github.com/entrhq/tangent/pkg/notebook"
	"github.com/entrhq/tangent/pkg/platform"
	"github.com/entrhq/tangent/pkg/recent"
	"github.com/entrhq/tangent/pkg/types"
)

// ErrUnknownCommand is returned by Invoke for an unregistered command name.
var ErrUnknownCommand = errors.New("unknown command")

// Error is a failed bridge operation. Transports report Err's message to the
// caller together with Kind.
type Error struct {
	Kind types.ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the text shown to the user.
func (e *Error) Message() string {
	return e.Err.Error()
}

// invalidArgs builds an invalid-kind error for malformed arguments.
func invalidArgs(op string, format string, args ...interface{}) *Error {
	return &Error{Kind: types.ErrorKindInvalid, Op: op, Err: fmt.Errorf(format, args...)}
}

// wrap classifies err and attaches op. An existing *Error is returned as is.
func wrap(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		return be
	}
	return &Error{Kind: KindOf(err), Op: op, Err: err}
}

// KindOf maps an error from the lower packages onto an ErrorKind.
func KindOf(err error) types.ErrorKind {
	var be *Error
	switch {
	case errors.As(err, &be):
		return be.Kind
	case errors.Is(err, ErrUnknownCommand):
		return types.ErrorKindUnknownCommand
	case errors.Is(err, recent.ErrParse):
		return types.ErrorKindParse
	case errors.Is(err, platform.ErrUnavailable), errors.Is(err, notebook.ErrPathNotText):
		return types.ErrorKindPlatform
	case errors.Is(err, notebook.ErrPathDenied):
		return types.ErrorKindInvalid
	case errors.Is(err, os.ErrNotExist):
		return types.ErrorKindNotFound
	default:
		return types.ErrorKindIO
	}
}
