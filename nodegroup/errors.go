package nodegroup

import "fmt"

// ErrCode is a small closed error code enum.
type ErrCode int

const (
	ErrInvalidArgs ErrCode = iota
	ErrAlreadyExists
	ErrNotFound
)

func (c ErrCode) String() string {
	switch c {
	case ErrInvalidArgs:
		return "INVALID_ARGS"
	case ErrAlreadyExists:
		return "ALREADY_EXISTS"
	case ErrNotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

type Error struct {
	Code   ErrCode
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func errInvalidArgs(reason string) error   { return &Error{Code: ErrInvalidArgs, Reason: reason} }
func errAlreadyExists(name string) error   { return &Error{Code: ErrAlreadyExists, Reason: "group " + name} }
func errNotFoundCode() error               { return &Error{Code: ErrNotFound} }

// IsErrCode reports whether err is a *Error with the given code.
func IsErrCode(err error, code ErrCode) bool {
	e, ok := err.(*Error)
	return ok && e.Code == code
}
