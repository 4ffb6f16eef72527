package board

import (
	"errors"
	"fmt"
)

// Kind classifies a rejected operation.
type Kind int

const (
	// KindPrecondition is a recoverable warning; nothing was written.
	KindPrecondition Kind = iota + 1
	KindForbidden
	KindNotFound
	KindInvalid
)

// Error is returned for every operation rejected before a write.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func warning(code, message string) *Error {
	return &Error{Kind: KindPrecondition, Code: code, Message: message}
}

func forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: "forbidden", Message: message}
}

func notFound(what string) *Error {
	return &Error{Kind: KindNotFound, Code: "not_found", Message: what + " not found"}
}

func invalid(message string) *Error {
	return &Error{Kind: KindInvalid, Code: "invalid", Message: message}
}

// AsError unwraps err into a board error.
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsKind reports whether err is a board error of kind k.
func IsKind(err error, k Kind) bool {
	be, ok := AsError(err)
	return ok && be.Kind == k
}
