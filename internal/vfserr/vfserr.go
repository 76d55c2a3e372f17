// Package vfserr provides the structured error type used across vfs2db's
// internal packages. Every error that crosses a component boundary carries a
// Kind that the translator maps onto a fuse.Status at the outermost layer.
package vfserr

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fuse"
)

// Kind categorizes an error the way the database gateway and schema cache
// report failures.
type Kind string

// The six kinds named by the translation layer's error handling contract.
const (
	// KindDbError covers any failure from the database layer itself:
	// prepare, bind, step, or finalize.
	KindDbError Kind = "db_error"
	// KindRowNotFound means a query expected exactly one row and got none.
	KindRowNotFound Kind = "row_not_found"
	// KindNoMemory covers allocation failures.
	KindNoMemory Kind = "no_memory"
	// KindBadPath means a path could not be classified, or names a table
	// or column that does not exist. A missing row is KindRowNotFound.
	KindBadPath Kind = "bad_path"
	// KindNoData means an xattr name other than user.type was requested.
	KindNoData Kind = "no_data"
	// KindRange means the xattr caller's buffer was too small.
	KindRange Kind = "range"
)

// Sentinel errors, one per Kind, for use with errors.Is at call sites that
// only care about the kind and not the message or cause.
var (
	ErrDbError     = New(KindDbError, "database error")
	ErrRowNotFound = New(KindRowNotFound, "row not found")
	ErrNoMemory    = New(KindNoMemory, "allocation failure")
	ErrBadPath     = New(KindBadPath, "path cannot be classified")
	ErrNoData      = New(KindNoData, "no such attribute")
	ErrRange       = New(KindRange, "buffer too small")
)

// Error is a Kind-tagged error carrying the operation and path it occurred
// on, plus an optional wrapped cause.
type Error struct {
	Kind    Kind
	Op      string // e.g. "GetAttr", "GetAttributeBytes"
	Path    string // the VFS path involved, if any
	Message string
	cause   error
}

// New builds an Error with no cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches cause to a new Error of the given kind.
func Wrap(cause error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithOp returns a copy of e annotated with the operation and path it
// occurred on, for logging at the translator boundary.
func (e *Error) WithOp(op, path string) *Error {
	return &Error{Kind: e.Kind, Op: op, Path: path, Message: e.Message, cause: e.cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := string(e.Kind)
	if e.Op != "" {
		prefix = fmt.Sprintf("%s: %s", e.Op, prefix)
	}
	if e.Path != "" {
		prefix = fmt.Sprintf("%s %q", prefix, e.Path)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// GetKind returns the Kind of err if it is (or wraps into) an *Error, and
// KindDbError otherwise — an unclassified error is treated as a database
// failure rather than silently succeeding.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindDbError
}

// ToStatus maps a Kind onto the fuse.Status values the translation layer's
// error handling contract names.
func ToStatus(err error) fuse.Status {
	if err == nil {
		return fuse.OK
	}
	switch GetKind(err) {
	case KindRowNotFound, KindBadPath:
		return fuse.ENOENT
	case KindNoMemory:
		return fuse.Status(syscall.ENOMEM)
	case KindNoData:
		return fuse.Status(syscall.ENODATA)
	case KindRange:
		return fuse.Status(syscall.ERANGE)
	case KindDbError:
		fallthrough
	default:
		return fuse.EIO
	}
}
