package xzip

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is the kind of errors caused by a missing argument, path, entry, or managed archive.
	ErrNotFound = errors.New("no such entry")
	// ErrCodec is the kind of errors returned by the codec. Use errors.As with *codec.StatusError to get the status.
	ErrCodec = errors.New("codec error")
	// ErrInvalidArgument is the kind of errors caused by a bad skip policy, mask, or destination.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrPolicyViolation is the kind of errors caused by requesting encryption without a password.
	ErrPolicyViolation = errors.New("policy violation")
	// ErrIO is the kind of errors caused by failing to create or delete directories.
	ErrIO = errors.New("io failure")
	// ErrNotWritable is the kind of errors caused by an extraction destination that is not writable.
	ErrNotWritable = errors.New("destination not writable")
)

// Error is the error type returned by Archive and Manager.
//
// Kind is one of the sentinel errors of this package so that errors.Is(err, ErrNotFound) and friends work; Err is the
// underlying cause, if any.
type Error struct {
	Kind error
	Op   string
	Path string
	Msg  string
	Err  error
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		_, _ = fmt.Fprintf(&b, " (path=%s)", e.Path)
	}
	b.WriteString(" error: ")
	if e.Msg != "" {
		b.WriteString(e.Msg)
	} else {
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		_, _ = fmt.Fprintf(&b, ", cause: %v", e.Err)
	}

	return b.String()
}

func codecError(op, path string, err error) error {
	return &Error{Kind: ErrCodec, Op: op, Path: path, Err: err}
}

// kindOf returns the Kind of the first *Error in err's chain, ErrIO if there is none.
func kindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return ErrIO
}
