package codec

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
)

// Status is a libzip-compatible status code.
type Status int

const (
	StatusOK Status = iota
	StatusMultidisk
	StatusRename
	StatusClose
	StatusSeek
	StatusRead
	StatusWrite
	StatusCRC
	StatusZipClosed
	StatusNoEnt
	StatusExists
	StatusOpen
	StatusTmpOpen
	StatusZlib
	StatusMemory
	StatusChanged
	StatusCompNotSupp
	StatusEOF
	StatusInval
	StatusNoZip
	StatusInternal
	StatusIncons
	StatusRemove
	StatusDeleted
	StatusEncrNotSupp
	StatusRdonly
	StatusNoPasswd
	StatusWrongPasswd
)

var descriptions = map[Status]string{
	StatusOK:          "No error",
	StatusMultidisk:   "Multi-disk zip archives not supported",
	StatusRename:      "Renaming temporary file failed",
	StatusClose:       "Closing zip archive failed",
	StatusSeek:        "Seek error",
	StatusRead:        "Read error",
	StatusWrite:       "Write error",
	StatusCRC:         "CRC error",
	StatusZipClosed:   "Containing zip archive was closed",
	StatusNoEnt:       "No such file",
	StatusExists:      "File already exists",
	StatusOpen:        "Can't open file",
	StatusTmpOpen:     "Failure to create temporary file",
	StatusZlib:        "Zlib error",
	StatusMemory:      "Malloc failure",
	StatusChanged:     "Entry has been changed",
	StatusCompNotSupp: "Compression method not supported",
	StatusEOF:         "Premature EOF",
	StatusInval:       "Invalid argument",
	StatusNoZip:       "Not a zip archive",
	StatusInternal:    "Internal error",
	StatusIncons:      "Zip archive inconsistent",
	StatusRemove:      "Can't remove file",
	StatusDeleted:     "Entry has been deleted",
	StatusEncrNotSupp: "Encryption method not supported",
	StatusRdonly:      "Read-only archive",
	StatusNoPasswd:    "No password provided",
	StatusWrongPasswd: "Wrong password provided",
}

// String returns the human-readable description of the status code.
func (s Status) String() string {
	if d, ok := descriptions[s]; ok {
		return d
	}

	return fmt.Sprintf("Unknown status %d", int(s))
}

// StatusError is the error type returned by Session and Check.
type StatusError struct {
	Status Status
	Err    error
}

// ErrClosed is returned by every Session method invoked after Session.Close.
var ErrClosed = &StatusError{Status: StatusZipClosed}

func (e *StatusError) Error() string {
	if e.Err == nil {
		return e.Status.String()
	}

	return fmt.Sprintf("%s: %v", e.Status, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *StatusError with the same Status.
func (e *StatusError) Is(target error) bool {
	var se *StatusError
	if errors.As(target, &se) {
		return se.Status == e.Status
	}

	return false
}

// StatusOf returns the Status carried by err, StatusOK if err is nil, or StatusInternal if err is not a *StatusError.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}

	return StatusInternal
}

// classify maps errors from archive/zip and the filesystem to a Status, using fallback for everything else.
func classify(err error, fallback Status) Status {
	switch {
	case errors.Is(err, zip.ErrFormat):
		return StatusNoZip
	case errors.Is(err, zip.ErrChecksum):
		return StatusCRC
	case errors.Is(err, zip.ErrAlgorithm):
		return StatusCompNotSupp
	case errors.Is(err, fs.ErrNotExist):
		return StatusNoEnt
	case errors.Is(err, fs.ErrExist):
		return StatusExists
	case errors.Is(err, io.ErrUnexpectedEOF):
		return StatusEOF
	default:
		return fallback
	}
}
