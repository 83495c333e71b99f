// Package codec is the zip container layer underneath xzip.
//
// A Session mirrors the primitives of a libzip handle: entries can be added, deleted, re-compressed and encrypted while
// the archive is open, and nothing is written to disk until Session.Close. Entries that were not touched are copied
// verbatim from the original container, so opening an archive and deleting a single entry never re-compresses the rest.
//
// Errors returned by this package are *StatusError values carrying a libzip-style Status.
package codec

import (
	"io"
)

// DefaultBufferSize is the default value for [Options.BufferSize], which is 32 KiB.
const DefaultBufferSize = 32 * 1024

// Codec has methods to create compressor/encoder and decompressor/decoder.
type Codec interface {
	// NewDecoder creates a decoder to decompress contents from the given io.Reader.
	NewDecoder(src io.Reader) (io.ReadCloser, error)
	// NewEncoder creates an encoder to compress contents from the given io.Writer.
	NewEncoder(dst io.Writer) (io.WriteCloser, error)
}

// errReadCloser is returned by decompressors that failed to initialise, since archive/zip decompressors cannot return
// an error directly.
type errReadCloser struct {
	err error
}

func (r errReadCloser) Read([]byte) (int, error) {
	return 0, r.err
}

func (r errReadCloser) Close() error {
	return nil
}
