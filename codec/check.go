package codec

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mholt/archives"
)

// Check verifies that the named file is a zip archive whose entries can all be read.
//
// The content of unencrypted entries is decompressed and checksummed; encrypted entries are only read raw. The
// returned error is always a *StatusError.
func Check(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return &StatusError{Status: classify(err, StatusOpen), Err: err}
	}

	format, _, err := archives.Identify(context.Background(), "", f)
	_ = f.Close()
	switch {
	case errors.Is(err, archives.NoMatch):
		return &StatusError{Status: StatusNoZip, Err: err}
	case err != nil:
		return &StatusError{Status: classify(err, StatusNoZip), Err: err}
	}
	if _, ok := format.(archives.Zip); !ok {
		return &StatusError{Status: StatusNoZip, Err: fmt.Errorf("identified as %s", format.Extension())}
	}

	rc, err := zip.OpenReader(name)
	if err != nil {
		return &StatusError{Status: classify(err, StatusIncons), Err: err}
	}
	defer rc.Close()
	registerDecompressors(rc.RegisterDecompressor)

	for _, zf := range rc.File {
		if err = checkEntry(zf); err != nil {
			return &StatusError{Status: classify(err, StatusIncons), Err: fmt.Errorf("check entry (name=%s) error: %w", zf.Name, err)}
		}
	}

	return nil
}

func checkEntry(f *zip.File) error {
	var (
		r   io.Reader
		err error
	)
	if f.Flags&0x1 != 0 {
		r, err = f.OpenRaw()
	} else {
		var rc io.ReadCloser
		if rc, err = f.Open(); err == nil {
			defer rc.Close()
			r = rc
		}
	}
	if err != nil {
		return err
	}

	_, err = io.Copy(io.Discard, r)
	return err
}
