package codec

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"

	"github.com/valyala/bytebufferpool"
	yzip "github.com/yeka/zip"
)

// writeEncrypted encrypts the content read from r into a scratch archive, then copies the resulting entry raw into zw.
func writeEncrypted(zw *zip.Writer, e *entry, r io.Reader, buf []byte) error {
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)

	yw := yzip.NewWriter(bb)
	w, err := yw.Encrypt(e.name, e.password, e.encryption.yekaMethod())
	if err != nil {
		return fmt.Errorf("create encrypted entry error: %w", err)
	}
	if _, err = io.CopyBuffer(w, r, buf); err != nil {
		return fmt.Errorf("write encrypted entry error: %w", err)
	}
	if err = yw.Close(); err != nil {
		return fmt.Errorf("close scratch archive error: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(bb.B), int64(bb.Len()))
	if err != nil {
		return fmt.Errorf("read scratch archive error: %w", err)
	}
	if len(zr.File) != 1 {
		return fmt.Errorf("scratch archive has %d entries", len(zr.File))
	}

	f := zr.File[0]
	fh := f.FileHeader
	fh.SetMode(e.mode)
	if !e.modified.IsZero() {
		fh.SetModTime(e.modified) //nolint:staticcheck // CreateRaw does not derive the MS-DOS time from Modified.
	}

	raw, err := f.OpenRaw()
	if err != nil {
		return fmt.Errorf("open raw scratch entry error: %w", err)
	}

	dst, err := zw.CreateRaw(&fh)
	if err != nil {
		return fmt.Errorf("create raw entry error: %w", err)
	}
	if _, err = io.CopyBuffer(dst, raw, buf); err != nil {
		return fmt.Errorf("copy raw entry error: %w", err)
	}

	return nil
}

// decryptingReader opens encrypted entries of an archive on disk.
type decryptingReader struct {
	rc    *yzip.ReadCloser
	files map[string]*yzip.File
}

func openDecrypting(name string) (*decryptingReader, error) {
	rc, err := yzip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("open encrypted archive error: %w", err)
	}

	files := make(map[string]*yzip.File, len(rc.File))
	for _, f := range rc.File {
		files[f.Name] = f
	}

	return &decryptingReader{rc: rc, files: files}, nil
}

func (d *decryptingReader) open(name, password string) (io.ReadCloser, error) {
	f, ok := d.files[name]
	if !ok {
		return nil, fmt.Errorf("open encrypted entry (name=%s) error: %w", name, fs.ErrNotExist)
	}

	f.SetPassword(password)
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open encrypted entry (name=%s) error: %w", name, err)
	}

	return rc, nil
}

func (d *decryptingReader) Close() error {
	return d.rc.Close()
}
