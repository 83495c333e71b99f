package codec

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Flag controls how Open treats the named file.
type Flag int

const (
	// Create creates the archive if it does not exist.
	Create Flag = 1 << iota
	// Excl fails with StatusExists if the archive already exists. Only meaningful together with Create.
	Excl
	// Truncate discards the existing content of the archive.
	Truncate
	// CheckCons runs Check on the existing archive before opening it.
	CheckCons
)

// Options customises Open.
type Options struct {
	// Progress receives a copy of every uncompressed byte written by Session.Close and Session.ExtractTo.
	//
	// Default to nil which disables progress reporting.
	Progress io.Writer

	// BufferSize is the length of the buffer used when copying entry contents.
	//
	// Default to DefaultBufferSize.
	BufferSize int

	// Perm is the permission of the archive file if Session.Close has to create it.
	//
	// Default to 0644.
	Perm fs.FileMode
}

// Stat describes one entry of the archive.
type Stat struct {
	Name           string
	Index          int
	Size           int64
	CompressedSize int64
	CRC32          uint32
	Modified       time.Time
	Mode           fs.FileMode
	Method         Method
	Encryption     Encryption
}

type entry struct {
	name string
	// file is the entry as read from disk, nil if the entry was added in this session.
	file *zip.File
	// src is the local file that provides content for a pending entry.
	src        string
	dir        bool
	size       int64
	modified   time.Time
	mode       fs.FileMode
	method     Method
	encryption Encryption
	password   string
	// dirty is true if Close must produce the entry's content anew instead of copying it raw.
	dirty bool
}

// Session is an open archive with pending changes.
//
// Changes are kept in memory and written on Close. A Session is not safe for concurrent use.
type Session struct {
	name     string
	opts     Options
	rc       *zip.ReadCloser
	entries  []*entry
	comment  string
	password string
	status   Status
	changed  bool
	existed  bool
	closed   bool
}

// Open opens or creates the named archive.
func Open(name string, flags Flag, optFns ...func(*Options)) (*Session, error) {
	opts := Options{
		BufferSize: DefaultBufferSize,
		Perm:       0644,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}

	s := &Session{name: name, opts: opts}

	fi, err := os.Stat(name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if flags&Create == 0 {
			return nil, &StatusError{Status: StatusNoEnt, Err: err}
		}
		return s, nil
	case err != nil:
		return nil, &StatusError{Status: StatusOpen, Err: err}
	case fi.IsDir():
		return nil, &StatusError{Status: StatusNoZip, Err: fmt.Errorf("%s is a directory", name)}
	case flags&Create != 0 && flags&Excl != 0:
		return nil, &StatusError{Status: StatusExists, Err: fs.ErrExist}
	}

	s.existed, s.opts.Perm = true, fi.Mode().Perm()

	// empty files are empty archives, truncated ones become one on Close.
	if fi.Size() == 0 {
		return s, nil
	}
	if flags&Truncate != 0 {
		s.changed = true
		return s, nil
	}

	if flags&CheckCons != 0 {
		if err = Check(name); err != nil {
			return nil, err
		}
	}

	if s.rc, err = zip.OpenReader(name); err != nil {
		return nil, &StatusError{Status: classify(err, StatusOpen), Err: err}
	}
	registerDecompressors(s.rc.RegisterDecompressor)

	s.comment = s.rc.Comment
	for _, f := range s.rc.File {
		method, encryption := describe(&f.FileHeader)
		s.entries = append(s.entries, &entry{
			name:       f.Name,
			file:       f,
			dir:        strings.HasSuffix(f.Name, "/"),
			size:       int64(f.UncompressedSize64),
			modified:   f.Modified,
			mode:       f.Mode(),
			method:     method,
			encryption: encryption,
		})
	}

	return s, nil
}

// Name returns the path of the archive.
func (s *Session) Name() string {
	return s.name
}

// Status returns the status code of the last failed operation, StatusOK if none has failed.
func (s *Session) Status() Status {
	return s.status
}

func (s *Session) fail(status Status, err error) error {
	s.status = status
	return &StatusError{Status: status, Err: err}
}

// lookup finds an entry by exact name, falling back to names written with backslash separators.
func (s *Session) lookup(name string) (int, *entry) {
	for i, e := range s.entries {
		if e.name == name {
			return i, e
		}
	}

	for i, e := range s.entries {
		if strings.ContainsRune(e.name, '\\') && strings.ReplaceAll(e.name, "\\", "/") == name {
			return i, e
		}
	}

	return -1, nil
}

// AddFile adds the local file src as an entry with the given name, replacing any existing entry with the same name.
func (s *Session) AddFile(src, name string) error {
	if s.closed {
		return ErrClosed
	}
	if name == "" || strings.HasSuffix(name, "/") {
		return s.fail(StatusInval, fmt.Errorf("invalid entry name %q", name))
	}

	fi, err := os.Stat(src)
	if err != nil {
		return s.fail(classify(err, StatusOpen), err)
	}
	if !fi.Mode().IsRegular() {
		return s.fail(StatusInval, fmt.Errorf("%s is not a regular file", src))
	}

	e := &entry{
		name:     name,
		src:      src,
		size:     fi.Size(),
		modified: fi.ModTime(),
		mode:     fi.Mode().Perm(),
		method:   MethodDefault,
		dirty:    true,
	}

	if i, _ := s.lookup(name); i >= 0 {
		s.entries[i] = e
	} else {
		s.entries = append(s.entries, e)
	}

	s.changed = true
	return nil
}

// AddEmptyDir adds a directory entry.
//
// The name receives a trailing slash if it does not have one. Fails with StatusExists if the entry already exists.
func (s *Session) AddEmptyDir(name string) error {
	if s.closed {
		return ErrClosed
	}
	if name == "" || name == "/" {
		return s.fail(StatusInval, fmt.Errorf("invalid entry name %q", name))
	}
	if !strings.HasSuffix(name, "/") {
		name += "/"
	}
	if i, _ := s.lookup(name); i >= 0 {
		return s.fail(StatusExists, fmt.Errorf("entry %q already exists", name))
	}

	s.entries = append(s.entries, &entry{
		name:     name,
		dir:      true,
		modified: time.Now(),
		mode:     fs.ModeDir | 0755,
		method:   MethodStore,
		dirty:    true,
	})

	s.changed = true
	return nil
}

// SetCompression changes the compression method of the named entry.
func (s *Session) SetCompression(name string, method Method) error {
	if s.closed {
		return ErrClosed
	}
	if !method.Supported() {
		return s.fail(StatusCompNotSupp, fmt.Errorf("unsupported compression method %s", method))
	}

	_, e := s.lookup(name)
	switch {
	case e == nil:
		return s.fail(StatusNoEnt, fmt.Errorf("no entry %q", name))
	case e.dir, e.method.zipMethod() == method.zipMethod():
		return nil
	case !e.dirty && e.encryption != EncryptionNone:
		return s.fail(StatusEncrNotSupp, fmt.Errorf("cannot recompress encrypted entry %q", name))
	}

	e.method, e.dirty, s.changed = method, true, true
	return nil
}

// SetEncryption changes the encryption method of the named entry.
//
// The session password at the time of the call is used to encrypt the entry. Fails with StatusNoPasswd if no password
// has been set. Encrypted entries are always deflated regardless of SetCompression.
func (s *Session) SetEncryption(name string, encryption Encryption) error {
	if s.closed {
		return ErrClosed
	}
	if !encryption.Supported() {
		return s.fail(StatusEncrNotSupp, fmt.Errorf("unsupported encryption method %s", encryption))
	}
	if encryption != EncryptionNone && s.password == "" {
		return s.fail(StatusNoPasswd, fmt.Errorf("cannot encrypt entry %q", name))
	}

	_, e := s.lookup(name)
	switch {
	case e == nil:
		return s.fail(StatusNoEnt, fmt.Errorf("no entry %q", name))
	case e.dir:
		return nil
	case e.encryption == encryption:
		if e.dirty {
			e.password = s.password
		}
		return nil
	case !e.dirty && e.encryption != EncryptionNone:
		return s.fail(StatusEncrNotSupp, fmt.Errorf("cannot re-encrypt encrypted entry %q", name))
	}

	e.encryption, e.password, e.dirty, s.changed = encryption, s.password, true, true
	return nil
}

// SetPassword sets the default password used for encryption and decryption.
func (s *Session) SetPassword(password string) error {
	if s.closed {
		return ErrClosed
	}

	s.password = password
	return nil
}

// DeleteName removes the named entry.
func (s *Session) DeleteName(name string) error {
	if s.closed {
		return ErrClosed
	}

	i, _ := s.lookup(name)
	if i < 0 {
		return s.fail(StatusNoEnt, fmt.Errorf("no entry %q", name))
	}

	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.changed = true
	return nil
}

// NumEntries returns the number of entries, including pending ones.
func (s *Session) NumEntries() (int, error) {
	if s.closed {
		return 0, ErrClosed
	}

	return len(s.entries), nil
}

// NameAt returns the name of the entry at index i.
func (s *Session) NameAt(i int) (string, error) {
	st, err := s.StatAt(i)
	return st.Name, err
}

// StatAt describes the entry at index i.
func (s *Session) StatAt(i int) (Stat, error) {
	if s.closed {
		return Stat{}, ErrClosed
	}
	if i < 0 || i >= len(s.entries) {
		return Stat{}, s.fail(StatusInval, fmt.Errorf("index %d out of range [0, %d)", i, len(s.entries)))
	}

	e := s.entries[i]
	st := Stat{
		Name:       e.name,
		Index:      i,
		Size:       e.size,
		Modified:   e.modified,
		Mode:       e.mode,
		Method:     e.method,
		Encryption: e.encryption,
	}
	if e.file != nil && !e.dirty {
		st.CompressedSize = int64(e.file.CompressedSize64)
		st.CRC32 = e.file.CRC32
	}

	return st, nil
}

// Comment returns the archive comment.
func (s *Session) Comment() (string, error) {
	if s.closed {
		return "", ErrClosed
	}

	return s.comment, nil
}

// SetComment changes the archive comment.
func (s *Session) SetComment(comment string) error {
	if s.closed {
		return ErrClosed
	}
	if len(comment) > 0xffff {
		return s.fail(StatusInval, fmt.Errorf("comment is too long (%d bytes)", len(comment)))
	}

	if comment != s.comment {
		s.comment, s.changed = comment, true
	}
	return nil
}

// PendingBytes returns the number of uncompressed bytes that Close will have to compress.
func (s *Session) PendingBytes() int64 {
	var n int64
	for _, e := range s.entries {
		if e.dirty && !e.dir {
			n += e.size
		}
	}

	return n
}

// ExtractTo extracts the named entries into dir.
//
// Missing parent directories are created. Existing files are overwritten. Entries whose names would resolve outside
// dir are refused with StatusInval.
func (s *Session) ExtractTo(dir string, names []string) error {
	if s.closed {
		return ErrClosed
	}

	var dr *decryptingReader
	defer func() {
		if dr != nil {
			_ = dr.Close()
		}
	}()

	buf := make([]byte, s.opts.BufferSize)
	for _, name := range names {
		_, e := s.lookup(name)
		if e == nil {
			return s.fail(StatusNoEnt, fmt.Errorf("no entry %q", name))
		}

		rel := filepath.FromSlash(strings.TrimSuffix(name, "/"))
		if !filepath.IsLocal(rel) {
			return s.fail(StatusInval, fmt.Errorf("entry %q resolves outside of destination", name))
		}
		path := filepath.Join(dir, rel)

		if e.dir {
			if err := os.MkdirAll(path, perm(e.mode, 0755)); err != nil {
				return s.fail(StatusWrite, fmt.Errorf("create directory (path=%s) error: %w", path, err))
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
			return s.fail(StatusWrite, fmt.Errorf("create parent directories to file (path=%s) error: %w", path, err))
		}

		var (
			src io.ReadCloser
			err error
		)
		switch {
		case e.src != "":
			src, err = os.Open(e.src)
			if err != nil {
				return s.fail(classify(err, StatusOpen), err)
			}
		case e.encryption != EncryptionNone:
			if s.password == "" {
				return s.fail(StatusNoPasswd, fmt.Errorf("entry %q is encrypted", name))
			}
			if dr == nil {
				if dr, err = openDecrypting(s.name); err != nil {
					return s.fail(classify(err, StatusOpen), err)
				}
			}
			if src, err = dr.open(name, s.password); err != nil {
				return s.fail(StatusWrongPasswd, err)
			}
		default:
			if src, err = e.file.Open(); err != nil {
				return s.fail(classify(err, StatusRead), fmt.Errorf("open file (name=%s) in archive error: %w", name, err))
			}
		}

		sr := &sourceReader{r: src}
		err = s.extractFile(path, e, sr, buf)
		_ = src.Close()

		switch {
		case sr.err != nil && e.file != nil && e.encryption != EncryptionNone:
			return s.fail(StatusWrongPasswd, err)
		case sr.err != nil:
			return s.fail(classify(sr.err, StatusRead), err)
		case err != nil:
			return s.fail(classify(err, StatusWrite), err)
		}
	}

	return nil
}

func (s *Session) extractFile(path string, e *entry, src io.Reader, buf []byte) error {
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm(e.mode, 0644))
	if err != nil {
		return fmt.Errorf("create file (path=%s) error: %w", path, err)
	}

	var w io.Writer = dst
	if s.opts.Progress != nil {
		w = io.MultiWriter(dst, s.opts.Progress)
	}

	if _, err = io.CopyBuffer(w, src, buf); err != nil {
		_ = dst.Close()
		return fmt.Errorf("extract file (name=%s) to file (path=%s) error: %w", e.name, path, err)
	}
	if err = dst.Close(); err != nil {
		return fmt.Errorf("close file (path=%s) error: %w", path, err)
	}

	if !e.modified.IsZero() {
		_ = os.Chtimes(path, e.modified, e.modified)
	}

	return nil
}

// sourceReader remembers the first read error so that ExtractTo can tell a corrupt entry from a failing destination.
type sourceReader struct {
	r   io.Reader
	err error
}

func (r *sourceReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && err != io.EOF && r.err == nil {
		r.err = err
	}

	return n, err
}

// Close writes pending changes and releases the session.
//
// The archive is written to a temporary file in the same directory which then replaces the original. An archive left
// with no entries is not written; if it existed before it is removed. Calling Close more than once returns ErrClosed.
func (s *Session) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	if !s.changed {
		return s.closeReader()
	}

	if len(s.entries) == 0 {
		if err := s.closeReader(); err != nil {
			return err
		}
		if s.existed {
			if err := os.Remove(s.name); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return s.fail(StatusRemove, err)
			}
		}
		return nil
	}

	f, err := os.CreateTemp(filepath.Dir(s.name), "."+filepath.Base(s.name)+".*")
	if err != nil {
		_ = s.closeReader()
		return s.fail(StatusTmpOpen, err)
	}
	tmp := f.Name()

	if err = s.write(f); err == nil {
		if chmodErr := f.Chmod(s.opts.Perm); chmodErr != nil {
			err = s.fail(StatusWrite, chmodErr)
		}
	}
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = s.fail(StatusClose, closeErr)
	}
	if readErr := s.closeReader(); err == nil {
		err = readErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err = os.Rename(tmp, s.name); err != nil {
		_ = os.Remove(tmp)
		return s.fail(StatusRename, err)
	}

	return nil
}

// Discard releases the session without writing pending changes.
func (s *Session) Discard() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	return s.closeReader()
}

func (s *Session) closeReader() error {
	if s.rc == nil {
		return nil
	}

	rc := s.rc
	s.rc = nil
	if err := rc.Close(); err != nil {
		return s.fail(StatusClose, err)
	}

	return nil
}

func (s *Session) write(w io.Writer) error {
	zw := zip.NewWriter(w)
	registerCompressors(zw.RegisterCompressor)

	buf := make([]byte, s.opts.BufferSize)
	for _, e := range s.entries {
		if err := s.writeEntry(zw, e, buf); err != nil {
			return err
		}
	}

	if err := zw.SetComment(s.comment); err != nil {
		return s.fail(StatusInval, err)
	}
	if err := zw.Close(); err != nil {
		return s.fail(StatusWrite, err)
	}

	return nil
}

func (s *Session) writeEntry(zw *zip.Writer, e *entry, buf []byte) error {
	if !e.dirty {
		if err := zw.Copy(e.file); err != nil {
			return s.fail(classify(err, StatusWrite), fmt.Errorf("copy entry (name=%s) error: %w", e.name, err))
		}
		return nil
	}

	if e.dir {
		fh := &zip.FileHeader{Name: e.name, Method: zip.Store, Modified: e.modified}
		fh.SetMode(e.mode)
		if _, err := zw.CreateHeader(fh); err != nil {
			return s.fail(StatusWrite, fmt.Errorf("create directory entry (name=%s) error: %w", e.name, err))
		}
		return nil
	}

	src, err := s.content(e)
	if err != nil {
		return err
	}
	defer src.Close()

	var r io.Reader = src
	if s.opts.Progress != nil {
		r = io.TeeReader(src, s.opts.Progress)
	}

	if e.encryption != EncryptionNone {
		if err = writeEncrypted(zw, e, r, buf); err != nil {
			return s.fail(classify(err, StatusWrite), fmt.Errorf("encrypt entry (name=%s) error: %w", e.name, err))
		}
		return nil
	}

	fh := &zip.FileHeader{Name: e.name, Method: e.method.zipMethod(), Modified: e.modified}
	fh.SetMode(e.mode)
	w, err := zw.CreateHeader(fh)
	if err != nil {
		return s.fail(classify(err, StatusWrite), fmt.Errorf("create entry (name=%s) error: %w", e.name, err))
	}
	if _, err = io.CopyBuffer(w, r, buf); err != nil {
		return s.fail(classify(err, StatusRead), fmt.Errorf("write entry (name=%s) error: %w", e.name, err))
	}

	return nil
}

// content opens the uncompressed content of an entry that Close must rewrite.
func (s *Session) content(e *entry) (io.ReadCloser, error) {
	if e.src != "" {
		f, err := os.Open(e.src)
		if err != nil {
			return nil, s.fail(classify(err, StatusRead), err)
		}
		return f, nil
	}

	rc, err := e.file.Open()
	if err != nil {
		return nil, s.fail(classify(err, StatusRead), fmt.Errorf("open file (name=%s) in archive error: %w", e.name, err))
	}
	return rc, nil
}

func perm(mode fs.FileMode, fallback fs.FileMode) fs.FileMode {
	if p := mode.Perm(); p != 0 {
		return p
	}

	return fallback
}
