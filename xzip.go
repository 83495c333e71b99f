// Package xzip adds, extracts, deletes, and merges zip archive members.
//
// An Archive wraps one codec.Session together with the settings that steer its operations: a base path for relative
// add targets, the permission mask of newly created extraction directories, a password, and a SkipPolicy. A Manager
// drives many archives at once and can merge them into a single new archive.
//
// Archive and Manager are not safe for concurrent use.
package xzip

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/nguyengg/xzip/codec"
)

// DefaultMask is the default permission of directories created by Archive.Extract.
const DefaultMask fs.FileMode = 0777

// Archive is an open zip archive plus per-archive settings.
type Archive struct {
	name     string
	session  *codec.Session
	path     string
	mask     fs.FileMode
	password string
	skip     SkipPolicy
}

// settings is the snapshot of an Archive's settings taken at the start of each operation.
type settings struct {
	path     string
	mask     fs.FileMode
	password string
	skip     SkipPolicy
}

func (a *Archive) settings() settings {
	return settings{path: a.path, mask: a.mask, password: a.password, skip: a.skip}
}

// Open opens an existing archive.
func Open(name string, optFns ...func(*codec.Options)) (*Archive, error) {
	return open("open", name, 0, optFns...)
}

// Create opens the named archive, creating it if it does not exist.
//
// If overwrite is true, the existing content of the archive is discarded.
func Create(name string, overwrite bool, optFns ...func(*codec.Options)) (*Archive, error) {
	flags := codec.Create
	if overwrite {
		flags |= codec.Truncate
	}

	return open("create", name, flags, optFns...)
}

func open(op, name string, flags codec.Flag, optFns ...func(*codec.Options)) (*Archive, error) {
	if name == "" {
		return nil, &Error{Kind: ErrNotFound, Op: op, Msg: "empty archive name"}
	}

	s, err := codec.Open(name, flags, optFns...)
	if err != nil {
		return nil, codecError(op, name, err)
	}

	return &Archive{name: name, session: s, mask: DefaultMask}, nil
}

// Check verifies the consistency of the named archive.
func Check(name string) error {
	if name == "" {
		return &Error{Kind: ErrNotFound, Op: "check", Msg: "empty archive name"}
	}

	if err := codec.Check(name); err != nil {
		return codecError("check", name, err)
	}

	return nil
}

// Name returns the path of the archive file.
func (a *Archive) Name() string {
	return a.name
}

// SetPath sets the base path that relative add targets are resolved against. An empty path clears it.
func (a *Archive) SetPath(path string) error {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return &Error{Kind: ErrNotFound, Op: "set path", Path: path, Msg: "not existent path", Err: err}
		}
	}

	a.path = path
	return nil
}

// Path returns the base path, empty if none has been set.
func (a *Archive) Path() string {
	return a.path
}

// SetMask sets the permission of directories created by Extract. Only permission bits are accepted.
func (a *Archive) SetMask(mask fs.FileMode) error {
	if mask&^DefaultMask != 0 {
		return &Error{Kind: ErrInvalidArgument, Op: "set mask", Msg: fmt.Sprintf("mask %#o exceeds %#o", uint32(mask), uint32(DefaultMask))}
	}

	a.mask = mask
	return nil
}

// Mask returns the permission of directories created by Extract.
func (a *Archive) Mask() fs.FileMode {
	return a.mask
}

// SetPassword sets the password used to encrypt added entries and to decrypt extracted ones.
func (a *Archive) SetPassword(password string) {
	a.password = password
}

// Password returns the password, empty if none has been set.
func (a *Archive) Password() string {
	return a.password
}

// SetSkipPolicy sets which entries Add and Extract skip.
func (a *Archive) SetSkipPolicy(p SkipPolicy) {
	a.skip = p
}

// SkipPolicy returns the active skip policy.
func (a *Archive) SkipPolicy() SkipPolicy {
	return a.skip
}

// SetComment sets the archive comment.
func (a *Archive) SetComment(comment string) error {
	if err := a.session.SetComment(comment); err != nil {
		return codecError("set comment", a.name, err)
	}

	return nil
}

// Comment returns the archive comment.
func (a *Archive) Comment() (string, error) {
	comment, err := a.session.Comment()
	if err != nil {
		return "", codecError("get comment", a.name, err)
	}

	return comment, nil
}

// Count returns the number of entries in the archive.
func (a *Archive) Count() (int, error) {
	n, err := a.session.NumEntries()
	if err != nil {
		return 0, codecError("count", a.name, err)
	}

	return n, nil
}

// ListFiles returns the names of every entry in archive order. The skip policy is not applied.
func (a *Archive) ListFiles() ([]string, error) {
	stats, err := a.Entries()
	if err != nil {
		return nil, err
	}

	names := make([]string, len(stats))
	for i, st := range stats {
		names[i] = st.Name
	}

	return names, nil
}

// Entries describes every entry in archive order.
func (a *Archive) Entries() ([]codec.Stat, error) {
	n, err := a.session.NumEntries()
	if err != nil {
		return nil, codecError("list", a.name, err)
	}

	stats := make([]codec.Stat, n)
	for i := range stats {
		if stats[i], err = a.session.StatAt(i); err != nil {
			return nil, codecError("list", a.name, err)
		}
	}

	return stats, nil
}

// PendingBytes returns the number of uncompressed bytes that Close will have to compress.
func (a *Archive) PendingBytes() int64 {
	return a.session.PendingBytes()
}

// Delete removes the named entries, stopping at the first one that does not exist.
//
// Names are entry names; the base path is not applied.
func (a *Archive) Delete(names ...string) error {
	if len(names) == 0 {
		return &Error{Kind: ErrNotFound, Op: "delete", Path: a.name}
	}

	for _, name := range names {
		if err := a.session.DeleteName(name); err != nil {
			return codecError("delete", name, err)
		}
	}

	return nil
}

// Close writes pending changes to disk. Closing an already closed archive returns an error wrapping codec.ErrClosed.
func (a *Archive) Close() error {
	if err := a.session.Close(); err != nil {
		return codecError("close", a.name, err)
	}

	return nil
}

// Discard closes the archive without writing pending changes.
func (a *Archive) Discard() error {
	if err := a.session.Discard(); err != nil {
		return codecError("discard", a.name, err)
	}

	return nil
}
