package xzip

import (
	"os"
	"path/filepath"

	"github.com/nguyengg/xzip/codec"
)

// EntryReporter is called after each entry has been registered with the archive.
//
// The src argument is the local path, name the entry name. Directory entries are reported with a trailing slash.
type EntryReporter func(src, name string)

// AddOptions customises Archive.Add.
type AddOptions struct {
	// FlattenRoot drops the name of directory targets so that their children are added at the top level.
	//
	// Only the directories passed to Add are flattened; their subdirectories keep their names.
	FlattenRoot bool

	// Compression is the compression method of every added file.
	//
	// Default to codec.MethodDefault.
	Compression codec.Method

	// Encryption is the encryption method of every added file. Requires a password.
	//
	// Default to codec.EncryptionNone.
	Encryption codec.Encryption

	// Reporter is notified of every added entry.
	Reporter EntryReporter
}

// Add adds files and directory trees to the archive.
//
// Every target is joined to the base path if one has been set, then canonicalised. Targets that do not exist are
// skipped. Directories are added recursively in name order; the skip policy applies to entries added under a
// directory name, so neither the targets themselves nor the top-level children of a flattened target are skipped.
// Nodes that are neither directories nor regular files are skipped. The first codec failure aborts the call; entries
// added before it remain pending in the archive.
func (a *Archive) Add(targets []string, optFns ...func(*AddOptions)) error {
	opts := &AddOptions{
		Compression: codec.MethodDefault,
		Encryption:  codec.EncryptionNone,
	}
	for _, fn := range optFns {
		fn(opts)
	}

	if len(targets) == 0 {
		return &Error{Kind: ErrNotFound, Op: "add", Path: a.name}
	}

	cfg := a.settings()
	if opts.Encryption != codec.EncryptionNone {
		if cfg.password == "" {
			return &Error{Kind: ErrPolicyViolation, Op: "add", Path: a.name, Msg: "cannot encrypt: no password set"}
		}
		if err := a.session.SetPassword(cfg.password); err != nil {
			return codecError("add", a.name, err)
		}
	}

	c := &composer{session: a.session, skip: cfg.skip, opts: opts}
	for _, target := range targets {
		if cfg.path != "" {
			target = filepath.Join(cfg.path, target)
		}

		path, err := filepath.Abs(target)
		if err == nil {
			path, err = filepath.EvalSymlinks(path)
		}
		if err != nil {
			continue
		}

		if err = c.add(path, "", opts.FlattenRoot); err != nil {
			return err
		}
	}

	return nil
}

type composer struct {
	session *codec.Session
	skip    SkipPolicy
	opts    *AddOptions
}

// add adds path under the entry name prefix base.
//
// The skip policy only applies when there is a prefix, so neither the targets nor the children of a flattened target
// are ever skipped.
func (c *composer) add(path, base string, flatten bool) error {
	leaf := filepath.Base(path)
	if base != "" && c.skip.Excludes(leaf) {
		return nil
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil
	}

	switch {
	case fi.IsDir():
		prefix := base
		if !flatten {
			name := base + leaf + "/"
			if err = c.session.AddEmptyDir(name); err != nil {
				return codecError("add", path, err)
			}
			c.report(path, name)
			prefix = name
		}

		children, err := os.ReadDir(path)
		if err != nil {
			return &Error{Kind: ErrIO, Op: "add", Path: path, Msg: "read directory failed", Err: err}
		}
		for _, child := range children {
			if err = c.add(filepath.Join(path, child.Name()), prefix, false); err != nil {
				return err
			}
		}

	case fi.Mode().IsRegular():
		name := base + leaf
		if err = c.session.AddFile(path, name); err != nil {
			return codecError("add", path, err)
		}
		if err = c.session.SetCompression(name, c.opts.Compression); err != nil {
			return codecError("add", path, err)
		}
		if c.opts.Encryption != codec.EncryptionNone {
			if err = c.session.SetEncryption(name, c.opts.Encryption); err != nil {
				return codecError("add", path, err)
			}
		}
		c.report(path, name)
	}

	return nil
}

func (c *composer) report(src, name string) {
	if c.opts.Reporter != nil {
		c.opts.Reporter(src, name)
	}
}
