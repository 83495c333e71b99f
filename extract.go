package xzip

import (
	"errors"
	"io/fs"
	"os"
)

// Extract extracts entries into destination.
//
// If files is empty, every entry not excluded by the skip policy is extracted in archive order; an entry is excluded if
// any segment of its name is. Otherwise exactly the named entries are extracted.
//
// A missing destination is created along with its parents, using the mask verbatim regardless of the process umask.
// An existing destination must be writable. Existing files are overwritten.
func (a *Archive) Extract(destination string, files ...string) error {
	cfg := a.settings()

	if destination == "" {
		return &Error{Kind: ErrInvalidArgument, Op: "extract", Path: a.name, Msg: "invalid destination path"}
	}

	switch _, err := os.Stat(destination); {
	case errors.Is(err, fs.ErrNotExist):
		if err = mkdirAllMask(destination, cfg.mask); err != nil {
			return &Error{Kind: ErrIO, Op: "extract", Path: destination, Msg: "error creating folder", Err: err}
		}
	case err != nil:
		return &Error{Kind: ErrIO, Op: "extract", Path: destination, Err: err}
	}

	if !writable(destination) {
		return &Error{Kind: ErrNotWritable, Op: "extract", Path: destination}
	}

	members := files
	if len(members) == 0 {
		var err error
		if members, err = a.members(cfg.skip); err != nil {
			return err
		}
	}

	if cfg.password != "" {
		if err := a.session.SetPassword(cfg.password); err != nil {
			return codecError("extract", a.name, err)
		}
	}

	if err := a.session.ExtractTo(destination, members); err != nil {
		return codecError("extract", a.name, err)
	}

	return nil
}

// members returns the normalised names of every entry that the skip policy does not exclude.
func (a *Archive) members(skip SkipPolicy) ([]string, error) {
	n, err := a.session.NumEntries()
	if err != nil {
		return nil, codecError("extract", a.name, err)
	}

	members := make([]string, 0, n)
	for i := 0; i < n; i++ {
		st, err := a.session.StatAt(i)
		if err != nil {
			continue
		}

		if name := NormalizeName(st.Name); !skip.excludesPath(name) {
			members = append(members, name)
		}
	}

	return members, nil
}
