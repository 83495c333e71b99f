package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-ini/ini"
)

// Name is the name of the configuration file.
const Name = ".xzip"

// Loader finds and loads the .xzip configuration file.
type Loader struct {
	// Dir is the directory where the search for .xzip starts.
	//
	// Default to the current working directory.
	Dir string

	cfg *ini.File
}

// Load traverses the directory hierarchy upwards from Loader.Dir to find the first ".xzip" file and loads its contents
// into the Loader.
//
// The name of the .xzip file is returned, empty if none was found.
func (l *Loader) Load(ctx context.Context) (string, error) {
	cur := l.Dir
	if cur == "" {
		var err error
		if cur, err = os.Getwd(); err != nil {
			return "", err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		path := filepath.Join(cur, Name)
		fi, err := os.Stat(path)
		switch {
		case err == nil && !fi.IsDir():
			if l.cfg, err = ini.Load(path); err != nil {
				l.cfg = ini.Empty()
				return path, err
			}
			return path, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", err
		}

		parent := filepath.Dir(cur)
		if parent == cur || parent == "." {
			l.cfg = ini.Empty()
			return "", nil
		}
		cur = parent
	}
}

func (l *Loader) file() *ini.File {
	if l.cfg == nil {
		l.cfg = ini.Empty()
	}

	return l.cfg
}

// DefaultLoader is the default Loader instance for package-level methods.
var DefaultLoader = &Loader{cfg: ini.Empty()}

// Load calls Loader.Load on the DefaultLoader instance.
func Load(ctx context.Context) (string, error) {
	return DefaultLoader.Load(ctx)
}
