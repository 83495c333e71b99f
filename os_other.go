//go:build !unix

package xzip

import (
	"io/fs"
	"os"
)

// mkdirAllMask is os.MkdirAll; there is no umask to bypass on this platform.
func mkdirAllMask(path string, mask fs.FileMode) error {
	return os.MkdirAll(path, mask)
}

// writable probes path by creating and removing a temporary file in it.
func writable(path string) bool {
	f, err := os.CreateTemp(path, ".xzip-*")
	if err != nil {
		return false
	}

	_ = f.Close()
	_ = os.Remove(f.Name())
	return true
}
