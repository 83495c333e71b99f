//go:build unix

package xzip

import (
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// mkdirAllMask is os.MkdirAll with the process umask cleared for the duration of the call.
func mkdirAllMask(path string, mask fs.FileMode) error {
	old := unix.Umask(0)
	defer unix.Umask(old)

	return os.MkdirAll(path, mask)
}

func writable(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}
