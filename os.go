package xzip

import (
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// tempFolderPrefix is the prefix of the temporary directories created by Manager.Merge.
const tempFolderPrefix = "zip-temp-folder-"

// tempFolderName returns a directory name made of tempFolderPrefix and 128 random bits in hex.
//
// Uniqueness is best-effort: two names collide only if uuid.New does.
func tempFolderName() string {
	id := uuid.New()
	return tempFolderPrefix + hex.EncodeToString(id[:])
}

// Stem returns the base name of path without its last extension.
//
// For example, the stem of "/path/to/archive.tar.zip" is "archive.tar".
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
