package xzip

import (
	"strings"
)

// NormalizeName replaces backslashes with forward slashes.
func NormalizeName(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}

// BaseName returns the final segment of a normalised entry name, ignoring the trailing slash of directory entries.
func BaseName(name string) string {
	name = strings.TrimRight(name, "/")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}

	return name
}

// IsHidden returns true if the final segment of name starts with a dot.
func IsHidden(name string) bool {
	base := BaseName(name)
	return len(base) > 0 && base[0] == '.'
}

// IsGhost returns true if the final segment of name starts with "._", the marker of resource-fork companion files.
func IsGhost(name string) bool {
	base := BaseName(name)
	return len(base) > 1 && base[0] == '.' && base[1] == '_'
}
