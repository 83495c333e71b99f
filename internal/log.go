package internal

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/jessevdk/go-flags"
)

// Prefix creates a consistent prefix for all file-based commands to use.
//
// i and n are the zero-based ordinal and expected count.
func Prefix(i, n int, name flags.Filename) string {
	return fmt.Sprintf(`[%d/%d] "%s" - `, i+1, n, TruncateRightWithSuffix(filepath.Base(string(name)), 30, "..."))
}

// NewLogger creates a new logger writing to stderr with the prefix from Prefix.
func NewLogger(i, n int, name flags.Filename) *log.Logger {
	return log.New(os.Stderr, Prefix(i, n, name), 0)
}

// TruncateRightWithSuffix keeps the first n runes of text and appends suffix only if truncation happens.
func TruncateRightWithSuffix(text string, n int, suffix string) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}

	rs := make([]rune, 0, n+len(suffix))
	for _, r := range text {
		if len(rs) >= n {
			break
		}

		rs = append(rs, r)
	}

	return string(rs) + suffix
}
