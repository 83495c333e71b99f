package xzip

import (
	"fmt"
	"strings"
)

// SkipPolicy selects which entries are excluded when adding directories or extracting a whole archive.
type SkipPolicy int

const (
	// SkipNone excludes nothing.
	SkipNone SkipPolicy = iota
	// SkipHidden excludes entries whose name starts with a dot.
	SkipHidden
	// SkipGhost excludes entries whose name starts with "._".
	SkipGhost
	// SkipAll is SkipHidden and SkipGhost combined.
	SkipAll
)

// ParseSkipPolicy parses NONE, HIDDEN, GHOST, or ALL case-insensitively. COMODOJO is accepted as an alias for GHOST.
func ParseSkipPolicy(name string) (SkipPolicy, error) {
	switch strings.ToUpper(name) {
	case "NONE":
		return SkipNone, nil
	case "HIDDEN":
		return SkipHidden, nil
	case "GHOST", "COMODOJO":
		return SkipGhost, nil
	case "ALL":
		return SkipAll, nil
	default:
		return SkipNone, &Error{Kind: ErrInvalidArgument, Op: "parse skip policy", Msg: fmt.Sprintf("unsupported skip mode %q", name)}
	}
}

func (p SkipPolicy) String() string {
	switch p {
	case SkipNone:
		return "NONE"
	case SkipHidden:
		return "HIDDEN"
	case SkipGhost:
		return "GHOST"
	case SkipAll:
		return "ALL"
	default:
		return fmt.Sprintf("SkipPolicy(%d)", int(p))
	}
}

// UnmarshalFlag implements go-flags' Unmarshaler.
func (p *SkipPolicy) UnmarshalFlag(value string) (err error) {
	*p, err = ParseSkipPolicy(value)
	return
}

// Excludes returns true if the final segment of name must be skipped under this policy.
func (p SkipPolicy) Excludes(name string) bool {
	switch p {
	case SkipHidden:
		return IsHidden(name)
	case SkipGhost:
		return IsGhost(name)
	case SkipAll:
		return IsHidden(name) || IsGhost(name)
	default:
		return false
	}
}

// excludesPath is Excludes applied to every segment of name, so that the content of an excluded directory is excluded
// as well.
func (p SkipPolicy) excludesPath(name string) bool {
	if p == SkipNone {
		return false
	}

	for _, segment := range strings.Split(strings.TrimRight(name, "/"), "/") {
		if p.Excludes(segment) {
			return true
		}
	}

	return false
}
