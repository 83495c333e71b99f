package config

import (
	"fmt"
	"io/fs"
	"strconv"

	"github.com/nguyengg/xzip"
	"github.com/nguyengg/xzip/codec"
)

// Mask is an octal permission mask such as "0755".
type Mask fs.FileMode

// UnmarshalFlag implements go-flags' Unmarshaler.
func (m *Mask) UnmarshalFlag(value string) error {
	v, err := strconv.ParseUint(value, 8, 32)
	if err != nil {
		return fmt.Errorf("parse mask (value=%s) error: %w", value, err)
	}
	if v&^0777 != 0 {
		return fmt.Errorf("mask %#o exceeds 0777", v)
	}

	*m = Mask(v)
	return nil
}

// Defaults contains the [defaults] section. Settings that are absent are nil.
type Defaults struct {
	SkipMode    *xzip.SkipPolicy
	Mask        *Mask
	Compression *codec.Method
	Encryption  *codec.Encryption
}

// ForDefaults returns the [defaults] section.
func (l *Loader) ForDefaults() (c Defaults, err error) {
	sec, err := l.file().GetSection("defaults")
	if err != nil {
		return c, nil
	}

	if k := sec.Key("skip-mode"); k.String() != "" {
		c.SkipMode = new(xzip.SkipPolicy)
		if err = c.SkipMode.UnmarshalFlag(k.String()); err != nil {
			return c, fmt.Errorf("invalid skip-mode: %w", err)
		}
	}
	if k := sec.Key("mask"); k.String() != "" {
		c.Mask = new(Mask)
		if err = c.Mask.UnmarshalFlag(k.String()); err != nil {
			return c, fmt.Errorf("invalid mask: %w", err)
		}
	}
	if k := sec.Key("compression"); k.String() != "" {
		c.Compression = new(codec.Method)
		if err = c.Compression.UnmarshalFlag(k.String()); err != nil {
			return c, fmt.Errorf("invalid compression: %w", err)
		}
	}
	if k := sec.Key("encryption"); k.String() != "" {
		c.Encryption = new(codec.Encryption)
		if err = c.Encryption.UnmarshalFlag(k.String()); err != nil {
			return c, fmt.Errorf("invalid encryption: %w", err)
		}
	}

	return c, nil
}

// ForDefaults calls Loader.ForDefaults on the DefaultLoader instance.
func ForDefaults() (Defaults, error) {
	return DefaultLoader.ForDefaults()
}

// MergeConfig contains the [merge] section.
type MergeConfig struct {
	Separate bool
}

// ForMerge returns the [merge] section.
func (l *Loader) ForMerge() (c MergeConfig) {
	sec, err := l.file().GetSection("merge")
	if err != nil {
		return c
	}

	c.Separate = sec.Key("separate").MustBool(false)
	return
}

// ForMerge calls Loader.ForMerge on the DefaultLoader instance.
func ForMerge() MergeConfig {
	return DefaultLoader.ForMerge()
}
