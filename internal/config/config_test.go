package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nguyengg/xzip"
	"github.com/nguyengg/xzip/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Load(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, Name), []byte(`
[defaults]
skip-mode = hidden
mask = 0750
compression = zstd
encryption = aes256

[merge]
separate = true
`), 0644))

	// a directory named .xzip must not stop the search.
	dir := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, Name), 0755))

	l := &Loader{Dir: dir}
	name, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, Name), name)

	c, err := l.ForDefaults()
	require.NoError(t, err)
	if assert.NotNil(t, c.SkipMode) {
		assert.Equal(t, xzip.SkipHidden, *c.SkipMode)
	}
	if assert.NotNil(t, c.Mask) {
		assert.Equal(t, Mask(0750), *c.Mask)
	}
	if assert.NotNil(t, c.Compression) {
		assert.Equal(t, codec.MethodZstd, *c.Compression)
	}
	if assert.NotNil(t, c.Encryption) {
		assert.Equal(t, codec.EncryptionAES256, *c.Encryption)
	}

	assert.True(t, l.ForMerge().Separate)
}

func TestLoader_Empty(t *testing.T) {
	l := &Loader{}

	c, err := l.ForDefaults()
	require.NoError(t, err)
	assert.Equal(t, Defaults{}, c)
	assert.False(t, l.ForMerge().Separate)
}

func TestLoader_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, Name), []byte("[defaults]\nmask = 1777\n"), 0644))

	l := &Loader{Dir: dir}
	_, err := l.Load(context.Background())
	require.NoError(t, err)

	_, err = l.ForDefaults()
	assert.Error(t, err)
}

func TestMask_UnmarshalFlag(t *testing.T) {
	tests := []struct {
		value    string
		expected Mask
		wantErr  bool
	}{
		{value: "0777", expected: 0777},
		{value: "755", expected: 0755},
		{value: "0", expected: 0},
		{value: "01777", wantErr: true},
		{value: "rwx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			var m Mask
			err := m.UnmarshalFlag(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, m)
		})
	}
}
