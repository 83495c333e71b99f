package codec

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lorem = []byte(strings.Repeat("Lorem ipsum dolor sit amet, consectetur adipiscing elit. ", 64))

func TestSession_Compression(t *testing.T) {
	tests := []struct {
		method   Method
		expected Method
	}{
		{method: MethodDefault, expected: MethodDeflate},
		{method: MethodStore, expected: MethodStore},
		{method: MethodDeflate, expected: MethodDeflate},
		{method: MethodZstd, expected: MethodZstd},
		{method: MethodXZ, expected: MethodXZ},
	}

	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "lorem.txt")
			require.NoError(t, os.WriteFile(src, lorem, 0644))

			name := filepath.Join(dir, "test.zip")
			s, err := Open(name, Create)
			require.NoError(t, err)
			require.NoError(t, s.AddFile(src, "lorem.txt"))
			require.NoError(t, s.SetCompression("lorem.txt", tt.method))
			assert.Equal(t, int64(len(lorem)), s.PendingBytes())
			require.NoError(t, s.Close())

			assert.NoError(t, Check(name))

			s, err = Open(name, 0)
			require.NoError(t, err)
			defer s.Close()

			st, err := s.StatAt(0)
			require.NoError(t, err)
			assert.Equal(t, "lorem.txt", st.Name)
			assert.Equal(t, tt.expected, st.Method)
			assert.Equal(t, EncryptionNone, st.Encryption)
			assert.Equal(t, int64(len(lorem)), st.Size)

			out := filepath.Join(dir, "out")
			require.NoError(t, s.ExtractTo(out, []string{"lorem.txt"}))
			data, err := os.ReadFile(filepath.Join(out, "lorem.txt"))
			require.NoError(t, err)
			assert.Equal(t, lorem, data)
		})
	}
}

func TestSession_Encryption(t *testing.T) {
	tests := []Encryption{EncryptionTraditional, EncryptionAES128, EncryptionAES192, EncryptionAES256}

	for _, encryption := range tests {
		t.Run(encryption.String(), func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "secret.txt")
			require.NoError(t, os.WriteFile(src, lorem, 0600))

			name := filepath.Join(dir, "test.zip")
			s, err := Open(name, Create)
			require.NoError(t, err)
			require.NoError(t, s.AddFile(src, "secret.txt"))
			assert.ErrorIs(t, s.SetEncryption("secret.txt", encryption), &StatusError{Status: StatusNoPasswd})
			require.NoError(t, s.SetPassword("hunter2"))
			require.NoError(t, s.SetEncryption("secret.txt", encryption))
			require.NoError(t, s.Close())

			assert.NoError(t, Check(name))

			s, err = Open(name, 0)
			require.NoError(t, err)
			defer s.Close()

			st, err := s.StatAt(0)
			require.NoError(t, err)
			assert.Equal(t, encryption, st.Encryption)
			assert.Equal(t, fs.FileMode(0600), st.Mode.Perm())

			out := filepath.Join(dir, "out")
			err = s.ExtractTo(out, []string{"secret.txt"})
			assert.ErrorIs(t, err, &StatusError{Status: StatusNoPasswd})

			require.NoError(t, s.SetPassword("hunter2"))
			require.NoError(t, s.ExtractTo(out, []string{"secret.txt"}))
			data, err := os.ReadFile(filepath.Join(out, "secret.txt"))
			require.NoError(t, err)
			assert.Equal(t, lorem, data)
		})
	}
}

func TestSession_WrongPassword(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(src, lorem, 0644))

	name := filepath.Join(dir, "test.zip")
	s, err := Open(name, Create)
	require.NoError(t, err)
	require.NoError(t, s.SetPassword("hunter2"))
	require.NoError(t, s.AddFile(src, "secret.txt"))
	require.NoError(t, s.SetEncryption("secret.txt", EncryptionAES256))
	require.NoError(t, s.Close())

	s, err = Open(name, 0)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetPassword("hunter3"))
	err = s.ExtractTo(filepath.Join(dir, "out"), []string{"secret.txt"})
	assert.ErrorIs(t, err, &StatusError{Status: StatusWrongPasswd})
	assert.Equal(t, StatusWrongPasswd, s.Status())
}

func TestSession_Close(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "test.zip")

	s, err := Open(name, Create)
	require.NoError(t, err)
	assert.NoError(t, s.Close())
	assert.ErrorIs(t, s.Close(), ErrClosed)
	assert.ErrorIs(t, s.AddEmptyDir("a"), ErrClosed)
	_, err = s.NumEntries()
	assert.ErrorIs(t, err, ErrClosed)

	// an archive without entries is never written.
	_, err = os.Stat(name)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSession_DeleteAndComment(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a.txt", "b.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(n), 0644))
	}

	name := filepath.Join(dir, "test.zip")
	s, err := Open(name, Create)
	require.NoError(t, err)
	require.NoError(t, s.AddFile(filepath.Join(dir, "a.txt"), "a.txt"))
	require.NoError(t, s.AddFile(filepath.Join(dir, "b.txt"), "b.txt"))
	require.NoError(t, s.AddEmptyDir("c"))
	assert.ErrorIs(t, s.AddEmptyDir("c/"), &StatusError{Status: StatusExists})
	require.NoError(t, s.Close())

	s, err = Open(name, 0)
	require.NoError(t, err)
	n, err := s.NumEntries()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.ErrorIs(t, s.DeleteName("missing.txt"), &StatusError{Status: StatusNoEnt})
	require.NoError(t, s.DeleteName("a.txt"))
	require.NoError(t, s.SetComment("hello, world"))
	require.NoError(t, s.Close())

	s, err = Open(name, 0)
	require.NoError(t, err)
	defer s.Close()

	var names []string
	for i := 0; ; i++ {
		n, err := s.NameAt(i)
		if err != nil {
			assert.ErrorIs(t, err, &StatusError{Status: StatusInval})
			break
		}
		names = append(names, n)
	}
	assert.Equal(t, []string{"b.txt", "c/"}, names)

	comment, err := s.Comment()
	require.NoError(t, err)
	assert.Equal(t, "hello, world", comment)
}

func TestSession_ExtractTo_OutsideDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "evil.txt")
	require.NoError(t, os.WriteFile(src, []byte("evil"), 0644))

	s, err := Open(filepath.Join(dir, "test.zip"), Create)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.AddFile(src, "../evil.txt"))
	err = s.ExtractTo(filepath.Join(dir, "out"), []string{"../evil.txt"})
	assert.ErrorIs(t, err, &StatusError{Status: StatusInval})
	assert.Equal(t, StatusInval, s.Status())
}

func TestOpen_Flags(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(src, []byte("a"), 0644))
	name := filepath.Join(dir, "test.zip")

	_, err := Open(name, 0)
	assert.ErrorIs(t, err, &StatusError{Status: StatusNoEnt})

	s, err := Open(name, Create|Excl)
	require.NoError(t, err)
	require.NoError(t, s.AddFile(src, "a.txt"))
	require.NoError(t, s.Close())

	_, err = Open(name, Create|Excl)
	assert.ErrorIs(t, err, &StatusError{Status: StatusExists})

	s, err = Open(name, CheckCons)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// truncating without adding anything removes the archive.
	s, err = Open(name, Truncate)
	require.NoError(t, err)
	n, err := s.NumEntries()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	require.NoError(t, s.Close())
	_, err = os.Stat(name)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()

	t.Run("not a zip", func(t *testing.T) {
		name := filepath.Join(dir, "plain.zip")
		require.NoError(t, os.WriteFile(name, []byte("this is not a zip archive"), 0644))
		assert.ErrorIs(t, Check(name), &StatusError{Status: StatusNoZip})
	})

	t.Run("crc mismatch", func(t *testing.T) {
		src := filepath.Join(dir, "lorem.txt")
		require.NoError(t, os.WriteFile(src, lorem, 0644))

		name := filepath.Join(dir, "crc.zip")
		s, err := Open(name, Create)
		require.NoError(t, err)
		require.NoError(t, s.AddFile(src, "lorem.txt"))
		require.NoError(t, s.SetCompression("lorem.txt", MethodStore))
		require.NoError(t, s.Close())
		require.NoError(t, Check(name))

		data, err := os.ReadFile(name)
		require.NoError(t, err)
		i := bytes.Index(data, lorem)
		require.GreaterOrEqual(t, i, 0)
		data[i] ^= 0xff
		require.NoError(t, os.WriteFile(name, data, 0644))

		assert.ErrorIs(t, Check(name), &StatusError{Status: StatusCRC})
	})
}
