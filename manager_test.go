package xzip

import (
	"bytes"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/nguyengg/xzip/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createArchive creates the named archive containing one file per given name, each file's content being its name.
func createArchive(t *testing.T, name string, files ...string) {
	t.Helper()

	src := t.TempDir()
	a, err := Create(name, true)
	require.NoError(t, err)

	for _, f := range files {
		require.NoError(t, fill(filepath.Join(src, f), []byte(f)))
	}
	require.NoError(t, a.Add([]string{src}, func(opts *AddOptions) {
		opts.FlattenRoot = true
	}))
	require.NoError(t, a.Close())
}

func tempFolders(t *testing.T, dir string) []string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(dir, tempFolderPrefix+"*"))
	require.NoError(t, err)
	return matches
}

func TestManager_Bookkeeping(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "first.zip")
	createArchive(t, name, "a.txt")

	a, err := Open(name)
	require.NoError(t, err)
	defer a.Close()

	m := &Manager{}
	ids := make(map[ArchiveID]bool)
	for i := 0; i < 100; i++ {
		id := m.AddZip(a)
		assert.Len(t, string(id), 32)
		assert.Falsef(t, ids[id], "AddZip() returned id %s twice", id)
		ids[id] = true
	}
	assert.Equal(t, 100, m.Count())

	for id := range ids {
		got, err := m.GetZip(id)
		require.NoError(t, err)
		assert.Same(t, a, got)
		require.NoError(t, m.RemoveZipByID(id))
	}
	assert.Equal(t, 0, m.Count())

	assert.ErrorIs(t, m.RemoveZipByID("does-not-exist"), ErrNotFound)
	_, err = m.GetZip("does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.RemoveZip(a), ErrNotFound)

	id := m.AddZip(a)
	assert.Equal(t, map[ArchiveID]string{id: name}, m.ListZips())
	require.NoError(t, m.RemoveZip(a))
	assert.Equal(t, 0, m.Count())

	// removing never closes the archive.
	files, err := a.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, files)
}

func TestManager_Broadcast(t *testing.T) {
	dir := t.TempDir()
	first, second := filepath.Join(dir, "first.zip"), filepath.Join(dir, "second.zip")
	createArchive(t, first, "a.txt")
	createArchive(t, second, "b.txt")

	m := &Manager{}
	for _, name := range []string{first, second} {
		a, err := Open(name)
		require.NoError(t, err)
		m.AddZip(a)
	}

	require.NoError(t, m.SetMask(0750))
	for _, mask := range m.Masks() {
		assert.Equal(t, fs.FileMode(0750), mask)
	}
	assert.ErrorIs(t, m.SetMask(01000), ErrInvalidArgument)

	require.NoError(t, m.SetPath(dir))
	for _, path := range m.Paths() {
		assert.Equal(t, dir, path)
	}

	files, err := m.ListFiles()
	require.NoError(t, err)
	var all []string
	for _, f := range files {
		all = append(all, f...)
	}
	slices.Sort(all)
	assert.Equal(t, []string{"a.txt", "b.txt"}, all)

	require.NoError(t, fill(filepath.Join(dir, "c.txt"), []byte("c.txt")))
	require.NoError(t, m.Add([]string{"c.txt"}))
	require.NoError(t, m.Delete("c.txt"))
	assert.ErrorIs(t, m.Delete("c.txt"), ErrCodec)

	out := filepath.Join(dir, "out")
	require.NoError(t, m.Extract(out, true))
	for _, f := range []string{"first/a.txt", "second/b.txt"} {
		data, err := os.ReadFile(filepath.Join(out, f))
		require.NoError(t, err)
		assert.Equal(t, filepath.Base(f), string(data))
	}

	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Close(), codec.ErrClosed)
}

func TestManager_Merge(t *testing.T) {
	tests := []struct {
		name     string
		separate bool
		expected []string
	}{
		{
			name:     "separate=false",
			separate: false,
			expected: []string{"a.txt", "b.txt"},
		},
		{
			name:     "separate=true",
			separate: true,
			expected: []string{"first/", "first/a.txt", "second/", "second/b.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			first, second := filepath.Join(dir, "first.zip"), filepath.Join(dir, "second.zip")
			createArchive(t, first, "a.txt")
			createArchive(t, second, "b.txt")

			m := &Manager{}
			for _, name := range []string{first, second} {
				a, err := Open(name)
				require.NoError(t, err)
				m.AddZip(a)
			}
			defer m.Close()

			output := filepath.Join(dir, "merged.zip")
			require.NoErrorf(t, m.Merge(output, tt.separate), "Merge(%s, %t) error", output, tt.separate)

			files := listFiles(t, output)
			slices.Sort(files)
			assert.Equal(t, tt.expected, files)
			assert.Empty(t, tempFolders(t, dir))
		})
	}
}

func TestManager_Merge_LeavesTemporaryFolder(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "first.zip")
	createArchive(t, name, "a.txt")

	a, err := Open(name)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	var buf bytes.Buffer
	m := &Manager{Logger: log.New(&buf, "", 0)}
	m.AddZip(a)

	err = m.Merge(filepath.Join(dir, "merged.zip"), true)
	assert.ErrorIs(t, err, ErrCodec)
	assert.ErrorIs(t, err, codec.ErrClosed)

	folders := tempFolders(t, dir)
	require.Len(t, folders, 1)
	assert.Contains(t, err.Error(), folders[0])
	assert.Contains(t, buf.String(), folders[0])
	assert.Len(t, filepath.Base(folders[0]), len(tempFolderPrefix)+32)
}
