package xzip

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ArchiveID identifies an Archive registered with a Manager.
type ArchiveID string

// Manager applies operations to many archives at once.
//
// Broadcast operations visit archives in registration order and stop at the first failure; changes already applied to
// earlier archives are kept. The zero value is ready to use.
type Manager struct {
	// Logger reports temporary directories that Merge could not clean up.
	//
	// Default to log.Default().
	Logger *log.Logger

	archives map[ArchiveID]*Archive
	ids      []ArchiveID
}

func (m *Manager) logger() *log.Logger {
	if m.Logger != nil {
		return m.Logger
	}

	return log.Default()
}

// AddZip registers the archive and returns its new id.
func (m *Manager) AddZip(a *Archive) ArchiveID {
	if m.archives == nil {
		m.archives = make(map[ArchiveID]*Archive)
	}

	var id ArchiveID
	for {
		u := uuid.New()
		if id = ArchiveID(hex.EncodeToString(u[:])); m.archives[id] == nil {
			break
		}
	}

	m.archives[id] = a
	m.ids = append(m.ids, id)
	return id
}

// RemoveZip unregisters the archive without closing it.
func (m *Manager) RemoveZip(a *Archive) error {
	for _, id := range m.ids {
		if m.archives[id] == a {
			m.remove(id)
			return nil
		}
	}

	return &Error{Kind: ErrNotFound, Op: "remove zip", Msg: "archive not found"}
}

// RemoveZipByID unregisters the archive with the given id without closing it.
func (m *Manager) RemoveZipByID(id ArchiveID) error {
	if _, ok := m.archives[id]; !ok {
		return &Error{Kind: ErrNotFound, Op: "remove zip", Msg: fmt.Sprintf("archive id %s not found", id)}
	}

	m.remove(id)
	return nil
}

func (m *Manager) remove(id ArchiveID) {
	delete(m.archives, id)
	for i, v := range m.ids {
		if v == id {
			m.ids = append(m.ids[:i], m.ids[i+1:]...)
			break
		}
	}
}

// GetZip returns the archive with the given id.
func (m *Manager) GetZip(id ArchiveID) (*Archive, error) {
	a, ok := m.archives[id]
	if !ok {
		return nil, &Error{Kind: ErrNotFound, Op: "get zip", Msg: fmt.Sprintf("archive id %s not found", id)}
	}

	return a, nil
}

// ListZips returns the file name of every managed archive.
func (m *Manager) ListZips() map[ArchiveID]string {
	names := make(map[ArchiveID]string, len(m.ids))
	for _, id := range m.ids {
		names[id] = m.archives[id].Name()
	}

	return names
}

// Count returns the number of managed archives.
func (m *Manager) Count() int {
	return len(m.ids)
}

func (m *Manager) each(fn func(id ArchiveID, a *Archive) error) error {
	for _, id := range m.ids {
		if err := fn(id, m.archives[id]); err != nil {
			return err
		}
	}

	return nil
}

// SetPath sets the base path of every managed archive.
func (m *Manager) SetPath(path string) error {
	return m.each(func(_ ArchiveID, a *Archive) error {
		return a.SetPath(path)
	})
}

// Paths returns the base path of every managed archive.
func (m *Manager) Paths() map[ArchiveID]string {
	paths := make(map[ArchiveID]string, len(m.ids))
	_ = m.each(func(id ArchiveID, a *Archive) error {
		paths[id] = a.Path()
		return nil
	})

	return paths
}

// SetMask sets the extraction mask of every managed archive.
func (m *Manager) SetMask(mask fs.FileMode) error {
	return m.each(func(_ ArchiveID, a *Archive) error {
		return a.SetMask(mask)
	})
}

// Masks returns the extraction mask of every managed archive.
func (m *Manager) Masks() map[ArchiveID]fs.FileMode {
	masks := make(map[ArchiveID]fs.FileMode, len(m.ids))
	_ = m.each(func(id ArchiveID, a *Archive) error {
		masks[id] = a.Mask()
		return nil
	})

	return masks
}

// ListFiles returns the entry names of every managed archive.
func (m *Manager) ListFiles() (map[ArchiveID][]string, error) {
	files := make(map[ArchiveID][]string, len(m.ids))
	err := m.each(func(id ArchiveID, a *Archive) (err error) {
		files[id], err = a.ListFiles()
		return
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// Add adds the same targets to every managed archive.
func (m *Manager) Add(targets []string, optFns ...func(*AddOptions)) error {
	return m.each(func(_ ArchiveID, a *Archive) error {
		return a.Add(targets, optFns...)
	})
}

// Delete deletes the same entries from every managed archive.
func (m *Manager) Delete(names ...string) error {
	return m.each(func(_ ArchiveID, a *Archive) error {
		return a.Delete(names...)
	})
}

// Close closes every managed archive. The archives stay registered.
func (m *Manager) Close() error {
	return m.each(func(_ ArchiveID, a *Archive) error {
		return a.Close()
	})
}

// Extract extracts every managed archive into destination.
//
// If separate is true, each archive is extracted into its own subdirectory of destination named after the archive file
// without its extension.
func (m *Manager) Extract(destination string, separate bool, files ...string) error {
	return m.each(func(_ ArchiveID, a *Archive) error {
		dst := destination
		if separate {
			dst = filepath.Join(destination, Stem(a.Name()))
		}

		return a.Extract(dst, files...)
	})
}

// Merge extracts every managed archive into a temporary directory next to output, adds the content of that directory
// to the archive at output, then deletes the temporary directory.
//
// If output already exists, the merged entries are added to it. If any step fails, the temporary directory is left
// behind; the returned error names it and Logger reports it.
func (m *Manager) Merge(output string, separate bool) error {
	if output == "" {
		return &Error{Kind: ErrInvalidArgument, Op: "merge", Msg: "invalid output path"}
	}

	tmp := filepath.Join(filepath.Dir(output), tempFolderName())

	if err := m.Extract(tmp, separate); err != nil {
		return m.leftBehind(tmp, err)
	}

	a, err := Create(output, false)
	if err != nil {
		return m.leftBehind(tmp, err)
	}

	if err = a.Add([]string{tmp}, func(opts *AddOptions) {
		opts.FlattenRoot = true
	}); err != nil {
		_ = a.Discard()
		return m.leftBehind(tmp, err)
	}

	if err = a.Close(); err != nil {
		return m.leftBehind(tmp, err)
	}

	if err = os.RemoveAll(tmp); err != nil {
		return m.leftBehind(tmp, &Error{Kind: ErrIO, Op: "merge", Path: tmp, Msg: "error deleting temporary folder", Err: err})
	}

	return nil
}

func (m *Manager) leftBehind(tmp string, err error) error {
	if _, statErr := os.Stat(tmp); statErr != nil {
		return err
	}

	m.logger().Printf("merge failed, temporary folder %s was left behind", tmp)
	return &Error{Kind: kindOf(err), Op: "merge", Path: tmp, Msg: "merge failed, temporary folder left behind", Err: err}
}
