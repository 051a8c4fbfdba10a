// Package loader handles ROM and patch file loading operations.
package loader

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bodgit/sevenzip"
)

// ErrMemberNotFound is returned when an archive does not contain the requested file.
var ErrMemberNotFound = errors.New("archive member not found")

// Loader handles loading files from disk, transparently extracting them
// from archives.
type Loader struct {
	// IgnoreParentDir resolves member paths relative to the top level
	// directory of an archive, archives are commonly created by compressing
	// a whole folder.
	IgnoreParentDir bool
}

// New creates a new file loader.
func New() *Loader {
	return &Loader{
		IgnoreParentDir: true,
	}
}

// member is a file inside an archive.
type member struct {
	name  string
	isDir bool
	open  func() (io.ReadCloser, error)
}

// Load reads the named file. If the file is an archive the member at
// memberPath is returned, if memberPath is empty the first member with one of
// the given extensions is returned.
func (l *Loader) Load(filename, memberPath string, extensions ...string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", filename, err)
	}

	b, err := l.LoadFromBytes(data, filepath.Ext(filename), memberPath, extensions...)
	if err != nil {
		return nil, fmt.Errorf("loading file %s: %w", filename, err)
	}
	return b, nil
}

// LoadFromBytes extracts the content of file data based on the file extension
// ext. Data of unknown extensions is returned unchanged.
func (l *Loader) LoadFromBytes(data []byte, ext, memberPath string, extensions ...string) ([]byte, error) {
	var (
		members []member
		err     error
	)

	switch strings.ToLower(ext) {
	case ".gz":
		return gunzip(data)

	case ".zip":
		members, err = zipMembers(data)

	case ".7z":
		members, err = sevenZipMembers(data)

	default:
		return data, nil
	}
	if err != nil {
		return nil, err
	}

	m, err := l.selectMember(members, memberPath, extensions)
	if err != nil {
		return nil, err
	}
	return readMember(m)
}

func (l *Loader) selectMember(members []member, memberPath string, extensions []string) (member, error) {
	var files []member
	for _, m := range members {
		if !m.isDir {
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return member{}, fmt.Errorf("%w: archive is empty", ErrMemberNotFound)
	}

	if memberPath != "" {
		name := path.Clean(filepath.ToSlash(memberPath))
		if l.IgnoreParentDir && len(members) > 0 {
			name = path.Join(parentDir(members[0]), name)
		}
		for _, m := range files {
			if path.Clean(m.name) == name {
				return m, nil
			}
		}
		return member{}, fmt.Errorf("%w: %s", ErrMemberNotFound, name)
	}

	if len(extensions) == 0 {
		return files[0], nil
	}
	for _, m := range files {
		if slices.Contains(extensions, strings.ToLower(path.Ext(m.name))) {
			return m, nil
		}
	}
	return member{}, fmt.Errorf("%w: no file with extension %s", ErrMemberNotFound, strings.Join(extensions, ", "))
}

// parentDir returns the top level directory of the first archive entry.
func parentDir(first member) string {
	name := strings.TrimPrefix(first.name, "/")
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return name[:i]
	}
	if first.isDir {
		return name
	}
	return ""
}

func zipMembers(data []byte) ([]member, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening zip archive: %w", err)
	}

	members := make([]member, 0, len(r.File))
	for _, f := range r.File {
		members = append(members, member{
			name:  f.Name,
			isDir: f.FileInfo().IsDir(),
			open:  f.Open,
		})
	}
	return members, nil
}

func sevenZipMembers(data []byte) ([]member, error) {
	r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening 7z archive: %w", err)
	}

	members := make([]member, 0, len(r.File))
	for _, f := range r.File {
		members = append(members, member{
			name:  f.Name,
			isDir: f.FileInfo().IsDir(),
			open:  f.Open,
		})
	}
	return members, nil
}

func readMember(m member) ([]byte, error) {
	rc, err := m.open()
	if err != nil {
		return nil, fmt.Errorf("opening archive member %s: %w", m.name, err)
	}
	defer func() { _ = rc.Close() }()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading archive member %s: %w", m.name, err)
	}
	return b, nil
}

func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer func() { _ = r.Close() }()

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading gzip stream: %w", err)
	}
	return b, nil
}
