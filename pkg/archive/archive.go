// Package archive implements the §6 Archive abstraction: a read-only,
// path-joined-by-"/" view over either a directory or a zip file. The
// CORE (internal/xmlload, internal/output) never touches the native
// filesystem directly; it always goes through an Archive.
//
// This is explicitly an external-collaborator surface per spec §1
// ("archive I/O ... the core treats these as sinks/sources with the
// interfaces declared in §6"); the two implementations here are
// reference implementations, not CORE.
package archive

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Archive is the read-side abstraction spec §6 requires.
type Archive interface {
	Exists(path string) bool
	OpenRead(path string) (io.ReadCloser, error)
	List() ([]string, error)
}

// Join joins archive-relative path segments with "/", per spec §6 "a
// path-joining rule using '/'" (archives are not native filesystem
// paths, so filepath.Join's OS-specific separator would be wrong).
func Join(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, "/")
}

// Dir is a directory-backed Archive.
type Dir struct {
	Root string
}

// NewDir returns a Dir rooted at root.
func NewDir(root string) *Dir { return &Dir{Root: root} }

func (d *Dir) native(path string) string {
	return filepath.Join(d.Root, filepath.FromSlash(path))
}

func (d *Dir) Exists(path string) bool {
	_, err := os.Stat(d.native(path))
	return err == nil
}

func (d *Dir) OpenRead(path string) (io.ReadCloser, error) {
	f, err := os.Open(d.native(path))
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}
	return f, nil
}

func (d *Dir) List() ([]string, error) {
	var out []string
	err := filepath.WalkDir(d.Root, func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.Root, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("archive: list %s: %w", d.Root, err)
	}
	return out, nil
}
