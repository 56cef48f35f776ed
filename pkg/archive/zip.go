package archive

import (
	"archive/zip"
	"fmt"
	"io"
)

// Zip is a zip-backed Archive. archive/zip is standard library; no
// third-party zip reader appears anywhere in the retrieval pack, and
// this implementation sits outside CORE scope (see package doc), so
// the stdlib is the appropriate tool here rather than an unjustified
// dependency — see DESIGN.md.
type Zip struct {
	reader *zip.ReadCloser
	byName map[string]*zip.File
}

// OpenZip opens the zip archive at nativePath.
func OpenZip(nativePath string) (*Zip, error) {
	r, err := zip.OpenReader(nativePath)
	if err != nil {
		return nil, fmt.Errorf("archive: open zip %s: %w", nativePath, err)
	}
	z := &Zip{reader: r, byName: make(map[string]*zip.File, len(r.File))}
	for _, f := range r.File {
		z.byName[f.Name] = f
	}
	return z, nil
}

// Close releases the underlying zip reader.
func (z *Zip) Close() error { return z.reader.Close() }

func (z *Zip) Exists(path string) bool {
	_, ok := z.byName[path]
	return ok
}

func (z *Zip) OpenRead(path string) (io.ReadCloser, error) {
	f, ok := z.byName[path]
	if !ok {
		return nil, fmt.Errorf("archive: %s not found in zip", path)
	}
	return f.Open()
}

func (z *Zip) List() ([]string, error) {
	out := make([]string, 0, len(z.byName))
	for name, f := range z.byName {
		if f.FileInfo().IsDir() {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}
