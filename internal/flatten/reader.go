package flatten

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// FileReader reads a material file given its catalog path.
type FileReader interface {
	ReadFile(name string) ([]byte, error)
}

// FSReader resolves catalog paths inside a file system.
type FSReader struct {
	FS fs.FS
}

func (r FSReader) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(r.FS, path.Clean(filepath.ToSlash(name)))
}

// DirReader resolves catalog paths relative to base. The process working
// directory is never changed.
func DirReader(base string) FSReader {
	return FSReader{FS: os.DirFS(base)}
}
