//go:generate mockgen -destination=mock_test.go -package=depgraph . FileSystem,Action

package depgraph

import (
	"io/fs"
	"os"
)

// FileSystem is the source of file metadata consulted by Make. Only
// existence and modification time are used.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
}

// OSFileSystem reads metadata from the host filesystem.
type OSFileSystem struct{}

// Stat calls os.Stat.
func (OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}
