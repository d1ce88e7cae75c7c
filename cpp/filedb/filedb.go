// Package filedb resolves logical file paths to their current content.
// Open editor buffers are kept in an overlay that shadows the file system,
// so completion always sees what the user sees.
package filedb

import (
	"os"
	"path/filepath"
	"sync"
)

type FileDB struct {
	mu      sync.RWMutex
	rootDir string
	overlay map[string][]byte
}

func New(rootDir string) *FileDB {
	if rootDir == "" {
		if wd, err := os.Getwd(); err == nil {
			rootDir = wd
		} else {
			rootDir = "."
		}
	}
	return &FileDB{
		rootDir: rootDir,
		overlay: make(map[string][]byte),
	}
}

func (db *FileDB) RootDir() string {
	return db.rootDir
}

// AbsolutePath returns the canonical absolute form of path. Relative paths
// are resolved against the root directory.
func (db *FileDB) AbsolutePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	return filepath.Join(db.rootDir, path), nil
}

// Text returns the current content of path: the overlay entry if the file is
// open in an editor, the on-disk content otherwise.
func (db *FileDB) Text(path string) ([]byte, error) {
	abs, err := db.AbsolutePath(path)
	if err != nil {
		return nil, err
	}
	db.mu.RLock()
	content, ok := db.overlay[abs]
	db.mu.RUnlock()
	if ok {
		return content, nil
	}
	return os.ReadFile(abs)
}

// SetOverlay records the buffer content for an open file.
func (db *FileDB) SetOverlay(path string, content []byte) {
	abs, err := db.AbsolutePath(path)
	if err != nil {
		return
	}
	db.mu.Lock()
	db.overlay[abs] = content
	db.mu.Unlock()
}

// RemoveOverlay drops the buffer content for path; the file system wins again.
func (db *FileDB) RemoveOverlay(path string) {
	abs, err := db.AbsolutePath(path)
	if err != nil {
		return
	}
	db.mu.Lock()
	delete(db.overlay, abs)
	db.mu.Unlock()
}
