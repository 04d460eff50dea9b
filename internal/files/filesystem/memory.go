package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory files
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.isDir }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryFile struct {
	content []byte
	info    *memoryFileInfo
}

// MemoryFileSystem implements FileSystemProvider for in-memory testing.
// Safe for concurrent use by multiple goroutines.
type MemoryFileSystem struct {
	mu    sync.RWMutex
	files map[string]*memoryFile // map of absolute path -> file
	root  string                 // root directory path

	// writes counts successful WriteFile calls.
	writes int
}

// NewMemoryFileSystem creates a new in-memory filesystem.
// The root path is normalized to use forward slashes for virtual filesystem consistency.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = path.Clean(filepath.ToSlash(root))

	mfs := &MemoryFileSystem{
		files: make(map[string]*memoryFile),
		root:  root,
	}
	mfs.addDir(root)
	return mfs
}

// AddFile adds a file to the in-memory filesystem
func (mfs *MemoryFileSystem) AddFile(filePath string, content string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	absPath := mfs.resolve(filePath)
	mfs.ensureDirectoriesExist(absPath)
	mfs.files[absPath] = newMemoryFile(absPath, []byte(content))
}

// Writes returns how many times WriteFile succeeded.
func (mfs *MemoryFileSystem) Writes() int {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.writes
}

func newMemoryFile(absPath string, content []byte) *memoryFile {
	return &memoryFile{
		content: content,
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			size:    int64(len(content)),
			mode:    0644,
			modTime: time.Now(),
		},
	}
}

// resolve maps a caller path onto an absolute virtual path.
func (mfs *MemoryFileSystem) resolve(p string) string {
	p = filepath.ToSlash(p)
	switch {
	case p == "." || p == "":
		return mfs.root
	case path.IsAbs(p):
		return path.Clean(p)
	default:
		return path.Join(mfs.root, p)
	}
}

func (mfs *MemoryFileSystem) addDir(absPath string) {
	mfs.files[absPath] = &memoryFile{
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			mode:    0755 | fs.ModeDir,
			modTime: time.Now(),
			isDir:   true,
		},
	}
}

// ensureDirectoriesExist creates directory entries for all parent directories
func (mfs *MemoryFileSystem) ensureDirectoriesExist(filePath string) {
	dir := path.Dir(filePath)
	if dir == "." || dir == "/" {
		return
	}
	if _, exists := mfs.files[dir]; exists {
		return
	}

	mfs.addDir(dir)
	mfs.ensureDirectoriesExist(dir)
}

func notExist(op, p string) error {
	return &fs.PathError{Op: op, Path: p, Err: fs.ErrNotExist}
}

// ReadFile implements FileSystemProvider.ReadFile
func (mfs *MemoryFileSystem) ReadFile(filePath string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	file, exists := mfs.files[mfs.resolve(filePath)]
	if !exists {
		return nil, notExist("read", filePath)
	}
	if file.info.isDir {
		return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	out := make([]byte, len(file.content))
	copy(out, file.content)
	return out, nil
}

// ReadDir implements FileSystemProvider.ReadDir
func (mfs *MemoryFileSystem) ReadDir(dirPath string) ([]FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	absPath := mfs.resolve(dirPath)
	dir, exists := mfs.files[absPath]
	if !exists {
		return nil, notExist("readdir", dirPath)
	}
	if !dir.info.isDir {
		return nil, fmt.Errorf("path is not a directory: %s", dirPath)
	}

	prefix := strings.TrimSuffix(absPath, "/") + "/"
	var result []FileInfo
	for p, file := range mfs.files {
		rest, ok := strings.CutPrefix(p, prefix)
		if !ok || rest == "" || strings.Contains(rest, "/") {
			continue
		}
		result = append(result, file.info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result, nil
}

// Stat implements FileSystemProvider.Stat
func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	file, exists := mfs.files[mfs.resolve(statPath)]
	if !exists {
		return nil, notExist("stat", statPath)
	}
	return file.info, nil
}

// MkdirAll implements FileSystemProvider.MkdirAll
func (mfs *MemoryFileSystem) MkdirAll(dirPath string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	absPath := mfs.resolve(dirPath)
	if file, exists := mfs.files[absPath]; exists {
		if !file.info.isDir {
			return fmt.Errorf("path is not a directory: %s", dirPath)
		}
		return nil
	}

	mfs.addDir(absPath)
	mfs.ensureDirectoriesExist(absPath)
	return nil
}

// WriteFile implements FileSystemProvider.WriteFile
func (mfs *MemoryFileSystem) WriteFile(filePath string, data []byte) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	absPath := mfs.resolve(filePath)
	parent, exists := mfs.files[path.Dir(absPath)]
	if !exists || !parent.info.isDir {
		return notExist("write", filePath)
	}
	if existing, ok := mfs.files[absPath]; ok && existing.info.isDir {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	content := make([]byte, len(data))
	copy(content, data)
	mfs.files[absPath] = newMemoryFile(absPath, content)
	mfs.writes++
	return nil
}

var _ FileSystemProvider = (*MemoryFileSystem)(nil)
