// Package filesystem provides the filesystem abstraction used to read and
// write manifest directories.
//
// Key interface:
//   - FileSystemProvider: list, read, stat and write files
//
// Implementations:
//   - OSFileSystem: production implementation backed by the os package
//   - MemoryFileSystem: in-memory implementation for testing
//
// Not-found errors from both implementations match fs.ErrNotExist.
package filesystem
