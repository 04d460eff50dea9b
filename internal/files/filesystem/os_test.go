package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_ReadFile(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "Contoso.App.yaml")
	expected := "ManifestType: version\n"
	os.WriteFile(filePath, []byte(expected), 0644)

	fsys := NewOSFileSystem()

	data, err := fsys.ReadFile(filePath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != expected {
		t.Errorf("ReadFile() = %q, want %q", string(data), expected)
	}
}

func TestOSFileSystem_ReadDir(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("b"), 0644)
	os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("a"), 0644)
	os.Mkdir(filepath.Join(dir, "sub"), 0755)

	entries, err := NewOSFileSystem().ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("ReadDir() returned %d entries, want 3", len(entries))
	}
	if entries[0].Name() != "a.yaml" || entries[1].Name() != "b.yaml" || !entries[2].IsDir() {
		t.Errorf("ReadDir() = %v, want a.yaml, b.yaml, sub/", []string{entries[0].Name(), entries[1].Name(), entries[2].Name()})
	}
}

func TestOSFileSystem_ReadDir_Nonexistent(t *testing.T) {
	_, err := NewOSFileSystem().ReadDir(filepath.Join(t.TempDir(), "nonexistent"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadDir(nonexistent) error = %v, want fs.ErrNotExist", err)
	}
}

func TestOSFileSystem_WriteFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out", "Contoso.App.installer.yaml")
	fsys := NewOSFileSystem()

	if err := fsys.MkdirAll(filepath.Dir(target)); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := fsys.WriteFile(target, []byte("first")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := fsys.WriteFile(target, []byte("second")); err != nil {
		t.Fatalf("WriteFile() overwrite error = %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}

	entries, _ := os.ReadDir(filepath.Dir(target))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the target (no temp files)", len(entries))
	}
}

func TestOSFileSystem_WriteFile_MissingParent(t *testing.T) {
	err := NewOSFileSystem().WriteFile(filepath.Join(t.TempDir(), "missing", "x.yaml"), []byte("x"))
	if err == nil {
		t.Error("WriteFile() into a missing directory should fail")
	}
}

func TestOSFileSystem_Stat(t *testing.T) {
	dir := t.TempDir()
	info, err := NewOSFileSystem().Stat(dir)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.IsDir() {
		t.Error("Stat(dir).IsDir() = false")
	}
}
