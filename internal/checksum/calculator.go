package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// Calculator is an interface for computing artifact checksums.
// This abstraction allows the extractor to be tested with a fake digest.
type Calculator interface {
	// Sum streams r through the digest and returns it as upper-case hex.
	Sum(r io.Reader) (string, error)

	// SumFile opens path and streams its content through the digest.
	SumFile(path string) (string, error)
}

// bufferSize is the chunk size used when streaming content through the digest.
const bufferSize = 64 * 1024

// SHA256 implements checksum calculation using SHA-256.
//
// SHA256 is a zero-size type and is safe for concurrent use by multiple goroutines.
// Using value semantics (pass by value) eliminates heap allocations.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
// Returns by value to avoid heap allocation (SHA256 is a zero-size type).
func New() SHA256 {
	return SHA256{}
}

// Sum computes SHA-256 of everything read from r.
func (c SHA256) Sum(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, bufferSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("failed to hash content: %w", err)
	}
	return Format(h.Sum(nil)), nil
}

// SumFile computes SHA-256 of the file at path.
func (c SHA256) SumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for hashing: %w", path, err)
	}
	defer f.Close()

	return c.Sum(f)
}

// SumBytes computes SHA-256 of in-memory content.
func (c SHA256) SumBytes(content []byte) string {
	hash := sha256.Sum256(content)
	return Format(hash[:])
}

// Format renders a digest the way manifests store it.
func Format(digest []byte) string {
	return strings.ToUpper(hex.EncodeToString(digest))
}

var _ Calculator = SHA256{}
