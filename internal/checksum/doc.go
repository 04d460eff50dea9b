// Package checksum provides streaming SHA-256 hashing of installer artifacts.
//
// Installers can be several hundred megabytes, so hashing never loads a whole
// artifact into memory: content is streamed through the digest in fixed-size
// chunks. Digests are rendered as upper-case hex, the convention of the
// winget-pkgs repository for InstallerSha256 and SignatureSha256.
//
// # Example Usage
//
//	calculator := checksum.New()
//	sum, err := calculator.SumFile(path)
//
// # Thread Safety
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum
