// Package familyname derives Windows package family names.
//
// A package family name is "<identity name>_<publisher id>", where the
// publisher id is a 13 character encoding of the first 8 bytes of the SHA-256
// of the publisher distinguished name in UTF-16LE. The value is matched by
// the winget ecosystem, so the encoding must stay bit-exact:
//
//  1. Encode the publisher as UTF-16LE (no BOM)
//  2. SHA-256 the bytes and keep the first 8 bytes
//  3. Read those 64 bits, right-padded with one zero bit, as 13 groups of 5 bits
//  4. Map every group through Alphabet
//
// Step 3 and 4 are exactly base32 without padding over a custom alphabet.
package familyname

import (
	"crypto/sha256"
	"encoding/base32"

	"golang.org/x/text/encoding/unicode"
)

// Alphabet maps 5-bit groups to symbols. I, L, O and U are left out to avoid
// visual ambiguity.
const Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// PublisherIDLength is the length of the publisher id segment.
const PublisherIDLength = 13

var publisherEncoding = base32.NewEncoding(Alphabet).WithPadding(base32.NoPadding)

// Compute returns the package family name for an identity name and publisher.
func Compute(identityName, publisher string) string {
	return identityName + "_" + PublisherID(publisher)
}

// PublisherID returns the 13 character publisher id segment.
func PublisherID(publisher string) string {
	digest := sha256.Sum256(utf16LE(publisher))
	return publisherEncoding.EncodeToString(digest[:8])
}

func utf16LE(s string) []byte {
	// The encoder only fails on invalid UTF-8, which it replaces instead.
	b, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil
	}
	return b
}
