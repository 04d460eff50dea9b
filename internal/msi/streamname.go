package msi

import "strings"

const (
	tablePrefix rune = 0x4840
	pairBase    rune = 0x3800
	singleBase  rune = 0x4800
)

const bitsPerChar = 6

// mime64 maps a character to its 6-bit code, or -1 if it cannot be packed.
func mime64(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'A' && r <= 'Z':
		return int(r-'A') + 10
	case r >= 'a' && r <= 'z':
		return int(r-'a') + 36
	case r == '.':
		return 62
	case r == '_':
		return 63
	}
	return -1
}

// EncodeStreamName returns the compound-file stream name under which the
// database stores name. Table streams carry an extra marker rune.
//
// Packable characters are folded two per rune; a trailing packable character
// is stored alone; anything else is stored verbatim.
func EncodeStreamName(name string, table bool) string {
	var b strings.Builder
	if table {
		b.WriteRune(tablePrefix)
	}

	runes := []rune(name)
	for i := 0; i < len(runes); i++ {
		first := mime64(runes[i])
		if first < 0 {
			b.WriteRune(runes[i])
			continue
		}

		if i+1 < len(runes) {
			if second := mime64(runes[i+1]); second >= 0 {
				b.WriteRune(pairBase + rune(first) + rune(second<<bitsPerChar))
				i++
				continue
			}
		}
		b.WriteRune(singleBase + rune(first))
	}

	return b.String()
}
