package msi

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

const (
	longRefsFlag        = 0x8000
	codepageWindows1252 = 1252
)

// stringPool is the decoded shared string table. Id 0 is the null string.
type stringPool struct {
	strings  map[uint32]string
	refBytes int
}

// parseStringPool decodes the _StringPool and _StringData streams.
//
// The pool is a sequence of (length, refcount) uint16 pairs. The first pair
// holds the codepage, with the high bit of the second word marking 3-byte
// string references in tables. A pair of zeros is an unused id. A zero
// length with a non-zero refcount announces a string of 64 KiB or more
// whose length is spread over the following pair.
func parseStringPool(pool, data []byte) (*stringPool, error) {
	if len(pool) < 4 || len(pool)%4 != 0 {
		return nil, fmt.Errorf("string pool: invalid size %d", len(pool))
	}

	words := make([]uint32, len(pool)/2)
	for i := range words {
		words[i] = uint32(binary.LittleEndian.Uint16(pool[i*2:]))
	}

	sp := &stringPool{strings: make(map[uint32]string), refBytes: 2}
	codepage := words[0] | (words[1]&^longRefsFlag)<<16
	if words[1]&longRefsFlag != 0 {
		sp.refBytes = 3
	}

	count := len(words) / 2
	offset := uint32(0)
	id := uint32(1)

	for i := 1; i < count; {
		length, refs := words[i*2], words[i*2+1]

		if length == 0 && refs == 0 {
			i++
			id++
			continue
		}

		if length == 0 {
			if i+1 >= count {
				return nil, fmt.Errorf("string pool: truncated long string entry at id %d", id)
			}
			length = words[i*2+3]<<16 + words[i*2+2]
			i += 2
		} else {
			i++
		}

		end := offset + length
		if end > uint32(len(data)) {
			return nil, fmt.Errorf("string pool: id %d overruns string data (%d > %d)", id, end, len(data))
		}

		s, err := decodeString(data[offset:end], codepage)
		if err != nil {
			return nil, fmt.Errorf("string pool: id %d: %w", id, err)
		}
		sp.strings[id] = s

		offset = end
		id++
	}

	return sp, nil
}

func decodeString(raw []byte, codepage uint32) (string, error) {
	switch codepage {
	case codepageWindows1252:
		return charmap.Windows1252.NewDecoder().String(string(raw))
	default:
		// Neutral (0) and UTF-8 pools pass through; identifiers such as GUIDs
		// are ASCII in every Windows codepage.
		return string(raw), nil
	}
}

func (sp *stringPool) lookup(id uint32) (string, bool) {
	if id == 0 {
		return "", true
	}
	s, ok := sp.strings[id]
	return s, ok
}
