package msi

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compound file layout constants for a version 3 file with 512-byte sectors.
const (
	cfbSectorSize = 512
	cfbEndOfChain = 0xFFFFFFFE
	cfbFreeSect   = 0xFFFFFFFF
	cfbFatSect    = 0xFFFFFFFD
	cfbNoStream   = 0xFFFFFFFF

	// Streams this size or larger live in regular sectors, so the file
	// needs no mini stream.
	cfbMiniCutoff = 4096
)

type cfbStream struct {
	name string
	data []byte
}

// buildCompoundFile lays out a minimal compound file: one FAT sector, one
// directory sector holding the root and up to three streams, then the stream
// sectors. Every stream must be at least cfbMiniCutoff bytes.
func buildCompoundFile(t *testing.T, streams ...cfbStream) []byte {
	t.Helper()
	require.LessOrEqual(t, len(streams), 3, "one directory sector holds the root and three streams")

	const fatSector, dirSector = 0, 1
	fat := []uint32{cfbFatSect, cfbEndOfChain}
	starts := make([]uint32, len(streams))
	var body []byte

	for i, s := range streams {
		require.GreaterOrEqual(t, len(s.data), cfbMiniCutoff, "stream %d would need a mini stream", i)
		sectors := (len(s.data) + cfbSectorSize - 1) / cfbSectorSize
		starts[i] = uint32(len(fat))
		for j := 0; j < sectors; j++ {
			next := uint32(len(fat) + 1)
			if j == sectors-1 {
				next = cfbEndOfChain
			}
			fat = append(fat, next)
		}
		padded := make([]byte, sectors*cfbSectorSize)
		copy(padded, s.data)
		body = append(body, padded...)
	}
	require.LessOrEqual(t, len(fat), cfbSectorSize/4)

	header := make([]byte, cfbSectorSize)
	copy(header, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})
	binary.LittleEndian.PutUint16(header[24:], 0x003E)
	binary.LittleEndian.PutUint16(header[26:], 0x0003)
	binary.LittleEndian.PutUint16(header[28:], 0xFFFE)
	binary.LittleEndian.PutUint16(header[30:], 0x0009)
	binary.LittleEndian.PutUint16(header[32:], 0x0006)
	binary.LittleEndian.PutUint32(header[44:], 1)
	binary.LittleEndian.PutUint32(header[48:], dirSector)
	binary.LittleEndian.PutUint32(header[56:], cfbMiniCutoff)
	binary.LittleEndian.PutUint32(header[60:], cfbEndOfChain)
	binary.LittleEndian.PutUint32(header[68:], cfbEndOfChain)
	binary.LittleEndian.PutUint32(header[76:], fatSector)
	for off := 80; off < cfbSectorSize; off += 4 {
		binary.LittleEndian.PutUint32(header[off:], cfbFreeSect)
	}

	fatBytes := make([]byte, cfbSectorSize)
	for i := range cfbSectorSize / 4 {
		v := uint32(cfbFreeSect)
		if i < len(fat) {
			v = fat[i]
		}
		binary.LittleEndian.PutUint32(fatBytes[i*4:], v)
	}

	// Root first; its children hang off a right-sibling chain.
	dir := make([]byte, cfbSectorSize)
	rootChild := uint32(cfbNoStream)
	if len(streams) > 0 {
		rootChild = 1
	}
	putDirEntry(t, dir[0:128], "Root Entry", 5, cfbNoStream, rootChild, cfbEndOfChain, 0)
	for i, s := range streams {
		right := uint32(cfbNoStream)
		if i+1 < len(streams) {
			right = uint32(i + 2)
		}
		putDirEntry(t, dir[(i+1)*128:(i+2)*128], s.name, 2, right, cfbNoStream, starts[i], uint32(len(s.data)))
	}
	for i := len(streams) + 1; i < 4; i++ {
		entry := dir[i*128 : (i+1)*128]
		binary.LittleEndian.PutUint32(entry[68:], cfbNoStream)
		binary.LittleEndian.PutUint32(entry[72:], cfbNoStream)
		binary.LittleEndian.PutUint32(entry[76:], cfbNoStream)
	}

	out := append(header, fatBytes...)
	out = append(out, dir...)
	return append(out, body...)
}

func putDirEntry(t *testing.T, b []byte, name string, objectType byte, right, child, start, size uint32) {
	t.Helper()

	units := utf16.Encode([]rune(name))
	require.Less(t, len(units), 32, "directory entry names hold at most 31 characters")
	for i, u := range units {
		binary.LittleEndian.PutUint16(b[i*2:], u)
	}
	binary.LittleEndian.PutUint16(b[64:], uint16((len(units)+1)*2))
	b[66] = objectType
	b[67] = 1 // black
	binary.LittleEndian.PutUint32(b[68:], cfbNoStream)
	binary.LittleEndian.PutUint32(b[72:], right)
	binary.LittleEndian.PutUint32(b[76:], child)
	binary.LittleEndian.PutUint32(b[116:], start)
	binary.LittleEndian.PutUint32(b[120:], size)
}

func padTo(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	return append(b, make([]byte, n-len(b))...)
}

// writeMSI builds a database whose Property table holds props in order and
// returns its path.
func writeMSI(t *testing.T, props ...[2]string) string {
	t.Helper()

	var strs []string
	rows := make([][2]uint16, 0, cfbMiniCutoff/4)
	for i, p := range props {
		strs = append(strs, p[0], p[1])
		rows = append(rows, [2]uint16{uint16(2*i + 1), uint16(2*i + 2)})
	}
	// Null rows pad the table out of the mini stream range.
	for len(rows) < cfbMiniCutoff/4 {
		rows = append(rows, [2]uint16{0, 0})
	}

	pool, data := buildPool(strs...)
	file := buildCompoundFile(t,
		cfbStream{name: EncodeStreamName(streamStringPool, true), data: padTo(pool, cfbMiniCutoff)},
		cfbStream{name: EncodeStreamName(streamStringData, true), data: padTo(data, cfbMiniCutoff)},
		cfbStream{name: EncodeStreamName(tableProperty, true), data: buildPropertyTable(rows...)},
	)

	path := filepath.Join(t.TempDir(), "product.msi")
	require.NoError(t, os.WriteFile(path, file, 0o644))
	return path
}

func TestProductCode_CompoundFile(t *testing.T) {
	path := writeMSI(t,
		[2]string{"ProductName", "Contoso App"},
		[2]string{"ProductCode", "{6F4B0C1A-2D3E-4F50-8A9B-0C1D2E3F4A5B}"},
		[2]string{"ProductVersion", "2.0.0"},
	)

	code, err := ProductCode(path)
	require.NoError(t, err)
	assert.Equal(t, "{6F4B0C1A-2D3E-4F50-8A9B-0C1D2E3F4A5B}", code)

	props, err := Properties(path)
	require.NoError(t, err)
	assert.Equal(t, "Contoso App", props["ProductName"])
	assert.Equal(t, "2.0.0", props["ProductVersion"])
}

func TestProductCode_CompoundFileWithoutProductCode(t *testing.T) {
	path := writeMSI(t, [2]string{"ProductName", "Contoso App"})

	_, err := ProductCode(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "ProductCode")
}

func TestOpenCompoundFile_MissingTables(t *testing.T) {
	file := buildCompoundFile(t, cfbStream{
		name: EncodeStreamName(streamStringPool, true),
		data: padTo(nil, cfbMiniCutoff),
	})
	path := filepath.Join(t.TempDir(), "partial.msi")
	require.NoError(t, os.WriteFile(path, file, 0o644))

	_, err := ProductCode(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, streamStringData)
}
