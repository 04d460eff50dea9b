package msi

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// memStreams is an in-memory streamSource keyed by plain table name.
type memStreams map[string][]byte

func (m memStreams) Stream(name string) ([]byte, error) {
	data, ok := m[name]
	if !ok {
		return nil, errStreamNotFound
	}
	return data, nil
}

// buildPool encodes strs as string ids 1..n with codepage 1252 and short refs.
func buildPool(strs ...string) (pool, data []byte) {
	pool = binary.LittleEndian.AppendUint16(pool, 1252)
	pool = binary.LittleEndian.AppendUint16(pool, 0)
	for _, s := range strs {
		pool = binary.LittleEndian.AppendUint16(pool, uint16(len(s)))
		pool = binary.LittleEndian.AppendUint16(pool, 1)
		data = append(data, s...)
	}
	return pool, data
}

// buildPropertyTable lays out rows column-wise with 2-byte refs.
func buildPropertyTable(rows ...[2]uint16) []byte {
	var table []byte
	for _, r := range rows {
		table = binary.LittleEndian.AppendUint16(table, r[0])
	}
	for _, r := range rows {
		table = binary.LittleEndian.AppendUint16(table, r[1])
	}
	return table
}

func TestReadProperty(t *testing.T) {
	pool, data := buildPool(
		"ProductName", "Contoso App",
		"ProductCode", "{11111111-2222-3333-4444-555555555555}",
		"ProductVersion", "1.2.3",
	)
	src := memStreams{
		streamStringPool: pool,
		streamStringData: data,
		tableProperty:    buildPropertyTable([2]uint16{1, 2}, [2]uint16{3, 4}, [2]uint16{5, 6}),
	}

	code, err := readProperty(src, propertyProductCode)
	require.NoError(t, err)
	assert.Equal(t, "{11111111-2222-3333-4444-555555555555}", code)

	props, err := readPropertyTable(src)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"ProductName":    "Contoso App",
		"ProductCode":    "{11111111-2222-3333-4444-555555555555}",
		"ProductVersion": "1.2.3",
	}, props)
}

func TestReadProperty_Missing(t *testing.T) {
	pool, data := buildPool("ProductName", "Contoso App")
	src := memStreams{
		streamStringPool: pool,
		streamStringData: data,
		tableProperty:    buildPropertyTable([2]uint16{1, 2}),
	}

	_, err := readProperty(src, propertyProductCode)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ProductCode not set")
}

func TestReadProperty_MissingStream(t *testing.T) {
	pool, data := buildPool("ProductCode", "{X}")
	src := memStreams{streamStringPool: pool, streamStringData: data}

	_, err := readProperty(src, propertyProductCode)
	assert.True(t, errors.Is(err, errStreamNotFound))
}

func TestReadPropertyTable_BadRef(t *testing.T) {
	pool, data := buildPool("ProductCode")
	src := memStreams{
		streamStringPool: pool,
		streamStringData: data,
		tableProperty:    buildPropertyTable([2]uint16{1, 9}),
	}

	_, err := readPropertyTable(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown string id 9")
}

func TestReadPropertyTable_RaggedTable(t *testing.T) {
	pool, data := buildPool("ProductCode", "{X}")
	src := memStreams{
		streamStringPool: pool,
		streamStringData: data,
		tableProperty:    []byte{1, 0, 2},
	}

	_, err := readPropertyTable(src)
	require.Error(t, err)
}

func TestParseStringPool(t *testing.T) {
	t.Run("empty ids keep numbering", func(t *testing.T) {
		pool, data := buildPool("first")
		// id 2 unused, id 3 "third"
		pool = binary.LittleEndian.AppendUint16(pool, 0)
		pool = binary.LittleEndian.AppendUint16(pool, 0)
		pool = binary.LittleEndian.AppendUint16(pool, 5)
		pool = binary.LittleEndian.AppendUint16(pool, 1)
		data = append(data, "third"...)

		sp, err := parseStringPool(pool, data)
		require.NoError(t, err)

		s, ok := sp.lookup(1)
		assert.True(t, ok)
		assert.Equal(t, "first", s)
		_, ok = sp.lookup(2)
		assert.False(t, ok)
		s, ok = sp.lookup(3)
		assert.True(t, ok)
		assert.Equal(t, "third", s)
	})

	t.Run("long string", func(t *testing.T) {
		long := strings.Repeat("x", 70000)
		var pool []byte
		pool = binary.LittleEndian.AppendUint16(pool, 1252)
		pool = binary.LittleEndian.AppendUint16(pool, 0)
		pool = binary.LittleEndian.AppendUint16(pool, 0) // marker: len 0, refs != 0
		pool = binary.LittleEndian.AppendUint16(pool, 1)
		pool = binary.LittleEndian.AppendUint16(pool, uint16(len(long)&0xFFFF))
		pool = binary.LittleEndian.AppendUint16(pool, uint16(len(long)>>16))
		pool = binary.LittleEndian.AppendUint16(pool, 3)
		pool = binary.LittleEndian.AppendUint16(pool, 1)
		data := append([]byte(long), "end"...)

		sp, err := parseStringPool(pool, data)
		require.NoError(t, err)

		s, ok := sp.lookup(1)
		require.True(t, ok)
		assert.Len(t, s, 70000)
		s, ok = sp.lookup(2)
		require.True(t, ok)
		assert.Equal(t, "end", s)
	})

	t.Run("long refs flag", func(t *testing.T) {
		var pool []byte
		pool = binary.LittleEndian.AppendUint16(pool, 1252)
		pool = binary.LittleEndian.AppendUint16(pool, 0x8000)

		sp, err := parseStringPool(pool, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, sp.refBytes)
	})

	t.Run("windows-1252 decoding", func(t *testing.T) {
		pool, _ := buildPool("xx")
		sp, err := parseStringPool(pool, []byte{0x80, 'A'})
		require.NoError(t, err)
		s, _ := sp.lookup(1)
		assert.Equal(t, "€A", s)
	})

	t.Run("overrun", func(t *testing.T) {
		pool, _ := buildPool("abcdef")
		_, err := parseStringPool(pool, []byte("abc"))
		require.Error(t, err)
	})

	t.Run("bad size", func(t *testing.T) {
		_, err := parseStringPool([]byte{1, 2, 3}, nil)
		require.Error(t, err)
	})
}

func TestReadRef(t *testing.T) {
	assert.Equal(t, uint32(0x0201), readRef([]byte{0x01, 0x02}, 0, 2))
	assert.Equal(t, uint32(0x030201), readRef([]byte{0xFF, 0x01, 0x02, 0x03}, 1, 3))
}

func TestProductCode_NotACompoundFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.msi")
	require.NoError(t, os.WriteFile(path, []byte("MZ this is an executable"), 0o644))

	_, err := ProductCode(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, wingetrel.ErrUnsupportedFormat)
}

func TestProductCode_MissingFile(t *testing.T) {
	_, err := ProductCode(filepath.Join(t.TempDir(), "nope.msi"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
