package msi

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/richardlehane/mscfb"
	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

const (
	streamStringPool = "_StringPool"
	streamStringData = "_StringData"
	tableProperty    = "Property"

	propertyProductCode = "ProductCode"
)

// streamSource yields the raw bytes of a named table stream.
type streamSource interface {
	Stream(name string) ([]byte, error)
}

var errStreamNotFound = errors.New("stream not found")

// compoundFile indexes the root-level streams of an MSI by their encoded name.
type compoundFile struct {
	streams map[string][]byte
}

// openCompoundFile reads the streams the database reader needs into memory.
// Installer payload streams (cabinets, binaries) are skipped.
func openCompoundFile(r io.ReaderAt) (*compoundFile, error) {
	doc, err := mscfb.New(r)
	if err != nil {
		return nil, err
	}

	wanted := map[string]bool{
		EncodeStreamName(streamStringPool, true): true,
		EncodeStreamName(streamStringData, true): true,
		EncodeStreamName(tableProperty, true):    true,
	}

	cf := &compoundFile{streams: make(map[string][]byte, len(wanted))}
	for entry, err := doc.Next(); ; entry, err = doc.Next() {
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !wanted[entry.Name] || len(entry.Path) != 0 {
			continue
		}

		buf := make([]byte, entry.Size)
		if _, err := io.ReadFull(entry, buf); err != nil {
			return nil, fmt.Errorf("read stream %q: %w", entry.Name, err)
		}
		cf.streams[entry.Name] = buf
	}

	return cf, nil
}

func (cf *compoundFile) Stream(name string) ([]byte, error) {
	data, ok := cf.streams[EncodeStreamName(name, true)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, errStreamNotFound)
	}
	return data, nil
}

// ProductCode returns the ProductCode property of the MSI at path.
// Any container or table problem is reported as wingetrel.ErrUnsupportedFormat.
func ProductCode(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	cf, err := openCompoundFile(f)
	if err != nil {
		return "", fmt.Errorf("%w: %s is not an MSI database: %v", wingetrel.ErrUnsupportedFormat, path, err)
	}

	code, err := readProperty(cf, propertyProductCode)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", wingetrel.ErrUnsupportedFormat, path, err)
	}
	return code, nil
}

// Properties returns the whole Property table of the MSI at path.
func Properties(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cf, err := openCompoundFile(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not an MSI database: %v", wingetrel.ErrUnsupportedFormat, path, err)
	}

	props, err := readPropertyTable(cf)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", wingetrel.ErrUnsupportedFormat, path, err)
	}
	return props, nil
}

func readProperty(src streamSource, name string) (string, error) {
	props, err := readPropertyTable(src)
	if err != nil {
		return "", err
	}

	value, ok := props[name]
	if !ok || value == "" {
		return "", fmt.Errorf("property %s not set", name)
	}
	return value, nil
}

// readPropertyTable decodes the Property table. Both columns are string
// references; the table is stored as all Property refs followed by all
// Value refs.
func readPropertyTable(src streamSource) (map[string]string, error) {
	poolData, err := src.Stream(streamStringPool)
	if err != nil {
		return nil, err
	}
	strData, err := src.Stream(streamStringData)
	if err != nil {
		return nil, err
	}
	pool, err := parseStringPool(poolData, strData)
	if err != nil {
		return nil, err
	}

	table, err := src.Stream(tableProperty)
	if err != nil {
		return nil, err
	}

	rowSize := 2 * pool.refBytes
	if len(table)%rowSize != 0 {
		return nil, fmt.Errorf("property table: size %d is not a multiple of row size %d", len(table), rowSize)
	}
	rows := len(table) / rowSize

	props := make(map[string]string, rows)
	for row := 0; row < rows; row++ {
		keyRef := readRef(table, row*pool.refBytes, pool.refBytes)
		valRef := readRef(table, (rows+row)*pool.refBytes, pool.refBytes)

		key, ok := pool.lookup(keyRef)
		if !ok {
			return nil, fmt.Errorf("property table: row %d: unknown string id %d", row, keyRef)
		}
		value, ok := pool.lookup(valRef)
		if !ok {
			return nil, fmt.Errorf("property table: row %d: unknown string id %d", row, valRef)
		}
		props[key] = value
	}

	return props, nil
}

// readRef reads a little-endian string reference of width bytes.
func readRef(b []byte, offset, width int) uint32 {
	var v uint32
	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint32(b[offset+i])
	}
	return v
}
