// Package msi reads properties from Windows Installer databases.
//
// An MSI file is an OLE compound file. Every table lives in its own stream,
// stored column by column, and all strings are interned in a shared pool made
// of two streams: _StringPool (length and refcount per string id) and
// _StringData (the concatenated bytes). Stream names are compressed into a
// private range of UTF-16 code units, see EncodeStreamName.
//
// Only what is needed to answer "what is the ProductCode" is implemented:
// the string pool and the two-column Property table.
package msi
