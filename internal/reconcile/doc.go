// Package reconcile matches the installer entries of an existing installer
// manifest to the installer URLs of a new release and refreshes their
// derived metadata.
//
// Matching is deterministic and independent of list order. Entries are
// stable-sorted by their old InstallerUrl and the new URLs are sorted the same
// way (byte-wise). A two-pointer walk then pairs them: each run of entries
// sharing one old URL forms a slot and takes the next new URL, so entries
// that shared a package (several architectures or scopes pointing at one
// file) keep sharing it.
//
// A run has three passes:
//
//  1. Plan: pure; counts, sorts and assigns slots.
//  2. Extract: one Extractor call per slot, concurrently. Any failure aborts
//     before the document is touched.
//  3. Apply: slot leaders take the extracted metadata, the other members of
//     a slot copy it from the entry before them.
package reconcile
