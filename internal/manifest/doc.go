// Package manifest models winget manifest documents.
//
// A package version is described by several YAML documents, each declaring
// its kind in the ManifestType key. Document is a closed union of the four
// kinds: *InstallerManifest, *DefaultLocaleManifest, *LocaleManifest and
// *VersionManifest. The keys the rewriter changes are typed fields; every
// other top-level key is kept verbatim, in source order, in Extra.
//
// Optional string fields are Values: the zero Value is "absent", which is
// different from a present empty string.
//
// Parse decodes a document and Render emits it with its fields in schema
// order. Schema fields the document does not have are emitted as commented
// placeholders ("# Key:") so the file shows what could be filled in.
package manifest
