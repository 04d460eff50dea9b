// Package schema resolves winget manifest JSON schemas.
//
// A run loads the four schemas (installer, defaultLocale, locale, version) of
// one manifest version exactly once. The declared order of the keys of each
// schema's top-level "properties" object becomes the field order of rendered
// documents, so output order follows the schema rather than the input.
//
// The raw schema documents are kept so that rewritten documents can be
// validated against them on request.
package schema
