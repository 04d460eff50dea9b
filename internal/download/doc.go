// Package download materializes installer URLs as local files.
//
// Redirects are followed one hop at a time instead of by net/http, so the
// final URL is known before the file is created: the local file name comes
// from the last path segment of the final URL, prefixed with a UUID v5 of the
// requested URL. Two concurrent downloads in one run therefore never share a
// file name, and the same URL always maps to the same name.
//
// The body is streamed to "<name>.part" and renamed once complete, so a file
// with the final name is always fully written.
package download
