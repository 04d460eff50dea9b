package download

import (
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

// NamespaceArtifact is the UUID namespace for deterministic artifact file
// names, derived from "wingetrel/artifact/v1" under the standard URL namespace.
var NamespaceArtifact = uuid.NewSHA1(uuid.NameSpaceURL, []byte("wingetrel/artifact/v1"))

// fallbackSegment names artifacts whose final URL has no usable path segment.
const fallbackSegment = "artifact"

// ArtifactName returns the local file name for a download of requestedURL
// that ended at finalURL.
//
// Examples:
//   - "https://example.com/app.msi" → "<uuid>-app.msi"
//   - "https://example.com/latest" → 302 → ".../v2/app%20setup.exe" → "<uuid>-app setup.exe"
func ArtifactName(requestedURL, finalURL string) string {
	id := uuid.NewSHA1(NamespaceArtifact, []byte(requestedURL))
	return id.String() + "-" + lastSegment(finalURL)
}

func lastSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallbackSegment
	}

	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return fallbackSegment
	}

	return sanitize(base)
}

// sanitize replaces characters that are not allowed in Windows file names.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, name)
}
