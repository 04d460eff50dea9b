package wingetrel

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess           = 0  // Manifests updated successfully
	ExitGeneralError      = 1  // Unknown or unclassified error
	ExitUsageError        = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic             = 3  // Internal panic (unexpected crash)
	ExitConfigError       = 10 // Invalid configuration or parameters
	ExitApprovalDenied    = 12 // User declined writing the manifests
	ExitCountMismatch     = 20 // Installer URL count differs from the manifest
	ExitDownloadFailed    = 21 // Installer download failed
	ExitUnsupportedFormat = 22 // Installer is not the container its type claims
	ExitSchemaUnavailable = 23 // Manifest schema could not be fetched or parsed
	ExitUnknownManifest   = 24 // A document declares an unrecognised ManifestType
	ExitSchemaValidation  = 25 // A rewritten document does not satisfy its schema
)

// ManifestType is the value of the ManifestType key of a winget manifest.
type ManifestType string

const (
	ManifestTypeInstaller     ManifestType = "installer"
	ManifestTypeDefaultLocale ManifestType = "defaultLocale"
	ManifestTypeLocale        ManifestType = "locale"
	ManifestTypeVersion       ManifestType = "version"
)

// ManifestTypes lists the recognised manifest types in schema-fetch order.
var ManifestTypes = []ManifestType{
	ManifestTypeInstaller,
	ManifestTypeDefaultLocale,
	ManifestTypeLocale,
	ManifestTypeVersion,
}

// Valid reports whether t is one of the four recognised manifest types.
func (t ManifestType) Valid() bool {
	switch t {
	case ManifestTypeInstaller, ManifestTypeDefaultLocale, ManifestTypeLocale, ManifestTypeVersion:
		return true
	}
	return false
}

const (
	// DefaultManifestVersion is the manifest schema version used when none is configured.
	DefaultManifestVersion = "1.2.0"

	// DefaultSchemaBaseURL is the location of the published winget manifest JSON schemas.
	// Schema documents live at {base}/v{version}/manifest.{type}.{version}.json.
	DefaultSchemaBaseURL = "https://raw.githubusercontent.com/microsoft/winget-cli/master/schemas/JSON/manifests"

	// SchemaReferenceURLFormat is the yaml-language-server schema reference written
	// into the header of every rendered manifest. Arguments: type, manifest version.
	SchemaReferenceURLFormat = "https://aka.ms/winget-manifest.%s.%s.schema.json"

	// DefaultConcurrency bounds how many installers are downloaded at the same time.
	DefaultConcurrency = 4

	// MaxRedirects is the longest redirect chain followed for one installer download.
	MaxRedirects = 10

	// ReleaseDateLayout is the accepted format of the release date (ISO YYYY-MM-DD).
	ReleaseDateLayout = "2006-01-02"

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 2 * time.Second

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultTimeout guards a whole run against hung downloads.
	DefaultTimeout = 30 * time.Minute

	// ToolName is written into the first header line of every rendered manifest.
	ToolName = "wingetrel"
)

// Installer types that determine which identity fields are derived from an artifact.
const (
	InstallerTypeMSI      = "msi"
	InstallerTypeWix      = "wix"
	InstallerTypeBurn     = "burn"
	InstallerTypeMSIX     = "msix"
	InstallerTypeAppx     = "appx"
	InstallerTypeExe      = "exe"
	InstallerTypeZip      = "zip"
	InstallerTypeInno     = "inno"
	InstallerTypeNullsoft = "nullsoft"
	InstallerTypePortable = "portable"
)

// IsMSIContainer reports whether installers of type t are MSI databases from
// which a ProductCode can be read.
func IsMSIContainer(t string) bool {
	return t == InstallerTypeMSI || t == InstallerTypeWix
}

// IsMSIFamily reports whether t belongs to the MSI/MSIX family whose product
// code is owned by the artifact rather than by the publisher.
func IsMSIFamily(t string) bool {
	switch t {
	case InstallerTypeMSI, InstallerTypeWix, InstallerTypeBurn, InstallerTypeMSIX, InstallerTypeAppx:
		return true
	}
	return false
}

// IsMSIX reports whether t is a packaged (MSIX/APPX) installer type.
func IsMSIX(t string) bool {
	return t == InstallerTypeMSIX || t == InstallerTypeAppx
}
