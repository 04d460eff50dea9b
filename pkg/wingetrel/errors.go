package wingetrel

import (
	"errors"
	"strings"
)

// Sentinel errors for the failure kinds of a manifest update run.
// Every kind aborts the whole run; callers distinguish them with errors.Is().
//
// Example usage:
//
//	_, err := updater.Update(ctx, config)
//	if errors.Is(err, wingetrel.ErrCountMismatch) {
//	    // The release has a different number of installers than the manifest
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrCountMismatch indicates the number of distinct installer URLs in the
	// manifest differs from the number of installer URLs supplied for the release.
	ErrCountMismatch = errors.New("installer count mismatch")

	// ErrDownload indicates an installer could not be downloaded.
	ErrDownload = errors.New("download failed")

	// ErrUnsupportedFormat indicates an installer does not parse as the
	// container format its installer type claims (MSI, MSIX, APPX).
	ErrUnsupportedFormat = errors.New("unsupported installer format")

	// ErrSchemaUnavailable indicates a manifest schema could not be fetched or parsed.
	ErrSchemaUnavailable = errors.New("manifest schema unavailable")

	// ErrUnknownManifestType indicates a document declares a ManifestType
	// outside installer, defaultLocale, locale and version.
	ErrUnknownManifestType = errors.New("unknown manifest type")

	// ErrSchemaValidation indicates a rewritten document failed JSON schema validation.
	ErrSchemaValidation = errors.New("schema validation failed")

	// ErrApprovalDenied indicates the user declined writing the manifests.
	ErrApprovalDenied = errors.New("approval denied")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrCountMismatch):
		return ExitCountMismatch
	case errors.Is(err, ErrDownload):
		return ExitDownloadFailed
	case errors.Is(err, ErrUnsupportedFormat):
		return ExitUnsupportedFormat
	case errors.Is(err, ErrSchemaUnavailable):
		return ExitSchemaUnavailable
	case errors.Is(err, ErrUnknownManifestType):
		return ExitUnknownManifest
	case errors.Is(err, ErrSchemaValidation):
		return ExitSchemaValidation
	}

	// cobra argument and flag errors carry no sentinel
	errStr := err.Error()
	if strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "required flag") ||
		strings.Contains(errStr, "invalid argument") ||
		strings.Contains(errStr, "accepts ") ||
		strings.Contains(errStr, "missing required argument") {
		return ExitUsageError
	}

	return ExitGeneralError
}
