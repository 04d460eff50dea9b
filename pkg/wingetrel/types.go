package wingetrel

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// UpdateConfig contains all parameters needed to update one package version.
type UpdateConfig struct {
	// SourceDir is the version directory whose manifests are read.
	SourceDir string

	// TargetDir is the directory the rewritten manifests are written to.
	// Defaults to SourceDir (rewrite in place).
	TargetDir string

	// PackageVersion is written into every document.
	PackageVersion string

	// InstallerURLs are the download URLs of the new release, one per distinct
	// installer URL in the existing installer manifest.
	InstallerURLs []string

	// ReleaseNotesURL is applied to locale documents when set.
	ReleaseNotesURL string

	// ReleaseDate (YYYY-MM-DD) is applied to the installer document when set.
	ReleaseDate string

	// ManifestVersion selects the schema set used for ordering and validation.
	ManifestVersion string

	// ValidateSchema enables JSON schema validation of every rewritten document.
	ValidateSchema bool

	// DryRun renders the documents without writing or asking for approval.
	DryRun bool

	// Timeout is the global timeout for the entire run.
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool
}

// Target returns the effective output directory.
func (c *UpdateConfig) Target() string {
	if c.TargetDir != "" {
		return c.TargetDir
	}
	return c.SourceDir
}

// Validate checks if the UpdateConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *UpdateConfig) Validate() error {
	var errs []error

	if c.SourceDir == "" {
		errs = append(errs, fmt.Errorf("SourceDir is required: %w", ErrInvalidConfig))
	}

	if c.PackageVersion == "" {
		errs = append(errs, fmt.Errorf("PackageVersion is required: %w", ErrInvalidConfig))
	}

	if len(c.InstallerURLs) == 0 {
		errs = append(errs, fmt.Errorf("at least one installer URL is required: %w", ErrInvalidConfig))
	}

	for _, u := range c.InstallerURLs {
		if u == "" {
			errs = append(errs, fmt.Errorf("installer URL cannot be empty: %w", ErrInvalidConfig))
			break
		}
	}

	if c.ManifestVersion == "" {
		errs = append(errs, fmt.Errorf("ManifestVersion is required: %w", ErrInvalidConfig))
	}

	if c.ReleaseDate != "" {
		if _, err := time.Parse(ReleaseDateLayout, c.ReleaseDate); err != nil {
			errs = append(errs, fmt.Errorf("release date %q must be YYYY-MM-DD: %w", c.ReleaseDate, ErrInvalidConfig))
		}
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ExtractRequest tells an Extractor which optional identity fields to derive.
// The SHA-256 of the artifact is always computed.
type ExtractRequest struct {
	// InstallerType is the effective installer type of the entry.
	InstallerType string

	// ProductCode requests the MSI ProductCode property.
	ProductCode bool

	// SignatureSha256 requests the hash of the MSIX/APPX signature blob.
	SignatureSha256 bool

	// PackageFamilyName requests the MSIX/APPX package family name.
	PackageFamilyName bool
}

// ArtifactMetadata is everything derived from one downloaded installer.
// Fields that were not requested are empty.
type ArtifactMetadata struct {
	URL               string
	Sha256            string
	ProductCode       string
	SignatureSha256   string
	PackageFamilyName string
}

// Extractor downloads an installer and derives its metadata.
// Implementations must be safe for concurrent Extract calls with distinct URLs.
type Extractor interface {
	Extract(ctx context.Context, url string, req ExtractRequest) (*ArtifactMetadata, error)
}

// Downloader materializes a URL as a complete local file inside dir and
// returns its path. Redirects are resolved before the file is written.
type Downloader interface {
	Download(ctx context.Context, url string, dir string) (string, error)
}

// SchemaFetcher retrieves the raw JSON schema for one manifest type.
type SchemaFetcher interface {
	FetchSchema(ctx context.Context, manifestType ManifestType, manifestVersion string) ([]byte, error)
}
