// Package metadata derives installer metadata from release artifacts.
//
// # Overview
//
// Service implements wingetrel.Extractor. For one installer URL it:
//   - downloads the artifact into the service's run directory
//   - computes the SHA-256 of the whole file
//   - reads the MSI ProductCode when requested for MSI-family installers;
//     only msi and wix artifacts are required to be MSI databases
//   - reads the MSIX/APPX signature hash and package family name when
//     requested for msix and appx installers
//   - removes the downloaded file
//
// Each URL is downloaded under its own URL-derived file name, so concurrent
// Extract calls never share a file. Close removes the run directory.
//
// # Errors
//
// Every failure is returned as an *ArtifactError carrying the URL and the
// step that failed. The underlying sentinel (wingetrel.ErrDownload,
// wingetrel.ErrUnsupportedFormat) stays reachable through errors.Is.
package metadata
