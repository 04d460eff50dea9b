package metadata

import "fmt"

// Extraction steps reported in ArtifactError.Op.
const (
	OpDownload          = "download"
	OpHash              = "hash"
	OpProductCode       = "product code"
	OpSignature         = "signature hash"
	OpPackageFamilyName = "package family name"
)

// ArtifactError reports a failed extraction step for one installer URL,
// with an optional actionable hint.
type ArtifactError struct {
	URL  string // Installer URL being processed
	Op   string // Step that failed
	Err  error  // Underlying error
	Hint string // Actionable suggestion, if any
}

func (e *ArtifactError) Error() string {
	msg := fmt.Sprintf("%s of %s: %v", e.Op, e.URL, e.Err)
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	return msg
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}

// hintFor suggests a fix for container-level failures.
func hintFor(op, installerType string) string {
	switch op {
	case OpProductCode:
		return fmt.Sprintf("The installer is declared as %q but is not a readable MSI database. "+
			"Check the InstallerType of this entry or the URL order.", installerType)
	case OpSignature, OpPackageFamilyName:
		return fmt.Sprintf("The installer is declared as %q but is not a signed MSIX/APPX package. "+
			"Check the InstallerType of this entry or the URL order.", installerType)
	}
	return ""
}
