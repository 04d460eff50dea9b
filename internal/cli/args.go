package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequirePackageDir validates that exactly one package directory argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequirePackageDir(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <package_dir>

Usage: %s

Example:
  %s manifests/c/Contoso/App --version 2.0.0 --url https://example.com/app-2.0.0.msi`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}

// RequireArtifact validates that exactly one installer file or URL argument is provided.
func RequireArtifact(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <file_or_url>

Usage: %s

Example:
  %s ./app.msix --type msix`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}
