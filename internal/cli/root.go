package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wingetrel",
	Short: "Update winget package manifests for a new release",
	Long: `wingetrel rewrites the manifests of a winget package version for a new release.

It pairs the installers of the existing installer manifest with the new
installer URLs, downloads every new installer once to recompute its SHA-256,
MSI ProductCode and MSIX signature hash, and writes every manifest back in
the field order of the published manifest schema.

Nothing is written unless every installer and every document succeeded.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or parameters
  12 - User denied writing the manifests
  20 - Installer URL count differs from the manifest
  21 - Installer download failed
  22 - Installer is not the container its type claims
  23 - Manifest schema could not be fetched or parsed
  24 - A document declares an unknown ManifestType
  25 - A rewritten document does not satisfy its schema`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
