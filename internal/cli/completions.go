package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// installerTypes lists the values accepted by inspect --type.
var installerTypes = []string{
	wingetrel.InstallerTypeMSI,
	wingetrel.InstallerTypeWix,
	wingetrel.InstallerTypeBurn,
	wingetrel.InstallerTypeMSIX,
	wingetrel.InstallerTypeAppx,
	wingetrel.InstallerTypeExe,
	wingetrel.InstallerTypeInno,
	wingetrel.InstallerTypeNullsoft,
	wingetrel.InstallerTypeZip,
	wingetrel.InstallerTypePortable,
}

// manifestVersions are the published manifest schema versions offered for completion.
var manifestVersions = []string{"1.0.0", "1.1.0", "1.2.0", "1.4.0", "1.5.0", "1.6.0", "1.9.0", "1.10.0"}

func completeFromList(values []string, toComplete string) []string {
	var matches []string
	for _, v := range values {
		if strings.HasPrefix(v, toComplete) {
			matches = append(matches, v)
		}
	}
	return matches
}

// completeInstallerTypes provides shell completion for --type.
func completeInstallerTypes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeFromList(installerTypes, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeManifestVersions provides shell completion for --manifest-version.
func completeManifestVersions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeFromList(manifestVersions, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeDirectories provides shell completion for directory paths.
func completeDirectories(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	// Let the shell handle directory completion
	return nil, cobra.ShellCompDirectiveFilterDirs
}
