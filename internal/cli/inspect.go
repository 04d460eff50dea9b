package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/wingetrel/internal/checksum"
	"github.com/vvka-141/wingetrel/internal/download"
	"github.com/vvka-141/wingetrel/internal/logging"
	"github.com/vvka-141/wingetrel/internal/metadata"
	"github.com/vvka-141/wingetrel/internal/tui"
	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// inspectOutput is printed as YAML using manifest key names, so it can be
// pasted into an installer entry.
type inspectOutput struct {
	InstallerUrl      string `yaml:"InstallerUrl,omitempty"`
	InstallerType     string `yaml:"InstallerType"`
	InstallerSha256   string `yaml:"InstallerSha256"`
	ProductCode       string `yaml:"ProductCode,omitempty"`
	SignatureSha256   string `yaml:"SignatureSha256,omitempty"`
	PackageFamilyName string `yaml:"PackageFamilyName,omitempty"`
}

func newInspectCmd() *cobra.Command {
	var installerType string

	cmd := &cobra.Command{
		Use:   "inspect <file_or_url>",
		Short: "Print the metadata wingetrel derives from one installer",
		Long: `Inspect computes the metadata of a single installer the same way update does:
InstallerSha256 always, ProductCode for msi and wix installers, and
SignatureSha256 and PackageFamilyName for msix and appx packages.

The argument is a local file or an http(s) URL. Without --type the installer
type is guessed from the file extension.

Examples:
  wingetrel inspect ./Contoso.App.msix
  wingetrel inspect https://example.com/app-2.0.0.msi --type wix`,
		Args: RequireArtifact,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], installerType)
		},
	}

	cmd.Flags().StringVarP(&installerType, "type", "t", "",
		"Installer type: "+strings.Join(installerTypes, "|"))
	_ = cmd.RegisterFlagCompletionFunc("type", completeInstallerTypes)

	return cmd
}

func init() {
	rootCmd.AddCommand(newInspectCmd())
}

// guessInstallerType maps a file extension to an installer type.
func guessInstallerType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".msi":
		return wingetrel.InstallerTypeMSI
	case ".msix", ".msixbundle":
		return wingetrel.InstallerTypeMSIX
	case ".appx", ".appxbundle":
		return wingetrel.InstallerTypeAppx
	case ".zip":
		return wingetrel.InstallerTypeZip
	}
	return wingetrel.InstallerTypeExe
}

func isRemote(arg string) bool {
	lower := strings.ToLower(arg)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func runInspect(cmd *cobra.Command, arg, installerType string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	if installerType == "" {
		installerType = guessInstallerType(arg)
		logger.Verbose("Installer type guessed from extension: %s", installerType)
	}

	req := wingetrel.ExtractRequest{
		InstallerType:     installerType,
		ProductCode:       wingetrel.IsMSIContainer(installerType),
		SignatureSha256:   wingetrel.IsMSIX(installerType),
		PackageFamilyName: wingetrel.IsMSIX(installerType),
	}

	var opts []download.Option
	if tui.IsInteractive() {
		opts = append(opts, download.WithProgress(os.Stderr))
	}

	extractor, err := metadata.NewService(download.NewClient(logger, opts...), checksum.New(), logger)
	if err != nil {
		return err
	}
	defer extractor.Close()

	var md *wingetrel.ArtifactMetadata
	if isRemote(arg) {
		md, err = extractor.Extract(commandContext(cmd), arg, req)
	} else {
		md, err = extractor.ExtractFile(arg, arg, req)
	}
	if err != nil {
		return fmt.Errorf("inspect failed: %w", err)
	}

	return printInspectOutput(cmd.OutOrStdout(), arg, installerType, md)
}

func printInspectOutput(w io.Writer, arg, installerType string, md *wingetrel.ArtifactMetadata) error {
	out := inspectOutput{
		InstallerType:     installerType,
		InstallerSha256:   md.Sha256,
		ProductCode:       md.ProductCode,
		SignatureSha256:   md.SignatureSha256,
		PackageFamilyName: md.PackageFamilyName,
	}
	if isRemote(arg) {
		out.InstallerUrl = arg
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
