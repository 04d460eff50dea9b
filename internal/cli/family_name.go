package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/wingetrel/internal/familyname"
)

func newFamilyNameCmd() *cobra.Command {
	var name, publisher string

	cmd := &cobra.Command{
		Use:   "family-name",
		Short: "Compute a package family name from an identity name and publisher",
		Long: `Family-name prints the Windows package family name for an MSIX identity.

Examples:
  wingetrel family-name --name Contoso.App --publisher "CN=Contoso"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), familyname.Compute(name, publisher))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Identity Name from the package manifest (required)")
	cmd.Flags().StringVar(&publisher, "publisher", "", "Identity Publisher distinguished name (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("publisher")

	return cmd
}

func init() {
	rootCmd.AddCommand(newFamilyNameCmd())
}
