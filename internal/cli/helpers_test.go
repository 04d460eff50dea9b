package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
)

// executeCommand runs sub under a fresh root command so that flag state never
// leaks between tests.
func executeCommand(t *testing.T, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()

	root := &cobra.Command{Use: "wingetrel", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().BoolP("verbose", "v", false, "")
	root.AddCommand(sub)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{sub.Name()}, args...))

	err := root.Execute()
	return out.String(), err
}

// isolateEnv clears every environment variable the CLI consults.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvManifestVersion, EnvSchemaBaseURL, EnvConcurrency, "CI", "NO_COLOR"} {
		t.Setenv(key, "")
	}
	t.Setenv("WINGETREL_NON_INTERACTIVE", "1")
}
