package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// ForcedApprover implements the Approver interface for non-interactive runs.
// It lists the files about to be written and approves without asking,
// used when the --yes flag is provided or no terminal is attached.
type ForcedApprover struct {
	verbose bool
	output  io.Writer
}

// NewForcedApprover creates a new ForcedApprover writing to stderr.
func NewForcedApprover(verbose bool) wingetrel.Approver {
	return &ForcedApprover{verbose: verbose, output: os.Stderr}
}

// RequestApproval approves unless ctx is already cancelled.
func (a *ForcedApprover) RequestApproval(ctx context.Context, targetDir string, files []string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if a.verbose {
		fmt.Fprintf(a.output, "Writing %d manifests to %s:\n", len(files), targetDir)
		for _, f := range files {
			fmt.Fprintf(a.output, "  %s\n", f)
		}
	}
	return true, nil
}

// Verify ForcedApprover implements the Approver interface at compile time
var _ wingetrel.Approver = (*ForcedApprover)(nil)
