package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// InteractiveApprover implements the Approver interface for console-based
// interactive confirmation. It lists the manifests and asks for a yes/no
// answer before anything is written.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
}

// NewInteractiveApprover creates a new InteractiveApprover on stdin/stderr.
func NewInteractiveApprover(verbose bool) wingetrel.Approver {
	return &InteractiveApprover{verbose: verbose, input: os.Stdin, output: os.Stderr}
}

// RequestApproval prompts the user to confirm writing files into targetDir.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, targetDir string, files []string) (bool, error) {
	fmt.Fprintf(a.output, "\nAbout to write %d manifests to %s:\n", len(files), targetDir)
	for _, f := range files {
		fmt.Fprintf(a.output, "  %s\n", f)
	}
	fmt.Fprint(a.output, "\nProceed? [y/N]: ")

	// Read user input with context cancellation support
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.input)
		input, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || input == "") {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		switch strings.ToLower(input) {
		case "y", "yes":
			fmt.Fprintln(a.output, "✓ Confirmed.")
			return true, nil
		}
		fmt.Fprintln(a.output, "✗ Nothing written.")
		return false, nil
	}
}

// Verify InteractiveApprover implements the Approver interface at compile time
var _ wingetrel.Approver = (*InteractiveApprover)(nil)
