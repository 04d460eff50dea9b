package wingetrel

import "context"

// Approver confirms that rewritten manifests may be written to disk.
//
// Implementations:
//   - ForcedApprover: approves without prompting (--yes, CI)
//   - InteractiveApprover: asks on the terminal
type Approver interface {
	// RequestApproval is called once per run, after every document has been
	// rendered and before any file is written.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - targetDir: Directory the manifests will be written to
	//   - files: Base names of the files about to be written
	//
	// Returns:
	//   - bool: true if approved, false if denied
	//   - error: Any error that occurred during the approval process
	RequestApproval(ctx context.Context, targetDir string, files []string) (bool, error)
}
