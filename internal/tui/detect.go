package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents the interaction mode of a wingetrel run.
type Mode int

const (
	// ModeNonInteractive is used for CI/CD pipelines, scripts, and piped input.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is at the terminal.
	ModeInteractive
)

// NonInteractiveEnv forces non-interactive mode when set to "1".
const NonInteractiveEnv = "WINGETREL_NON_INTERACTIVE"

// DetectMode determines whether wingetrel may prompt and use colors.
//
// Returns ModeNonInteractive if:
//   - WINGETREL_NON_INTERACTIVE=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set (accessibility/automation indicator)
//   - stdin or stdout is not a terminal
//
// Returns ModeInteractive otherwise.
func DetectMode() Mode {
	return detectMode(os.Getenv,
		term.IsTerminal(int(os.Stdin.Fd())),
		term.IsTerminal(int(os.Stdout.Fd())))
}

func detectMode(getenv func(string) string, stdinTTY, stdoutTTY bool) Mode {
	if getenv(NonInteractiveEnv) == "1" {
		return ModeNonInteractive
	}
	if getenv("CI") != "" || getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}
	if !stdinTTY || !stdoutTTY {
		return ModeNonInteractive
	}
	return ModeInteractive
}

// IsInteractive reports whether DetectMode returns ModeInteractive.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
