package post

import (
	"os"

	"golang.org/x/term"
)

// IsTTY checks if the given file descriptor is a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsInteractive checks if stdin is a TTY, indicating that the user can
// confirm a post interactively. Returns false in CI or when input is
// piped.
func IsInteractive() bool {
	return IsTTY(os.Stdin.Fd())
}

// IsOutputTerminal checks if stdout is a TTY, indicating that output is
// being displayed directly rather than being piped or redirected.
func IsOutputTerminal() bool {
	return IsTTY(os.Stdout.Fd())
}
