package util

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal checks if the given file descriptor is a terminal
func IsTerminal(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// ReadSecret reads a line from the terminal without echoing it.
// Used for interactive API key entry.
func ReadSecret(fd uintptr) (string, error) {
	b, err := term.ReadPassword(int(fd))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// GetTerminalWidth returns the width of the terminal, or 80 if not a terminal
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80 // Default width
	}
	return width
}
