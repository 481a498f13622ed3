package main

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// promptSecret reads a secret from the terminal without echo.
func promptSecret(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return string(pw), nil
}

// promptNewPassphrase reads and confirms a new passphrase.
func promptNewPassphrase(label string) (string, error) {
	pw, err := promptSecret(label)
	if err != nil {
		return "", err
	}
	confirm, err := promptSecret(label + " (again)")
	if err != nil {
		return "", err
	}
	if pw != confirm {
		return "", errors.New("passphrases do not match")
	}
	return pw, nil
}
