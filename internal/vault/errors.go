package vault

import "errors"

// Sentinel errors for errors.Is() checks. Callers branch on these kinds
// rather than on message text.
var (
	// ErrWeakSecret is returned when a passphrase fails the policy check.
	ErrWeakSecret = errors.New("passphrase too weak")

	// ErrWrongSecret is returned when a supplied passphrase or recovery code
	// fails to unwrap the DEK.
	ErrWrongSecret = errors.New("wrong passphrase or recovery code")

	// ErrLocked is returned when encryption or decryption is attempted with
	// no cached DEK.
	ErrLocked = errors.New("vault is locked")

	// ErrAuthenticationFailed is returned when ciphertext or its associated
	// data fails authentication during decryption.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrNotEnabled is returned when a lifecycle operation runs before
	// first-time setup.
	ErrNotEnabled = errors.New("vault not enabled")
)
