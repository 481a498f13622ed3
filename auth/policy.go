package auth

import (
	"context"
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"

	"github.com/karim-saade/daybook/internal/vault"
)

// MinPassphraseLength is the hard floor enforced by the vault core.
const MinPassphraseLength = 8

// ValidatePassphrase applies the baseline passphrase policy. Failures wrap
// vault.ErrWeakSecret so callers can branch on the kind.
func ValidatePassphrase(pw string) error {
	if len(pw) < MinPassphraseLength {
		return fmt.Errorf("%w: must be at least %d characters", vault.ErrWeakSecret, MinPassphraseLength)
	}
	return nil
}

// Options tunes the advanced passphrase checks. The zero value performs only
// the baseline length check.
type Options struct {
	// MinZXCVBNScore rejects passphrases scoring below this zxcvbn score
	// (0-4). Zero disables the check.
	MinZXCVBNScore int
	// EnableHIBP consults the HIBP range API via k-anonymity. Requires
	// network access; the vault core itself never turns this on.
	EnableHIBP bool
}

// DefaultOptions returns the advanced policy used by interactive setup.
func DefaultOptions() Options {
	return Options{MinZXCVBNScore: 3}
}

// ValidatePassphraseAdvanced runs the baseline policy plus the optional
// strength and breach checks.
func ValidatePassphraseAdvanced(ctx context.Context, pw string, opts Options) error {
	if err := ValidatePassphrase(pw); err != nil {
		return err
	}

	if opts.MinZXCVBNScore > 0 {
		strength := zxcvbn.PasswordStrength(pw, nil)
		if strength.Score < opts.MinZXCVBNScore {
			return fmt.Errorf("%w: strength score %d below required %d",
				vault.ErrWeakSecret, strength.Score, opts.MinZXCVBNScore)
		}
	}

	if opts.EnableHIBP {
		result, err := CheckHIBP(ctx, pw)
		if err != nil {
			return fmt.Errorf("breach check: %w", err)
		}
		if result.Found {
			return fmt.Errorf("%w: found in %d known breaches", vault.ErrWeakSecret, result.Count)
		}
	}

	return nil
}
