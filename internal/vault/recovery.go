package vault

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/karim-saade/daybook/krypto"
)

const recoveryCodeBytes = 16

// NewRecoveryCode generates a fresh recovery code and returns its display
// form: 16 random bytes as dash-grouped upper-case hex, e.g.
// "4F2A-9C01-....". The code is shown once and never persisted.
func NewRecoveryCode() (string, error) {
	raw, err := krypto.RandomBytes(recoveryCodeBytes)
	if err != nil {
		return "", fmt.Errorf("generate recovery code: %w", err)
	}
	return formatRecoveryCode(raw), nil
}

func formatRecoveryCode(raw []byte) string {
	h := strings.ToUpper(hex.EncodeToString(raw))
	groups := make([]string, 0, len(h)/4)
	for i := 0; i < len(h); i += 4 {
		groups = append(groups, h[i:i+4])
	}
	return strings.Join(groups, "-")
}

// NormalizeRecoveryCode strips grouping dashes and whitespace and lower-cases
// the hex, so display formatting never affects the derived KEK. The
// normalized form is what key derivation consumes.
func NormalizeRecoveryCode(code string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '\t':
			return -1
		}
		return r
	}, code)
	cleaned = strings.ToLower(cleaned)
	if len(cleaned) != recoveryCodeBytes*2 {
		return "", fmt.Errorf("recovery code must be %d hex characters", recoveryCodeBytes*2)
	}
	if _, err := hex.DecodeString(cleaned); err != nil {
		return "", fmt.Errorf("recovery code is not valid hex")
	}
	return cleaned, nil
}
