package vault

import (
	"fmt"

	"github.com/karim-saade/daybook/krypto"
)

// dekWrapContext is the versioned associated data bound into every DEK wrap,
// so a wrapped blob cannot be repurposed outside its semantic context.
const dekWrapContext = "vault:dek:v1"

// WrapDEK encrypts the raw DEK under the given KEK.
func WrapDEK(kek, dek []byte) (WrapBlob, error) {
	if len(dek) != krypto.KeySize {
		return WrapBlob{}, fmt.Errorf("dek must be %d bytes", krypto.KeySize)
	}
	iv, ciphertext, err := krypto.EncryptAESGCM(kek, dek, []byte(dekWrapContext))
	if err != nil {
		return WrapBlob{}, fmt.Errorf("wrap dek: %w", err)
	}
	return WrapBlob{IV: iv, Ciphertext: ciphertext}, nil
}

// UnwrapDEK decrypts a wrapped DEK blob. It returns ErrWrongSecret when the
// KEK does not match, which covers both a wrong secret and a tampered blob.
func UnwrapDEK(kek []byte, wrap WrapBlob) ([]byte, error) {
	dek, err := krypto.DecryptAESGCM(kek, wrap.IV, wrap.Ciphertext, []byte(dekWrapContext))
	if err != nil {
		return nil, ErrWrongSecret
	}
	return dek, nil
}
