package x402

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateNonce returns 32 cryptographically random bytes, hex-encoded
// with a 0x prefix, suitable for the EIP-3009 authorization nonce field.
func GenerateNonce() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return "0x" + hex.EncodeToString(b[:]), nil
}
