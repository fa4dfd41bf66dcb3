package eip712

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Sign signs the TransferWithAuthorization digest with privateKey and
// returns the 65-byte signature as 0x-prefixed hex, with v normalized to
// the Ethereum convention (27 or 28).
func Sign(privateKey *ecdsa.PrivateKey, d Domain, a Authorization) (string, error) {
	digest, err := Digest(d, a)
	if err != nil {
		return "", err
	}

	sig, err := crypto.Sign(digest, privateKey)
	if err != nil {
		return "", fmt.Errorf("sign digest: %w", err)
	}
	sig[64] += 27

	return "0x" + hex.EncodeToString(sig), nil
}

// Recover recovers the signer address from a 65-byte hex signature over
// the TransferWithAuthorization digest. It accepts both the 27/28 and
// 0/1 v conventions.
func Recover(sigHex string, d Domain, a Authorization) (common.Address, error) {
	sig, err := decodeSignature(sigHex)
	if err != nil {
		return common.Address{}, err
	}

	digest, err := Digest(d, a)
	if err != nil {
		return common.Address{}, err
	}

	// crypto.Ecrecover/SigToPub expect v in {0,1}; normalize 27/28 down.
	normalized := make([]byte, len(sig))
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}

	pub, err := crypto.SigToPub(digest, normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

func decodeSignature(sigHex string) ([]byte, error) {
	sigHex = strings.TrimPrefix(sigHex, "0x")
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != 65 {
		return nil, fmt.Errorf("signature must be 65 bytes, got %d", len(sig))
	}
	return sig, nil
}
