// Package eip712 builds the EIP-712 TransferWithAuthorization digest and
// recovers the signer address from a submitted signature. Both the agent
// client (signing) and the facilitator (recovering) share this
// construction, so the two sides are guaranteed to hash identical bytes.
package eip712

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Domain is the EIP-712 domain separator for a stablecoin deployment:
// {name, version:"2", chainId, verifyingContract}.
type Domain struct {
	Name              string
	Version           string
	ChainId           *big.Int
	VerifyingContract common.Address
}

// Authorization mirrors the six TransferWithAuthorization fields in their
// canonical order.
type Authorization struct {
	From        common.Address
	To          common.Address
	Value       *big.Int
	ValidAfter  *big.Int
	ValidBefore *big.Int
	Nonce       common.Hash
}

func typedData(d Domain, a Authorization) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"TransferWithAuthorization": []apitypes.Type{
				{Name: "from", Type: "address"},
				{Name: "to", Type: "address"},
				{Name: "value", Type: "uint256"},
				{Name: "validAfter", Type: "uint256"},
				{Name: "validBefore", Type: "uint256"},
				{Name: "nonce", Type: "bytes32"},
			},
		},
		PrimaryType: "TransferWithAuthorization",
		Domain: apitypes.TypedDataDomain{
			Name:              d.Name,
			Version:           d.Version,
			ChainId:           (*math.HexOrDecimal256)(d.ChainId),
			VerifyingContract: d.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"from":        a.From.Hex(),
			"to":          a.To.Hex(),
			"value":       (*math.HexOrDecimal256)(a.Value),
			"validAfter":  (*math.HexOrDecimal256)(a.ValidAfter),
			"validBefore": (*math.HexOrDecimal256)(a.ValidBefore),
			"nonce":       a.Nonce.Hex(),
		},
	}
}

// Digest computes keccak256("\x19\x01" || domainSeparator || messageHash),
// the hash both signing and recovery operate on.
func Digest(d Domain, a Authorization) ([]byte, error) {
	td := typedData(d, a)

	domainSeparator, err := td.HashStruct("EIP712Domain", td.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("hash domain: %w", err)
	}
	messageHash, err := td.HashStruct("TransferWithAuthorization", td.Message)
	if err != nil {
		return nil, fmt.Errorf("hash message: %w", err)
	}

	raw := append([]byte{0x19, 0x01}, append(domainSeparator, messageHash...)...)
	return crypto.Keccak256(raw), nil
}
