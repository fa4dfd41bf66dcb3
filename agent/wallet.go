// Package agent implements the paying side of the protocol: a Wallet
// signs TransferWithAuthorization payloads, a Client wraps an
// http.Client fetch with the 402-triggered payment sub-flow,
// and a BudgetManager and ReceiptCache keep repeated calls cheap and
// bounded.
package agent

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"

	"github.com/402labs/facilitator"
	"github.com/402labs/facilitator/eip712"
)

// Wallet signs TransferWithAuthorization payloads for a single EVM key.
type Wallet struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// WalletOption configures a Wallet under construction.
type WalletOption func(*Wallet) error

// NewWallet builds a Wallet from the given options. Exactly one
// key-loading option (WithPrivateKey, WithKeystore, or WithMnemonic) must
// be supplied.
func NewWallet(opts ...WalletOption) (*Wallet, error) {
	w := &Wallet{}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	if w.privateKey == nil {
		return nil, fmt.Errorf("agent: no key-loading option supplied")
	}
	w.address = crypto.PubkeyToAddress(w.privateKey.PublicKey)
	return w, nil
}

// WithPrivateKey loads the signing key from a hex string, with or
// without a 0x prefix.
func WithPrivateKey(hexKey string) WalletOption {
	return func(w *Wallet) error {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
		if err != nil {
			return fmt.Errorf("agent: invalid private key: %w", err)
		}
		w.privateKey = key
		return nil
	}
}

// WithKeystore loads the signing key from a go-ethereum encrypted
// keystore JSON file.
func WithKeystore(path, password string) WalletOption {
	return func(w *Wallet) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("agent: read keystore: %w", err)
		}

		var keyJSON struct {
			Crypto keystore.CryptoJSON `json:"crypto"`
		}
		if err := json.Unmarshal(data, &keyJSON); err != nil {
			return fmt.Errorf("agent: parse keystore: %w", err)
		}

		privateKeyBytes, err := keystore.DecryptDataV3(keyJSON.Crypto, password)
		if err != nil {
			return fmt.Errorf("agent: decrypt keystore: %w", err)
		}

		key, err := crypto.ToECDSA(privateKeyBytes)
		if err != nil {
			return fmt.Errorf("agent: keystore key: %w", err)
		}
		w.privateKey = key
		return nil
	}
}

// WithMnemonic derives the signing key from a BIP-39 mnemonic along the
// standard Ethereum path m/44'/60'/0'/0/{accountIndex}.
func WithMnemonic(mnemonic string, accountIndex uint32) WalletOption {
	return func(w *Wallet) error {
		if !bip39.IsMnemonicValid(mnemonic) {
			return fmt.Errorf("agent: invalid mnemonic")
		}
		seed := bip39.NewSeed(mnemonic, "")

		key, err := deriveEthereumKey(seed, accountIndex)
		if err != nil {
			return fmt.Errorf("agent: derive key: %w", err)
		}
		w.privateKey = key
		return nil
	}
}

// deriveEthereumKey derives an Ethereum private key from a BIP-39 seed
// along path m/44'/60'/0'/0/{index}.
func deriveEthereumKey(seed []byte, index uint32) (*ecdsa.PrivateKey, error) {
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	for _, child := range []uint32{
		bip32.FirstHardenedChild + 44,
		bip32.FirstHardenedChild + 60,
		bip32.FirstHardenedChild + 0,
		0,
		index,
	} {
		key, err = key.NewChildKey(child)
		if err != nil {
			return nil, err
		}
	}
	return crypto.ToECDSA(key.Key)
}

// Address returns the wallet's Ethereum address.
func (w *Wallet) Address() common.Address {
	return w.address
}

// Authorize builds and signs a TransferWithAuthorization for a payment of
// amount (smallest-unit decimal string) to payTo on network, valid from
// ten seconds before now (a grace period for clock drift) until
// timeoutSeconds from now, and returns the signed x402.FacilitatorPayload
// ready to POST to a facilitator.
func (w *Wallet) Authorize(network x402.Network, payTo, amount string, timeoutSeconds int64) (x402.FacilitatorPayload, error) {
	value, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return x402.FacilitatorPayload{}, fmt.Errorf("agent: invalid amount %q", amount)
	}

	nonceHex, err := x402.GenerateNonce()
	if err != nil {
		return x402.FacilitatorPayload{}, fmt.Errorf("agent: generate nonce: %w", err)
	}

	now := time.Now().Unix()
	validAfter := now - 10
	validBefore := now + timeoutSeconds

	auth := eip712.Authorization{
		From:        w.address,
		To:          common.HexToAddress(payTo),
		Value:       value,
		ValidAfter:  big.NewInt(validAfter),
		ValidBefore: big.NewInt(validBefore),
		Nonce:       common.HexToHash(nonceHex),
	}
	domain := eip712.Domain{
		Name:              network.EIP3009Name,
		Version:           network.EIP3009Version,
		ChainId:           big.NewInt(network.ChainId),
		VerifyingContract: common.HexToAddress(network.StablecoinAddr),
	}

	sig, err := eip712.Sign(w.privateKey, domain, auth)
	if err != nil {
		return x402.FacilitatorPayload{}, fmt.Errorf("agent: sign authorization: %w", err)
	}

	return x402.FacilitatorPayload{
		X402Version: 1,
		Scheme:      "exact",
		Network:     network.CAIP2,
		Payload: x402.EVMPayload{
			Signature: sig,
			Authorization: x402.Authorization{
				From:        auth.From.Hex(),
				To:          auth.To.Hex(),
				Value:       auth.Value.String(),
				ValidAfter:  auth.ValidAfter.String(),
				ValidBefore: auth.ValidBefore.String(),
				Nonce:       auth.Nonce.Hex(),
			},
		},
	}, nil
}
