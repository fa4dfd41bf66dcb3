// Package receipt mints and verifies the signed token the facilitator
// hands back to a paying client and the client presents to a resource
// server. Tokens are compact three-segment JWTs: HMAC-SHA256 (HS256) by
// default on the mint side, with ECDSA P-256 (ES256) available as an
// alternate verification mode for deployments that distribute a public
// key instead of a shared secret.
package receipt

import (
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/google/uuid"
	jose "gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"

	"github.com/402labs/facilitator"
)

// claims combines the standard registered claims (sub/iat/exp) with every
// receipt field, flattened into one JSON object per spec.md §3.
type claims struct {
	jwt.Claims
	x402.Receipt
}

// Signer mints receipt tokens under a single algorithm and key.
type Signer struct {
	alg jose.SignatureAlgorithm
	key interface{}
}

// NewHMACSigner builds the default symmetric signer: HS256 over secret.
func NewHMACSigner(secret []byte) *Signer {
	return &Signer{alg: jose.HS256, key: secret}
}

// NewECDSASigner builds the alternate asymmetric signer: ES256 over an
// EC P-256 private key.
func NewECDSASigner(key *ecdsa.PrivateKey) *Signer {
	return &Signer{alg: jose.ES256, key: key}
}

// Mint signs r and returns the compact token string.
func (s *Signer) Mint(r x402.Receipt) (string, error) {
	signingKey := jose.SigningKey{Algorithm: s.alg, Key: s.key}
	signer, err := jose.NewSigner(signingKey, (&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return "", fmt.Errorf("build signer: %w", err)
	}

	c := claims{
		Claims: jwt.Claims{
			Subject:  r.Payer,
			IssuedAt: jwt.NewNumericDate(time.Unix(r.PaidAt, 0)),
			Expiry:   jwt.NewNumericDate(time.Unix(r.ExpiresAt, 0)),
		},
		Receipt: r,
	}

	token, err := jwt.Signed(signer).Claims(c).CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("sign receipt: %w", err)
	}
	return token, nil
}

// New builds a Receipt with a fresh opaque id and the given fields,
// ready to be passed to Signer.Mint.
func New(contentId, payer, payee, amount, currency string, chainId int64, txHash, facilitatorURL string, ttl time.Duration) x402.Receipt {
	now := time.Now().Unix()
	return x402.Receipt{
		ID:          uuid.NewString(),
		Scheme:      "exact",
		ContentId:   contentId,
		Payer:       payer,
		Payee:       payee,
		Amount:      amount,
		Currency:    currency,
		ChainId:     chainId,
		TxHash:      txHash,
		PaidAt:      now,
		ExpiresAt:   now + int64(ttl.Seconds()),
		Facilitator: facilitatorURL,
	}
}

// VerifyHMAC validates token against secret and, if expectedContentId is
// non-empty, asserts the receipt's contentId matches it. Returns
// ErrReceiptExpired if the token's exp claim has passed.
func VerifyHMAC(token string, secret []byte, expectedContentId string) (*x402.Receipt, error) {
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", x402.ErrReceiptInvalid, err)
	}

	var c claims
	if err := parsed.Claims(secret, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", x402.ErrReceiptInvalid, err)
	}

	return finish(c, expectedContentId)
}

// VerifyECDSA validates token against an EC P-256 public key, the
// alternate asymmetric verification mode.
func VerifyECDSA(token string, pub *ecdsa.PublicKey, expectedContentId string) (*x402.Receipt, error) {
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", x402.ErrReceiptInvalid, err)
	}

	var c claims
	if err := parsed.Claims(pub, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", x402.ErrReceiptInvalid, err)
	}

	return finish(c, expectedContentId)
}

// DecodeUnverified decodes a token's claims without checking its
// signature. Callers must not use the result for authorization decisions;
// it exists only for display/debugging when neither a secret nor a public
// key is configured.
func DecodeUnverified(token string) (*x402.Receipt, error) {
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", x402.ErrReceiptInvalid, err)
	}

	var c claims
	if err := parsed.UnsafeClaimsWithoutVerification(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", x402.ErrReceiptInvalid, err)
	}
	r := c.Receipt
	return &r, nil
}

func finish(c claims, expectedContentId string) (*x402.Receipt, error) {
	if c.Expiry == nil || time.Now().After(c.Expiry.Time()) {
		return nil, x402.ErrReceiptExpired
	}
	if expectedContentId != "" && c.Receipt.ContentId != expectedContentId {
		return nil, fmt.Errorf("%w: token minted for %q, expected %q", x402.ErrContentIdMismatch, c.Receipt.ContentId, expectedContentId)
	}
	r := c.Receipt
	return &r, nil
}
