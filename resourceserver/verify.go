package resourceserver

import (
	"crypto/ecdsa"
	"time"

	"github.com/402labs/facilitator"
	"github.com/402labs/facilitator/receipt"
)

// VerifierConfig selects how incoming receipt tokens are checked. Set
// exactly one of JWTSecret or FacilitatorPublicKey; if neither is set,
// tokens are decoded without signature verification (display-only —
// never gate access on an unverified result).
type VerifierConfig struct {
	JWTSecret            []byte
	FacilitatorPublicKey *ecdsa.PublicKey

	// CacheTTL is how long a verified token is trusted without
	// re-verification. Zero uses the default of 60 seconds.
	CacheTTL time.Duration
}

// DefaultCacheTTL is the verification cache's default entry lifetime.
const DefaultCacheTTL = 60 * time.Second

// Verifier checks receipt tokens under a fixed VerifierConfig, caching
// successful verifications.
type Verifier struct {
	cfg   VerifierConfig
	cache *verificationCache
}

// NewVerifier builds a Verifier from cfg.
func NewVerifier(cfg VerifierConfig) *Verifier {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Verifier{cfg: cfg, cache: newVerificationCache(ttl)}
}

// Verify checks token against expectedContentId, consulting the
// verification cache first and populating it on a fresh verification.
func (v *Verifier) Verify(token, expectedContentId string) (*x402.Receipt, error) {
	if cached, ok := v.cache.get(token); ok {
		if expectedContentId != "" && cached.ContentId != expectedContentId {
			return nil, x402.ErrContentIdMismatch
		}
		return cached, nil
	}

	r, err := v.verifyFresh(token, expectedContentId)
	if err != nil {
		return nil, err
	}
	v.cache.set(token, r)
	return r, nil
}

func (v *Verifier) verifyFresh(token, expectedContentId string) (*x402.Receipt, error) {
	switch {
	case len(v.cfg.JWTSecret) > 0:
		return receipt.VerifyHMAC(token, v.cfg.JWTSecret, expectedContentId)
	case v.cfg.FacilitatorPublicKey != nil:
		return receipt.VerifyECDSA(token, v.cfg.FacilitatorPublicKey, expectedContentId)
	default:
		r, err := receipt.DecodeUnverified(token)
		if err != nil {
			return nil, err
		}
		if time.Now().Unix() > r.ExpiresAt {
			return nil, x402.ErrReceiptExpired
		}
		if expectedContentId != "" && r.ContentId != expectedContentId {
			return nil, x402.ErrContentIdMismatch
		}
		return r, nil
	}
}
