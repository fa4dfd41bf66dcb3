package resourceserver

import (
	"testing"
	"time"

	"github.com/402labs/facilitator/receipt"
)

func mintHMAC(t *testing.T, secret []byte, contentId string) string {
	t.Helper()
	signer := receipt.NewHMACSigner(secret)
	r := receipt.New(contentId, "0xpayer", "0xpayee", "1000000", "USDC", 84532, "0xdeadbeef", "https://facilitator.example", time.Hour)
	token, err := signer.Mint(r)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	return token
}

func TestVerifierVerifiesHMACToken(t *testing.T) {
	secret := []byte("shared-secret")
	v := NewVerifier(VerifierConfig{JWTSecret: secret})
	token := mintHMAC(t, secret, "example.com/article")

	r, err := v.Verify(token, "example.com/article")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if r.ContentId != "example.com/article" {
		t.Fatalf("unexpected contentId %q", r.ContentId)
	}
}

func TestVerifierRejectsContentIdMismatch(t *testing.T) {
	secret := []byte("shared-secret")
	v := NewVerifier(VerifierConfig{JWTSecret: secret})
	token := mintHMAC(t, secret, "example.com/article")

	if _, err := v.Verify(token, "example.com/other"); err == nil {
		t.Fatal("expected content id mismatch error")
	}
}

func TestVerifierCachesSuccessfulVerification(t *testing.T) {
	secret := []byte("shared-secret")
	v := NewVerifier(VerifierConfig{JWTSecret: secret, CacheTTL: time.Minute})
	token := mintHMAC(t, secret, "example.com/article")

	if _, err := v.Verify(token, "example.com/article"); err != nil {
		t.Fatalf("first Verify: %v", err)
	}
	if _, ok := v.cache.get(token); !ok {
		t.Fatal("expected token to be cached after successful verification")
	}
}

func TestVerifierWithNoKeyDecodesUnverified(t *testing.T) {
	signer := receipt.NewHMACSigner([]byte("whatever"))
	r := receipt.New("example.com/article", "0xpayer", "0xpayee", "1000000", "USDC", 84532, "0xdeadbeef", "https://facilitator.example", time.Hour)
	token, err := signer.Mint(r)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	v := NewVerifier(VerifierConfig{})
	got, err := v.Verify(token, "example.com/article")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.Payer != "0xpayer" {
		t.Fatalf("unexpected payer %q", got.Payer)
	}
}

func TestVerifierRejectsExpiredUnverifiedToken(t *testing.T) {
	signer := receipt.NewHMACSigner([]byte("whatever"))
	r := receipt.New("example.com/article", "0xpayer", "0xpayee", "1000000", "USDC", 84532, "0xdeadbeef", "https://facilitator.example", -time.Hour)
	token, err := signer.Mint(r)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	v := NewVerifier(VerifierConfig{})
	if _, err := v.Verify(token, "example.com/article"); err == nil {
		t.Fatal("expected expired receipt to be rejected")
	}
}
