package receipt

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/402labs/facilitator"
)

func sampleReceipt() x402.Receipt {
	return New("gET:example.com/a", "0x1111111111111111111111111111111111111111",
		"0x2222222222222222222222222222222222222222", "1000", "USDC", 8453,
		"0xdeadbeef", "http://localhost:4020", time.Minute)
}

func TestHMACRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	signer := NewHMACSigner(secret)

	r := sampleReceipt()
	token, err := signer.Mint(r)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	got, err := VerifyHMAC(token, secret, r.ContentId)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.ContentId != r.ContentId || got.Amount != r.Amount {
		t.Errorf("round-tripped receipt mismatch: %+v vs %+v", got, r)
	}
}

// The token's JWT header must be exactly {"alg":"HS256","typ":"JWT"} —
// go-jose only sets typ when the signer is built WithType("JWT").
func TestMintSetsJWTHeader(t *testing.T) {
	signer := NewHMACSigner([]byte("test-secret"))
	token, err := signer.Mint(sampleReceipt())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	headerSegment := strings.SplitN(token, ".", 2)[0]
	raw, err := base64.RawURLEncoding.DecodeString(headerSegment)
	if err != nil {
		t.Fatalf("decode header segment: %v", err)
	}

	var header struct {
		Alg string `json:"alg"`
		Typ string `json:"typ"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if header.Alg != "HS256" || header.Typ != "JWT" {
		t.Errorf("got header {alg:%q typ:%q}, want {alg:HS256 typ:JWT}", header.Alg, header.Typ)
	}
}

func TestHMACRoundTripRejectsWrongSecret(t *testing.T) {
	signer := NewHMACSigner([]byte("right-secret"))
	token, err := signer.Mint(sampleReceipt())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := VerifyHMAC(token, []byte("wrong-secret"), ""); err == nil {
		t.Error("expected verification failure with wrong secret")
	}
}

func TestHMACRoundTripRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	signer := NewHMACSigner(secret)

	r := sampleReceipt()
	r.ExpiresAt = time.Now().Add(-time.Hour).Unix()
	token, err := signer.Mint(r)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := VerifyHMAC(token, secret, ""); err != x402.ErrReceiptExpired {
		t.Errorf("expected ErrReceiptExpired, got %v", err)
	}
}

// Wrong content id: a receipt minted for one resource must not verify
// against a request for a different one.
func TestHMACRoundTripRejectsWrongContentId(t *testing.T) {
	secret := []byte("test-secret")
	signer := NewHMACSigner(secret)

	r := sampleReceipt()
	token, err := signer.Mint(r)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := VerifyHMAC(token, secret, "GET:example.com/other"); err == nil {
		t.Error("expected content id mismatch error")
	}
}

func TestECDSARoundTrip(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer := NewECDSASigner(key)

	r := sampleReceipt()
	token, err := signer.Mint(r)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	got, err := VerifyECDSA(token, &key.PublicKey, r.ContentId)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.Payer != r.Payer {
		t.Errorf("payer mismatch: got %q want %q", got.Payer, r.Payer)
	}
}

func TestDecodeUnverified(t *testing.T) {
	signer := NewHMACSigner([]byte("secret"))
	r := sampleReceipt()
	token, err := signer.Mint(r)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	got, err := DecodeUnverified(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ContentId != r.ContentId {
		t.Errorf("got %q, want %q", got.ContentId, r.ContentId)
	}
}
