package validation

import (
	"strings"
	"testing"

	"github.com/402labs/facilitator"
)

func validPayload() x402.FacilitatorPayload {
	return x402.FacilitatorPayload{
		X402Version: 1,
		Scheme:      "exact",
		Network:     "eip155:8453",
		Resource:    "article-1",
		Payload: x402.EVMPayload{
			Signature: "0x" + strings.Repeat("ab", 65),
			Authorization: x402.Authorization{
				From:        "0x1111111111111111111111111111111111111111",
				To:          "0x2222222222222222222222222222222222222222",
				Value:       "100000",
				ValidAfter:  "0",
				ValidBefore: "9999999999",
				Nonce:       "0x" + strings.Repeat("ab", 32),
			},
		},
	}
}

func TestValidatePayloadHappyPath(t *testing.T) {
	if err := ValidatePayload(validPayload()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidatePayloadRejectsWrongVersion(t *testing.T) {
	p := validPayload()
	p.X402Version = 2
	err := ValidatePayload(p)
	if err == nil || !strings.Contains(err.Error(), "x402Version") {
		t.Fatalf("expected x402Version error, got %v", err)
	}
}

func TestValidatePayloadRejectsBadScheme(t *testing.T) {
	p := validPayload()
	p.Scheme = "max"
	err := ValidatePayload(p)
	if err == nil || !strings.Contains(err.Error(), "scheme") {
		t.Fatalf("expected scheme error, got %v", err)
	}
}

func TestValidatePayloadRejectsMalformedAddress(t *testing.T) {
	p := validPayload()
	p.Payload.Authorization.From = "not-an-address"
	err := ValidatePayload(p)
	if err == nil || !strings.Contains(err.Error(), "authorization.from") {
		t.Fatalf("expected from-address error, got %v", err)
	}
}

func TestValidatePayloadRejectsZeroValue(t *testing.T) {
	p := validPayload()
	p.Payload.Authorization.Value = "0"
	err := ValidatePayload(p)
	if err == nil || !strings.Contains(err.Error(), "authorization.value") {
		t.Fatalf("expected value error, got %v", err)
	}
}

func TestValidatePayloadRejectsBadNonce(t *testing.T) {
	p := validPayload()
	p.Payload.Authorization.Nonce = "0xabc"
	err := ValidatePayload(p)
	if err == nil || !strings.Contains(err.Error(), "nonce") {
		t.Fatalf("expected nonce error, got %v", err)
	}
}

func TestValidatePayloadRejectsInvertedWindow(t *testing.T) {
	p := validPayload()
	p.Payload.Authorization.ValidAfter = "1000"
	p.Payload.Authorization.ValidBefore = "500"
	err := ValidatePayload(p)
	if err == nil || !strings.Contains(err.Error(), "validBefore") {
		t.Fatalf("expected validBefore error, got %v", err)
	}
}

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		amount  string
		wantErr bool
	}{
		{"100", false},
		{"", true},
		{"0", true},
		{"-5", true},
		{"not-a-number", true},
	}
	for _, c := range cases {
		err := ValidateAmount(c.amount)
		if (err != nil) != c.wantErr {
			t.Errorf("ValidateAmount(%q): err=%v, wantErr=%v", c.amount, err, c.wantErr)
		}
	}
}
