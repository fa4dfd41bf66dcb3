package x402

import (
	"net/http"
	"testing"
)

func TestBuildPaymentRequired(t *testing.T) {
	cfg := PublisherConfig{
		PayTo:          "0xabc0000000000000000000000000000000000abc0",
		Currency:       "USDC",
		FacilitatorUrl: "https://facilitator.example.com",
		Network:        "base-mainnet",
		Description:    "premium article",
	}

	headers, body, err := BuildPaymentRequired(cfg, "article-1", "0.01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if headers.Get(HeaderPayTo) != cfg.PayTo {
		t.Errorf("PayTo header = %q", headers.Get(HeaderPayTo))
	}
	if headers.Get(HeaderNetwork) != "base-mainnet" {
		t.Errorf("Network header = %q", headers.Get(HeaderNetwork))
	}
	if len(body) == 0 {
		t.Error("expected non-empty body")
	}
}

// 402 idempotence: issuing a 402 for the same inputs produces identical
// output.
func TestBuildPaymentRequiredIdempotent(t *testing.T) {
	cfg := PublisherConfig{PayTo: "0xabc", Currency: "USDC", Network: "base-mainnet"}
	_, body1, err := BuildPaymentRequired(cfg, "article-1", "0.01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, body2, err := BuildPaymentRequired(cfg, "article-1", "0.01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body1) != string(body2) {
		t.Error("expected identical body for identical inputs")
	}
}

func TestBuildPaymentRequiredRejectsUnknownNetwork(t *testing.T) {
	cfg := PublisherConfig{PayTo: "0xabc", Currency: "USDC", Network: "ethereum"}
	if _, _, err := BuildPaymentRequired(cfg, "article-1", "0.01"); err == nil {
		t.Error("expected error for unregistered network")
	}
}

func TestParsePaymentRequiredFallsBackToHeaders(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderPayTo, "0xabc")
	h.Set(HeaderPrice, "0.01")
	h.Set(HeaderContentId, "article-1")
	h.Set(HeaderNetwork, "base-mainnet")

	resp := &http.Response{Header: h}
	parsed, err := ParsePaymentRequired(resp, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.PayTo != "0xabc" || parsed.ContentId != "article-1" {
		t.Errorf("unexpected parse result: %+v", parsed)
	}
}

func TestParsePaymentRequiredRejectsMissingFields(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	if _, err := ParsePaymentRequired(resp, nil); err == nil {
		t.Error("expected error for missing fields")
	}
}
