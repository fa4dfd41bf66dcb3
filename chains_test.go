package x402

import "testing"

func TestLookupByKey(t *testing.T) {
	n, err := LookupByKey("base-mainnet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.ChainId != 8453 || n.CAIP2 != "eip155:8453" {
		t.Errorf("unexpected network: %+v", n)
	}

	if _, err := LookupByKey("ethereum"); err == nil {
		t.Error("expected error for unregistered network")
	}
}

func TestLookupByCAIP2(t *testing.T) {
	n, err := LookupByCAIP2("eip155:84532")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Key != "base-sepolia" {
		t.Errorf("expected base-sepolia, got %s", n.Key)
	}
}

func TestValidateNetwork(t *testing.T) {
	typ, err := ValidateNetwork("eip155:8453")
	if err != nil || typ != NetworkTypeEVM {
		t.Fatalf("expected EVM, got %v, err=%v", typ, err)
	}

	if _, err := ValidateNetwork("eip155:1"); err == nil {
		t.Error("expected error for unregistered chain id")
	}
	if _, err := ValidateNetwork(""); err == nil {
		t.Error("expected error for empty network")
	}
}
