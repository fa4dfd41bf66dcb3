package x402

import "testing"

func TestParsePrice(t *testing.T) {
	cases := map[string]string{
		"$0.01":   "10000",
		"0.01":    "10000",
		"0":       "0",
		"1.00":    "1000000",
		"1000.00": "1000000000",
	}
	for in, want := range cases {
		got, err := ParsePrice(in)
		if err != nil {
			t.Fatalf("ParsePrice(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParsePrice(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParsePriceRejectsNegative(t *testing.T) {
	if _, err := ParsePrice("-1.00"); err == nil {
		t.Error("expected error for negative price")
	}
}

func TestParsePriceRejectsGarbage(t *testing.T) {
	if _, err := ParsePrice("not-a-number"); err == nil {
		t.Error("expected error for non-numeric price")
	}
}

// Price round-trip: formatPrice(parsePrice(p)) reproduces the canonical
// 6-decimal representation of p.
func TestPriceRoundTrip(t *testing.T) {
	canonical := map[string]string{
		"0":       "0.000000",
		"0.001":   "0.001000",
		"0.01":    "0.010000",
		"1.00":    "1.000000",
		"1000.00": "1000.000000",
	}
	for _, p := range []string{"0", "0.001", "0.01", "1.00", "1000.00"} {
		smallest := mustParse(t, p)
		got, err := FormatPrice(smallest, 6, false)
		if err != nil {
			t.Fatalf("FormatPrice: %v", err)
		}

		want := canonical[p]
		if got != want {
			t.Errorf("round-trip mismatch for %q: got %q want %q", p, got, want)
		}
	}
}

func mustParse(t *testing.T, p string) string {
	t.Helper()
	s, err := ParsePrice(p)
	if err != nil {
		t.Fatalf("ParsePrice(%q): %v", p, err)
	}
	return s
}

func TestValidatePriceFloor(t *testing.T) {
	if _, err := ValidatePrice("0.0001"); err == nil {
		t.Error("expected error for below-floor price")
	}
	if _, err := ValidatePrice("0.001"); err != nil {
		t.Errorf("unexpected error at floor: %v", err)
	}
}

func TestFormatPriceSymbol(t *testing.T) {
	got, err := FormatPrice("10000", 2, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "$0.01" {
		t.Errorf("got %q, want $0.01", got)
	}
}
