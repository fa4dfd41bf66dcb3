package x402

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// unit is 10^Decimals, the conversion factor between a human-readable
// price and its smallest-unit integer representation.
var unit = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)

// floorPrice is the minimum accepted human-readable price, enforced by
// ValidatePrice: 0.001 units (one thousandth of the stablecoin).
const floorPrice = "0.001"

// ParsePrice accepts a human-readable price such as "$0.01", "0.01", or a
// bare float, strips any leading currency symbol, rejects negative or
// non-numeric input, and returns the smallest-unit decimal string
// (price * 10^Decimals, rounded to nearest integer).
func ParsePrice(price string) (string, error) {
	trimmed := strings.TrimSpace(price)
	trimmed = strings.TrimPrefix(trimmed, "$")
	if trimmed == "" {
		return "", fmt.Errorf("price: cannot be empty")
	}

	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return "", fmt.Errorf("price: invalid number %q", price)
	}
	if f < 0 {
		return "", fmt.Errorf("price: must be non-negative, got %q", price)
	}

	scaled := new(big.Float).Mul(big.NewFloat(f), new(big.Float).SetInt(unit))
	scaled.Add(scaled, big.NewFloat(0.5)) // f is non-negative: +0.5 then truncate rounds to nearest
	rounded, _ := scaled.Int(nil)
	return rounded.String(), nil
}

// FormatPrice is the inverse of ParsePrice: it renders a smallest-unit
// decimal string as a human-readable price with the given number of
// decimal places (capped at 6, the registry's fixed precision) and an
// optional leading "$".
func FormatPrice(smallestUnit string, decimals int, symbol bool) (string, error) {
	if decimals < 0 || decimals > Decimals {
		decimals = Decimals
	}

	amt, ok := new(big.Int).SetString(smallestUnit, 10)
	if !ok {
		return "", fmt.Errorf("price: invalid smallest-unit amount %q", smallestUnit)
	}
	if amt.Sign() < 0 {
		return "", fmt.Errorf("price: amount must be non-negative")
	}

	f := new(big.Float).Quo(new(big.Float).SetInt(amt), new(big.Float).SetInt(unit))
	out := f.Text('f', decimals)

	if symbol {
		out = "$" + out
	}
	return out, nil
}

// ValidatePrice parses price and additionally rejects amounts below the
// protocol floor of 0.001 units.
func ValidatePrice(price string) (string, error) {
	smallest, err := ParsePrice(price)
	if err != nil {
		return "", err
	}

	floor, err := ParsePrice(floorPrice)
	if err != nil {
		return "", err
	}

	amt, _ := new(big.Int).SetString(smallest, 10)
	floorAmt, _ := new(big.Int).SetString(floor, 10)
	if amt.Cmp(floorAmt) < 0 {
		return "", fmt.Errorf("price: below minimum of %s", floorPrice)
	}
	return smallest, nil
}
