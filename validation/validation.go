// Package validation implements the facilitator's shape-validation step:
// structural checks on an inbound FacilitatorPayload performed before any
// cryptographic or network work, so malformed requests fail fast with a
// field-specific reason naming the offending field.
package validation

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"

	"github.com/402labs/facilitator"
)

var (
	evmAddressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	evmHexRegex     = regexp.MustCompile(`^0x[a-fA-F0-9]+$`)
	evmNonceRegex   = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)
)

// ValidateAmount checks that amount is a decimal string representing a
// positive integer that fits a 256-bit unsigned value.
func ValidateAmount(amount string) error {
	if amount == "" {
		return fmt.Errorf("amount: cannot be empty")
	}
	amt, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return fmt.Errorf("amount: invalid format %q", amount)
	}
	if amt.Sign() <= 0 {
		return fmt.Errorf("amount: must be greater than 0, got %q", amount)
	}
	if amt.BitLen() > 256 {
		return fmt.Errorf("amount: exceeds 256 bits")
	}
	return nil
}

// ValidateAddress checks that address is a well-formed 0x + 40 hex
// character EVM address.
func ValidateAddress(field, address string) error {
	if address == "" {
		return fmt.Errorf("%s: cannot be empty", field)
	}
	if !evmAddressRegex.MatchString(address) {
		return fmt.Errorf("%s: invalid EVM address format %q", field, address)
	}
	return nil
}

// ValidatePayload performs the facilitator's step-1 shape validation: the
// protocol version, scheme, network and resource presence, the
// signature's 0x-prefix, and the six authorization fields (addresses and
// nonce must be 0x-prefixed hex; value/validAfter/validBefore must be
// well-formed decimal strings with validBefore after validAfter).
func ValidatePayload(p x402.FacilitatorPayload) error {
	if p.X402Version != 1 {
		return fmt.Errorf("x402Version: must equal 1, got %d", p.X402Version)
	}
	if p.Scheme != "exact" {
		return fmt.Errorf("scheme: must equal \"exact\", got %q", p.Scheme)
	}
	if p.Network == "" {
		return fmt.Errorf("network: cannot be empty")
	}
	if p.Resource == "" {
		return fmt.Errorf("resource: cannot be empty")
	}

	sig := p.Payload.Signature
	if sig == "" || !evmHexRegex.MatchString(sig) {
		return fmt.Errorf("payload.signature: must be 0x-prefixed hex")
	}

	auth := p.Payload.Authorization
	if err := ValidateAddress("payload.authorization.from", auth.From); err != nil {
		return err
	}
	if err := ValidateAddress("payload.authorization.to", auth.To); err != nil {
		return err
	}
	if err := ValidateAmount(auth.Value); err != nil {
		return fmt.Errorf("payload.authorization.value: %w", err)
	}
	if !evmNonceRegex.MatchString(auth.Nonce) {
		return fmt.Errorf("payload.authorization.nonce: must be 0x + 64 hex characters")
	}

	validAfter, err := strconv.ParseInt(auth.ValidAfter, 10, 64)
	if err != nil {
		return fmt.Errorf("payload.authorization.validAfter: invalid timestamp %q", auth.ValidAfter)
	}
	validBefore, err := strconv.ParseInt(auth.ValidBefore, 10, 64)
	if err != nil {
		return fmt.Errorf("payload.authorization.validBefore: invalid timestamp %q", auth.ValidBefore)
	}
	if validBefore <= validAfter {
		return fmt.Errorf("payload.authorization.validBefore: must be after validAfter")
	}

	return nil
}
