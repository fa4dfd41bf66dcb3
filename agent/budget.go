package agent

import (
	"fmt"
	"math/big"

	"github.com/402labs/facilitator"
)

// WarningFunc is invoked once per crossing of the 80% total-spend
// threshold.
type WarningFunc func(totalSpent, maxTotal *big.Int)

// BudgetManager enforces an x402.SpendingPolicy against an agent's
// running spend history.
type BudgetManager struct {
	policy     x402.SpendingPolicy
	totalSpent *big.Int
	history    []x402.PaymentRecord
	warned     bool
	onWarning  WarningFunc
}

// NewBudgetManager builds a BudgetManager under policy. onWarning may be
// nil.
func NewBudgetManager(policy x402.SpendingPolicy, onWarning WarningFunc) *BudgetManager {
	return &BudgetManager{
		policy:     policy,
		totalSpent: big.NewInt(0),
		onWarning:  onWarning,
	}
}

// checkResult pairs an allowed flag with a rejection reason. CheckSpend
// returns the same two values directly rather than as a checkResult.
type checkResult struct {
	allowed bool
	reason  string
}

// CheckSpend evaluates whether a spend of amountSmallest (a smallest-unit
// decimal string) against domain would be allowed, without recording it.
func (b *BudgetManager) CheckSpend(amountSmallest, domain string) (allowed bool, reason string) {
	if len(b.policy.AllowedDomains) > 0 && domain != "" {
		found := false
		for _, d := range b.policy.AllowedDomains {
			if d == domain {
				found = true
				break
			}
		}
		if !found {
			return false, "domain not allowed"
		}
	}

	amount, ok := new(big.Int).SetString(amountSmallest, 10)
	if !ok {
		return false, "invalid amount"
	}

	if b.policy.MaxPerRequest != "" {
		maxPerRequest, err := policyLimitSmallest(b.policy.MaxPerRequest)
		if err == nil && amount.Cmp(maxPerRequest) > 0 {
			return false, "exceeds per-request limit"
		}
	}

	if b.policy.MaxTotal != "" {
		maxTotal, err := policyLimitSmallest(b.policy.MaxTotal)
		if err == nil {
			projected := new(big.Int).Add(b.totalSpent, amount)
			if projected.Cmp(maxTotal) > 0 {
				return false, "exceeds total budget"
			}
		}
	}

	return true, ""
}

// policyLimitSmallest converts a SpendingPolicy limit, given as a
// human-readable price per spec.md's own "maxPerRequest" convention
// (e.g. "1.00"), into the smallest-unit integer amountSmallest is
// compared against.
func policyLimitSmallest(humanReadable string) (*big.Int, error) {
	smallest, err := x402.ValidatePrice(humanReadable)
	if err != nil {
		return nil, err
	}
	limit, ok := new(big.Int).SetString(smallest, 10)
	if !ok {
		return nil, fmt.Errorf("agent: invalid policy limit %q", humanReadable)
	}
	return limit, nil
}

// AssertSpend calls CheckSpend and, on rejection, returns a
// *x402.PaymentError carrying the matching typed error code.
func (b *BudgetManager) AssertSpend(amountSmallest, domain string) error {
	allowed, reason := b.CheckSpend(amountSmallest, domain)
	if allowed {
		return nil
	}

	switch reason {
	case "domain not allowed":
		return x402.NewPaymentError(x402.ErrCodeDomainNotAllowed, reason, nil)
	case "exceeds per-request limit":
		return x402.NewPaymentError(x402.ErrCodePerRequestLimit, reason, nil)
	default:
		return x402.NewPaymentError(x402.ErrCodeBudgetExceeded, reason, nil)
	}
}

// RecordSpend accumulates amountSmallest into the running total, appends
// a PaymentRecord to history, and fires the warning callback once per
// crossing of 80% of MaxTotal.
func (b *BudgetManager) RecordSpend(amountSmallest, contentId, domain, network string, timestamp int64) {
	amount, ok := new(big.Int).SetString(amountSmallest, 10)
	if !ok {
		return
	}
	b.totalSpent.Add(b.totalSpent, amount)
	b.history = append(b.history, x402.PaymentRecord{
		ContentId: contentId,
		Amount:    amountSmallest,
		Domain:    domain,
		Network:   network,
		Timestamp: timestamp,
	})

	if b.policy.MaxTotal == "" {
		return
	}
	maxTotal, err := policyLimitSmallest(b.policy.MaxTotal)
	if err != nil {
		return
	}
	threshold := new(big.Int).Div(new(big.Int).Mul(maxTotal, big.NewInt(80)), big.NewInt(100))
	if b.totalSpent.Cmp(threshold) >= 0 {
		if !b.warned {
			b.warned = true
			if b.onWarning != nil {
				b.onWarning(new(big.Int).Set(b.totalSpent), maxTotal)
			}
		}
	} else {
		b.warned = false
	}
}

// TotalSpent returns the running total spend in smallest units.
func (b *BudgetManager) TotalSpent() *big.Int {
	return new(big.Int).Set(b.totalSpent)
}

// History returns the recorded spend history.
func (b *BudgetManager) History() []x402.PaymentRecord {
	return b.history
}
