package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/402labs/facilitator"
	"github.com/402labs/facilitator/retry"
)

// DefaultPaymentTimeout is the validBefore window, counted from now, that
// the agent requests for every authorization it signs.
const DefaultPaymentTimeout = time.Hour

// RetryConfig controls the facilitator-POST retry policy of the payment
// sub-flow.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
}

// DefaultRetryConfig matches the payment sub-flow's default: up to 2
// retries with 1000ms * 2^attempt backoff.
var DefaultRetryConfig = RetryConfig{MaxRetries: 2, InitialBackoff: time.Second}

// Client holds everything a paying agent needs across repeated fetches:
// its wallet, the network it pays on, a spending policy, a receipt
// cache, the facilitator it settles through, and an event emitter.
// FacilitatorURL, when set, is used in preference to the facilitator URL
// a 402 response names. Budget accounting is not synchronized: callers
// issuing concurrent Fetch calls on one Client must synchronize them
// externally.
type Client struct {
	Wallet         *Wallet
	Network        x402.Network
	Budget         *BudgetManager
	Cache          *ReceiptCache
	FacilitatorURL string
	Retry          RetryConfig
	Events         *EventEmitter
	HTTPClient     *http.Client
}

// NewClient builds a Client with a fresh ReceiptCache, DefaultRetryConfig,
// an empty EventEmitter, and http.DefaultClient.
func NewClient(wallet *Wallet, network x402.Network, budget *BudgetManager, facilitatorURL string) *Client {
	return &Client{
		Wallet:         wallet,
		Network:        network,
		Budget:         budget,
		Cache:          NewReceiptCache(),
		FacilitatorURL: facilitatorURL,
		Retry:          DefaultRetryConfig,
		Events:         NewEventEmitter(),
		HTTPClient:     http.DefaultClient,
	}
}

// Fetch implements the agent client's fetch contract: try a cached
// receipt, fall back to the no-payment request, and on 402 run the
// payment sub-flow before retrying once with the new receipt attached.
func (c *Client) Fetch(ctx context.Context, reqURL string, body io.Reader) (*http.Response, error) {
	u, err := url.Parse(reqURL)
	if err != nil {
		return nil, fmt.Errorf("agent: invalid url: %w", err)
	}
	contentId := x402.ContentID(u.Host, u.Path)

	if token, ok := c.Cache.Get(contentId); ok {
		resp, err := c.doRequest(ctx, reqURL, body, token)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusPaymentRequired {
			return resp, nil
		}
		resp.Body.Close()
		c.Cache.Evict(contentId)
	}

	resp, err := c.doRequest(ctx, reqURL, body, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusPaymentRequired {
		return resp, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("agent: read 402 body: %w", err)
	}

	paymentReq, err := x402.ParsePaymentRequired(resp, respBody)
	if err != nil {
		return nil, x402.NewPaymentError(x402.ErrCodeInvalid402Response, "invalid 402 response", err)
	}

	token, err := c.pay(ctx, *paymentReq, u.Host)
	if err != nil {
		return nil, err
	}

	return c.doRequest(ctx, reqURL, body, token)
}

// pay runs the payment sub-flow: budget check, sign, POST to the
// facilitator with retry, cache and record the result.
func (c *Client) pay(ctx context.Context, req x402.PaymentRequest, domain string) (string, error) {
	c.Events.Emit(EventPaymentStarted, map[string]any{"price": req.Price, "domain": domain})

	amountSmallest, err := x402.ValidatePrice(req.Price)
	if err != nil {
		c.Events.Emit(EventPaymentFailed, map[string]any{"error": err.Error()})
		return "", err
	}

	if c.Budget != nil {
		if err := c.Budget.AssertSpend(amountSmallest, domain); err != nil {
			c.Events.Emit(EventPaymentFailed, map[string]any{"error": err.Error()})
			return "", err
		}
	}

	payload, err := c.Wallet.Authorize(c.Network, req.PayTo, amountSmallest, int64(DefaultPaymentTimeout.Seconds()))
	if err != nil {
		wrapped := x402.NewPaymentError(x402.ErrCodeSigningFailed, "failed to sign authorization", err)
		c.Events.Emit(EventPaymentFailed, map[string]any{"error": wrapped.Error()})
		return "", wrapped
	}
	payload.Resource = req.ContentId

	facilitatorURL := c.FacilitatorURL
	if facilitatorURL == "" {
		facilitatorURL = req.FacilitatorUrl
	}
	token, _, err := c.postToFacilitator(ctx, facilitatorURL, payload)
	if err != nil {
		c.Events.Emit(EventPaymentFailed, map[string]any{"error": err.Error()})
		return "", err
	}

	c.Cache.Set(req.ContentId, token, 24*time.Hour)
	var budgetRemaining string
	if c.Budget != nil {
		c.Budget.RecordSpend(amountSmallest, req.ContentId, domain, req.Network, time.Now().Unix())
		if c.Budget.policy.MaxTotal != "" {
			if maxTotal, err := policyLimitSmallest(c.Budget.policy.MaxTotal); err == nil {
				budgetRemaining = new(big.Int).Sub(maxTotal, c.Budget.TotalSpent()).String()
			}
		}
	}
	c.Events.Emit(EventPaymentSuccess, map[string]any{"contentId": req.ContentId, "budgetRemaining": budgetRemaining})

	return token, nil
}

// postToFacilitator POSTs payload to facilitatorURL, retrying on
// facilitator-side errors only (never on a signing/budget error, which
// never reaches here).
func (c *Client) postToFacilitator(ctx context.Context, facilitatorURL string, payload x402.FacilitatorPayload) (token, txHash string, err error) {
	cfg := retry.Config{
		MaxAttempts:  c.Retry.MaxRetries + 1,
		InitialDelay: c.Retry.InitialBackoff,
		MaxDelay:     30 * time.Second,
		Multiplier:   2,
	}

	type settleResult struct {
		Receipt string `json:"receipt"`
		TxHash  string `json:"txHash"`
	}

	result, err := retry.WithRetry(ctx, cfg, isFacilitatorError, func() (settleResult, error) {
		body, err := json.Marshal(payload)
		if err != nil {
			return settleResult{}, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, facilitatorURL, bytes.NewReader(body))
		if err != nil {
			return settleResult{}, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return settleResult{}, &facilitatorError{err: err}
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return settleResult{}, &facilitatorError{err: err}
		}

		if resp.StatusCode >= 500 {
			return settleResult{}, &facilitatorError{err: fmt.Errorf("facilitator returned %d: %s", resp.StatusCode, respBody)}
		}
		if resp.StatusCode >= 400 {
			return settleResult{}, x402.NewPaymentError(x402.ErrCodePaymentFailed, string(respBody), nil)
		}

		var out settleResult
		if err := json.Unmarshal(respBody, &out); err != nil {
			return settleResult{}, &facilitatorError{err: fmt.Errorf("decode facilitator response: %w", err)}
		}
		return out, nil
	})
	if err != nil {
		return "", "", err
	}
	return result.Receipt, result.TxHash, nil
}

// facilitatorError marks an error as a facilitator-side fault, eligible
// for retry.
type facilitatorError struct{ err error }

func (e *facilitatorError) Error() string { return e.err.Error() }
func (e *facilitatorError) Unwrap() error { return e.err }

func isFacilitatorError(err error) bool {
	_, ok := err.(*facilitatorError)
	return ok
}

func (c *Client) doRequest(ctx context.Context, reqURL string, body io.Reader, receiptToken string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, body)
	if err != nil {
		return nil, err
	}
	if receiptToken != "" {
		req.Header.Set(x402.HeaderReceipt, receiptToken)
		req.Header.Set(x402.HeaderPayment, receiptToken)
	}
	return c.HTTPClient.Do(req)
}
