package agent

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/402labs/facilitator"
)

// StandaloneFetch performs one payment-gated fetch with the supplied
// wallet (it does not create a wallet of its own) and no cache, budget,
// or event plumbing: the stateless variant for a
// single one-shot call. maxPrice bounds the smallest-unit amount this
// call will ever authorize; a 402 asking for more is rejected without
// ever contacting the facilitator.
func StandaloneFetch(ctx context.Context, wallet *Wallet, network x402.Network, reqURL, maxPrice string) (*http.Response, error) {
	httpClient := http.DefaultClient

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusPaymentRequired {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("agent: read 402 body: %w", err)
	}

	paymentReq, err := x402.ParsePaymentRequired(resp, body)
	if err != nil {
		return nil, x402.NewPaymentError(x402.ErrCodeInvalid402Response, "invalid 402 response", err)
	}

	amountSmallest, err := x402.ValidatePrice(paymentReq.Price)
	if err != nil {
		return nil, err
	}
	if maxPrice != "" {
		max, okMax := new(big.Int).SetString(maxPrice, 10)
		amount, okAmount := new(big.Int).SetString(amountSmallest, 10)
		if okMax && okAmount && amount.Cmp(max) > 0 {
			return nil, x402.NewPaymentError(x402.ErrCodeInsufficientFunds, fmt.Sprintf("price %s exceeds maxPrice %s", amountSmallest, maxPrice), nil)
		}
	}

	client := &Client{
		Wallet:         wallet,
		Network:        network,
		Cache:          NewReceiptCache(),
		FacilitatorURL: paymentReq.FacilitatorUrl,
		Retry:          DefaultRetryConfig,
		Events:         NewEventEmitter(),
		HTTPClient:     httpClient,
	}

	token, err := client.pay(ctx, *paymentReq, req.URL.Host)
	if err != nil {
		return nil, err
	}

	final, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	final.Header.Set(x402.HeaderReceipt, token)
	final.Header.Set(x402.HeaderPayment, token)
	return httpClient.Do(final)
}
