package x402

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Header names for the 402 protocol surface. Lookups against an
// http.Header are case-insensitive by construction (net/http canonicalizes
// on Set/Get); these constants fix the canonical spelling used when
// writing responses.
const (
	HeaderPayTo         = "X-402-PayTo"
	HeaderPrice         = "X-402-Price"
	HeaderCurrency      = "X-402-Currency"
	HeaderNetwork       = "X-402-Network"
	HeaderFacilitator   = "X-402-Facilitator"
	HeaderContentId     = "X-402-Content-Id"
	HeaderDescription   = "X-402-Description"
	HeaderReceipt       = "X-402-Receipt"
	HeaderPayment       = "X-PAYMENT"
	HeaderPaymentResp   = "X-PAYMENT-RESPONSE"
	HeaderAuthorization = "Authorization"
	authSchemePrefix    = "X402 "
)

// PublisherConfig is the publisher-side settings BuildPaymentRequired
// uses to announce a price: who is paid, in what currency, on which
// network, and through which facilitator.
type PublisherConfig struct {
	PayTo          string
	Currency       string
	FacilitatorUrl string
	Network        string // registry key, e.g. "base-mainnet"
	Description    string
}

// BuildPaymentRequired returns the headers and JSON body for a 402
// response. price is human-readable (e.g. "0.01").
func BuildPaymentRequired(cfg PublisherConfig, contentId, price string) (http.Header, []byte, error) {
	net, err := LookupByKey(cfg.Network)
	if err != nil {
		return nil, nil, err
	}

	smallest, err := ValidatePrice(price)
	if err != nil {
		return nil, nil, err
	}

	headers := http.Header{}
	headers.Set(HeaderPayTo, cfg.PayTo)
	headers.Set(HeaderPrice, price)
	headers.Set(HeaderCurrency, cfg.Currency)
	headers.Set(HeaderNetwork, cfg.Network)
	headers.Set(HeaderFacilitator, cfg.FacilitatorUrl)
	headers.Set(HeaderContentId, contentId)
	if cfg.Description != "" {
		headers.Set(HeaderDescription, cfg.Description)
	}

	skeleton := map[string]any{
		"from":        "",
		"to":          "",
		"value":       smallest,
		"validAfter":  "",
		"validBefore": "",
		"nonce":       "",
	}

	requirement := PaymentRequirement{
		Scheme:            "exact",
		Network:           net.CAIP2,
		MaxAmountRequired: smallest,
		Resource:          contentId,
		Description:       cfg.Description,
		MimeType:          "application/json",
		Payload:           skeleton,
	}

	body := PaymentRequest{
		PayTo:          cfg.PayTo,
		Price:          price,
		Currency:       cfg.Currency,
		ContentId:      contentId,
		Network:        cfg.Network,
		FacilitatorUrl: cfg.FacilitatorUrl,
		Description:    cfg.Description,
		Accepts:        []PaymentRequirement{requirement},
	}

	out, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal 402 body: %w", err)
	}
	return headers, out, nil
}

// ParsePaymentRequired reads a 402 response, preferring the JSON body and
// falling back to X-402-* headers for any field the body omits. It
// returns an error if payTo, price, contentId, or network cannot be
// determined by either path.
func ParsePaymentRequired(resp *http.Response, body []byte) (*PaymentRequest, error) {
	var parsed PaymentRequest
	_ = json.Unmarshal(body, &parsed) // body may be absent or malformed; headers are the fallback

	if parsed.PayTo == "" {
		parsed.PayTo = resp.Header.Get(HeaderPayTo)
	}
	if parsed.Price == "" {
		parsed.Price = resp.Header.Get(HeaderPrice)
	}
	if parsed.Currency == "" {
		parsed.Currency = resp.Header.Get(HeaderCurrency)
	}
	if parsed.ContentId == "" {
		parsed.ContentId = resp.Header.Get(HeaderContentId)
	}
	if parsed.Network == "" {
		parsed.Network = resp.Header.Get(HeaderNetwork)
	}
	if parsed.FacilitatorUrl == "" {
		parsed.FacilitatorUrl = resp.Header.Get(HeaderFacilitator)
	}
	if parsed.Description == "" {
		parsed.Description = resp.Header.Get(HeaderDescription)
	}

	if parsed.PayTo == "" || parsed.Price == "" || parsed.ContentId == "" || parsed.Network == "" {
		return nil, ErrMalformed402
	}
	return &parsed, nil
}

// ContentID is the default content-id derivation used by adapters and the
// agent client alike when the caller does not supply one explicitly:
// host concatenated with path.
func ContentID(host, path string) string {
	return host + path
}
