package x402

import (
	"net/http"
	"strings"
)

// ExtractReceiptToken inspects an inbound request's headers, in order, for
// a receipt token: X-402-Receipt, then X-PAYMENT, then Authorization if it
// carries the "X402 " scheme prefix. Header lookups are case-insensitive
// (net/http canonicalizes header names). Returns "" if none carry a token.
func ExtractReceiptToken(h http.Header) string {
	if tok := h.Get(HeaderReceipt); tok != "" {
		return tok
	}
	if tok := h.Get(HeaderPayment); tok != "" {
		return tok
	}
	if auth := h.Get(HeaderAuthorization); strings.HasPrefix(auth, authSchemePrefix) {
		return strings.TrimPrefix(auth, authSchemePrefix)
	}
	return ""
}
