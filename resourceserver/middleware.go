package resourceserver

import (
	"context"
	"net/http"

	"github.com/402labs/facilitator"
)

// Payment is what a verified request makes available to the wrapped
// handler via the request context.
type Payment struct {
	Receipt      x402.Receipt
	ContentId    string
	ReceiptToken string
}

type contextKey string

// PaymentContextKey looks up the verified *Payment from a gated
// request's context.
const PaymentContextKey = contextKey("x402_payment")

// Config configures a gated route.
type Config struct {
	Verifier *Verifier

	// ContentId, when set, overrides the default content id (request
	// host followed by path, via x402.ContentID) for every request this
	// Config gates.
	ContentId string

	// Publisher fields used to build the 402 body when a request lacks
	// a valid receipt.
	Publisher x402.PublisherConfig
	Price     string
}

// Wrap returns a stdlib middleware that gates next behind a valid
// receipt token, per cfg.
func Wrap(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			contentId := cfg.ContentId
			if contentId == "" {
				contentId = x402.ContentID(r.Host, r.URL.Path)
			}

			token := x402.ExtractReceiptToken(r.Header)
			if token == "" {
				send402(w, cfg, contentId)
				return
			}

			receipt, err := cfg.Verifier.Verify(token, contentId)
			if err != nil {
				send402(w, cfg, contentId)
				return
			}

			payment := &Payment{Receipt: *receipt, ContentId: contentId, ReceiptToken: token}
			ctx := context.WithValue(r.Context(), PaymentContextKey, payment)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func send402(w http.ResponseWriter, cfg Config, contentId string) {
	headers, body, err := x402.BuildPaymentRequired(cfg.Publisher, contentId, cfg.Price)
	if err != nil {
		http.Error(w, "payment configuration error", http.StatusInternalServerError)
		return
	}
	for k, vs := range headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusPaymentRequired)
	_, _ = w.Write(body)
}

// FromContext extracts the verified *Payment stored by Wrap, if any.
func FromContext(ctx context.Context) (*Payment, bool) {
	p, ok := ctx.Value(PaymentContextKey).(*Payment)
	return p, ok
}
