// Package chi adapts resourceserver.Wrap to chi's middleware signature,
// which is already func(http.Handler) http.Handler — identical to the
// stdlib shape — so this package is a thin, same-signature re-export
// plus doc comments aimed at chi users.
package chi

import (
	"net/http"

	"github.com/402labs/facilitator/resourceserver"
)

// NewMiddleware builds a chi-compatible payment-gating middleware.
//
//	r := chi.NewRouter()
//	r.Use(chix402.NewMiddleware(cfg))
//	r.Get("/article", articleHandler)
func NewMiddleware(cfg resourceserver.Config) func(http.Handler) http.Handler {
	return resourceserver.Wrap(cfg)
}
