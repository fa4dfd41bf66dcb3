package pocketbase

import (
	"testing"

	"github.com/402labs/facilitator"
	"github.com/402labs/facilitator/resourceserver"
)

// core.RequestEvent carries unexported fields PocketBase itself builds
// during routing, so there's no supported way to construct one standalone
// for a unit test — full gating behavior is exercised instead via the
// shared resourceserver.Wrap tests and the chi/gin adapter tests, which
// all route through the same Wrap call this adapter delegates to.
func TestNewMiddlewareBuildsHookFunc(t *testing.T) {
	cfg := resourceserver.Config{
		Verifier:  resourceserver.NewVerifier(resourceserver.VerifierConfig{JWTSecret: []byte("secret")}),
		Publisher: x402.PublisherConfig{PayTo: "0xpayee", Currency: "USDC", Network: "base-sepolia"},
		Price:     "0.01",
	}

	hook := NewMiddleware(cfg)
	if hook == nil {
		t.Fatal("expected a non-nil hook function")
	}
}
