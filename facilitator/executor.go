package facilitator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/402labs/facilitator"
)

// TransferExecutor submits a verified TransferWithAuthorization on-chain
// and reports the outcome. Facilitators swap in a real chain connection
// for production; MockExecutor is the default, fully-working path for
// development and testing.
type TransferExecutor interface {
	Execute(ctx context.Context, network x402.Network, auth x402.Authorization, signature string) (txHash string, err error)
}

// MockExecutor deterministically derives a fake transaction hash from
// the authorization's nonce, from, to, and value instead of broadcasting
// anything. It never
// fails, so it always takes the TRANSFER_OK branch of the pipeline.
type MockExecutor struct{}

// Execute implements TransferExecutor.
func (MockExecutor) Execute(_ context.Context, _ x402.Network, auth x402.Authorization, _ string) (string, error) {
	sum := sha256.Sum256([]byte(auth.Nonce + auth.From + auth.To + auth.Value))
	return "0x" + hex.EncodeToString(sum[:]), nil
}

// OnChainExecutor submits the transferWithAuthorization call to a real
// chain. It is a stub: it stores the RPC URL and key but does not build,
// sign, or broadcast a transaction. A single
// facilitator key signs every settlement, so calls are serialized
// through mu to keep nonce assignment correct once broadcasting is
// implemented.
type OnChainExecutor struct {
	mu         sync.Mutex
	rpcURL     string
	privateKey string
}

// NewOnChainExecutor builds an OnChainExecutor bound to rpcURL, signing
// with privateKey (hex, with or without 0x prefix).
func NewOnChainExecutor(rpcURL, privateKey string) *OnChainExecutor {
	return &OnChainExecutor{rpcURL: rpcURL, privateKey: privateKey}
}

// Execute implements TransferExecutor. It does not submit a transaction;
// it returns an error so the pipeline surfaces FAILED rather than
// reporting a false success.
func (e *OnChainExecutor) Execute(_ context.Context, network x402.Network, _ x402.Authorization, _ string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return "", fmt.Errorf("facilitator: on-chain settlement on %s is not implemented, set MOCK_TRANSFERS=true", network.Key)
}
