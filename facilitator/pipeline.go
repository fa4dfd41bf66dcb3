package facilitator

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/402labs/facilitator"
	"github.com/402labs/facilitator/eip712"
	"github.com/402labs/facilitator/receipt"
	"github.com/402labs/facilitator/validation"
	"github.com/ethereum/go-ethereum/common"
)

// State names the pipeline's current stage for a single request. Every
// request is independent: there is no cross-request mutable state here.
type State string

const (
	StateReceived      State = "RECEIVED"
	StateValidated     State = "VALIDATED"
	StateSignatureOK   State = "SIGNATURE_OK"
	StateTimeOK        State = "TIME_OK"
	StateTransferOK    State = "TRANSFER_OK"
	StateReceiptSigned State = "RECEIPT_SIGNED"
	StateResponded     State = "RESPONDED"
	StateRejected      State = "REJECTED"
	StateFailed        State = "FAILED"
)

// ReceiptTTL is how long a minted receipt remains valid after paidAt.
const ReceiptTTL = 24 * time.Hour

// ServiceName and ServiceVersion identify this service in its health
// response.
const (
	ServiceName    = "facilitator"
	ServiceVersion = "1.0.0"
)

// Result is what the pipeline produces on success: the signed receipt
// token and the settlement transaction hash.
type Result struct {
	Receipt string `json:"receipt"`
	TxHash  string `json:"txHash"`
}

// Rejected reports a client-input fault (HTTP 400): bad shape, unknown
// network, bad signature, or an expired/premature time window.
type Rejected struct {
	Reason string
}

func (e *Rejected) Error() string { return e.Reason }

// Pipeline runs the sequential, short-circuiting request flow described
// in the facilitator service's request pipeline: validate shape,
// resolve network, recover the signer, check the time window, split the
// fee, execute the transfer, and mint a receipt.
type Pipeline struct {
	Executor       TransferExecutor
	Signer         *receipt.Signer
	FeePercent     int
	FacilitatorURL string
	MockMode       bool
	Logger         *slog.Logger
}

// NewPipeline builds a Pipeline from a loaded Config and executor.
func NewPipeline(cfg *Config, executor TransferExecutor) *Pipeline {
	return &Pipeline{
		Executor:       executor,
		Signer:         receipt.NewHMACSigner(cfg.JWTSecret),
		FeePercent:     cfg.FeePercent,
		FacilitatorURL: cfg.FacilitatorURL,
		MockMode:       cfg.MockTransfers,
		Logger:         slog.Default(),
	}
}

// Run executes one request through the full pipeline, returning either a
// Result, a *Rejected (400), or any other error (500).
func (p *Pipeline) Run(ctx context.Context, payload x402.FacilitatorPayload) (*Result, error) {
	logger := p.logger()
	state := StateReceived

	// 1. Shape validation.
	if err := validation.ValidatePayload(payload); err != nil {
		logger.Warn("rejected: shape validation", "error", err)
		return nil, &Rejected{Reason: err.Error()}
	}
	state = StateValidated

	// 2. Network resolution.
	network, err := x402.LookupByCAIP2(payload.Network)
	if err != nil {
		logger.Warn("rejected: unknown network", "network", payload.Network)
		return nil, &Rejected{Reason: fmt.Sprintf("Unsupported network: %s", payload.Network)}
	}

	// 3. Signature recovery.
	auth := payload.Payload.Authorization
	value, _ := new(big.Int).SetString(auth.Value, 10)
	validAfter, _ := new(big.Int).SetString(auth.ValidAfter, 10)
	validBefore, _ := new(big.Int).SetString(auth.ValidBefore, 10)

	domain := eip712.Domain{
		Name:              network.EIP3009Name,
		Version:           network.EIP3009Version,
		ChainId:           big.NewInt(network.ChainId),
		VerifyingContract: common.HexToAddress(network.StablecoinAddr),
	}
	eipAuth := eip712.Authorization{
		From:        common.HexToAddress(auth.From),
		To:          common.HexToAddress(auth.To),
		Value:       value,
		ValidAfter:  validAfter,
		ValidBefore: validBefore,
		Nonce:       common.HexToHash(auth.Nonce),
	}

	recovered, err := eip712.Recover(payload.Payload.Signature, domain, eipAuth)
	if err != nil {
		logger.Warn("rejected: signature recovery failed", "error", err)
		return nil, &Rejected{Reason: fmt.Sprintf("invalid signature: %v", err)}
	}
	if !strings.EqualFold(recovered.Hex(), auth.From) {
		logger.Warn("rejected: signer mismatch", "recovered", recovered.Hex(), "expected", auth.From)
		return nil, &Rejected{Reason: fmt.Sprintf("signature does not match authorization: recovered %s, expected %s", recovered.Hex(), auth.From)}
	}
	state = StateSignatureOK

	// 4. Time window.
	now := time.Now().Unix()
	validBeforeI, _ := strconv.ParseInt(auth.ValidBefore, 10, 64)
	validAfterI, _ := strconv.ParseInt(auth.ValidAfter, 10, 64)
	if validBeforeI <= now {
		logger.Warn("rejected: authorization expired", "validBefore", validBeforeI, "now", now)
		return nil, &Rejected{Reason: "authorization expired"}
	}
	if validAfterI > now {
		logger.Warn("rejected: authorization not yet valid", "validAfter", validAfterI, "now", now)
		return nil, &Rejected{Reason: "authorization not yet valid"}
	}
	state = StateTimeOK

	// 5. Fee split.
	feeBps := int64(p.FeePercent) * 100
	fee := new(big.Int).Div(new(big.Int).Mul(value, big.NewInt(feeBps)), big.NewInt(10000))
	publisherAmount := new(big.Int).Sub(value, fee)

	// 6. Transfer execution.
	txHash, err := p.Executor.Execute(ctx, network, auth, payload.Payload.Signature)
	if err != nil {
		logger.Error("failed: transfer execution", "error", err)
		return nil, fmt.Errorf("transfer execution failed: %w", err)
	}
	state = StateTransferOK

	// 7. Receipt mint.
	r := receipt.New(payload.Resource, auth.From, auth.To, publisherAmount.String(), "USDC", network.ChainId, txHash, p.FacilitatorURL, ReceiptTTL)
	token, err := p.Signer.Mint(r)
	if err != nil {
		logger.Error("failed: receipt signing", "error", err)
		return nil, fmt.Errorf("receipt signing failed: %w", err)
	}
	state = StateReceiptSigned

	// 8. Response.
	state = StateResponded
	logger.Info("settled", "state", state, "contentId", payload.Resource, "txHash", txHash)
	return &Result{Receipt: token, TxHash: txHash}, nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
