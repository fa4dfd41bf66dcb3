// Package x402 provides the wire types, protocol primitives, and error
// vocabulary for the x402 HTTP 402 micropayment protocol: EIP-3009
// TransferWithAuthorization authorizations, facilitator request/response
// shapes, and signed receipts.
package x402

// Authorization carries EIP-3009 TransferWithAuthorization parameters.
// Amounts and timestamps are decimal strings so they survive JSON
// round-trips without precision loss; From, To and Nonce are 0x-prefixed
// hex.
type Authorization struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	ValidAfter  string `json:"validAfter"`
	ValidBefore string `json:"validBefore"`
	Nonce       string `json:"nonce"`
}

// EVMPayload is the scheme="exact" payload for EVM networks: a 65-byte
// secp256k1 signature over the EIP-712 digest of Authorization.
type EVMPayload struct {
	Signature     string        `json:"signature"`
	Authorization Authorization `json:"authorization"`
}

// FacilitatorPayload is the request body POSTed to the facilitator
// endpoint.
type FacilitatorPayload struct {
	X402Version int        `json:"x402Version"`
	Scheme      string     `json:"scheme"`
	Network     string     `json:"network"`
	Payload     EVMPayload `json:"payload"`
	Resource    string     `json:"resource"`
}

// PaymentRequirement is a single acceptable payment method, embedded in
// the accepts array of a 402 response body.
type PaymentRequirement struct {
	Scheme            string         `json:"scheme"`
	Network           string         `json:"network"`
	MaxAmountRequired string         `json:"maxAmountRequired"`
	Resource          string         `json:"resource"`
	Description       string         `json:"description,omitempty"`
	MimeType          string         `json:"mimeType,omitempty"`
	Payload           map[string]any `json:"payload,omitempty"`
}

// PaymentRequest is the full 402 response body: human-readable price
// terms plus the accepts array consumed by agents.
type PaymentRequest struct {
	PayTo          string               `json:"payTo"`
	Price          string               `json:"price"`
	Currency       string               `json:"currency"`
	ContentId      string               `json:"contentId"`
	Network        string               `json:"network"`
	FacilitatorUrl string               `json:"facilitatorUrl"`
	Description    string               `json:"description,omitempty"`
	Accepts        []PaymentRequirement `json:"accepts"`
}

// Receipt is minted by the facilitator after a successful transfer and
// travels to the resource server as a signed token.
type Receipt struct {
	ID          string `json:"id"`
	Scheme      string `json:"scheme"`
	ContentId   string `json:"contentId"`
	Payer       string `json:"payer"`
	Payee       string `json:"payee"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	ChainId     int64  `json:"chainId"`
	TxHash      string `json:"txHash"`
	PaidAt      int64  `json:"paidAt"`
	ExpiresAt   int64  `json:"expiresAt"`
	Facilitator string `json:"facilitator"`
}

// SpendingPolicy bounds what an agent client is willing to pay.
type SpendingPolicy struct {
	MaxPerRequest  string
	MaxTotal       string
	AllowedDomains []string
}

// PaymentRecord is one entry in an agent's spend history.
type PaymentRecord struct {
	ContentId string
	Amount    string
	Domain    string
	Network   string
	Timestamp int64
}
