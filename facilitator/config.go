package facilitator

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the facilitator's environment-driven settings.
type Config struct {
	// Port is the HTTP listen port.
	Port int

	// JWTSecret signs and verifies HS256 receipt tokens. Required.
	JWTSecret []byte

	// FeePercent is the facilitator's cut of each settled payment, in
	// whole percentage points, within [0, 50]; Load rejects any other
	// value.
	FeePercent int

	// FacilitatorURL is this service's own public URL, embedded in
	// minted receipts.
	FacilitatorURL string

	// MockTransfers, when true, routes settlement through MockExecutor
	// instead of attempting an on-chain transferWithAuthorization call.
	MockTransfers bool

	// PrivateKey is the hex-encoded key the on-chain executor signs
	// gas-paying transactions with. Only required when MockTransfers is
	// false.
	PrivateKey string

	// RPCURL is the JSON-RPC endpoint the on-chain executor submits
	// transactions to. Only required when MockTransfers is false.
	RPCURL string
}

// Load reads configuration from environment variables. A .env file in
// the working directory is loaded first if present, for local dev.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnvInt("PORT", 4020),
		FeePercent:     getEnvInt("FEE_PERCENT", 2),
		FacilitatorURL: getEnv("FACILITATOR_URL", fmt.Sprintf("http://localhost:%d", getEnvInt("PORT", 4020))),
		MockTransfers:  getEnvBool("MOCK_TRANSFERS", true),
		PrivateKey:     getEnv("FACILITATOR_PRIVATE_KEY", ""),
		RPCURL:         getEnv("RPC_URL", ""),
	}

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		return nil, fmt.Errorf("facilitator: JWT_SECRET env var is required")
	}
	cfg.JWTSecret = []byte(secret)

	if cfg.FeePercent < 0 || cfg.FeePercent > 50 {
		return nil, fmt.Errorf("facilitator: FEE_PERCENT must be between 0 and 50, got %d", cfg.FeePercent)
	}

	if !cfg.MockTransfers {
		if cfg.PrivateKey == "" {
			return nil, fmt.Errorf("facilitator: FACILITATOR_PRIVATE_KEY is required when MOCK_TRANSFERS=false")
		}
		if cfg.RPCURL == "" {
			return nil, fmt.Errorf("facilitator: RPC_URL is required when MOCK_TRANSFERS=false")
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
