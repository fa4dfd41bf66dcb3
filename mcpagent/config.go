package mcpagent

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/402labs/facilitator/agent"
)

// Config holds the environment-driven settings for running an agent as a
// standalone MCP server.
type Config struct {
	// PrivateKey is the hex-encoded signing key, with or without a 0x
	// prefix. Mutually exclusive with Mnemonic.
	PrivateKey string

	// Mnemonic is a BIP-39 seed phrase the signing key is derived from
	// at AccountIndex. Mutually exclusive with PrivateKey.
	Mnemonic     string
	AccountIndex uint32

	// Network is the chains.go registry key the agent pays on, e.g.
	// "base-sepolia".
	Network string

	// FacilitatorURL is where the agent posts signed authorizations for
	// settlement.
	FacilitatorURL string

	// MaxTotalSpend and MaxPerRequest bound the agent's spending policy,
	// as human-readable amounts (e.g. "1.00"), the same convention
	// price.go's ValidatePrice accepts. Empty means unlimited.
	MaxTotalSpend string
	MaxPerRequest string
}

// Load reads Config from environment variables, loading a .env file in
// the working directory first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		PrivateKey:     getEnv("AGENT_PRIVATE_KEY", ""),
		Mnemonic:       getEnv("AGENT_MNEMONIC", ""),
		AccountIndex:   uint32(getEnvInt("AGENT_ACCOUNT_INDEX", 0)),
		Network:        getEnv("AGENT_NETWORK", "base-sepolia"),
		FacilitatorURL: getEnv("AGENT_FACILITATOR_URL", ""),
		MaxTotalSpend:  getEnv("AGENT_MAX_TOTAL_SPEND", ""),
		MaxPerRequest:  getEnv("AGENT_MAX_PER_REQUEST", ""),
	}

	if cfg.PrivateKey == "" && cfg.Mnemonic == "" {
		return nil, fmt.Errorf("mcpagent: one of AGENT_PRIVATE_KEY or AGENT_MNEMONIC is required")
	}
	if cfg.FacilitatorURL == "" {
		return nil, fmt.Errorf("mcpagent: AGENT_FACILITATOR_URL is required")
	}

	return cfg, nil
}

// WalletOptions builds the agent.WalletOption matching this Config's key
// source.
func (c *Config) WalletOptions() []agent.WalletOption {
	if c.PrivateKey != "" {
		return []agent.WalletOption{agent.WithPrivateKey(c.PrivateKey)}
	}
	return []agent.WalletOption{agent.WithMnemonic(c.Mnemonic, c.AccountIndex)}
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
