// Command mcpagentd runs a paying agent as an MCP server over stdio,
// exposing pay_and_fetch as the only tool.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/402labs/facilitator"
	"github.com/402labs/facilitator/agent"
	"github.com/402labs/facilitator/mcpagent"
)

func main() {
	if err := run(); err != nil {
		slog.Default().Error("mcpagentd exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := mcpagent.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	wallet, err := agent.NewWallet(cfg.WalletOptions()...)
	if err != nil {
		return fmt.Errorf("build wallet: %w", err)
	}

	network, err := x402.LookupByKey(cfg.Network)
	if err != nil {
		return fmt.Errorf("look up network %q: %w", cfg.Network, err)
	}

	budget := agent.NewBudgetManager(x402.SpendingPolicy{
		MaxPerRequest: cfg.MaxPerRequest,
		MaxTotal:      cfg.MaxTotalSpend,
	}, nil)

	client := agent.NewClient(wallet, network, budget, cfg.FacilitatorURL)

	server := mcpagent.NewServer("facilitator-agent", "1.0.0", client)
	slog.Default().Info("mcpagentd serving over stdio", "network", cfg.Network, "address", wallet.Address())
	return mcpagent.ServeStdio(server)
}
