// Command facilitatord runs the x402 payment facilitator as a standalone
// HTTP server.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/402labs/facilitator/facilitator"
)

func main() {
	if err := run(); err != nil {
		slog.Default().Error("facilitatord exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := facilitator.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var executor facilitator.TransferExecutor = facilitator.MockExecutor{}
	if !cfg.MockTransfers {
		executor = facilitator.NewOnChainExecutor(cfg.RPCURL, cfg.PrivateKey)
	}

	pipeline := facilitator.NewPipeline(cfg, executor)
	router := facilitator.NewRouter(pipeline)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Default().Info("facilitator listening", "addr", addr, "mockTransfers", cfg.MockTransfers)
	return server.ListenAndServe()
}
