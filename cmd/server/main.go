package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assetrails/internal/config"
	"assetrails/internal/idempotency"
	"assetrails/internal/ledger"
	"assetrails/internal/oracle"
	"assetrails/internal/orchestrator"
	"assetrails/internal/proof"
	"assetrails/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()

	var store idempotency.Store = idempotency.NewMemoryStore()
	if cfg.Service.PostgresDSN != "" {
		pgStore, err := idempotency.NewPostgresStore(ctx, cfg.Service.PostgresDSN)
		if err != nil {
			log.Fatalf("idempotency store error: %v", err)
		}
		defer pgStore.Close()
		store = pgStore
	}

	var ledgerClient ledger.Client = ledger.NewFakeClient()
	if cfg.Chain.PrivateKey != "" {
		ethClient, err := ledger.NewEthClient(ctx, ledger.EthClientConfig{
			RPCURL:          cfg.Chain.RPCURL,
			PrivateKeyHex:   cfg.Chain.PrivateKey,
			ContractAddress: cfg.Deployment.Contracts.FractionalAsset,
		})
		if err != nil {
			log.Fatalf("ledger client error: %v", err)
		}
		ledgerClient = ethClient
	}

	var oracleClient oracle.Client = oracle.NewFakeClient()
	if cfg.Oracle.Endpoint != "" {
		oracleClient = oracle.NewHTTPClient(cfg.Oracle.Endpoint, cfg.Oracle.Timeout)
	}

	var proverClient proof.Client = proof.FakeClient{}
	if cfg.Prover.Endpoint != "" {
		proverClient = proof.NewHTTPClient(cfg.Prover.Endpoint, cfg.Prover.Timeout)
	}

	svc := orchestrator.NewService(ledgerClient, oracleClient, proverClient, orchestrator.Config{
		DefaultFeedID: cfg.Oracle.DefaultFeedID,
		ScaleFactor:   cfg.Pricing.ScaleFactor,
		Precision:     cfg.Pricing.Precision,
	})

	apiServer := server.NewServer(cfg, svc, ledgerClient, store)

	go func() {
		if err := apiServer.Start(); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = apiServer.Shutdown(shutdownCtx)
}
