package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DeploymentConfig represents deployments.json.
type DeploymentConfig struct {
	ChainID   int64  `json:"chainId"`
	Deployer  string `json:"deployer"`
	Contracts struct {
		FractionalAsset string `json:"FractionalAsset"`
		PriceOracle     string `json:"PriceOracle"`
	} `json:"contracts"`
}

type ServiceConfig struct {
	HTTPPort          int
	HMACSecret        string
	HMACClockSkew     time.Duration
	IdempotencyWindow time.Duration
	PostgresDSN       string
}

type ChainConfig struct {
	RPCURL     string
	PrivateKey string
}

type OracleConfig struct {
	Endpoint      string
	DefaultFeedID string
	Timeout       time.Duration
}

type ProverConfig struct {
	Endpoint string
	Timeout  time.Duration
}

type PricingConfig struct {
	// ScaleFactor converts fiat minor units into native payment units by
	// plain division. This is a placeholder for a real conversion
	// mechanism and is only meaningful on non-production networks.
	ScaleFactor float64
	Precision   int
}

// AppConfig ties together deployment info and service settings.
type AppConfig struct {
	Deployment DeploymentConfig
	Service    ServiceConfig
	Chain      ChainConfig
	Oracle     OracleConfig
	Prover     ProverConfig
	Pricing    PricingConfig
}

const defaultDeploymentsPath = "../deployments.json"

// Load aggregates configuration from .env, environment, and deployments.json.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	deployCfg := DeploymentConfig{}
	deploymentsPath := envOr("DEPLOYMENTS_PATH", defaultDeploymentsPath)
	if raw, err := os.ReadFile(deploymentsPath); err == nil {
		if err := json.Unmarshal(raw, &deployCfg); err != nil {
			return nil, fmt.Errorf("parse deployments: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("load deployments: %w", err)
	}

	cfg := &AppConfig{
		Deployment: deployCfg,
		Service: ServiceConfig{
			HTTPPort:          envOrInt("API_HTTP_PORT", 3000),
			HMACSecret:        envOr("API_HMAC_SECRET", ""),
			HMACClockSkew:     time.Duration(envOrInt("HMAC_CLOCK_SKEW_SECONDS", 60)) * time.Second,
			IdempotencyWindow: time.Duration(envOrInt("IDEMPOTENCY_WINDOW_SECONDS", 3600)) * time.Second,
			PostgresDSN:       envOr("POSTGRES_DSN", ""),
		},
		Chain: ChainConfig{
			RPCURL:     envOr("CHAIN_RPC_URL", ""),
			PrivateKey: envOr("CHAIN_PRIVATE_KEY", ""),
		},
		Oracle: OracleConfig{
			Endpoint:      envOr("ORACLE_ENDPOINT", ""),
			DefaultFeedID: envOr("ORACLE_DEFAULT_FEED_ID", "0x"+defaultFeedID),
			Timeout:       time.Duration(envOrInt("ORACLE_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Prover: ProverConfig{
			Endpoint: envOr("PROVER_ENDPOINT", ""),
			Timeout:  time.Duration(envOrInt("PROVER_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Pricing: PricingConfig{
			ScaleFactor: envOrFloat("PRICING_SCALE_FACTOR", 1000),
			Precision:   envOrInt("PRICING_PRECISION", 6),
		},
	}

	if cfg.Pricing.ScaleFactor <= 0 {
		return nil, fmt.Errorf("PRICING_SCALE_FACTOR must be positive")
	}

	return cfg, nil
}

// defaultFeedID is the USD reference feed used when no override is set.
const defaultFeedID = "eaa020c61cc479712813461ce153894a96a6c00b21ed0cfc2798d1f9a9e9c94a"

func envOr(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func envOrFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
