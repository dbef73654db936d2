package server

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"assetrails/internal/apperr"
	"assetrails/internal/config"
	"assetrails/internal/hmacauth"
	"assetrails/internal/idempotency"
	"assetrails/internal/ledger"
	"assetrails/internal/orchestrator"

	"github.com/google/uuid"
)

type Server struct {
	cfg         *config.AppConfig
	svc         *orchestrator.Service
	store       idempotency.Store
	hmac        *hmacauth.Verifier
	httpServer  *http.Server
	metrics     *metricsRegistry
	dbHealthFn  func(context.Context) error
	rpcHealthFn func(context.Context) error
}

func NewServer(cfg *config.AppConfig, svc *orchestrator.Service, led ledger.Client, store idempotency.Store) *Server {
	verifier := &hmacauth.Verifier{
		Secret:  cfg.Service.HMACSecret,
		MaxSkew: cfg.Service.HMACClockSkew,
	}

	metrics := newMetricsRegistry()

	s := &Server{
		cfg:     cfg,
		svc:     svc,
		store:   store,
		hmac:    verifier,
		metrics: metrics,
	}

	if checker, ok := store.(interface{ Ping(context.Context) error }); ok {
		s.dbHealthFn = checker.Ping
	}
	if checker, ok := led.(ledger.HealthChecker); ok {
		s.rpcHealthFn = checker.Ping
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/assets", s.hmac.Middleware(http.HandlerFunc(s.handleCreateAsset)))
	mux.Handle("/api/v1/purchases", s.hmac.Middleware(http.HandlerFunc(s.handlePurchaseFraction)))
	mux.Handle("/api/v1/metrics", metrics.handler())
	mux.HandleFunc("/api/v1/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Service.HTTPPort),
		Handler:           requestIDMiddleware(mux),
		ReadHeaderTimeout: 15 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	log.Printf("API listening on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type proofInputPayload struct {
	Commitment string `json:"commitment"`
	Secret     string `json:"secret"`
	Nullifier  string `json:"nullifier"`
}

type createAssetRequest struct {
	IssuerAddress   string            `json:"issuerAddress"`
	DocumentHash    string            `json:"documentHash"`
	TotalValue      int64             `json:"totalValue"`
	FractionCount   int64             `json:"fractionCount"`
	MinFractionSize int64             `json:"minFractionSize"`
	LockupSeconds   int64             `json:"lockupPeriodSeconds"`
	AssetType       string            `json:"assetType"`
	Proof           proofInputPayload `json:"proofInput"`
}

type createAssetResponse struct {
	Success     bool     `json:"success"`
	AssetID     *uint64  `json:"assetId,omitempty"`
	TxHash      string   `json:"txHash"`
	OraclePrice *float64 `json:"oraclePrice,omitempty"`
	Proof       string   `json:"proof"`
}

type purchaseRequest struct {
	AssetID      uint64            `json:"assetId"`
	Amount       int64             `json:"amount"`
	BuyerAddress string            `json:"buyerAddress"`
	Proof        proofInputPayload `json:"proofInput"`
}

type purchaseResponse struct {
	Success          bool    `json:"success"`
	TxHash           string  `json:"txHash"`
	TotalCost        float64 `json:"totalCost"`
	PricePerFraction float64 `json:"pricePerFraction"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Detail  string `json:"detail,omitempty"`
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimSpace(r.Header.Get("X-Idempotency-Key"))
	if key == "" {
		http.Error(w, "missing X-Idempotency-Key header", http.StatusBadRequest)
		return
	}
	key = "create:" + key

	ctx := r.Context()

	if existing, _ := s.store.Get(ctx, key); existing != nil {
		s.replay(w, existing)
		s.metrics.incCreate("cached")
		return
	}

	var payload createAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid json payload", http.StatusBadRequest)
		return
	}

	start := time.Now()
	result, appErr := s.svc.CreateAsset(ctx, orchestrator.CreateAssetRequest{
		IssuerAddress:   payload.IssuerAddress,
		DocumentHash:    payload.DocumentHash,
		TotalValue:      payload.TotalValue,
		FractionCount:   payload.FractionCount,
		MinFractionSize: payload.MinFractionSize,
		LockupPeriod:    time.Duration(payload.LockupSeconds) * time.Second,
		AssetType:       orchestrator.AssetType(payload.AssetType),
		Proof:           orchestrator.ProofInput(payload.Proof),
	})
	s.metrics.observeWorkflow("create_asset", time.Since(start))

	if appErr != nil {
		s.metrics.incCreate(string(appErr.Kind))
		s.writeError(w, appErr)
		return
	}

	body, _ := json.Marshal(createAssetResponse{
		Success:     true,
		AssetID:     result.AssetID,
		TxHash:      result.TxHash,
		OraclePrice: result.OraclePrice,
		Proof:       "0x" + hex.EncodeToString(result.Proof),
	})
	s.record(ctx, key, http.StatusCreated, body)
	s.writeJSON(w, http.StatusCreated, body)
	s.metrics.incCreate("created")
}

func (s *Server) handlePurchaseFraction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimSpace(r.Header.Get("X-Idempotency-Key"))
	if key == "" {
		http.Error(w, "missing X-Idempotency-Key header", http.StatusBadRequest)
		return
	}
	key = "purchase:" + key

	ctx := r.Context()

	if existing, _ := s.store.Get(ctx, key); existing != nil {
		s.replay(w, existing)
		s.metrics.incPurchase("cached")
		return
	}

	var payload purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid json payload", http.StatusBadRequest)
		return
	}

	start := time.Now()
	result, appErr := s.svc.PurchaseFraction(ctx, orchestrator.PurchaseRequest{
		AssetID:      payload.AssetID,
		Amount:       payload.Amount,
		BuyerAddress: payload.BuyerAddress,
		Proof:        orchestrator.ProofInput(payload.Proof),
	})
	s.metrics.observeWorkflow("purchase_fraction", time.Since(start))

	if appErr != nil {
		s.metrics.incPurchase(string(appErr.Kind))
		s.writeError(w, appErr)
		return
	}
	if !result.PriceFromOracle {
		s.metrics.incOracleFallback()
	}

	body, _ := json.Marshal(purchaseResponse{
		Success:          true,
		TxHash:           result.TxHash,
		TotalCost:        result.TotalCost,
		PricePerFraction: result.PricePerFraction,
	})
	s.record(ctx, key, http.StatusOK, body)
	s.writeJSON(w, http.StatusOK, body)
	s.metrics.incPurchase("settled")
}

// writeError renders a classified failure. Only validation and proof
// failures expose the structured detail; everything else gets the single
// message line.
func (s *Server) writeError(w http.ResponseWriter, appErr *apperr.Error) {
	resp := errorResponse{Success: false, Error: appErr.Message}
	if appErr.Kind == apperr.KindValidation || appErr.Kind == apperr.KindProofGeneration {
		resp.Detail = appErr.Detail
	}
	body, _ := json.Marshal(resp)
	s.writeJSON(w, appErr.Kind.HTTPStatus(), body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) replay(w http.ResponseWriter, rec *idempotency.Record) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rec.StatusCode)
	_, _ = w.Write(rec.Response)
}

func (s *Server) record(ctx context.Context, key string, status int, body []byte) {
	_ = s.store.Save(ctx, key, idempotency.Record{
		StatusCode: status,
		Response:   body,
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(s.cfg.Service.IdempotencyWindow),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	overallHealthy := true

	rpcInfo := struct {
		Connected bool    `json:"connected"`
		LatencyMs float64 `json:"latency_ms"`
		Error     string  `json:"error,omitempty"`
	}{}

	if s.rpcHealthFn != nil {
		start := time.Now()
		rpcCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.rpcHealthFn(rpcCtx); err != nil {
			rpcInfo.Connected = false
			rpcInfo.Error = err.Error()
			overallHealthy = false
		} else {
			rpcInfo.Connected = true
			rpcInfo.LatencyMs = float64(time.Since(start).Microseconds()) / 1000.0
		}
	} else {
		rpcInfo.Connected = true
	}

	dbInfo := struct {
		Connected bool   `json:"connected"`
		Error     string `json:"error,omitempty"`
	}{Connected: true}

	if s.dbHealthFn != nil {
		dbCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.dbHealthFn(dbCtx); err != nil {
			dbInfo.Connected = false
			dbInfo.Error = err.Error()
			overallHealthy = false
		}
	}

	status := "healthy"
	if !overallHealthy {
		status = "degraded"
	}

	resp := struct {
		Status   string      `json:"status"`
		RPC      interface{} `json:"rpc"`
		Database interface{} `json:"database"`
	}{
		Status:   status,
		RPC:      rpcInfo,
		Database: dbInfo,
	}

	w.Header().Set("Content-Type", "application/json")
	if !overallHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-Id") == "" {
			r.Header.Set("X-Request-Id", uuid.NewString())
		}
		next.ServeHTTP(w, r)
	})
}
