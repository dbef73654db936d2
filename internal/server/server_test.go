package server

import (
	"bytes"
	"context"
	"crypto/hmac"
	"errors"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"assetrails/internal/config"
	"assetrails/internal/idempotency"
	"assetrails/internal/ledger"
	"assetrails/internal/oracle"
	"assetrails/internal/orchestrator"
	"assetrails/internal/proof"
)

const testSecret = "test-secret"

func testServer(t *testing.T) (*Server, *ledger.FakeClient) {
	t.Helper()

	cfg := &config.AppConfig{
		Service: config.ServiceConfig{
			HTTPPort:          0,
			HMACSecret:        testSecret,
			HMACClockSkew:     time.Minute,
			IdempotencyWindow: time.Minute,
		},
	}

	led := ledger.NewFakeClient()
	svc := orchestrator.NewService(led, oracle.NewFakeClient(), proof.FakeClient{}, orchestrator.Config{
		DefaultFeedID: "feed-usd",
		ScaleFactor:   1000,
		Precision:     6,
	})
	return NewServer(cfg, svc, led, idempotency.NewMemoryStore()), led
}

func signedRequest(t *testing.T, target, idemKey string, payload interface{}) *http.Request {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set("X-Request-Timestamp", ts)
	req.Header.Set("X-Request-Signature", signForTest(testSecret, ts, body))
	req.Header.Set("X-Idempotency-Key", idemKey)
	return req
}

func createPayload() map[string]interface{} {
	return map[string]interface{}{
		"issuerAddress":       "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		"documentHash":        "h1",
		"totalValue":          1000000,
		"fractionCount":       100,
		"minFractionSize":     1,
		"lockupPeriodSeconds": 86400,
		"assetType":           "real_estate",
		"proofInput": map[string]string{
			"commitment": "c1",
			"secret":     "s1",
			"nullifier":  "n1",
		},
	}
}

func TestCreateAssetEndToEnd(t *testing.T) {
	srv, _ := testServer(t)

	req := signedRequest(t, "/api/v1/assets", "key-1", createPayload())
	rec := httptest.NewRecorder()
	srv.hmac.Middleware(http.HandlerFunc(srv.handleCreateAsset)).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}

	var resp createAssetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success")
	}
	if resp.AssetID == nil || *resp.AssetID != 1 {
		t.Fatalf("expected asset id 1, got %v", resp.AssetID)
	}
	if resp.OraclePrice == nil || *resp.OraclePrice != 100.0 {
		t.Fatalf("expected mint-time price 100, got %v", resp.OraclePrice)
	}
	if resp.TxHash == "" || resp.Proof == "" {
		t.Fatalf("expected tx hash and proof in response")
	}
}

func TestCreateAssetIdempotentReplay(t *testing.T) {
	srv, _ := testServer(t)

	first := httptest.NewRecorder()
	srv.hmac.Middleware(http.HandlerFunc(srv.handleCreateAsset)).
		ServeHTTP(first, signedRequest(t, "/api/v1/assets", "key-1", createPayload()))
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", first.Code)
	}

	second := httptest.NewRecorder()
	srv.hmac.Middleware(http.HandlerFunc(srv.handleCreateAsset)).
		ServeHTTP(second, signedRequest(t, "/api/v1/assets", "key-1", createPayload()))
	if second.Code != http.StatusCreated {
		t.Fatalf("expected cached 201 got %d", second.Code)
	}
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Fatalf("expected byte-identical replay")
	}
}

func TestCreateAssetValidationStatus(t *testing.T) {
	srv, _ := testServer(t)

	payload := createPayload()
	payload["totalValue"] = 0

	rec := httptest.NewRecorder()
	srv.hmac.Middleware(http.HandlerFunc(srv.handleCreateAsset)).
		ServeHTTP(rec, signedRequest(t, "/api/v1/assets", "key-bad", payload))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Success || resp.Error == "" {
		t.Fatalf("expected failure message, got %+v", resp)
	}
}

func TestPurchaseUnknownAssetReturns404(t *testing.T) {
	srv, _ := testServer(t)

	payload := map[string]interface{}{
		"assetId":      999,
		"amount":       5,
		"buyerAddress": "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		"proofInput": map[string]string{
			"commitment": "c2",
			"secret":     "s2",
			"nullifier":  "n2",
		},
	}

	rec := httptest.NewRecorder()
	srv.hmac.Middleware(http.HandlerFunc(srv.handlePurchaseFraction)).
		ServeHTTP(rec, signedRequest(t, "/api/v1/purchases", "key-p1", payload))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPurchaseAfterCreate(t *testing.T) {
	srv, _ := testServer(t)

	created := httptest.NewRecorder()
	srv.hmac.Middleware(http.HandlerFunc(srv.handleCreateAsset)).
		ServeHTTP(created, signedRequest(t, "/api/v1/assets", "key-1", createPayload()))
	if created.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", created.Code)
	}

	payload := map[string]interface{}{
		"assetId":      1,
		"amount":       5,
		"buyerAddress": "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		"proofInput": map[string]string{
			"commitment": "c2",
			"secret":     "s2",
			"nullifier":  "n2",
		},
	}

	rec := httptest.NewRecorder()
	srv.hmac.Middleware(http.HandlerFunc(srv.handlePurchaseFraction)).
		ServeHTTP(rec, signedRequest(t, "/api/v1/purchases", "key-p2", payload))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var resp purchaseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.PricePerFraction != 10000 {
		t.Fatalf("expected per-fraction price 10000, got %v", resp.PricePerFraction)
	}
	if resp.TotalCost != 50000 {
		t.Fatalf("expected total cost 50000, got %v", resp.TotalCost)
	}
}

func TestMissingIdempotencyKeyRejected(t *testing.T) {
	srv, _ := testServer(t)

	req := signedRequest(t, "/api/v1/assets", "", createPayload())
	req.Header.Del("X-Idempotency-Key")
	rec := httptest.NewRecorder()
	srv.hmac.Middleware(http.HandlerFunc(srv.handleCreateAsset)).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestHealthHealthy(t *testing.T) {
	srv, _ := testServer(t)
	srv.rpcHealthFn = func(context.Context) error { return nil }
	srv.dbHealthFn = func(context.Context) error { return nil }

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if resp.Status != "healthy" {
		t.Fatalf("expected healthy, got %q", resp.Status)
	}
}

func TestHealthDegradesWhenProbesFail(t *testing.T) {
	cases := []struct {
		name  string
		wire  func(*Server)
		check func(t *testing.T, rpc, db bool)
	}{
		{
			name: "rpc down",
			wire: func(s *Server) {
				s.rpcHealthFn = func(context.Context) error { return errors.New("rpc unreachable") }
				s.dbHealthFn = func(context.Context) error { return nil }
			},
			check: func(t *testing.T, rpc, db bool) {
				if rpc || !db {
					t.Fatalf("expected rpc disconnected and db connected, got rpc=%v db=%v", rpc, db)
				}
			},
		},
		{
			name: "db down",
			wire: func(s *Server) {
				s.rpcHealthFn = func(context.Context) error { return nil }
				s.dbHealthFn = func(context.Context) error { return errors.New("pool closed") }
			},
			check: func(t *testing.T, rpc, db bool) {
				if !rpc || db {
					t.Fatalf("expected db disconnected and rpc connected, got rpc=%v db=%v", rpc, db)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := testServer(t)
			tc.wire(srv)

			rec := httptest.NewRecorder()
			srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("expected 503 got %d", rec.Code)
			}

			var resp struct {
				Status string `json:"status"`
				RPC    struct {
					Connected bool `json:"connected"`
				} `json:"rpc"`
				Database struct {
					Connected bool `json:"connected"`
				} `json:"database"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode health body: %v", err)
			}
			if resp.Status != "degraded" {
				t.Fatalf("expected degraded, got %q", resp.Status)
			}
			tc.check(t, resp.RPC.Connected, resp.Database.Connected)
		})
	}
}

func signForTest(secret, timestamp string, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(timestamp))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
