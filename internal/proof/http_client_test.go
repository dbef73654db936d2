package proof

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerateProofSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/prove" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["proofType"] != TypeEligibility || req["address"] != "0xabc" {
			t.Fatalf("unexpected request %v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"proof":   "0xdeadbeef",
		})
	}))
	defer ts.Close()

	client := NewHTTPClient(ts.URL, time.Second)
	res, err := client.GenerateProof(context.Background(), TypeEligibility, "0xabc", Input{
		Commitment: "c", Secret: "s", Nullifier: "n",
	})
	if err != nil {
		t.Fatalf("generate proof: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success")
	}
	if len(res.Proof) != 4 || res.Proof[0] != 0xde {
		t.Fatalf("unexpected proof blob %x", res.Proof)
	}
}

func TestGenerateProofRejection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "nullifier already spent",
		})
	}))
	defer ts.Close()

	client := NewHTTPClient(ts.URL, time.Second)
	res, err := client.GenerateProof(context.Background(), TypeEligibility, "0xabc", Input{})
	if err != nil {
		t.Fatalf("generate proof: %v", err)
	}
	if res.Success {
		t.Fatalf("expected rejection")
	}
	if res.ErrorDetail != "nullifier already spent" {
		t.Fatalf("expected prover detail, got %q", res.ErrorDetail)
	}
}

func TestGenerateProofTransportError(t *testing.T) {
	client := NewHTTPClient("http://127.0.0.1:0", 100*time.Millisecond)
	if _, err := client.GenerateProof(context.Background(), TypeEligibility, "0xabc", Input{}); err == nil {
		t.Fatalf("expected transport error")
	}
}
