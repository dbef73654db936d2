package proof

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPClient calls a prover sidecar over JSON.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type proveRequest struct {
	ProofType  string `json:"proofType"`
	Address    string `json:"address"`
	Commitment string `json:"commitment"`
	Secret     string `json:"secret"`
	Nullifier  string `json:"nullifier"`
}

type proveResponse struct {
	Success bool   `json:"success"`
	Proof   string `json:"proof,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (c *HTTPClient) GenerateProof(ctx context.Context, proofType, subjectAddress string, input Input) (Result, error) {
	body, err := json.Marshal(proveRequest{
		ProofType:  proofType,
		Address:    subjectAddress,
		Commitment: input.Commitment,
		Secret:     input.Secret,
		Nullifier:  input.Nullifier,
	})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/prove", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("prover call: %w", err)
	}
	defer resp.Body.Close()

	var decoded proveResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, fmt.Errorf("decode prover response: %w", err)
	}

	if !decoded.Success {
		return Result{Success: false, ErrorDetail: decoded.Error}, nil
	}

	blob, err := hex.DecodeString(strings.TrimPrefix(decoded.Proof, "0x"))
	if err != nil {
		return Result{}, fmt.Errorf("decode proof blob: %w", err)
	}
	return Result{Success: true, Proof: blob}, nil
}
