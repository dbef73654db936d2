package proof

import (
	"context"
	"crypto/sha256"
)

// FakeClient deterministically derives a proof blob from the witness inputs
// so the service can run without a proving backend.
type FakeClient struct {
	// Reject, when set, makes every request fail with this detail.
	Reject string
}

func (f FakeClient) GenerateProof(_ context.Context, proofType, subjectAddress string, input Input) (Result, error) {
	if f.Reject != "" {
		return Result{Success: false, ErrorDetail: f.Reject}, nil
	}
	sum := sha256.Sum256([]byte(proofType + subjectAddress + input.Commitment + input.Secret + input.Nullifier))
	return Result{Success: true, Proof: sum[:]}, nil
}
