package proof

import "context"

// TypeEligibility is the predicate proved for issuers and buyers.
const TypeEligibility = "eligibility"

// Input is the caller-supplied witness material. The service never generates
// or persists any of it.
type Input struct {
	Commitment string
	Secret     string
	Nullifier  string
}

// Result is the prover's answer. Proof is present iff Success; ErrorDetail
// is present iff the prover rejected the inputs.
type Result struct {
	Success     bool
	Proof       []byte
	ErrorDetail string
}

// Client abstracts the zero-knowledge proving subsystem.
type Client interface {
	GenerateProof(ctx context.Context, proofType, subjectAddress string, input Input) (Result, error)
}
