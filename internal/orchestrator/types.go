package orchestrator

import "time"

// AssetType is the closed set of asset classes the registry accepts.
type AssetType string

const (
	AssetTypeRealEstate AssetType = "real_estate"
	AssetTypeInvoice    AssetType = "invoice"
	AssetTypeCommodity  AssetType = "commodity"
	AssetTypeBond       AssetType = "bond"
)

func (t AssetType) valid() bool {
	switch t {
	case AssetTypeRealEstate, AssetTypeInvoice, AssetTypeCommodity, AssetTypeBond:
		return true
	}
	return false
}

// ProofInput is the caller-supplied witness material, opaque to the service.
type ProofInput struct {
	Commitment string
	Secret     string
	Nullifier  string
}

type CreateAssetRequest struct {
	IssuerAddress   string
	DocumentHash    string
	TotalValue      int64 // fiat minor units
	FractionCount   int64
	MinFractionSize int64
	LockupPeriod    time.Duration
	AssetType       AssetType
	Proof           ProofInput
}

type PurchaseRequest struct {
	AssetID      uint64
	Amount       int64
	BuyerAddress string
	Proof        ProofInput
}

type CreateAssetResult struct {
	AssetID     *uint64
	TxHash      string
	OraclePrice *float64 // decimal price recorded at mint
	Proof       []byte
}

type PurchaseResult struct {
	TxHash           string
	TotalCost        float64
	PricePerFraction float64
	// PriceFromOracle records whether the display price came from a live
	// oracle read or the metadata fallback. Not exposed to callers.
	PriceFromOracle bool
}
