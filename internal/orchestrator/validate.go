package orchestrator

import (
	"assetrails/internal/apperr"

	"github.com/ethereum/go-ethereum/common"
)

// validateCreateRequest checks structure and ranges before any network call.
// Addresses are accepted case-insensitively; checksum casing is not required.
func validateCreateRequest(req CreateAssetRequest) *apperr.Error {
	if !common.IsHexAddress(req.IssuerAddress) {
		return apperr.New(apperr.KindValidation, "issuerAddress is not a valid address")
	}
	if req.DocumentHash == "" {
		return apperr.New(apperr.KindValidation, "documentHash must not be empty")
	}
	if req.TotalValue <= 0 {
		return apperr.New(apperr.KindValidation, "totalValue must be positive")
	}
	if req.FractionCount <= 0 {
		return apperr.New(apperr.KindValidation, "fractionCount must be positive")
	}
	if req.MinFractionSize <= 0 {
		return apperr.New(apperr.KindValidation, "minFractionSize must be positive")
	}
	if !req.AssetType.valid() {
		return apperr.Newf(apperr.KindValidation, "unknown assetType %q", req.AssetType)
	}
	if req.LockupPeriod < 0 {
		return apperr.New(apperr.KindValidation, "lockupPeriod must not be negative")
	}
	return nil
}

func validatePurchaseRequest(req PurchaseRequest) *apperr.Error {
	if !common.IsHexAddress(req.BuyerAddress) {
		return apperr.New(apperr.KindValidation, "buyerAddress is not a valid address")
	}
	if req.Amount <= 0 {
		return apperr.New(apperr.KindValidation, "amount must be positive")
	}
	return nil
}
